package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"credits/internal/core/domain"
)

// Client é o subconjunto da API do DynamoDB usado pelo repositório
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// AccountRepository guarda créditos ou cartões em uma tabela com chave "id" e um
// GSI por customer_id
type AccountRepository struct {
	client        Client
	tableName     string
	customerIndex string
	now           func() time.Time
}

type accountItem struct {
	ID               string `dynamodbav:"id"`
	CustomerID       string `dynamodbav:"customer_id"`
	ProductTypeCode  int    `dynamodbav:"product_type_code"`
	ProductTypeLabel string `dynamodbav:"product_type"`
	CreditLimit      amount `dynamodbav:"credit_limit"`
	CurrentBalance   amount `dynamodbav:"current_balance"`
	OpenedAt         string `dynamodbav:"opened_at"`
	CardNumber       string `dynamodbav:"card_number,omitempty"`
	CustomerType     string `dynamodbav:"customer_type"`
	Version          int64  `dynamodbav:"version"`
	UpdatedAt        int64  `dynamodbav:"updated_at"`
}

func NewAccountRepository(client Client, tableName, customerIndex string) *AccountRepository {
	return &AccountRepository{
		client:        client,
		tableName:     tableName,
		customerIndex: customerIndex,
		now:           time.Now,
	}
}

// GetByID busca uma conta pelo ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(id),
		// Leitura consistente: a versão lida é a base da escrita condicional
		ConsistentRead: aws.Bool(true),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar conta %s: %w", id, err)
	}

	if result.Item == nil {
		return nil, domain.ErrAccountNotFound
	}

	return r.decode(result.Item)
}

// List percorre a tabela inteira página a página
func (r *AccountRepository) List(ctx context.Context) iter.Seq2[*domain.Account, error] {
	return func(yield func(*domain.Account, error) bool) {
		paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
			TableName: aws.String(r.tableName),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(nil, fmt.Errorf("erro ao listar contas: %w", err))
				return
			}
			if !r.yieldItems(page.Items, yield) {
				return
			}
		}
	}
}

// ListByCustomer consulta o GSI por cliente. Leituras no índice são eventualmente consistentes.
func (r *AccountRepository) ListByCustomer(ctx context.Context, customerID string) iter.Seq2[*domain.Account, error] {
	return r.query(ctx, r.customerQuery(customerID))
}

// FindFirst devolve a primeira conta do cliente com o rótulo e o tipo de cliente informados
func (r *AccountRepository) FindFirst(ctx context.Context, customerID, productLabel, customerType string) (*domain.Account, error) {
	input := r.customerQuery(customerID)
	input.FilterExpression = aws.String("product_type = :product_type AND customer_type = :customer_type")
	input.ExpressionAttributeValues[":product_type"] = &types.AttributeValueMemberS{Value: productLabel}
	input.ExpressionAttributeValues[":customer_type"] = &types.AttributeValueMemberS{Value: customerType}

	for account, err := range r.query(ctx, input) {
		if err != nil {
			return nil, err
		}
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// Create grava a conta com ID novo e versão 1
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	stored := account.Clone()
	stored.ID = uuid.New().String()
	stored.Version = 1

	av, err := attributevalue.MarshalMap(r.encode(stored))
	if err != nil {
		return fmt.Errorf("erro ao serializar conta: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
		// Evita sobrescrever conta existente
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("conta %s já existe", stored.ID)
		}
		return fmt.Errorf("erro ao criar conta: %w", err)
	}

	account.ID = stored.ID
	account.Version = stored.Version
	return nil
}

// Update regrava a conta inteira se ninguém a alterou desde a leitura
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	expected := account.Version
	stored := account.Clone()
	stored.Version = expected + 1

	av, err := attributevalue.MarshalMap(r.encode(stored))
	if err != nil {
		return fmt.Errorf("erro ao serializar conta: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": number(expected),
		},
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		return r.writeError(account.ID, err)
	}

	account.Version = stored.Version
	return nil
}

// UpdateBalance grava só o saldo. A condição de versão impede que dois pagamentos
// simultâneos partam do mesmo saldo.
func (r *AccountRepository) UpdateBalance(ctx context.Context, account *domain.Account) error {
	expected := account.Version
	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              r.key(account.ID),
		UpdateExpression: aws.String("SET current_balance = :balance, version = :next, updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":balance":  &types.AttributeValueMemberN{Value: account.CurrentBalance.String()},
			":next":     number(expected + 1),
			":now":      number(r.now().UnixMilli()),
			":expected": number(expected),
		},
		ConditionExpression: aws.String("attribute_exists(id) AND version = :expected"),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return r.writeError(account.ID, err)
	}

	account.Version = expected + 1
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(id),
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("erro ao excluir conta %s: %w", id, err)
	}
	return nil
}

func (r *AccountRepository) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (r *AccountRepository) customerQuery(customerID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.customerIndex),
		KeyConditionExpression: aws.String("customer_id = :customer_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":customer_id": &types.AttributeValueMemberS{Value: customerID},
		},
	}
}

func (r *AccountRepository) query(ctx context.Context, input *dynamodb.QueryInput) iter.Seq2[*domain.Account, error] {
	return func(yield func(*domain.Account, error) bool) {
		paginator := dynamodb.NewQueryPaginator(r.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(nil, fmt.Errorf("erro ao consultar índice %s: %w", r.customerIndex, err))
				return
			}
			if !r.yieldItems(page.Items, yield) {
				return
			}
		}
	}
}

func (r *AccountRepository) yieldItems(items []map[string]types.AttributeValue, yield func(*domain.Account, error) bool) bool {
	for _, item := range items {
		account, err := r.decode(item)
		if !yield(account, err) {
			return false
		}
		if err != nil {
			return false
		}
	}
	return true
}

func (r *AccountRepository) writeError(id string, err error) error {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return fmt.Errorf("conta %s: %w", id, domain.ErrVersionConflict)
	}
	return fmt.Errorf("erro ao gravar conta %s: %w", id, err)
}

func (r *AccountRepository) encode(account *domain.Account) *accountItem {
	return &accountItem{
		ID:               account.ID,
		CustomerID:       account.CustomerID,
		ProductTypeCode:  account.ProductTypeCode,
		ProductTypeLabel: account.ProductTypeLabel,
		CreditLimit:      amount{account.CreditLimit},
		CurrentBalance:   amount{account.CurrentBalance},
		OpenedAt:         account.OpenedAt.UTC().Format(time.RFC3339Nano),
		CardNumber:       account.CardNumber,
		CustomerType:     account.CustomerType,
		Version:          account.Version,
		UpdatedAt:        r.now().UnixMilli(),
	}
}

func (r *AccountRepository) decode(av map[string]types.AttributeValue) (*domain.Account, error) {
	var item accountItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("erro ao deserializar conta: %w", err)
	}

	openedAt, err := time.Parse(time.RFC3339Nano, item.OpenedAt)
	if err != nil {
		return nil, fmt.Errorf("data de abertura inválida na conta %s: %w", item.ID, err)
	}

	return &domain.Account{
		ID:               item.ID,
		CustomerID:       item.CustomerID,
		ProductTypeCode:  item.ProductTypeCode,
		ProductTypeLabel: item.ProductTypeLabel,
		CreditLimit:      item.CreditLimit.Decimal,
		CurrentBalance:   item.CurrentBalance.Decimal,
		OpenedAt:         openedAt,
		CardNumber:       item.CardNumber,
		CustomerType:     item.CustomerType,
		Version:          item.Version,
	}, nil
}

func number(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}
