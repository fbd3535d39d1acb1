package domain

import (
	"context"
	"iter"
)

// AccountRepository persiste créditos ou cartões. Cada família tem a sua tabela.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context) iter.Seq2[*Account, error]
	ListByCustomer(ctx context.Context, customerID string) iter.Seq2[*Account, error]
	// FindFirst devolve a primeira conta do cliente com o rótulo e o tipo de cliente informados
	FindFirst(ctx context.Context, customerID, productLabel, customerType string) (*Account, error)
	// Create atribui ID e versão inicial à conta
	Create(ctx context.Context, account *Account) error
	// Update grava todos os campos se a versão armazenada ainda for account.Version
	Update(ctx context.Context, account *Account) error
	// UpdateBalance grava somente o saldo, com a mesma condição de versão
	UpdateBalance(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id string) error
}

// CustomerDirectory consulta o serviço de clientes
type CustomerDirectory interface {
	GetPerson(ctx context.Context, id string) (*Customer, error)
	GetCompany(ctx context.Context, id string) (*Customer, error)
}

// Ledger registra transações no serviço de transações
type Ledger interface {
	Record(ctx context.Context, transaction *Transaction) (*Transaction, error)
}

// EventPublisher publica eventos de conta para sistemas downstream
type EventPublisher interface {
	Publish(ctx context.Context, event *AccountEvent) error
}

// IdempotencyGuard evita processar duas vezes a mesma movimentação
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// MetricsCollector coleta métricas para observabilidade
type MetricsCollector interface {
	IncrementOperationCounter(operation string, outcome Outcome)
	RecordOperationLatency(operation string, duration float64)
	RecordBusinessMetric(metricName string, value float64, labels map[string]string)
	IncrementErrorCounter(errorType string)
}

// DistributedTracer gerencia tracing distribuído
type DistributedTracer interface {
	StartSpan(ctx context.Context, operationName string) (context.Context, interface{})
	FinishSpan(span interface{}, err error)
	AddTag(span interface{}, key string, value interface{})
}

// Logger interface para logging estruturado
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}
