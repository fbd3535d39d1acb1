package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"credits/internal/core/domain"
)

const defaultMaxWriteAttempts = 3

// messages são os textos de cada família de produto
type messages struct {
	created  string
	notFound string
	deleted  string
}

// Option ajusta dependências opcionais do serviço
type Option func(*workflow)

// WithIdempotencyGuard habilita a proteção contra movimentações repetidas
func WithIdempotencyGuard(guard domain.IdempotencyGuard) Option {
	return func(w *workflow) {
		if guard != nil {
			w.idempotency = guard
		}
	}
}

// WithMaxWriteAttempts define quantas vezes uma escrita com conflito de versão é refeita
func WithMaxWriteAttempts(n int) Option {
	return func(w *workflow) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// WithSynchronousEvents publica os eventos antes de a operação retornar. Usado no
// runtime Lambda, que congela o ambiente assim que o handler responde.
func WithSynchronousEvents() Option {
	return func(w *workflow) {
		w.syncEvents = true
	}
}

// WithClock substitui o relógio usado em datas de abertura e transações
func WithClock(now func() time.Time) Option {
	return func(w *workflow) {
		if now != nil {
			w.now = now
		}
	}
}

// workflow concentra as regras compartilhadas por créditos e cartões
type workflow struct {
	family      domain.Family
	msgs        messages
	accounts    domain.AccountRepository
	directory   domain.CustomerDirectory
	ledger      domain.Ledger
	events      domain.EventPublisher
	idempotency domain.IdempotencyGuard
	metrics     domain.MetricsCollector
	tracer      domain.DistributedTracer
	logger      domain.Logger
	maxAttempts int
	now         func() time.Time
	syncEvents  bool
	pending     sync.WaitGroup
}

func newWorkflow(
	family domain.Family,
	msgs messages,
	accounts domain.AccountRepository,
	directory domain.CustomerDirectory,
	ledger domain.Ledger,
	events domain.EventPublisher,
	metrics domain.MetricsCollector,
	tracer domain.DistributedTracer,
	logger domain.Logger,
	opts ...Option,
) *workflow {
	w := &workflow{
		family:      family,
		msgs:        msgs,
		accounts:    accounts,
		directory:   directory,
		ledger:      ledger,
		events:      events,
		idempotency: noopGuard{},
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
		maxAttempts: defaultMaxWriteAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// begin abre o span da operação e devolve a função que fecha span e métricas
func (w *workflow) begin(ctx context.Context, operation string) (context.Context, interface{}, func(*domain.Result, error)) {
	startTime := time.Now()
	name := string(w.family) + "." + operation
	ctx, span := w.tracer.StartSpan(ctx, name)

	return ctx, span, func(result *domain.Result, err error) {
		w.metrics.RecordOperationLatency(name, time.Since(startTime).Seconds())
		switch {
		case err != nil:
			w.metrics.IncrementErrorCounter(errorType(err))
		case result != nil:
			w.metrics.IncrementOperationCounter(name, result.Outcome)
		default:
			w.metrics.IncrementOperationCounter(name, domain.OutcomeOK)
		}
		w.tracer.FinishSpan(span, err)
	}
}

func (w *workflow) get(ctx context.Context, id string) (*domain.Account, error) {
	ctx, _, finish := w.begin(ctx, "get")
	account, err := w.accounts.GetByID(ctx, id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		finish(domain.NotFound(w.msgs.notFound), nil)
		return nil, err
	}
	finish(nil, err)
	return account, err
}

func (w *workflow) list(ctx context.Context) iter.Seq2[*domain.Account, error] {
	return w.accounts.List(ctx)
}

func (w *workflow) listByCustomer(ctx context.Context, customerID string) iter.Seq2[*domain.Account, error] {
	w.logger.Debug(ctx, "listando contas do cliente", map[string]interface{}{
		"family":      w.family,
		"customer_id": customerID,
	})
	return w.accounts.ListByCustomer(ctx, customerID)
}

// create valida o cliente no diretório e persiste a nova conta
func (w *workflow) create(ctx context.Context, kind domain.CustomerKind, productCode int, req CreateRequest, uniquePerCustomer bool) (result *domain.Result, err error) {
	ctx, span, finish := w.begin(ctx, "create")
	defer func() { finish(result, err) }()

	w.tracer.AddTag(span, "customer_id", req.CustomerID)
	w.tracer.AddTag(span, "product_type", productCode)

	account, err := domain.NewAccount(req.CustomerID, productCode, req.CreditLimit, "", req.CardNumber, w.now())
	if err != nil {
		return nil, err
	}

	customer, err := w.lookupCustomer(ctx, kind, req.CustomerID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		w.logger.Warn(ctx, "cliente não encontrado no diretório", map[string]interface{}{
			"customer_id": req.CustomerID,
			"kind":        kind,
		})
		return domain.NotFound(domain.MsgClientNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	account.CustomerType = customer.CustomerType

	if uniquePerCustomer {
		existing, err := w.accounts.FindFirst(ctx, account.CustomerID, account.ProductTypeLabel, account.CustomerType)
		switch {
		case err == nil:
			w.logger.Info(ctx, "cliente já possui o produto", map[string]interface{}{
				"customer_id": account.CustomerID,
				"account_id":  existing.ID,
				"product":     account.ProductTypeLabel,
			})
			return domain.Conflict(domain.MsgDuplicatePersonal), nil
		case !errors.Is(err, domain.ErrAccountNotFound):
			return nil, err
		}
	}

	if err := w.accounts.Create(ctx, account); err != nil {
		w.logger.Error(ctx, "erro ao salvar conta", err, map[string]interface{}{
			"customer_id": account.CustomerID,
		})
		return nil, err
	}

	w.logger.Info(ctx, "conta criada com sucesso", map[string]interface{}{
		"account_id":  account.ID,
		"customer_id": account.CustomerID,
		"product":     account.ProductTypeLabel,
	})
	w.metrics.RecordBusinessMetric("credit_limit_granted", account.CreditLimit.InexactFloat64(), map[string]string{
		"product": account.ProductTypeLabel,
	})
	w.publishAsync(ctx, domain.NewAccountEvent(domain.EventAccountCreated, account, account.CreditLimit, w.now()))

	return domain.Succeeded(account, w.msgs.created), nil
}

func (w *workflow) lookupCustomer(ctx context.Context, kind domain.CustomerKind, id string) (*domain.Customer, error) {
	if kind == domain.CustomerCompany {
		return w.directory.GetCompany(ctx, id)
	}
	return w.directory.GetPerson(ctx, id)
}

// update sobrescreve os campos informados. Os valores não são revalidados contra o limite.
func (w *workflow) update(ctx context.Context, req UpdateRequest) (account *domain.Account, err error) {
	ctx, span, finish := w.begin(ctx, "update")
	defer func() {
		if errors.Is(err, domain.ErrAccountNotFound) {
			finish(domain.NotFound(w.msgs.notFound), nil)
			return
		}
		finish(nil, err)
	}()

	w.tracer.AddTag(span, "account_id", req.ID)

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		account, err = w.accounts.GetByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}

		if err := w.applyUpdate(account, req); err != nil {
			return nil, err
		}

		err = w.accounts.Update(ctx, account)
		if errors.Is(err, domain.ErrVersionConflict) {
			w.logger.Debug(ctx, "conflito de versão, repetindo atualização", map[string]interface{}{
				"account_id": req.ID,
				"attempt":    attempt,
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		if !account.WithinLimits() {
			w.logger.Warn(ctx, "conta atualizada com saldo fora do limite", map[string]interface{}{
				"account_id": account.ID,
				"balance":    account.CurrentBalance.String(),
				"limit":      account.CreditLimit.String(),
			})
		}
		return account, nil
	}

	return nil, fmt.Errorf("atualização da conta %s: %w", req.ID, domain.ErrVersionConflict)
}

func (w *workflow) applyUpdate(account *domain.Account, req UpdateRequest) error {
	if req.CustomerID != "" {
		account.CustomerID = req.CustomerID
	}
	if req.ProductTypeCode != nil {
		family, err := domain.FamilyOf(*req.ProductTypeCode)
		if err != nil {
			return err
		}
		if family != w.family {
			return fmt.Errorf("%w: %d não é um produto de %s", domain.ErrUnknownProductType, *req.ProductTypeCode, w.family)
		}
		if err := account.SetProductType(*req.ProductTypeCode); err != nil {
			return err
		}
	}
	if req.CreditLimit != nil {
		account.CreditLimit = *req.CreditLimit
	}
	if req.CurrentBalance != nil {
		account.CurrentBalance = *req.CurrentBalance
	}
	if req.OpenedAt != nil {
		account.OpenedAt = *req.OpenedAt
	}
	if req.CardNumber != "" && w.family == domain.FamilyCreditCard {
		account.CardNumber = req.CardNumber
	}
	return nil
}

func (w *workflow) delete(ctx context.Context, id string) (result *domain.Result, err error) {
	ctx, span, finish := w.begin(ctx, "delete")
	defer func() { finish(result, err) }()

	w.tracer.AddTag(span, "account_id", id)

	account, err := w.accounts.GetByID(ctx, id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.NotFound(w.msgs.notFound), nil
	}
	if err != nil {
		return nil, err
	}

	if err := w.accounts.Delete(ctx, account.ID); err != nil {
		w.logger.Error(ctx, "erro ao excluir conta", err, map[string]interface{}{
			"account_id": account.ID,
		})
		return nil, err
	}

	w.logger.Info(ctx, "conta excluída", map[string]interface{}{
		"account_id":  account.ID,
		"customer_id": account.CustomerID,
	})
	w.publishAsync(ctx, domain.NewAccountEvent(domain.EventAccountDeleted, account, decimal.Zero, w.now()))

	return &domain.Result{Message: w.msgs.deleted, Outcome: domain.OutcomeOK}, nil
}

// move aplica um pagamento ou consumo: lê, valida, grava com condição de versão e
// então registra a transação no ledger. As duas escritas não são atômicas.
func (w *workflow) move(
	ctx context.Context,
	operation string,
	kind domain.TransactionKind,
	req MovementRequest,
	apply func(*domain.Account, decimal.Decimal) error,
) (result *domain.Result, err error) {
	ctx, span, finish := w.begin(ctx, operation)
	defer func() { finish(result, err) }()

	w.tracer.AddTag(span, "account_id", req.ID)
	w.tracer.AddTag(span, "amount", req.Amount.String())

	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	committed := false
	if req.IdempotencyKey != "" {
		key := w.idempotencyKey(req)
		claimed, err := w.idempotency.Claim(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIdempotencyUnavailable, err)
		}
		if !claimed {
			w.logger.Warn(ctx, "movimentação repetida ignorada", map[string]interface{}{
				"account_id":      req.ID,
				"idempotency_key": req.IdempotencyKey,
			})
			return domain.Conflict(domain.MsgDuplicateRequest), nil
		}
		defer func() {
			if committed {
				return
			}
			if releaseErr := w.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
				w.logger.Error(ctx, "erro ao liberar chave de idempotência", releaseErr, map[string]interface{}{
					"idempotency_key": key,
				})
			}
		}()
	}

	var account *domain.Account
	for attempt := 1; attempt <= w.maxAttempts && !committed; attempt++ {
		account, err = w.accounts.GetByID(ctx, req.ID)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.NotFound(w.msgs.notFound), nil
		}
		if err != nil {
			return nil, err
		}

		if err := apply(account, req.Amount); err != nil {
			if rejection := rejectionFor(err); rejection != nil {
				w.logger.Warn(ctx, "movimentação rejeitada", map[string]interface{}{
					"account_id": account.ID,
					"amount":     req.Amount.String(),
					"balance":    account.CurrentBalance.String(),
					"limit":      account.CreditLimit.String(),
					"motivo":     err.Error(),
				})
				return rejection, nil
			}
			return nil, err
		}

		err = w.accounts.UpdateBalance(ctx, account)
		switch {
		case err == nil:
			committed = true
		case errors.Is(err, domain.ErrVersionConflict):
			w.logger.Debug(ctx, "conflito de versão, repetindo movimentação", map[string]interface{}{
				"account_id": req.ID,
				"attempt":    attempt,
			})
		default:
			return nil, err
		}
	}

	if !committed {
		w.logger.Warn(ctx, "movimentação abandonada após conflitos de versão", map[string]interface{}{
			"account_id": req.ID,
			"attempts":   w.maxAttempts,
		})
		return domain.Conflict(domain.MsgConcurrentUpdate), nil
	}

	transaction := domain.NewTransaction(account, kind, req.Amount, w.now())
	transaction.CorrelationID = domain.CorrelationID(ctx)
	if err := w.recordLedger(ctx, account, transaction); err != nil {
		return nil, err
	}

	w.metrics.RecordBusinessMetric("movement_amount", req.Amount.InexactFloat64(), map[string]string{
		"product": account.ProductTypeLabel,
		"kind":    string(kind),
	})
	w.publishAsync(ctx, domain.NewAccountEvent(domain.EventForKind(kind), account, req.Amount, w.now()))

	return domain.Succeeded(account, domain.MsgSuccessfulTransaction), nil
}

// idempotencyKey limita a chave do cliente à família e à conta movimentada
func (w *workflow) idempotencyKey(req MovementRequest) string {
	return string(w.family) + ":" + req.ID + ":" + req.IdempotencyKey
}

// recordLedger envia a transação ao ledger. Se falhar, a conta já está alterada e o
// evento LEDGER_UNRECORDED, publicado antes do retorno, leva a transação para reconciliação.
func (w *workflow) recordLedger(ctx context.Context, account *domain.Account, transaction *domain.Transaction) error {
	recorded, err := w.ledger.Record(ctx, transaction)
	if err != nil {
		w.logger.Error(ctx, "transação não registrada no ledger, conta já alterada", err, map[string]interface{}{
			"account_id": account.ID,
			"kind":       transaction.Kind,
			"amount":     transaction.Amount.String(),
			"balance":    transaction.Balance.String(),
		})
		event := domain.NewAccountEvent(domain.EventLedgerUnrecorded, account, transaction.Amount, w.now())
		event.Transaction = transaction
		event.CorrelationID = domain.CorrelationID(ctx)
		w.publish(context.WithoutCancel(ctx), event)
		if !errors.Is(err, domain.ErrLedgerUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
		}
		return err
	}

	w.logger.Info(ctx, "transação registrada", map[string]interface{}{
		"account_id":     account.ID,
		"transaction_id": recorded.ID,
		"kind":           transaction.Kind,
		"balance":        transaction.Balance.String(),
	})
	return nil
}

// publishAsync publica o evento fora do caminho da requisição; drain espera por ele
func (w *workflow) publishAsync(ctx context.Context, event *domain.AccountEvent) {
	event.CorrelationID = domain.CorrelationID(ctx)
	ctx = context.WithoutCancel(ctx)
	if w.syncEvents {
		w.publish(ctx, event)
		return
	}

	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		w.publish(ctx, event)
	}()
}

// drain espera as publicações em andamento ou o fim do contexto
func (w *workflow) drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("eventos ainda pendentes de publicação: %w", ctx.Err())
	}
}

func (w *workflow) publish(ctx context.Context, event *domain.AccountEvent) {
	ctx, span := w.tracer.StartSpan(ctx, "workflow.publish")
	defer w.tracer.FinishSpan(span, nil)

	if err := w.events.Publish(ctx, event); err != nil {
		w.logger.Error(ctx, "falha ao publicar evento", err, map[string]interface{}{
			"evento":     event.Event,
			"account_id": event.AccountID,
		})
		w.metrics.IncrementErrorCounter("event_publish_error")
	}
}

func rejectionFor(err error) *domain.Result {
	switch {
	case errors.Is(err, domain.ErrLimitExceeded):
		return domain.Rejected(domain.MsgPaymentExceedsLimit)
	case errors.Is(err, domain.ErrInsufficientBalance):
		return domain.Rejected(domain.MsgInsufficientBalance)
	default:
		return nil
	}
}

func errorType(err error) string {
	switch {
	case domain.IsValidationError(err):
		return "validation_error"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrDirectoryUnavailable):
		return "directory_error"
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return "ledger_write_error"
	case errors.Is(err, domain.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, domain.ErrIdempotencyUnavailable):
		return "idempotency_error"
	default:
		return "store_error"
	}
}

type noopGuard struct{}

func (noopGuard) Claim(context.Context, string) (bool, error) { return true, nil }
func (noopGuard) Release(context.Context, string) error       { return nil }
