package service

import (
	"context"
	"iter"

	"credits/internal/core/domain"
)

// CreditCardService orquestra o ciclo de vida de cartões de crédito.
// O saldo do cartão é o crédito disponível: começa no limite, cai com consumos e
// volta com pagamentos.
type CreditCardService struct {
	w *workflow
}

func NewCreditCardService(
	accounts domain.AccountRepository,
	directory domain.CustomerDirectory,
	ledger domain.Ledger,
	events domain.EventPublisher,
	metrics domain.MetricsCollector,
	tracer domain.DistributedTracer,
	logger domain.Logger,
	opts ...Option,
) *CreditCardService {
	return &CreditCardService{
		w: newWorkflow(domain.FamilyCreditCard, messages{
			created:  domain.MsgCreditCardCreated,
			notFound: domain.MsgCreditCardNotFound,
			deleted:  domain.MsgCreditCardDeleted,
		}, accounts, directory, ledger, events, metrics, tracer, logger, opts...),
	}
}

func (s *CreditCardService) CreatePersonal(ctx context.Context, req CreateRequest) (*domain.Result, error) {
	return s.w.create(ctx, domain.CustomerPerson, domain.ProductPersonalCreditCard, req, false)
}

func (s *CreditCardService) CreateBusiness(ctx context.Context, req CreateRequest) (*domain.Result, error) {
	return s.w.create(ctx, domain.CustomerCompany, domain.ProductBusinessCreditCard, req, false)
}

func (s *CreditCardService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.w.get(ctx, id)
}

func (s *CreditCardService) List(ctx context.Context) iter.Seq2[*domain.Account, error] {
	return s.w.list(ctx)
}

func (s *CreditCardService) ListByCustomer(ctx context.Context, customerID string) iter.Seq2[*domain.Account, error] {
	return s.w.listByCustomer(ctx, customerID)
}

func (s *CreditCardService) Update(ctx context.Context, req UpdateRequest) (*domain.Account, error) {
	return s.w.update(ctx, req)
}

func (s *CreditCardService) Delete(ctx context.Context, id string) (*domain.Result, error) {
	return s.w.delete(ctx, id)
}

// Pay devolve crédito ao cartão, sem ultrapassar o limite
func (s *CreditCardService) Pay(ctx context.Context, req MovementRequest) (*domain.Result, error) {
	return s.w.move(ctx, "pay", domain.KindPayment, req, (*domain.Account).ApplyPayment)
}

// Consume desconta do crédito disponível e registra um CONSUMPTION no ledger
func (s *CreditCardService) Consume(ctx context.Context, req MovementRequest) (*domain.Result, error) {
	return s.w.move(ctx, "consume", domain.KindConsumption, req, (*domain.Account).ApplyConsumption)
}

func (s *CreditCardService) Drain(ctx context.Context) error {
	return s.w.drain(ctx)
}
