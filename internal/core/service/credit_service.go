package service

import (
	"context"
	"iter"

	"credits/internal/core/domain"
)

// CreditService orquestra o ciclo de vida de créditos pessoais e empresariais
type CreditService struct {
	w *workflow
}

func NewCreditService(
	accounts domain.AccountRepository,
	directory domain.CustomerDirectory,
	ledger domain.Ledger,
	events domain.EventPublisher,
	metrics domain.MetricsCollector,
	tracer domain.DistributedTracer,
	logger domain.Logger,
	opts ...Option,
) *CreditService {
	return &CreditService{
		w: newWorkflow(domain.FamilyCredit, messages{
			created:  domain.MsgCreditCreated,
			notFound: domain.MsgCreditNotFound,
			deleted:  domain.MsgCreditDeleted,
		}, accounts, directory, ledger, events, metrics, tracer, logger, opts...),
	}
}

// CreatePersonal abre um crédito pessoal. O cliente pode ter apenas um crédito pessoal
// para o seu tipo de cliente.
func (s *CreditService) CreatePersonal(ctx context.Context, req CreateRequest) (*domain.Result, error) {
	return s.w.create(ctx, domain.CustomerPerson, domain.ProductPersonalCredit, req, true)
}

// CreateBusiness abre um crédito empresarial; uma empresa pode ter várias linhas
func (s *CreditService) CreateBusiness(ctx context.Context, req CreateRequest) (*domain.Result, error) {
	return s.w.create(ctx, domain.CustomerCompany, domain.ProductBusinessCredit, req, false)
}

func (s *CreditService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.w.get(ctx, id)
}

func (s *CreditService) List(ctx context.Context) iter.Seq2[*domain.Account, error] {
	return s.w.list(ctx)
}

func (s *CreditService) ListByCustomer(ctx context.Context, customerID string) iter.Seq2[*domain.Account, error] {
	return s.w.listByCustomer(ctx, customerID)
}

// Update devolve domain.ErrAccountNotFound quando o crédito não existe
func (s *CreditService) Update(ctx context.Context, req UpdateRequest) (*domain.Account, error) {
	return s.w.update(ctx, req)
}

func (s *CreditService) Delete(ctx context.Context, id string) (*domain.Result, error) {
	return s.w.delete(ctx, id)
}

// Pay soma o valor ao saldo do crédito e registra um PAYMENT no ledger
func (s *CreditService) Pay(ctx context.Context, req MovementRequest) (*domain.Result, error) {
	return s.w.move(ctx, "pay", domain.KindPayment, req, (*domain.Account).ApplyPayment)
}

// Drain espera a publicação dos eventos já disparados
func (s *CreditService) Drain(ctx context.Context) error {
	return s.w.drain(ctx)
}
