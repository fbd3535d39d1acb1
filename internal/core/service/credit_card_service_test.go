package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credits/internal/core/domain"
)

func newCardService(seed ...*domain.Account) (*CreditCardService, *memoryRepository, *fakeLedger) {
	repo := newMemoryRepository(seed...)
	directory := &fakeDirectory{
		persons:   map[string]string{"c-1": "PERSONAL"},
		companies: map[string]string{"e-1": "EMPRESARIAL"},
	}
	ledger := &fakeLedger{}
	svc := NewCreditCardService(repo, directory, ledger, &fakePublisher{}, nopMetrics{}, nopTracer{}, nopLogger{},
		WithClock(func() time.Time { return fixedNow }))
	return svc, repo, ledger
}

func personalCard(id, limit, balance string) *domain.Account {
	return &domain.Account{
		ID:               id,
		CustomerID:       "c-1",
		ProductTypeCode:  domain.ProductPersonalCreditCard,
		ProductTypeLabel: domain.LabelPersonalCreditCard,
		CreditLimit:      dec(limit),
		CurrentBalance:   dec(balance),
		OpenedAt:         fixedNow,
		CardNumber:       "4111111111111111",
		CustomerType:     "PERSONAL",
	}
}

func TestCreditCardService_CreatePersonal(t *testing.T) {
	svc, repo, _ := newCardService()

	result, err := svc.CreatePersonal(context.Background(), CreateRequest{
		CustomerID:  "c-1",
		CreditLimit: dec("500"),
		CardNumber:  "4111111111111111",
	})
	require.NoError(t, err)
	require.True(t, result.OK())

	assert.Equal(t, domain.MsgCreditCardCreated, result.Message)
	assert.Equal(t, domain.LabelPersonalCreditCard, result.Account.ProductTypeLabel)
	assert.True(t, result.Account.CurrentBalance.Equal(dec("500")))
	assert.Equal(t, 1, repo.writeCount())

	// cartões pessoais não têm restrição de unicidade
	result, err = svc.CreatePersonal(context.Background(), CreateRequest{
		CustomerID:  "c-1",
		CreditLimit: dec("300"),
		CardNumber:  "5500000000000004",
	})
	require.NoError(t, err)
	assert.True(t, result.OK())
}

func TestCreditCardService_CreateRequiresCardNumber(t *testing.T) {
	svc, repo, _ := newCardService()

	result, err := svc.CreateBusiness(context.Background(), CreateRequest{CustomerID: "e-1", CreditLimit: dec("500")})
	assert.ErrorIs(t, err, domain.ErrCardNumberRequired)
	assert.Nil(t, result)
	assert.Zero(t, repo.writeCount())
}

func TestCreditCardService_CreateBusiness_UnknownCompany(t *testing.T) {
	svc, repo, _ := newCardService()

	result, err := svc.CreateBusiness(context.Background(), CreateRequest{
		CustomerID:  "c-1",
		CreditLimit: dec("500"),
		CardNumber:  "4111111111111111",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, result.Outcome)
	assert.Equal(t, domain.MsgClientNotFound, result.Message)
	assert.Nil(t, result.Account)
	assert.Zero(t, repo.writeCount())
}

func TestCreditCardService_Consume(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		wantOutcome domain.Outcome
		wantMessage string
		wantBalance string
		wantLedger  int
	}{
		{"consumo parcial", "200", domain.OutcomeOK, domain.MsgSuccessfulTransaction, "300", 1},
		{"consumo de todo o crédito", "500", domain.OutcomeOK, domain.MsgSuccessfulTransaction, "0", 1},
		{"consumo acima do disponível", "600", domain.OutcomeRejected, domain.MsgInsufficientBalance, "500", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, ledger := newCardService(personalCard("card-1", "500", "500"))

			result, err := svc.Consume(context.Background(), MovementRequest{ID: "card-1", Amount: dec(tt.amount)})
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantMessage, result.Message)
			assert.True(t, repo.stored("card-1").CurrentBalance.Equal(dec(tt.wantBalance)))

			entries := ledger.recorded()
			require.Len(t, entries, tt.wantLedger)
			if tt.wantLedger > 0 {
				assert.Equal(t, domain.KindConsumption, entries[0].Kind)
				assert.True(t, entries[0].Balance.Equal(dec(tt.wantBalance)))
			}
		})
	}
}

func TestCreditCardService_PayRestoresAvailableCredit(t *testing.T) {
	svc, repo, ledger := newCardService(personalCard("card-1", "500", "300"))

	result, err := svc.Pay(context.Background(), MovementRequest{ID: "card-1", Amount: dec("200")})
	require.NoError(t, err)
	require.True(t, result.OK())
	assert.True(t, repo.stored("card-1").CurrentBalance.Equal(dec("500")))

	result, err = svc.Pay(context.Background(), MovementRequest{ID: "card-1", Amount: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejected, result.Outcome)
	assert.Equal(t, domain.MsgPaymentExceedsLimit, result.Message)
	assert.Len(t, ledger.recorded(), 1)
}

func TestCreditCardService_NotFoundMessages(t *testing.T) {
	svc, _, _ := newCardService()

	result, err := svc.Consume(context.Background(), MovementRequest{ID: "nada", Amount: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, domain.MsgCreditCardNotFound, result.Message)

	result, err = svc.Delete(context.Background(), "nada")
	require.NoError(t, err)
	assert.Equal(t, domain.MsgCreditCardNotFound, result.Message)
}

func TestCreditCardService_UpdateCardNumber(t *testing.T) {
	svc, _, _ := newCardService(personalCard("card-1", "500", "500"))
	business := domain.ProductBusinessCreditCard

	account, err := svc.Update(context.Background(), UpdateRequest{
		ID:              "card-1",
		CardNumber:      "5500000000000004",
		ProductTypeCode: &business,
	})
	require.NoError(t, err)
	assert.Equal(t, "5500000000000004", account.CardNumber)
	assert.Equal(t, domain.LabelBusinessCreditCard, account.ProductTypeLabel)
	assert.Equal(t, domain.ProductBusinessCreditCard, account.ProductTypeCode)
}

func TestCreditCardService_BalanceStaysWithinLimit(t *testing.T) {
	type step struct {
		op          string
		amount      string
		wantOutcome domain.Outcome
		wantBalance string
	}

	tests := []struct {
		name  string
		limit string
		steps []step
	}{
		{
			name:  "consome, paga e tenta ultrapassar os dois extremos",
			limit: "500",
			steps: []step{
				{"consume", "200", domain.OutcomeOK, "300"},
				{"consume", "300", domain.OutcomeOK, "0"},
				{"consume", "0.01", domain.OutcomeRejected, "0"},
				{"pay", "450", domain.OutcomeOK, "450"},
				{"pay", "50.01", domain.OutcomeRejected, "450"},
				{"pay", "50", domain.OutcomeOK, "500"},
				{"consume", "500.5", domain.OutcomeRejected, "500"},
			},
		},
		{
			name:  "valores fracionados",
			limit: "100.50",
			steps: []step{
				{"consume", "33.17", domain.OutcomeOK, "67.33"},
				{"consume", "67.33", domain.OutcomeOK, "0"},
				{"pay", "100.50", domain.OutcomeOK, "100.50"},
				{"pay", "0.01", domain.OutcomeRejected, "100.50"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, ledger := newCardService(personalCard("card-1", tt.limit, tt.limit))
			accepted := 0

			for i, s := range tt.steps {
				req := MovementRequest{ID: "card-1", Amount: dec(s.amount)}
				var (
					result *domain.Result
					err    error
				)
				if s.op == "pay" {
					result, err = svc.Pay(context.Background(), req)
				} else {
					result, err = svc.Consume(context.Background(), req)
				}
				require.NoError(t, err, "passo %d", i)
				assert.Equal(t, s.wantOutcome, result.Outcome, "passo %d", i)
				if result.OK() {
					accepted++
				}

				stored := repo.stored("card-1")
				assert.True(t, stored.WithinLimits(), "passo %d: saldo %s fora de [0, %s]", i, stored.CurrentBalance, stored.CreditLimit)
				assert.True(t, stored.CurrentBalance.Equal(dec(s.wantBalance)), "passo %d: saldo %s", i, stored.CurrentBalance)
			}

			assert.Len(t, ledger.recorded(), accepted)
		})
	}
}
