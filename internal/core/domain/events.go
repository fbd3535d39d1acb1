package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento
const (
	EventAccountCreated      = "ACCOUNT_CREATED"
	EventAccountDeleted      = "ACCOUNT_DELETED"
	EventPaymentRecorded     = "PAYMENT_RECORDED"
	EventConsumptionRecorded = "CONSUMPTION_RECORDED"
	EventLedgerUnrecorded    = "LEDGER_UNRECORDED"
)

// AccountEvent representa um evento de conta para sistemas downstream
type AccountEvent struct {
	Event         string          `json:"evento"`
	AccountID     string          `json:"account_id"`
	ProductType   string          `json:"product_type"`
	CustomerID    string          `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Transaction   *Transaction    `json:"transaction,omitempty"`
}

// NewAccountEvent monta o evento a partir do estado atual da conta
func NewAccountEvent(event string, account *Account, amount decimal.Decimal, now time.Time) *AccountEvent {
	return &AccountEvent{
		Event:       event,
		AccountID:   account.ID,
		ProductType: account.ProductTypeLabel,
		CustomerID:  account.CustomerID,
		Amount:      amount,
		Balance:     account.CurrentBalance,
		Timestamp:   now,
	}
}

// EventForKind retorna o evento publicado após uma movimentação aceita
func EventForKind(kind TransactionKind) string {
	switch kind {
	case KindConsumption:
		return EventConsumptionRecorded
	default:
		return EventPaymentRecorded
	}
}
