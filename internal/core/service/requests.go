package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRequest abre um crédito ou cartão para um cliente
type CreateRequest struct {
	CustomerID  string
	CreditLimit decimal.Decimal
	CardNumber  string
}

// UpdateRequest sobrescreve os campos da conta. Campos nil ou vazios mantêm o valor atual.
type UpdateRequest struct {
	ID              string
	CustomerID      string
	ProductTypeCode *int
	CreditLimit     *decimal.Decimal
	CurrentBalance  *decimal.Decimal
	OpenedAt        *time.Time
	CardNumber      string
}

// MovementRequest representa um pagamento ou consumo
type MovementRequest struct {
	ID             string
	Amount         decimal.Decimal
	IdempotencyKey string
}
