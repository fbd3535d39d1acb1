package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Family agrupa os produtos que compartilham o mesmo fluxo de negócio
type Family string

const (
	FamilyCredit     Family = "credit"
	FamilyCreditCard Family = "credit_card"
)

// BalanceDirection define como o saldo de uma conta se move em relação ao limite.
//
// Crédito começa em zero e os pagamentos acumulam até o limite. Cartão começa no
// limite (crédito disponível), consumos descontam e pagamentos devolvem.
type BalanceDirection int

const (
	BalanceAccumulates BalanceDirection = iota
	BalanceAvailable
)

// InitialBalance retorna o saldo de abertura para um limite
func (d BalanceDirection) InitialBalance(limit decimal.Decimal) decimal.Decimal {
	if d == BalanceAvailable {
		return limit
	}
	return decimal.Zero
}

func (f Family) Direction() BalanceDirection {
	if f == FamilyCreditCard {
		return BalanceAvailable
	}
	return BalanceAccumulates
}

// Account representa um crédito ou um cartão de crédito
type Account struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customerId"`
	ProductTypeCode  int             `json:"-"`
	ProductTypeLabel string          `json:"descripTypeAccount"`
	CreditLimit      decimal.Decimal `json:"creditAmount"`
	CurrentBalance   decimal.Decimal `json:"existingAmount"`
	OpenedAt         time.Time       `json:"creditDate"`
	CardNumber       string          `json:"numberCard,omitempty"`
	CustomerType     string          `json:"typeCustomer"`
	Version          int64           `json:"version"`
}

// FamilyOf classifica um código de produto
func FamilyOf(productTypeCode int) (Family, error) {
	switch productTypeCode {
	case ProductPersonalCredit, ProductBusinessCredit:
		return FamilyCredit, nil
	case ProductPersonalCreditCard, ProductBusinessCreditCard:
		return FamilyCreditCard, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownProductType, productTypeCode)
	}
}

// NewAccount cria uma conta com rótulo e saldo inicial derivados do tipo de produto
func NewAccount(customerID string, productTypeCode int, limit decimal.Decimal, customerType, cardNumber string, now time.Time) (*Account, error) {
	family, err := FamilyOf(productTypeCode)
	if err != nil {
		return nil, err
	}
	product, _ := LookupProductType(productTypeCode)

	if customerID == "" {
		return nil, ErrCustomerIDRequired
	}
	if limit.IsNegative() {
		return nil, ErrNegativeLimit
	}
	if family == FamilyCreditCard && cardNumber == "" {
		return nil, ErrCardNumberRequired
	}

	return &Account{
		CustomerID:       customerID,
		ProductTypeCode:  productTypeCode,
		ProductTypeLabel: product.Label,
		CreditLimit:      limit,
		CurrentBalance:   family.Direction().InitialBalance(limit),
		OpenedAt:         now,
		CardNumber:       cardNumber,
		CustomerType:     customerType,
	}, nil
}

// Family retorna a família do produto da conta
func (a *Account) Family() Family {
	f, _ := FamilyOf(a.ProductTypeCode)
	return f
}

// SetProductType altera o código mantendo o rótulo consistente com o catálogo
func (a *Account) SetProductType(code int) error {
	if _, err := FamilyOf(code); err != nil {
		return err
	}
	product, _ := LookupProductType(code)
	a.ProductTypeCode = code
	a.ProductTypeLabel = product.Label
	return nil
}

// ApplyPayment soma o valor ao saldo; o novo saldo não pode passar do limite
func (a *Account) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	newBalance := a.CurrentBalance.Add(amount)
	if newBalance.GreaterThan(a.CreditLimit) {
		return ErrLimitExceeded
	}
	a.CurrentBalance = newBalance
	return nil
}

// ApplyConsumption desconta o valor do crédito disponível de um cartão
func (a *Account) ApplyConsumption(amount decimal.Decimal) error {
	if a.Family() != FamilyCreditCard {
		return ErrOperationNotSupported
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	newBalance := a.CurrentBalance.Sub(amount)
	if newBalance.IsNegative() {
		return ErrInsufficientBalance
	}
	a.CurrentBalance = newBalance
	return nil
}

// WithinLimits verifica 0 <= saldo <= limite
func (a *Account) WithinLimits() bool {
	return !a.CurrentBalance.IsNegative() && a.CurrentBalance.LessThanOrEqual(a.CreditLimit)
}

// Clone retorna uma cópia independente da conta
func (a *Account) Clone() *Account {
	c := *a
	return &c
}
