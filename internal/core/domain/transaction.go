package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind é o tipo de movimentação registrada no ledger
type TransactionKind string

const (
	KindDeposit     TransactionKind = "DEPOSIT"
	KindWithdrawal  TransactionKind = "WITHDRAWAL"
	KindPayment     TransactionKind = "PAYMENT"
	KindConsumption TransactionKind = "CONSUMPTION"
)

// Transaction é o registro enviado ao serviço de transações
type Transaction struct {
	ID            string          `json:"id,omitempty"`
	ProductType   string          `json:"productType"`
	ProductID     string          `json:"productId"`
	CustomerID    string          `json:"customerId"`
	Kind          TransactionKind `json:"transactionType"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"transactionDate"`
	CustomerType  string          `json:"customerType"`
	Balance       decimal.Decimal `json:"balance"`
	CorrelationID string          `json:"correlationId,omitempty"`
}

// NewTransaction tira um retrato da conta já alterada
func NewTransaction(account *Account, kind TransactionKind, amount decimal.Decimal, now time.Time) *Transaction {
	return &Transaction{
		ProductType:  account.ProductTypeLabel,
		ProductID:    account.ID,
		CustomerID:   account.CustomerID,
		Kind:         kind,
		Amount:       amount,
		Timestamp:    now,
		CustomerType: account.CustomerType,
		Balance:      account.CurrentBalance,
	}
}
