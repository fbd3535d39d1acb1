package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// amount serializa valores monetários como número JSON, como esperam os serviços de
// clientes e transações. A leitura continua com decimal.Decimal, que aceita os dois formatos.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a Account) MarshalJSON() ([]byte, error) {
	type plain Account
	return json.Marshal(struct {
		plain
		CreditLimit    amount `json:"creditAmount"`
		CurrentBalance amount `json:"existingAmount"`
	}{plain(a), amount(a.CreditLimit), amount(a.CurrentBalance)})
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		Amount  amount `json:"amount"`
		Balance amount `json:"balance"`
	}{plain(t), amount(t.Amount), amount(t.Balance)})
}

func (e AccountEvent) MarshalJSON() ([]byte, error) {
	type plain AccountEvent
	return json.Marshal(struct {
		plain
		Amount  amount `json:"amount"`
		Balance amount `json:"balance"`
	}{plain(e), amount(e.Amount), amount(e.Balance)})
}

func (p ProductType) MarshalJSON() ([]byte, error) {
	type plain ProductType
	return json.Marshal(struct {
		plain
		MaintenanceFee amount `json:"maintenance"`
	}{plain(p), amount(p.MaintenanceFee)})
}
