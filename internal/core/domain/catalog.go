package domain

import "github.com/shopspring/decimal"

// ProductType descreve um tipo de produto da plataforma
type ProductType struct {
	ID               int             `json:"id"`
	Label            string          `json:"type"`
	MaintenanceFee   decimal.Decimal `json:"maintenance"`
	FreeTransactions int             `json:"transactions"`
	OperationDay     int             `json:"dayOperation"`
}

// Códigos de produto
const (
	ProductSavings            = 0
	ProductCurrent            = 1
	ProductFixedTerm          = 2
	ProductPersonalCredit     = 3
	ProductBusinessCredit     = 4
	ProductPersonalCreditCard = 5
	ProductBusinessCreditCard = 6
)

// Rótulos usados na classificação de contas
const (
	LabelPersonalCredit     = "CRED_PERSONAL"
	LabelBusinessCredit     = "CRED_EMPRESARIAL"
	LabelPersonalCreditCard = "TAR_CRED_PERSONAL"
	LabelBusinessCreditCard = "TAR_CRED_EMPRESARIAL"
)

const (
	unlimitedFreeTransactions    = 99999
	fixedTermOperationDayOfMonth = 15
)

// catalog é indexado pelo código do produto
var catalog = [...]ProductType{
	{ID: ProductSavings, Label: "AHORRO", MaintenanceFee: decimal.Zero, FreeTransactions: 3},
	{ID: ProductCurrent, Label: "C_CORRIENTE", MaintenanceFee: decimal.NewFromInt(12), FreeTransactions: unlimitedFreeTransactions},
	{ID: ProductFixedTerm, Label: "PLAZO_FIJO", MaintenanceFee: decimal.Zero, FreeTransactions: 1, OperationDay: fixedTermOperationDayOfMonth},
	{ID: ProductPersonalCredit, Label: LabelPersonalCredit, MaintenanceFee: decimal.Zero},
	{ID: ProductBusinessCredit, Label: LabelBusinessCredit, MaintenanceFee: decimal.Zero},
	{ID: ProductPersonalCreditCard, Label: LabelPersonalCreditCard, MaintenanceFee: decimal.Zero},
	{ID: ProductBusinessCreditCard, Label: LabelBusinessCreditCard, MaintenanceFee: decimal.Zero},
}

// Catalog retorna uma cópia da tabela de produtos
func Catalog() []ProductType {
	out := make([]ProductType, len(catalog))
	copy(out, catalog[:])
	return out
}

// LookupProductType busca um tipo de produto pelo código
func LookupProductType(code int) (ProductType, bool) {
	if code < 0 || code >= len(catalog) {
		return ProductType{}, false
	}
	return catalog[code], true
}

// LookupProductLabel busca um tipo de produto pelo rótulo
func LookupProductLabel(label string) (ProductType, bool) {
	for _, p := range catalog {
		if p.Label == label {
			return p, true
		}
	}
	return ProductType{}, false
}
