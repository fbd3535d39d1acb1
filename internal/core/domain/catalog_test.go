package domain

import "testing"

func TestLookupProductType(t *testing.T) {
	for code, label := range map[int]string{
		ProductSavings:            "AHORRO",
		ProductCurrent:            "C_CORRIENTE",
		ProductFixedTerm:          "PLAZO_FIJO",
		ProductPersonalCredit:     LabelPersonalCredit,
		ProductBusinessCredit:     LabelBusinessCredit,
		ProductPersonalCreditCard: LabelPersonalCreditCard,
		ProductBusinessCreditCard: LabelBusinessCreditCard,
	} {
		p, ok := LookupProductType(code)
		if !ok || p.Label != label {
			t.Errorf("código %d: esperado %s, got %+v", code, label, p)
		}
		byLabel, ok := LookupProductLabel(label)
		if !ok || byLabel.ID != code {
			t.Errorf("rótulo %s: esperado código %d, got %+v", label, code, byLabel)
		}
	}

	if _, ok := LookupProductType(7); ok {
		t.Error("código 7 não existe no catálogo")
	}
	if _, ok := LookupProductLabel("CDB"); ok {
		t.Error("rótulo CDB não existe no catálogo")
	}
}

func TestCatalog_IsImmutable(t *testing.T) {
	products := Catalog()
	products[0].Label = "ALTERADO"

	p, _ := LookupProductType(ProductSavings)
	if p.Label != "AHORRO" {
		t.Errorf("catálogo não deve ser alterado pela cópia, got %s", p.Label)
	}

	current, _ := LookupProductType(ProductCurrent)
	if current.MaintenanceFee.String() != "12" || current.FreeTransactions != 99999 {
		t.Errorf("conta corrente inesperada: %+v", current)
	}
	fixed, _ := LookupProductType(ProductFixedTerm)
	if fixed.OperationDay != 15 {
		t.Errorf("dia de operação esperado 15, got %d", fixed.OperationDay)
	}
}
