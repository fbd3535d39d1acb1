package httphandler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"credits/internal/core/domain"
	"credits/internal/core/service"
)

// createAccountRequest abre crédito ou cartão. typeCustomer é ignorado: o tipo vem do
// serviço de clientes.
type createAccountRequest struct {
	CustomerID   string          `json:"customerId" validate:"required"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	NumberCard   string          `json:"numberCard"`
	TypeCustomer string          `json:"typeCustomer"`
}

func (r createAccountRequest) toService() service.CreateRequest {
	return service.CreateRequest{
		CustomerID:  r.CustomerID,
		CreditLimit: r.CreditAmount,
		CardNumber:  r.NumberCard,
	}
}

// updateAccountRequest: campos ausentes mantêm o valor atual. descripTypeAccount é
// recalculado a partir de typeAccount.
type updateAccountRequest struct {
	ID                 string           `json:"id" validate:"required"`
	CustomerID         string           `json:"customerId"`
	TypeAccount        *int             `json:"typeAccount"`
	DescripTypeAccount string           `json:"descripTypeAccount"`
	CreditAmount       *decimal.Decimal `json:"creditAmount"`
	ExistingAmount     *decimal.Decimal `json:"existingAmount"`
	CreditDate         *localDateTime   `json:"creditDate"`
	NumberCard         string           `json:"numberCard"`
}

func (r updateAccountRequest) toService() service.UpdateRequest {
	req := service.UpdateRequest{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		ProductTypeCode: r.TypeAccount,
		CreditLimit:     r.CreditAmount,
		CurrentBalance:  r.ExistingAmount,
		CardNumber:      r.NumberCard,
	}
	if r.CreditDate != nil {
		t := time.Time(*r.CreditDate)
		req.OpenedAt = &t
	}
	return req
}

type movementRequest struct {
	ID     string           `json:"id" validate:"required"`
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

func (r movementRequest) toService(idempotencyKey string) service.MovementRequest {
	return service.MovementRequest{
		ID:             r.ID,
		Amount:         *r.Amount,
		IdempotencyKey: idempotencyKey,
	}
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Timestamp     string `json:"timestamp"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// envelope devolve {"credit"|"creditcard": conta, "message": texto}; conta nula é omitida
func envelope(key string, result *domain.Result) map[string]interface{} {
	body := map[string]interface{}{"message": result.Message}
	if result.Account != nil {
		body[key] = result.Account
	}
	return body
}

// localDateTime aceita RFC 3339 e também data e hora sem fuso (interpretadas em UTC)
type localDateTime time.Time

var localLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *localDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("creditDate deve ser texto: %w", err)
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			*t = localDateTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("creditDate em formato desconhecido: %q", raw)
}
