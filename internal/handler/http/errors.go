package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"credits/internal/core/domain"
)

// categorizeError categoriza erros em códigos HTTP e tipos de erro
func categorizeError(err error) (int, string, string) {
	var validationErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, "invalid_request", validationMessage(validationErrs)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, "invalid_json", "Malformed JSON body"
	case domain.IsValidationError(err):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account_not_found", "Account does not exist"
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, "version_conflict", domain.MsgConcurrentUpdate
	case errors.Is(err, domain.ErrDirectoryUnavailable):
		return http.StatusBadGateway, "customer_service_unavailable", "Customer service unavailable"
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return http.StatusBadGateway, "transaction_service_unavailable", "Transaction could not be recorded"
	case errors.Is(err, domain.ErrIdempotencyUnavailable):
		return http.StatusBadGateway, "idempotency_unavailable", "Idempotency store unavailable"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}

// statusForOutcome mapeia o resultado de negócio para o status HTTP
func statusForOutcome(outcome domain.Outcome) int {
	switch outcome {
	case domain.OutcomeNotFound:
		return http.StatusNotFound
	case domain.OutcomeRejected:
		return http.StatusUnprocessableEntity
	case domain.OutcomeConflict:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Invalid request"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	default:
		return fe.Field() + " is invalid"
	}
}

var errMalformedBody = errors.New("corpo da requisição inválido")

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := categorizeError(err)
	writeJSON(w, status, ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: domain.CorrelationID(r.Context()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
