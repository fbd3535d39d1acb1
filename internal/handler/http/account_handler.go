package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"credits/internal/core/domain"
	"credits/internal/core/service"
)

const idempotencyHeader = "Idempotency-Key"

// AccountService é o contrato comum de créditos e cartões
type AccountService interface {
	CreatePersonal(ctx context.Context, req service.CreateRequest) (*domain.Result, error)
	CreateBusiness(ctx context.Context, req service.CreateRequest) (*domain.Result, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) iter.Seq2[*domain.Account, error]
	ListByCustomer(ctx context.Context, customerID string) iter.Seq2[*domain.Account, error]
	Update(ctx context.Context, req service.UpdateRequest) (*domain.Account, error)
	Delete(ctx context.Context, id string) (*domain.Result, error)
	Pay(ctx context.Context, req service.MovementRequest) (*domain.Result, error)
}

// CardService acrescenta o consumo ao contrato comum
type CardService interface {
	AccountService
	Consume(ctx context.Context, req service.MovementRequest) (*domain.Result, error)
}

// accountHandler serve as rotas de uma família; key é a chave do envelope JSON
type accountHandler struct {
	svc      AccountService
	key      string
	validate *validator.Validate
	logger   domain.Logger
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *accountHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Put("/", h.update)
	r.Post("/person", h.createPersonal)
	r.Post("/company", h.createBusiness)
	r.Post("/pay", h.pay)
	r.Get("/consult/{customerId}", h.listByCustomer)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

func (h *accountHandler) list(w http.ResponseWriter, r *http.Request) {
	h.writeAccounts(w, r, h.svc.List(r.Context()))
}

func (h *accountHandler) listByCustomer(w http.ResponseWriter, r *http.Request) {
	h.writeAccounts(w, r, h.svc.ListByCustomer(r.Context(), chi.URLParam(r, "customerId")))
}

func (h *accountHandler) get(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrAccountNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, "erro ao buscar conta", err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *accountHandler) createPersonal(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.svc.CreatePersonal)
}

func (h *accountHandler) createBusiness(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.svc.CreateBusiness)
}

func (h *accountHandler) create(w http.ResponseWriter, r *http.Request, op func(context.Context, service.CreateRequest) (*domain.Result, error)) {
	var req createAccountRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := op(r.Context(), req.toService())
	if err != nil {
		h.fail(w, r, "erro ao criar conta", err)
		return
	}

	status := statusForOutcome(result.Outcome)
	if result.OK() {
		status = http.StatusCreated
	}
	writeJSON(w, status, envelope(h.key, result))
}

func (h *accountHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.svc.Update(r.Context(), req.toService())
	if errors.Is(err, domain.ErrAccountNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, "erro ao atualizar conta", err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *accountHandler) delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "erro ao excluir conta", err)
		return
	}
	writeJSON(w, statusForOutcome(result.Outcome), messageResponse{Message: result.Message})
}

func (h *accountHandler) pay(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.svc.Pay)
}

func (h *accountHandler) move(w http.ResponseWriter, r *http.Request, op func(context.Context, service.MovementRequest) (*domain.Result, error)) {
	var req movementRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := op(r.Context(), req.toService(strings.TrimSpace(r.Header.Get(idempotencyHeader))))
	if err != nil {
		h.fail(w, r, "erro ao movimentar conta", err)
		return
	}
	writeJSON(w, statusForOutcome(result.Outcome), envelope(h.key, result))
}

func (h *accountHandler) writeAccounts(w http.ResponseWriter, r *http.Request, accounts iter.Seq2[*domain.Account, error]) {
	out := make([]*domain.Account, 0)
	for account, err := range accounts {
		if err != nil {
			h.fail(w, r, "erro ao listar contas", err)
			return
		}
		out = append(out, account)
	}
	writeJSON(w, http.StatusOK, out)
}

// decode lê o JSON e valida as tags do struct
func (h *accountHandler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: corpo vazio", errMalformedBody)
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return err
		}
		return fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	return h.validate.Struct(dst)
}

func (h *accountHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, code, _ := categorizeError(err)
	fields := map[string]interface{}{
		"path":       r.URL.Path,
		"status":     status,
		"error_code": code,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), msg, err, fields)
	} else {
		fields["error"] = err.Error()
		h.logger.Warn(r.Context(), msg, fields)
	}
	writeError(w, r, err)
}

// cardHandler acrescenta /consume às rotas comuns
type cardHandler struct {
	accountHandler
	cards CardService
}

func (h *cardHandler) routes(r chi.Router) {
	h.accountHandler.routes(r)
	r.Post("/consume", h.consume)
}

func (h *cardHandler) consume(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.cards.Consume)
}
