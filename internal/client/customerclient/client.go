// Package customerclient consulta o serviço de clientes (pessoas e empresas).
package customerclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"credits/internal/core/domain"
)

// Client implementa domain.CustomerDirectory sobre a API REST do serviço de clientes
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type personResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LastName     string `json:"lastName"`
	DNI          string `json:"dni"`
	Email        string `json:"email"`
	Telephone    string `json:"telephone"`
	TypeCustomer string `json:"typeCustomer"`
}

type companyResponse struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
	RUC          string `json:"ruc"`
	Email        string `json:"email"`
	Telephone    string `json:"telephone"`
	TypeCustomer string `json:"typeCustomer"`
}

// GetPerson busca uma pessoa física pelo ID
func (c *Client) GetPerson(ctx context.Context, id string) (*domain.Customer, error) {
	var person personResponse
	if err := c.get(ctx, "/person/"+url.PathEscape(id), &person); err != nil {
		return nil, err
	}
	if person.ID == "" {
		return nil, domain.ErrCustomerNotFound
	}

	return &domain.Customer{
		ID:           person.ID,
		Kind:         domain.CustomerPerson,
		DisplayName:  strings.TrimSpace(person.Name + " " + person.LastName),
		Document:     person.DNI,
		Email:        person.Email,
		CustomerType: person.TypeCustomer,
	}, nil
}

// GetCompany busca uma empresa pelo ID
func (c *Client) GetCompany(ctx context.Context, id string) (*domain.Customer, error) {
	var company companyResponse
	if err := c.get(ctx, "/company/"+url.PathEscape(id), &company); err != nil {
		return nil, err
	}
	if company.ID == "" {
		return nil, domain.ErrCustomerNotFound
	}

	return &domain.Customer{
		ID:           company.ID,
		Kind:         domain.CustomerCompany,
		DisplayName:  company.BusinessName,
		Document:     company.RUC,
		Email:        company.Email,
		CustomerType: company.TypeCustomer,
	}, nil
}

// get trata 404 e corpo vazio como cliente inexistente
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: erro ao montar requisição: %w", domain.ErrDirectoryUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if correlationID := domain.CorrelationID(ctx); correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrCustomerNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", domain.ErrDirectoryUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("%w: resposta inválida: %w", domain.ErrDirectoryUnavailable, err)
	}
	return nil
}
