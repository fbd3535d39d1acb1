// Package transactionclient registra movimentações no serviço de transações.
package transactionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"credits/internal/core/domain"
)

// Client implementa domain.Ledger
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

// Record envia a transação e devolve o registro criado pelo serviço
func (c *Client) Record(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	body, err := json.Marshal(transaction)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar transação: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao montar requisição: %w", domain.ErrLedgerUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if transaction.CorrelationID != "" {
		req.Header.Set("X-Correlation-ID", transaction.CorrelationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrLedgerUnavailable, resp.StatusCode)
	}

	var recorded domain.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&recorded); err != nil {
		if errors.Is(err, io.EOF) {
			// serviço aceitou sem devolver corpo
			return transaction, nil
		}
		return nil, fmt.Errorf("%w: resposta inválida: %w", domain.ErrLedgerUnavailable, err)
	}
	return &recorded, nil
}
