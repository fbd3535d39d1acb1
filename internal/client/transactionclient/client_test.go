package transactionclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credits/internal/core/domain"
)

func sampleTransaction() *domain.Transaction {
	return &domain.Transaction{
		ProductType:   domain.LabelPersonalCredit,
		ProductID:     "cred-1",
		CustomerID:    "c-1",
		Kind:          domain.KindPayment,
		Amount:        decimal.RequireFromString("150"),
		Timestamp:     time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		CustomerType:  "PERSONAL",
		Balance:       decimal.RequireFromString("950"),
		CorrelationID: "corr-1",
	}
}

func TestClient_Record(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "corr-1", r.Header.Get("X-Correlation-ID"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PAYMENT", body["transactionType"])
		assert.Equal(t, "cred-1", body["productId"])
		assert.Equal(t, 950.0, body["balance"])

		body["id"] = "tx-1"
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	recorded, err := client.Record(context.Background(), sampleTransaction())
	require.NoError(t, err)

	assert.Equal(t, "tx-1", recorded.ID)
	assert.Equal(t, domain.KindPayment, recorded.Kind)
	assert.True(t, recorded.Balance.Equal(decimal.RequireFromString("950")))
}

func TestClient_Record_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tx := sampleTransaction()
	recorded, err := NewClient(server.URL, time.Second).Record(context.Background(), tx)
	require.NoError(t, err)
	assert.Same(t, tx, recorded)
}

func TestClient_Record_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Record(context.Background(), sampleTransaction())
	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	assert.ErrorContains(t, err, "500")
}
