package customerclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credits/internal/core/domain"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", time.Second)
}

func TestClient_GetPerson(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/person/p-1", r.URL.Path)
		assert.Equal(t, "corr-9", r.Header.Get("X-Correlation-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p-1","name":"Ana","lastName":"Souza","dni":"12345678","email":"ana@example.com","typeCustomer":"PERSONAL"}`))
	})

	ctx := domain.WithCorrelationID(context.Background(), "corr-9")
	customer, err := client.GetPerson(ctx, "p-1")
	require.NoError(t, err)

	assert.Equal(t, "p-1", customer.ID)
	assert.Equal(t, domain.CustomerPerson, customer.Kind)
	assert.Equal(t, "Ana Souza", customer.DisplayName)
	assert.Equal(t, "12345678", customer.Document)
	assert.Equal(t, "PERSONAL", customer.CustomerType)
}

func TestClient_GetCompany(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/e-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"e-1","businessName":"ACME SAC","ruc":"20123456789","typeCustomer":"PYME"}`))
	})

	customer, err := client.GetCompany(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerCompany, customer.Kind)
	assert.Equal(t, "ACME SAC", customer.DisplayName)
	assert.Equal(t, "PYME", customer.CustomerType)
}

func TestClient_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status 404", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"corpo vazio", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }},
		{"objeto sem id", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, tt.handler)
			_, err := client.GetPerson(context.Background(), "p-1")
			assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
		})
	}
}

func TestClient_Unavailable(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetCompany(context.Background(), "e-1")
	assert.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
	assert.NotErrorIs(t, err, domain.ErrCustomerNotFound)

	down := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err = down.GetPerson(context.Background(), "p-1")
	assert.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
}
