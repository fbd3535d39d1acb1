package awslambda

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credits/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, map[string]interface{}) {}
func (nopLogger) Error(context.Context, string, error, map[string]interface{}) {}
func (nopLogger) Warn(context.Context, string, map[string]interface{}) {}
func (nopLogger) Debug(context.Context, string, map[string]interface{}) {}

type recordingTracer struct {
	tags     map[string]interface{}
	finished int
}

func (t *recordingTracer) StartSpan(ctx context.Context, _ string) (context.Context, interface{}) {
	return ctx, t
}

func (t *recordingTracer) FinishSpan(interface{}, error) { t.finished++ }

func (t *recordingTracer) AddTag(_ interface{}, key string, value interface{}) {
	if t.tags == nil {
		t.tags = map[string]interface{}{}
	}
	t.tags[key] = value
}

type captured struct {
	method        string
	path          string
	query         string
	body          string
	correlationID string
	header        string
}

func newTestRouter(c *captured) http.Handler {
	r := chi.NewRouter()
	r.HandleFunc("/credit/*", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*c = captured{
			method:        r.Method,
			path:          r.URL.Path,
			query:         r.URL.Query().Get("page"),
			body:          string(body),
			correlationID: domain.CorrelationID(r.Context()),
			header:        r.Header.Get("X-Correlation-ID"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	return r
}

func TestLambdaHandler_DispatchesToRouter(t *testing.T) {
	var c captured
	tracer := &recordingTracer{}
	h := NewLambdaHandler(newTestRouter(&c), nopLogger{}, tracer)

	resp, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/credit/person",
		Headers:               map[string]string{"x-correlation-id": "corr-1", "Content-Type": "application/json"},
		QueryStringParameters: map[string]string{"page": "2"},
		Body:                  `{"customerId":"c-1"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"message":"ok"}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "/credit/person", c.path)
	assert.Equal(t, "2", c.query)
	assert.Equal(t, `{"customerId":"c-1"}`, c.body)
	assert.Equal(t, "corr-1", c.correlationID)
	assert.Equal(t, "corr-1", c.header)

	assert.Equal(t, 1, tracer.finished)
	assert.Equal(t, http.StatusCreated, tracer.tags["http.status_code"])
}

func TestLambdaHandler_Base64Body(t *testing.T) {
	var c captured
	h := NewLambdaHandler(newTestRouter(&c), nopLogger{}, &recordingTracer{})

	_, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/credit/pay",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"id":"cred-1","amount":10}`)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"cred-1","amount":10}`, c.body)

	resp, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/credit/pay",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLambdaHandler_CorrelationIDFallbacks(t *testing.T) {
	h := NewLambdaHandler(http.NotFoundHandler(), nopLogger{}, &recordingTracer{})

	fromRequest := events.APIGatewayProxyRequest{
		RequestContext: events.APIGatewayProxyRequestContext{RequestID: "req-9"},
	}
	assert.Equal(t, "req-9", h.extractOrGenerateCorrelationID(fromRequest))

	generated := h.extractOrGenerateCorrelationID(events.APIGatewayProxyRequest{})
	assert.Len(t, generated, 36)
}

func TestLambdaHandler_DefaultsStatusToOK(t *testing.T) {
	router := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("healthy"))
	})
	h := NewLambdaHandler(router, nopLogger{}, &recordingTracer{})

	resp, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/health"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", resp.Body)
}
