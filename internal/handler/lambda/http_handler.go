package awslambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"credits/internal/core/domain"
)

const correlationHeader = "X-Correlation-ID"

// LambdaHandler traduz eventos do API Gateway para o router HTTP
type LambdaHandler struct {
	router http.Handler
	logger domain.Logger
	tracer domain.DistributedTracer
}

func NewLambdaHandler(router http.Handler, logger domain.Logger, tracer domain.DistributedTracer) *LambdaHandler {
	return &LambdaHandler{
		router: router,
		logger: logger,
		tracer: tracer,
	}
}

// HandleRequest é o ponto de entrada principal do Lambda
func (h *LambdaHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := h.extractOrGenerateCorrelationID(request)
	ctx = domain.WithCorrelationID(ctx, correlationID)

	ctx, span := h.tracer.StartSpan(ctx, "lambda.handle_request")
	h.tracer.AddTag(span, "http.method", request.HTTPMethod)
	h.tracer.AddTag(span, "http.path", request.Path)
	h.tracer.AddTag(span, "correlation_id", correlationID)

	h.logger.Info(ctx, "requisição recebida", map[string]interface{}{
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"source_ip": request.RequestContext.Identity.SourceIP,
	})

	req, err := h.toHTTPRequest(ctx, request)
	if err != nil {
		h.tracer.FinishSpan(span, err)
		h.logger.Warn(ctx, "evento do API Gateway inválido", map[string]interface{}{"error": err.Error()})
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Headers: map[string]string{
				"Content-Type":    "application/json",
				correlationHeader: correlationID,
			},
			Body: `{"error":"invalid_request","message":"Malformed request"}`,
		}, nil
	}
	req.Header.Set(correlationHeader, correlationID)

	rw := newResponseWriter()
	h.router.ServeHTTP(rw, req)

	h.tracer.AddTag(span, "http.status_code", rw.status)
	h.tracer.FinishSpan(span, nil)

	return rw.toProxyResponse(), nil
}

func (h *LambdaHandler) toHTTPRequest(ctx context.Context, request events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return nil, fmt.Errorf("corpo base64 inválido: %w", err)
		}
		body = decoded
	}

	target := &url.URL{Path: request.Path}
	query := url.Values{}
	for key, values := range request.MultiValueQueryStringParameters {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	for key, v := range request.QueryStringParameters {
		if _, ok := query[key]; !ok {
			query.Set(key, v)
		}
	}
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, request.HTTPMethod, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("erro ao montar requisição: %w", err)
	}

	for key, values := range request.MultiValueHeaders {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for key, v := range request.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, v)
		}
	}
	if ip := request.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = ip
	}
	return req, nil
}

// extractOrGenerateCorrelationID extrai correlation ID do header ou gera um novo
func (h *LambdaHandler) extractOrGenerateCorrelationID(request events.APIGatewayProxyRequest) string {
	for key, v := range request.Headers {
		if strings.EqualFold(key, correlationHeader) && v != "" {
			return v
		}
	}

	if requestID := request.RequestContext.RequestID; requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// responseWriter acumula a resposta do router para devolvê-la ao API Gateway
type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) toProxyResponse() events.APIGatewayProxyResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}

	headers := make(map[string]string, len(w.header))
	for key, values := range w.header {
		if len(values) > 0 {
			headers[key] = values[len(values)-1]
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           headers,
		MultiValueHeaders: map[string][]string(w.header),
		Body:              w.body.String(),
	}
}
