// Package httphandler expõe os serviços de crédito e cartão via HTTP.
package httphandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"credits/internal/core/domain"
)

const (
	correlationHeader = "X-Correlation-ID"
	// unmatchedRoute rotula requisições sem rota para não criar uma série por caminho
	unmatchedRoute = "unmatched"
)

// Dependencies agrupa o que o router precisa
type Dependencies struct {
	ServiceName    string
	Version        string
	Credits        AccountService
	Cards          CardService
	Logger         domain.Logger
	Tracer         domain.DistributedTracer
	Metrics        domain.MetricsCollector
	MetricsHandler http.Handler
	AllowedOrigins []string
}

// NewRouter monta as rotas de /credit, /creditcard, catálogo, health e métricas
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(correlationMiddleware)
	r.Use(observeMiddleware(deps.Logger, deps.Tracer, deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", correlationHeader, idempotencyHeader},
		ExposedHeaders:   []string{correlationHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	validate := newValidator()

	credits := &accountHandler{svc: deps.Credits, key: "credit", validate: validate, logger: deps.Logger}
	r.Route("/credit", credits.routes)

	cards := &cardHandler{
		accountHandler: accountHandler{svc: deps.Cards, key: "creditcard", validate: validate, logger: deps.Logger},
		cards:          deps.Cards,
	}
	r.Route("/creditcard", cards.routes)

	r.Get("/catalog/products", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, domain.Catalog())
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   deps.Version,
			"service":   deps.ServiceName,
		})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:         "endpoint_not_found",
			Message:       "Endpoint not found",
			CorrelationID: domain.CorrelationID(r.Context()),
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}

// correlationMiddleware reaproveita X-Correlation-ID ou gera um novo
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(correlationHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		w.Header().Set(correlationHeader, correlationID)
		next.ServeHTTP(w, r.WithContext(domain.WithCorrelationID(r.Context(), correlationID)))
	})
}

// observeMiddleware abre o span da requisição, mede a latência por rota e registra o acesso
func observeMiddleware(logger domain.Logger, tracer domain.DistributedTracer, metrics domain.MetricsCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			ctx, span := tracer.StartSpan(r.Context(), "http.request")
			tracer.AddTag(span, "http.method", r.Method)
			tracer.AddTag(span, "http.path", r.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(startTime)

			tracer.AddTag(span, "http.route", route)
			tracer.AddTag(span, "http.status_code", status)
			tracer.FinishSpan(span, nil)

			metrics.RecordOperationLatency("http "+r.Method+" "+route, duration.Seconds())
			if status >= http.StatusInternalServerError {
				metrics.IncrementErrorCounter("http_5xx")
			}

			logger.Info(ctx, "resposta enviada", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"route":       route,
				"status_code": status,
				"duration_ms": float64(duration.Microseconds()) / 1000,
			})
		})
	}
}
