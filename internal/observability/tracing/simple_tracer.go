package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"credits/internal/core/domain"
)

type spanKey struct{}

// SimpleTracer implementa domain.DistributedTracer registrando os spans no log
type SimpleTracer struct {
	serviceName string
	logger      domain.Logger
}

// Span representa um span de tracing simplificado
type Span struct {
	mu            sync.Mutex
	TraceID       string
	SpanID        string
	ParentID      string
	OperationName string
	StartTime     time.Time
	EndTime       time.Time
	Tags          map[string]interface{}
	Status        string
	Error         string
}

func NewSimpleTracer(serviceName string, logger domain.Logger) *SimpleTracer {
	return &SimpleTracer{
		serviceName: serviceName,
		logger:      logger,
	}
}

// StartSpan inicia um span filho do span corrente, herdando o trace ID
func (t *SimpleTracer) StartSpan(ctx context.Context, operationName string) (context.Context, interface{}) {
	traceID := domain.TraceID(ctx)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	span := &Span{
		TraceID:       traceID,
		SpanID:        uuid.New().String(),
		OperationName: operationName,
		StartTime:     time.Now(),
		Tags: map[string]interface{}{
			"service.name": t.serviceName,
		},
		Status: "started",
	}
	if parent, ok := ctx.Value(spanKey{}).(*Span); ok {
		span.ParentID = parent.SpanID
	}

	spanCtx := context.WithValue(ctx, spanKey{}, span)
	spanCtx = domain.WithTraceID(spanCtx, traceID)

	return spanCtx, span
}

// FinishSpan finaliza o span e o registra em nível debug
func (t *SimpleTracer) FinishSpan(span interface{}, err error) {
	s, ok := span.(*Span)
	if !ok {
		return
	}

	s.mu.Lock()
	s.EndTime = time.Now()
	if err != nil {
		s.Status = "error"
		s.Error = err.Error()
	} else {
		s.Status = "completed"
	}
	fields := map[string]interface{}{
		"trace_id":    s.TraceID,
		"span_id":     s.SpanID,
		"operation":   s.OperationName,
		"status":      s.Status,
		"duration_ms": s.EndTime.Sub(s.StartTime).Milliseconds(),
	}
	if s.ParentID != "" {
		fields["parent_id"] = s.ParentID
	}
	if s.Error != "" {
		fields["span_error"] = s.Error
	}
	for k, v := range s.Tags {
		fields["tag."+k] = v
	}
	s.mu.Unlock()

	t.logger.Debug(context.Background(), "span finalizado", fields)
}

// AddTag adiciona uma tag ao span
func (t *SimpleTracer) AddTag(span interface{}, key string, value interface{}) {
	if s, ok := span.(*Span); ok {
		s.mu.Lock()
		s.Tags[key] = value
		s.mu.Unlock()
	}
}

// SpanFromContext devolve o span corrente, se houver
func SpanFromContext(ctx context.Context) (*Span, bool) {
	s, ok := ctx.Value(spanKey{}).(*Span)
	return s, ok
}
