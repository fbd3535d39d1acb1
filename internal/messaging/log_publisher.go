package messaging

import (
	"context"

	"credits/internal/core/domain"
)

// LogPublisher apenas registra o evento no log estruturado. Usado quando nenhum
// broker está configurado.
type LogPublisher struct {
	logger domain.Logger
}

func NewLogPublisher(logger domain.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event *domain.AccountEvent) error {
	fields := map[string]interface{}{
		"evento":       event.Event,
		"routing_key":  RoutingKey(event),
		"account_id":   event.AccountID,
		"customer_id":  event.CustomerID,
		"product_type": event.ProductType,
		"amount":       event.Amount.String(),
		"balance":      event.Balance.String(),
	}
	if event.Transaction != nil {
		fields["transaction_kind"] = event.Transaction.Kind
	}
	p.logger.Info(ctx, "evento de conta", fields)
	return nil
}

func (p *LogPublisher) Close() {}
