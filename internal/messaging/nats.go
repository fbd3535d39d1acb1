package messaging

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"credits/internal/core/domain"
)

type natsConn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publica cada evento no subject igual à sua routing key
type NATSPublisher struct {
	nc    natsConn
	close func()
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("credits"))
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar no NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, close: nc.Close}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, event *domain.AccountEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(RoutingKey(event), body); err != nil {
		return fmt.Errorf("publicar evento %s no NATS: %w", event.Event, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}
