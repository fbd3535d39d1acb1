package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"credits/internal/core/domain"
)

// amqpChannel é o subconjunto de *amqp091.Channel usado pelo publisher
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// RabbitMQPublisher publica eventos em um exchange topic durável
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  amqpChannel
	open     func() (amqpChannel, error)
	exchange string
	logger   domain.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("a URL do RabbitMQ deve começar com amqp:// ou amqps://")
	}
	return clean, nil
}

// NewRabbitMQPublisher conecta ao broker e declara o exchange
func NewRabbitMQPublisher(amqpURL, exchange string, logger domain.Logger) (*RabbitMQPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar no RabbitMQ: %w", err)
	}

	p, err := newRabbitMQPublisher(func() (amqpChannel, error) { return conn.Channel() }, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newRabbitMQPublisher(open func() (amqpChannel, error), exchange string, logger domain.Logger) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{open: open, exchange: exchange, logger: logger}
	if err := p.reopen(); err != nil {
		return nil, err
	}
	return p, nil
}

// reopen abre um canal novo e garante o exchange. Chamado com mu travado ou na construção.
func (p *RabbitMQPublisher) reopen() error {
	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("erro ao abrir canal: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("erro ao declarar exchange %s: %w", p.exchange, err)
	}
	if p.channel != nil {
		p.channel.Close()
	}
	p.channel = ch
	return nil
}

// Publish envia o evento; em caso de falha reabre o canal e tenta mais uma vez
func (p *RabbitMQPublisher) Publish(ctx context.Context, event *domain.AccountEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	msg := amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		Timestamp:     time.Now(),
		Type:          event.Event,
		CorrelationId: event.CorrelationID,
		Body:          body,
	}
	key := RoutingKey(event)

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, key, false, false, msg)
	if err == nil {
		return nil
	}

	p.logger.Warn(ctx, "falha ao publicar no RabbitMQ, reabrindo canal", map[string]interface{}{
		"exchange":    p.exchange,
		"routing_key": key,
		"error":       err.Error(),
	})
	if reopenErr := p.reopen(); reopenErr != nil {
		return fmt.Errorf("publicar evento %s: %w", event.Event, errors.Join(err, reopenErr))
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publicar evento %s: %w", event.Event, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
