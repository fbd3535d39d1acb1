// Package messaging publica eventos de conta em RabbitMQ, NATS ou no log.
package messaging

import (
	"encoding/json"
	"fmt"
	"strings"

	"credits/internal/core/domain"
)

// RoutingKey deriva a chave de roteamento do evento, ex.: credits.payment_recorded
func RoutingKey(event *domain.AccountEvent) string {
	return "credits." + strings.ToLower(event.Event)
}

func encode(event *domain.AccountEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar evento %s: %w", event.Event, err)
	}
	return body, nil
}
