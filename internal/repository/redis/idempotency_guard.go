package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "credits:idempotency"

// Commands é o subconjunto do cliente Redis usado pela guarda
type Commands interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyGuard reserva chaves de idempotência com SET NX e expiração
type IdempotencyGuard struct {
	client Commands
	prefix string
	ttl    time.Duration
}

func NewIdempotencyGuard(client Commands, prefix string, ttl time.Duration) *IdempotencyGuard {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = defaultPrefix
	}
	return &IdempotencyGuard{client: client, prefix: trimmed, ttl: ttl}
}

// Connect abre o cliente a partir de uma URL redis:// e valida com PING
func Connect(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("URL do Redis inválida: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("erro ao conectar no Redis: %w", err)
	}
	return rdb, nil
}

// Claim devolve false quando a chave já foi usada dentro do TTL
func (g *IdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	claimed, err := g.client.SetNX(ctx, g.key(key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao reservar chave %s: %w", key, err)
	}
	return claimed, nil
}

// Release libera a chave para que a requisição possa ser repetida
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("erro ao liberar chave %s: %w", key, err)
	}
	return nil
}

func (g *IdempotencyGuard) key(key string) string {
	return g.prefix + ":" + strings.TrimSpace(key)
}
