// Package config carrega a configuração do serviço a partir do ambiente ou de um .env.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	RuntimeHTTP   = "http"
	RuntimeLambda = "lambda"

	EventBusLog      = "log"
	EventBusRabbitMQ = "rabbitmq"
	EventBusNATS     = "nats"
)

type Config struct {
	AppRuntime string `mapstructure:"APP_RUNTIME" validate:"required,oneof=http lambda"`
	HTTPPort   int    `mapstructure:"HTTP_PORT" validate:"required,min=1,max=65535"`
	LogLevel   string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	AWSRegion            string `mapstructure:"AWS_REGION" validate:"required"`
	DynamoDBEndpoint     string `mapstructure:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`
	CreditsTableName     string `mapstructure:"CREDITS_TABLE_NAME" validate:"required"`
	CreditCardsTableName string `mapstructure:"CREDIT_CARDS_TABLE_NAME" validate:"required"`
	CustomerIndexName    string `mapstructure:"CUSTOMER_INDEX_NAME" validate:"required"`

	CustomerServiceURL    string        `mapstructure:"CUSTOMER_SERVICE_URL" validate:"required,url"`
	TransactionServiceURL string        `mapstructure:"TRANSACTION_SERVICE_URL" validate:"required,url"`
	HTTPClientTimeout     time.Duration `mapstructure:"HTTP_CLIENT_TIMEOUT" validate:"gt=0"`

	EventBus         string `mapstructure:"EVENT_BUS" validate:"oneof=log rabbitmq nats"`
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL" validate:"required_if=EventBus rabbitmq"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE" validate:"required_if=EventBus rabbitmq"`
	NATSURL          string `mapstructure:"NATS_URL" validate:"required_if=EventBus nats"`

	// Sem REDIS_URL a proteção de idempotência fica desligada
	RedisURL         string        `mapstructure:"REDIS_URL"`
	IdempotencyTTL   time.Duration `mapstructure:"IDEMPOTENCY_TTL" validate:"gt=0"`
	MaxWriteAttempts int           `mapstructure:"MAX_WRITE_ATTEMPTS" validate:"min=1,max=20"`

	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS" validate:"min=1"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

var defaults = map[string]interface{}{
	"APP_RUNTIME":             RuntimeHTTP,
	"HTTP_PORT":               8080,
	"LOG_LEVEL":               "info",
	"AWS_REGION":              "us-east-1",
	"DYNAMODB_ENDPOINT":       "",
	"CREDITS_TABLE_NAME":      "credit",
	"CREDIT_CARDS_TABLE_NAME": "creditcard",
	"CUSTOMER_INDEX_NAME":     "customer_id-index",
	"CUSTOMER_SERVICE_URL":    "http://localhost:8083",
	"TRANSACTION_SERVICE_URL": "http://localhost:8086",
	"HTTP_CLIENT_TIMEOUT":     "5s",
	"EVENT_BUS":               EventBusLog,
	"RABBITMQ_URL":            "",
	"RABBITMQ_EXCHANGE":       "credits.events",
	"NATS_URL":                "",
	"REDIS_URL":               "",
	"IDEMPOTENCY_TTL":         "24h",
	"MAX_WRITE_ATTEMPTS":      3,
	"CORS_ALLOWED_ORIGINS":    "*",
	"SHUTDOWN_TIMEOUT":        "10s",
}

// Load lê .env (se existir) e as variáveis de ambiente, aplica os padrões e valida
func Load(paths ...string) (*Config, error) {
	// .env ausente não é erro
	_ = godotenv.Load()

	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("erro ao decodificar configuração: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuração inválida: %w", err)
	}

	return &cfg, nil
}

// IdempotencyEnabled indica se há Redis configurado
func (c *Config) IdempotencyEnabled() bool {
	return c.RedisURL != ""
}
