package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/sync/errgroup"

	"credits/internal/client/customerclient"
	"credits/internal/client/transactionclient"
	"credits/internal/config"
	"credits/internal/core/domain"
	"credits/internal/core/service"
	httphandler "credits/internal/handler/http"
	awslambda "credits/internal/handler/lambda"
	"credits/internal/messaging"
	"credits/internal/observability/logger"
	"credits/internal/observability/metrics"
	"credits/internal/observability/tracing"
	dynamorepo "credits/internal/repository/dynamodb"
	redisrepo "credits/internal/repository/redis"
)

const (
	serviceName = "credits"
	version     = "1.0.0"
)

// publisher é um EventPublisher com recursos a liberar
type publisher interface {
	domain.EventPublisher
	Close()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "erro fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Observabilidade
	structuredLogger := logger.New(serviceName, cfg.LogLevel)
	collector := metrics.NewPrometheusCollector()
	tracer := tracing.NewSimpleTracer(serviceName, structuredLogger)

	// DynamoDB
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return fmt.Errorf("erro ao carregar configuração AWS: %w", err)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
	credits := dynamorepo.NewAccountRepository(dynamoClient, cfg.CreditsTableName, cfg.CustomerIndexName)
	cards := dynamorepo.NewAccountRepository(dynamoClient, cfg.CreditCardsTableName, cfg.CustomerIndexName)

	// Serviços externos
	directory := customerclient.NewClient(cfg.CustomerServiceURL, cfg.HTTPClientTimeout)
	ledger := transactionclient.NewClient(cfg.TransactionServiceURL, cfg.HTTPClientTimeout)

	events, err := newPublisher(cfg, structuredLogger)
	if err != nil {
		return err
	}
	defer events.Close()

	opts := []service.Option{service.WithMaxWriteAttempts(cfg.MaxWriteAttempts)}
	if cfg.AppRuntime == config.RuntimeLambda {
		opts = append(opts, service.WithSynchronousEvents())
	}
	if cfg.IdempotencyEnabled() {
		redisClient, err := redisrepo.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		opts = append(opts, service.WithIdempotencyGuard(redisrepo.NewIdempotencyGuard(redisClient, "", cfg.IdempotencyTTL)))
	}

	creditService := service.NewCreditService(credits, directory, ledger, events, collector, tracer, structuredLogger, opts...)
	cardService := service.NewCreditCardService(cards, directory, ledger, events, collector, tracer, structuredLogger, opts...)
	// roda antes de events.Close
	defer drain(cfg.ShutdownTimeout, structuredLogger, creditService, cardService)

	router := httphandler.NewRouter(httphandler.Dependencies{
		ServiceName:    serviceName,
		Version:        version,
		Credits:        creditService,
		Cards:          cardService,
		Logger:         structuredLogger,
		Tracer:         tracer,
		Metrics:        collector,
		MetricsHandler: collector.Handler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	if cfg.AppRuntime == config.RuntimeLambda {
		handler := awslambda.NewLambdaHandler(router, structuredLogger, tracer)
		lambda.StartWithOptions(handler.HandleRequest, lambda.WithContext(ctx))
		return nil
	}

	return serveHTTP(ctx, cfg, router, structuredLogger)
}

type drainer interface {
	Drain(ctx context.Context) error
}

// drain espera os eventos pendentes dos serviços antes de fechar o publicador
func drain(timeout time.Duration, log domain.Logger, services ...drainer) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, svc := range services {
		if err := svc.Drain(ctx); err != nil {
			log.Error(ctx, "eventos descartados no encerramento", err, nil)
		}
	}
}

func newPublisher(cfg *config.Config, log domain.Logger) (publisher, error) {
	switch cfg.EventBus {
	case config.EventBusRabbitMQ:
		p, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar no RabbitMQ: %w", err)
		}
		return p, nil
	case config.EventBusNATS:
		p, err := messaging.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar no NATS: %w", err)
		}
		return p, nil
	default:
		return messaging.NewLogPublisher(log), nil
	}
}

func serveHTTP(ctx context.Context, cfg *config.Config, router http.Handler, log domain.Logger) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(ctx, "servidor HTTP iniciado", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("erro no servidor HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info(shutdownCtx, "encerrando servidor HTTP", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
