package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/giovaniif/e-commerce/pix/infra/config"
	"github.com/giovaniif/e-commerce/pix/infra/gateways"
	protocols "github.com/giovaniif/e-commerce/pix/protocols"
	"github.com/giovaniif/e-commerce/pix/use_cases/create"
	"github.com/giovaniif/e-commerce/pix/use_cases/status"
)

type Dependencies struct {
	Create  *create.Create
	Status  *status.Status
	closers []func() error
}

func NewDependencies(pixGateway protocols.PixGateway, publisher protocols.ChargeEventPublisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Create: create.NewCreate(pixGateway, publisher, cfg.Gateway.PixKey, cfg.DefaultDescription, logger),
		Status: status.NewStatus(pixGateway, logger),
	}
}

// BuildDependencies loads the client certificate and wires the Efí gateway,
// the token store and the event publisher.
func BuildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	if err := cfg.Gateway.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway configuration: %w", err)
	}
	cert, err := gateways.LoadCertificate(cfg.Gateway.CertificatePath, cfg.Gateway.CertificatePassword)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	var tokens protocols.TokenStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed, caching gateway token in memory", slog.String("addr", cfg.RedisAddr), slog.Any("err", err))
			_ = rdb.Close()
			tokens = gateways.NewTokenStoreMemory()
		} else {
			logger.Info("gateway token cache: redis", slog.String("addr", cfg.RedisAddr))
			tokens = gateways.NewTokenStoreRedis(rdb)
			closers = append(closers, rdb.Close)
		}
	} else {
		logger.Info("gateway token cache: in-memory (set REDIS_ADDR for redis)")
		tokens = gateways.NewTokenStoreMemory()
	}

	var publisher protocols.ChargeEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := gateways.NewChargeEventPublisherKafka(cfg.KafkaBrokers, cfg.KafkaChargeTopic)
		closers = append(closers, kafkaPublisher.Close)
		publisher = kafkaPublisher
		logger.Info("charge events: kafka", slog.String("topic", cfg.KafkaChargeTopic))
	} else {
		publisher = gateways.NewChargeEventPublisherLog(logger)
	}

	httpClient := gateways.NewMTLSClient(cert, cfg.Gateway.Timeout)
	pixGateway := gateways.NewPixGatewayEfi(httpClient, cfg.Gateway, tokens)

	deps := NewDependencies(pixGateway, publisher, cfg, logger)
	deps.closers = closers
	return deps, nil
}

func (d *Dependencies) Close() {
	for _, closeFn := range d.closers {
		_ = closeFn()
	}
}
