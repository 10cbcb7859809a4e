package gateways

import (
	"context"
	"log/slog"

	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

// ChargeEventPublisherLog is used when no broker is configured.
type ChargeEventPublisherLog struct {
	logger *slog.Logger
}

func NewChargeEventPublisherLog(logger *slog.Logger) *ChargeEventPublisherLog {
	return &ChargeEventPublisherLog{logger: logger}
}

func (p *ChargeEventPublisherLog) PublishChargeCreated(ctx context.Context, event protocols.ChargeCreatedEvent) error {
	p.logger.InfoContext(ctx, chargeCreatedEventType,
		slog.String("txid", event.Txid),
		slog.String("loc_id", event.LocId),
		slog.String("valor", event.Amount),
	)
	return nil
}
