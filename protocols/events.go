package protocols

import (
	"context"
	"time"
)

type ChargeCreatedEvent struct {
	Txid      string
	LocId     string
	Amount    string
	CreatedAt time.Time
}

type ChargeEventPublisher interface {
	PublishChargeCreated(ctx context.Context, event ChargeCreatedEvent) error
}
