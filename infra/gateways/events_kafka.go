package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

const (
	chargeCreatedEventType = "pix.charge.created"

	// Events are written inside the create request; flush each one at once
	// instead of waiting for kafka-go's default 1s batch timeout.
	chargeEventBatchSize    = 1
	chargeEventBatchTimeout = 5 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type chargeEventMessage struct {
	Id        string    `json:"id"`
	Type      string    `json:"type"`
	Txid      string    `json:"txid"`
	LocId     string    `json:"locId"`
	Amount    string    `json:"valor"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChargeEventPublisherKafka publishes charge lifecycle events keyed by txid.
type ChargeEventPublisherKafka struct {
	writer messageWriter
}

func NewChargeEventPublisherKafka(brokers []string, topic string) *ChargeEventPublisherKafka {
	return &ChargeEventPublisherKafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchSize:              chargeEventBatchSize,
			BatchTimeout:           chargeEventBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *ChargeEventPublisherKafka) PublishChargeCreated(ctx context.Context, event protocols.ChargeCreatedEvent) error {
	payload, err := json.Marshal(chargeEventMessage{
		Id:        uuid.NewString(),
		Type:      chargeCreatedEventType,
		Txid:      event.Txid,
		LocId:     event.LocId,
		Amount:    event.Amount,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Txid),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(chargeCreatedEventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *ChargeEventPublisherKafka) Close() error {
	return p.writer.Close()
}
