package create

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/giovaniif/e-commerce/pix/domain/charge"
	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

const (
	// Charges expire one hour after creation.
	ExpirationSeconds  = 3600
	DefaultDescription = "Contribuição para caixinha"
)

var (
	errEmptyCharge = errors.New("gateway returned an empty charge")
	errMissingLoc  = errors.New("gateway response is missing loc.id")
	errEmptyQRCode = errors.New("gateway returned an empty qrcode")
)

func NewCreate(pixGateway protocols.PixGateway, publisher protocols.ChargeEventPublisher, pixKey string, defaultDescription string, logger *slog.Logger) *Create {
	if defaultDescription == "" {
		defaultDescription = DefaultDescription
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Create{
		pixGateway:         pixGateway,
		publisher:          publisher,
		pixKey:             pixKey,
		defaultDescription: defaultDescription,
		logger:             logger,
		now:                time.Now,
	}
}

func (c *Create) Create(ctx context.Context, input charge.CreateRequest) (charge.CreationResult, error) {
	valid, err := input.Validate()
	if err != nil {
		return charge.CreationResult{}, err
	}

	description := valid.Description
	if description == "" {
		description = c.defaultDescription
	}
	body := protocols.ChargeBody{
		ExpirationSeconds: ExpirationSeconds,
		OriginalValue:     valid.Amount,
		Key:               c.pixKey,
		PayerRequest:      description,
	}

	created, err := c.pixGateway.CreateImmediateCharge(ctx, valid.Txid, body)
	if err == nil && created == nil {
		err = errEmptyCharge
	}
	if err == nil && created.LocId == "" {
		err = errMissingLoc
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to create pix charge", slog.String("txid", valid.Txid), slog.Any("err", err))
		return charge.CreationResult{}, charge.NewGatewayError("create_charge", err)
	}

	txid := created.Txid
	if txid == "" {
		txid = valid.Txid
	}

	qrcode, err := c.pixGateway.GenerateQRCode(ctx, created.LocId)
	if err == nil && qrcode == nil {
		err = errEmptyQRCode
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to generate pix qrcode",
			slog.String("txid", txid), slog.String("loc_id", created.LocId), slog.Any("err", err))
		return charge.CreationResult{}, charge.NewGatewayError("generate_qrcode", err)
	}

	result := charge.CreationResult{
		Txid:        txid,
		LocId:       created.LocId,
		QRCode:      qrcode.QRCode,
		ImageQRCode: qrcode.ImageQRCode,
	}
	c.publish(ctx, result, valid.Amount)
	c.logger.InfoContext(ctx, "pix charge created", slog.String("txid", txid), slog.String("loc_id", created.LocId))
	return result, nil
}

// publish never fails the request: the charge already exists at the gateway.
func (c *Create) publish(ctx context.Context, result charge.CreationResult, amount string) {
	if c.publisher == nil {
		return
	}
	err := c.publisher.PublishChargeCreated(ctx, protocols.ChargeCreatedEvent{
		Txid:      result.Txid,
		LocId:     result.LocId,
		Amount:    amount,
		CreatedAt: c.now().UTC(),
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to publish charge created event", slog.String("txid", result.Txid), slog.Any("err", err))
	}
}

type Create struct {
	pixGateway         protocols.PixGateway
	publisher          protocols.ChargeEventPublisher
	pixKey             string
	defaultDescription string
	logger             *slog.Logger
	now                func() time.Time
}
