package status

import (
	"context"
	"errors"
	"log/slog"

	"github.com/giovaniif/e-commerce/pix/domain/charge"
	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

var errEmptyCharge = errors.New("gateway returned an empty charge")

type Status struct {
	pixGateway protocols.PixGateway
	logger     *slog.Logger
}

func NewStatus(pixGateway protocols.PixGateway, logger *slog.Logger) *Status {
	if logger == nil {
		logger = slog.Default()
	}
	return &Status{
		pixGateway: pixGateway,
		logger:     logger,
	}
}

func (s *Status) Status(ctx context.Context, txid string) (charge.StatusResult, error) {
	if err := charge.ValidateTxid(txid); err != nil {
		return charge.StatusResult{}, err
	}

	detail, err := s.pixGateway.GetChargeDetail(ctx, txid)
	if err == nil && detail == nil {
		err = errEmptyCharge
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch pix charge", slog.String("txid", txid), slog.Any("err", err))
		return charge.StatusResult{}, charge.NewGatewayError("charge_detail", err)
	}

	resultTxid := detail.Txid
	if resultTxid == "" {
		resultTxid = txid
	}
	return charge.StatusResult{
		Txid:       resultTxid,
		Status:     detail.Status,
		Valor:      detail.OriginalValue,
		CopiaECola: detail.CopiaECola,
	}, nil
}
