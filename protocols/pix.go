package protocols

import "context"

type ChargeBody struct {
	ExpirationSeconds int
	OriginalValue     string
	Key               string
	PayerRequest      string
}

type Charge struct {
	Txid          string
	LocId         string
	Status        string
	OriginalValue string
	CopiaECola    string
}

type QRCode struct {
	QRCode      string
	ImageQRCode string
}

// PixGateway is the payment gateway capability. An empty txid on
// CreateImmediateCharge lets the gateway assign one.
type PixGateway interface {
	CreateImmediateCharge(ctx context.Context, txid string, body ChargeBody) (*Charge, error)
	GenerateQRCode(ctx context.Context, locId string) (*QRCode, error)
	GetChargeDetail(ctx context.Context, txid string) (*Charge, error)
}
