package create

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/giovaniif/e-commerce/pix/domain/charge"
	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

type createCall struct {
	txid string
	body protocols.ChargeBody
}

type mockPixGateway struct {
	calls        []string
	createCalls  []createCall
	createResult *protocols.Charge
	createErr    error
	qrcodeLocIds []string
	qrcodeResult *protocols.QRCode
	qrcodeErr    error
	detailTxids  []string
}

func (m *mockPixGateway) CreateImmediateCharge(ctx context.Context, txid string, body protocols.ChargeBody) (*protocols.Charge, error) {
	m.calls = append(m.calls, "create")
	m.createCalls = append(m.createCalls, createCall{txid: txid, body: body})
	return m.createResult, m.createErr
}

func (m *mockPixGateway) GenerateQRCode(ctx context.Context, locId string) (*protocols.QRCode, error) {
	m.calls = append(m.calls, "qrcode")
	m.qrcodeLocIds = append(m.qrcodeLocIds, locId)
	return m.qrcodeResult, m.qrcodeErr
}

func (m *mockPixGateway) GetChargeDetail(ctx context.Context, txid string) (*protocols.Charge, error) {
	m.calls = append(m.calls, "detail")
	m.detailTxids = append(m.detailTxids, txid)
	return nil, nil
}

type mockPublisher struct {
	events     []protocols.ChargeCreatedEvent
	publishErr error
}

func (m *mockPublisher) PublishChargeCreated(ctx context.Context, event protocols.ChargeCreatedEvent) error {
	m.events = append(m.events, event)
	return m.publishErr
}

func newGateway() *mockPixGateway {
	return &mockPixGateway{
		createResult: &protocols.Charge{Txid: "gateway-txid", LocId: "42"},
		qrcodeResult: &protocols.QRCode{QRCode: "00020101...", ImageQRCode: "data:image/png;base64,AAAA"},
	}
}

func newUseCase(gateway *mockPixGateway, publisher protocols.ChargeEventPublisher) *Create {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCreate(gateway, publisher, "pix-key@example.com", "", logger)
}

func strPtr(s string) *string {
	return &s
}

func TestCreateSuccess(t *testing.T) {
	gateway := newGateway()
	uc := newUseCase(gateway, nil)

	result, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("10")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(gateway.createCalls) != 1 {
		t.Fatalf("expected CreateImmediateCharge to be called once, got %d", len(gateway.createCalls))
	}
	body := gateway.createCalls[0].body
	if body.OriginalValue != "10.00" {
		t.Fatalf("expected original value 10.00, got %s", body.OriginalValue)
	}
	if body.ExpirationSeconds != 3600 {
		t.Fatalf("expected expiration 3600, got %d", body.ExpirationSeconds)
	}
	if body.Key != "pix-key@example.com" {
		t.Fatalf("expected configured pix key, got %s", body.Key)
	}
	if body.PayerRequest != DefaultDescription {
		t.Fatalf("expected default description, got %s", body.PayerRequest)
	}
	if result.Txid != "gateway-txid" || result.LocId != "42" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.QRCode != "00020101..." || result.ImageQRCode != "data:image/png;base64,AAAA" {
		t.Fatalf("unexpected qrcode fields: %+v", result)
	}
}

func TestCreateWithoutTxidRequestsGatewayAssignedId(t *testing.T) {
	gateway := newGateway()
	uc := newUseCase(gateway, nil)

	_, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("9.5")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gateway.createCalls[0].txid != "" {
		t.Fatalf("expected empty txid, got %s", gateway.createCalls[0].txid)
	}
	if gateway.createCalls[0].body.OriginalValue != "9.50" {
		t.Fatalf("expected original value 9.50, got %s", gateway.createCalls[0].body.OriginalValue)
	}
}

func TestCreateThreadsClientTxid(t *testing.T) {
	gateway := newGateway()
	gateway.createResult = &protocols.Charge{Txid: "clienttxid0000000000000001", LocId: "7"}
	uc := newUseCase(gateway, nil)

	result, err := uc.Create(context.Background(), charge.CreateRequest{
		Txid:      strPtr("clienttxid0000000000000001"),
		Valor:     charge.NewAmount("1"),
		Descricao: strPtr("Mensalidade"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gateway.createCalls[0].txid != "clienttxid0000000000000001" {
		t.Fatalf("expected txid to be threaded to the gateway, got %s", gateway.createCalls[0].txid)
	}
	if gateway.createCalls[0].body.PayerRequest != "Mensalidade" {
		t.Fatalf("expected description Mensalidade, got %s", gateway.createCalls[0].body.PayerRequest)
	}
	if result.Txid != "clienttxid0000000000000001" {
		t.Fatalf("expected result txid to match, got %s", result.Txid)
	}
}

func TestCreateGeneratesQRCodeWithReturnedLocId(t *testing.T) {
	gateway := newGateway()
	uc := newUseCase(gateway, nil)

	_, _ = uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("5")})
	gateway.createResult = &protocols.Charge{Txid: "second", LocId: "43"}
	_, _ = uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("5")})

	if len(gateway.qrcodeLocIds) != 2 || gateway.qrcodeLocIds[0] != "42" || gateway.qrcodeLocIds[1] != "43" {
		t.Fatalf("expected qrcode calls with loc ids [42 43], got %v", gateway.qrcodeLocIds)
	}
	expectedOrder := []string{"create", "qrcode", "create", "qrcode"}
	for i, call := range expectedOrder {
		if gateway.calls[i] != call {
			t.Fatalf("expected call order %v, got %v", expectedOrder, gateway.calls)
		}
	}
}

func TestCreateNeverReusesLocIdFromPriorRequest(t *testing.T) {
	gateway := newGateway()
	uc := newUseCase(gateway, nil)

	gateway.createResult = &protocols.Charge{Txid: "first", LocId: "A"}
	first, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("1")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	gateway.createResult = &protocols.Charge{Txid: "second", LocId: "B"}
	second, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("2")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(gateway.qrcodeLocIds) != 2 || gateway.qrcodeLocIds[0] != "A" || gateway.qrcodeLocIds[1] != "B" {
		t.Fatalf("expected qrcode calls with loc ids [A B], got %v", gateway.qrcodeLocIds)
	}
	if first.LocId != "A" || first.Txid != "first" {
		t.Fatalf("expected first result for loc A, got %+v", first)
	}
	if second.LocId != "B" || second.Txid != "second" {
		t.Fatalf("expected second result for loc B, got %+v", second)
	}
}

func TestCreatePassesClientTxidUnchanged(t *testing.T) {
	gateway := newGateway()
	gateway.createResult = &protocols.Charge{LocId: "7"}
	uc := newUseCase(gateway, nil)

	result, err := uc.Create(context.Background(), charge.CreateRequest{
		Txid:  strPtr(" padded-txid "),
		Valor: charge.NewAmount("1"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gateway.createCalls[0].txid != " padded-txid " {
		t.Fatalf("expected txid sent unchanged, got %q", gateway.createCalls[0].txid)
	}
	if result.Txid != " padded-txid " {
		t.Fatalf("expected result txid unchanged, got %q", result.Txid)
	}
}

func TestCreateWithCreateErrorSkipsQRCode(t *testing.T) {
	gateway := newGateway()
	gateway.createErr = errors.New("chave não pertence ao recebedor")
	uc := newUseCase(gateway, nil)

	_, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("10")})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var gatewayErr *charge.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected GatewayError, got %T", err)
	}
	if gatewayErr.Message != "chave não pertence ao recebedor" {
		t.Fatalf("expected upstream message, got %s", gatewayErr.Message)
	}
	if len(gateway.qrcodeLocIds) != 0 {
		t.Fatalf("expected GenerateQRCode not to be called, got %d calls", len(gateway.qrcodeLocIds))
	}
}

func TestCreateWithMissingLocIdSkipsQRCode(t *testing.T) {
	gateway := newGateway()
	gateway.createResult = &protocols.Charge{Txid: "no-loc"}
	uc := newUseCase(gateway, nil)

	_, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("10")})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if len(gateway.qrcodeLocIds) != 0 {
		t.Fatalf("expected GenerateQRCode not to be called, got %d calls", len(gateway.qrcodeLocIds))
	}
}

func TestCreateWithQRCodeErrorReturnsNoPartialResult(t *testing.T) {
	gateway := newGateway()
	gateway.qrcodeErr = errors.New("location not found")
	publisher := &mockPublisher{}
	uc := newUseCase(gateway, publisher)

	result, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("10")})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if result != (charge.CreationResult{}) {
		t.Fatalf("expected empty result, got %+v", result)
	}
	var gatewayErr *charge.GatewayError
	if !errors.As(err, &gatewayErr) || gatewayErr.Op != "generate_qrcode" {
		t.Fatalf("expected generate_qrcode GatewayError, got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no event to be published, got %d", len(publisher.events))
	}
}

func TestCreateWithValidationErrorMakesNoGatewayCall(t *testing.T) {
	gateway := newGateway()
	uc := newUseCase(gateway, nil)

	testCases := []struct {
		name  string
		input charge.CreateRequest
		kind  error
	}{
		{"missing valor", charge.CreateRequest{}, charge.ErrMissingField},
		{"invalid valor", charge.CreateRequest{Valor: charge.NewAmount("dez")}, charge.ErrInvalidAmount},
		{"negative valor", charge.CreateRequest{Valor: charge.NewAmount("-3")}, charge.ErrInvalidAmount},
		{"empty txid", charge.CreateRequest{Txid: strPtr(""), Valor: charge.NewAmount("3")}, charge.ErrMissingField},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), tc.input)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if len(gateway.calls) != 0 {
				t.Fatalf("expected no gateway calls, got %v", gateway.calls)
			}
		})
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	gateway := newGateway()
	publisher := &mockPublisher{}
	uc := newUseCase(gateway, publisher)

	_, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("12.3")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Txid != "gateway-txid" || event.LocId != "42" || event.Amount != "12.30" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestCreateIgnoresPublishError(t *testing.T) {
	gateway := newGateway()
	publisher := &mockPublisher{publishErr: errors.New("broker down")}
	uc := newUseCase(gateway, publisher)

	_, err := uc.Create(context.Background(), charge.CreateRequest{Valor: charge.NewAmount("1")})
	if err != nil {
		t.Fatalf("expected publish errors to be ignored, got %v", err)
	}
}
