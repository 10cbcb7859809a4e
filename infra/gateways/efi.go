package gateways

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	infra "github.com/giovaniif/e-commerce/pix/infra"
	"github.com/giovaniif/e-commerce/pix/infra/config"
	"github.com/giovaniif/e-commerce/pix/infra/metrics"
	"github.com/giovaniif/e-commerce/pix/infra/tracing"
	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

const (
	tokenExpiryMargin = 60 * time.Second
	maxResponseBytes  = 4 << 20
)

// PixGatewayEfi talks to the Efí Pix API. It is safe for concurrent use; the
// only state shared between requests is the token cache.
type PixGatewayEfi struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	timeout      time.Duration
	tokens       protocols.TokenStore
	tokenMutex   sync.Mutex
	now          func() time.Time
}

func NewPixGatewayEfi(httpClient *http.Client, cfg config.Gateway, tokens protocols.TokenStore) *PixGatewayEfi {
	if tokens == nil {
		tokens = NewTokenStoreMemory()
	}
	return &PixGatewayEfi{
		httpClient:   httpClient,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		timeout:      cfg.Timeout,
		tokens:       tokens,
		now:          time.Now,
	}
}

type efiCalendar struct {
	Expiration int `json:"expiracao"`
}

type efiValue struct {
	Original string `json:"original"`
}

type efiChargeRequest struct {
	Calendar     efiCalendar `json:"calendario"`
	Value        efiValue    `json:"valor"`
	Key          string      `json:"chave"`
	PayerRequest string      `json:"solicitacaoPagador,omitempty"`
}

type efiLocation struct {
	Id json.Number `json:"id"`
}

type efiChargeResponse struct {
	Txid       string      `json:"txid"`
	Loc        efiLocation `json:"loc"`
	Status     string      `json:"status"`
	Value      *efiValue   `json:"valor"`
	CopiaECola string      `json:"pixCopiaECola"`
}

type efiQRCodeResponse struct {
	QRCode      string `json:"qrcode"`
	ImageQRCode string `json:"imagemQrcode"`
}

type efiTokenRequest struct {
	GrantType string `json:"grant_type"`
}

type efiTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type efiViolation struct {
	Reason   string `json:"razao"`
	Property string `json:"propriedade"`
}

// efiErrorResponse covers the Efí ({nome, mensagem}), Pix problem-details
// ({title, detail, violacoes}) and OAuth ({error, error_description}) shapes.
type efiErrorResponse struct {
	Name             string         `json:"nome"`
	Message          string         `json:"mensagem"`
	Title            string         `json:"title"`
	Detail           string         `json:"detail"`
	Violations       []efiViolation `json:"violacoes"`
	Error            string         `json:"error"`
	ErrorDescription string         `json:"error_description"`
}

func (r efiChargeResponse) toCharge() *protocols.Charge {
	charge := &protocols.Charge{
		Txid:       r.Txid,
		LocId:      r.Loc.Id.String(),
		Status:     r.Status,
		CopiaECola: r.CopiaECola,
	}
	if r.Value != nil {
		charge.OriginalValue = r.Value.Original
	}
	return charge
}

func (g *PixGatewayEfi) CreateImmediateCharge(ctx context.Context, txid string, body protocols.ChargeBody) (*protocols.Charge, error) {
	method, path := http.MethodPost, "/v2/cob"
	if txid != "" {
		method, path = http.MethodPut, "/v2/cob/"+url.PathEscape(txid)
	}
	payload := efiChargeRequest{
		Calendar:     efiCalendar{Expiration: body.ExpirationSeconds},
		Value:        efiValue{Original: body.OriginalValue},
		Key:          body.Key,
		PayerRequest: body.PayerRequest,
	}
	var resp efiChargeResponse
	if err := g.call(ctx, "create_charge", method, path, payload, &resp); err != nil {
		return nil, err
	}
	return resp.toCharge(), nil
}

func (g *PixGatewayEfi) GenerateQRCode(ctx context.Context, locId string) (*protocols.QRCode, error) {
	var resp efiQRCodeResponse
	path := "/v2/loc/" + url.PathEscape(locId) + "/qrcode"
	if err := g.call(ctx, "generate_qrcode", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &protocols.QRCode{QRCode: resp.QRCode, ImageQRCode: resp.ImageQRCode}, nil
}

func (g *PixGatewayEfi) GetChargeDetail(ctx context.Context, txid string) (*protocols.Charge, error) {
	var resp efiChargeResponse
	if err := g.call(ctx, "charge_detail", http.MethodGet, "/v2/cob/"+url.PathEscape(txid), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toCharge(), nil
}

func (g *PixGatewayEfi) call(ctx context.Context, operation, method, path string, payload any, out any) (err error) {
	ctx, span := tracing.StartGatewaySpan(ctx, operation)
	start := time.Now()
	defer func() {
		metrics.ObserveGateway(operation, start, err)
		tracing.EndSpan(span, err)
	}()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	token, err := g.accessToken(ctx)
	if err != nil {
		return err
	}
	err = g.do(ctx, method, path, payload, "Bearer "+token, out)
	if !isUnauthorized(err) {
		return err
	}

	// The gateway revoked a token we still considered valid: drop it and
	// retry once with a fresh one.
	g.dropToken(ctx, token)
	token, err = g.accessToken(ctx)
	if err != nil {
		return err
	}
	return g.do(ctx, method, path, payload, "Bearer "+token, out)
}

func (g *PixGatewayEfi) accessToken(ctx context.Context) (string, error) {
	if token, err := g.tokens.Get(ctx, g.clientID); err == nil && token.Valid(g.now()) {
		return token.Value, nil
	}

	g.tokenMutex.Lock()
	defer g.tokenMutex.Unlock()
	if token, err := g.tokens.Get(ctx, g.clientID); err == nil && token.Valid(g.now()) {
		return token.Value, nil
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(g.clientID + ":" + g.clientSecret))
	var resp efiTokenResponse
	if err := g.do(ctx, http.MethodPost, "/oauth/token", efiTokenRequest{GrantType: "client_credentials"}, "Basic "+credentials, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("gateway returned an empty access token")
	}

	lifetime := time.Duration(resp.ExpiresIn) * time.Second
	if lifetime > tokenExpiryMargin {
		lifetime -= tokenExpiryMargin
	}
	token := protocols.AccessToken{Value: resp.AccessToken, ExpiresAt: g.now().Add(lifetime)}
	// A failed save only costs a token refresh on the next call.
	_ = g.tokens.Save(ctx, g.clientID, token)
	return token.Value, nil
}

// dropToken removes rejected from the store unless another request already
// replaced it.
func (g *PixGatewayEfi) dropToken(ctx context.Context, rejected string) {
	g.tokenMutex.Lock()
	defer g.tokenMutex.Unlock()
	if token, err := g.tokens.Get(ctx, g.clientID); err == nil && token != nil && token.Value != rejected {
		return
	}
	_ = g.tokens.Delete(ctx, g.clientID)
}

func (g *PixGatewayEfi) do(ctx context.Context, method, path string, payload any, authorization string, out any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payloadBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.Inject(ctx, req.Header)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return infra.NewTimeoutError(fmt.Sprintf("calling gateway %s %s", method, path))
		}
		return infra.NewNetworkError(fmt.Sprintf("calling gateway %s %s: %v", method, path, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return infra.NewNetworkError(fmt.Sprintf("reading gateway response: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding gateway response: %w", err)
	}
	return nil
}

func decodeError(statusCode int, body []byte) error {
	var resp efiErrorResponse
	_ = json.Unmarshal(body, &resp)

	name := firstNonEmpty(resp.Name, resp.Error)
	message := firstNonEmpty(resp.Message, resp.Detail, resp.Title, resp.ErrorDescription, resp.Error)
	violations := make([]infra.Violation, 0, len(resp.Violations))
	for _, v := range resp.Violations {
		violations = append(violations, infra.Violation{Reason: v.Reason, Property: v.Property})
	}
	return infra.NewUpstreamError(statusCode, name, message, violations)
}

func isUnauthorized(err error) bool {
	var upstream *infra.UpstreamError
	return errors.As(err, &upstream) && upstream.StatusCode == http.StatusUnauthorized
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
