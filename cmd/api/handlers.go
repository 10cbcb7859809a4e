package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giovaniif/e-commerce/pix/domain/charge"
)

const (
	timestampLayout       = "2006-01-02T15:04:05.000Z07:00"
	genericGatewayMessage = "erro ao comunicar com o gateway de pagamento"
)

type createResponse struct {
	Success     bool   `json:"success"`
	Txid        string `json:"txid"`
	LocId       string `json:"loc_id"`
	QRCode      string `json:"qrcode"`
	ImageQRCode string `json:"imagemQrcode"`
}

type statusData struct {
	Txid       string `json:"txid"`
	Status     string `json:"status"`
	Valor      string `json:"valor,omitempty"`
	QRCode     string `json:"qr_code"`
	CopiaECola string `json:"copia_e_cola"`
}

type statusResponse struct {
	Success bool       `json:"success"`
	Data    statusData `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(timestampLayout),
	})
}

func (s *Server) createCharge(c *gin.Context) {
	var request charge.CreateRequest
	if err := bindJSON(c, &request); err != nil {
		writeError(c, err, false)
		return
	}

	result, err := s.deps.Create.Create(c.Request.Context(), request)
	if err != nil {
		writeError(c, err, true)
		return
	}

	c.JSON(http.StatusOK, createResponse{
		Success:     true,
		Txid:        result.Txid,
		LocId:       result.LocId,
		QRCode:      result.QRCode,
		ImageQRCode: result.ImageQRCode,
	})
}

func (s *Server) chargeStatus(c *gin.Context) {
	var request charge.StatusRequest
	if err := bindJSON(c, &request); err != nil {
		writeError(c, err, false)
		return
	}

	result, err := s.deps.Status.Status(c.Request.Context(), request.Txid)
	if err != nil {
		writeError(c, err, false)
		return
	}

	c.JSON(http.StatusOK, statusResponse{
		Success: true,
		Data: statusData{
			Txid:       result.Txid,
			Status:     result.Status,
			Valor:      result.Valor,
			QRCode:     result.CopiaECola,
			CopiaECola: result.CopiaECola,
		},
	})
}

// bindJSON treats an empty body as an empty object.
func bindJSON(c *gin.Context, target any) error {
	if err := c.ShouldBindJSON(target); err != nil && !errors.Is(err, io.EOF) {
		return charge.NewMalformedBodyError(err)
	}
	return nil
}

// writeError maps ValidationError to 400 and everything else to 500.
// withDetails adds the gateway's own diagnostic text, never Go internals.
func writeError(c *gin.Context, err error, withDetails bool) {
	var validationErr *charge.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: validationErr.Message})
		return
	}

	response := errorResponse{Error: err.Error()}
	if response.Error == "" {
		response.Error = genericGatewayMessage
	}
	var gatewayErr *charge.GatewayError
	if withDetails && errors.As(err, &gatewayErr) {
		response.Details = gatewayErr.Detail
	}
	c.JSON(http.StatusInternalServerError, response)
}

func preflight(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
