package charge

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMalformedBody = errors.New("malformed body")
)

// ValidationError is returned before any gateway call is made.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func NewMissingFieldError(field, message string) *ValidationError {
	return &ValidationError{Kind: ErrMissingField, Field: field, Message: message}
}

func NewInvalidAmountError(message string) *ValidationError {
	return &ValidationError{Kind: ErrInvalidAmount, Field: "valor", Message: message}
}

func NewMalformedBodyError(err error) *ValidationError {
	return &ValidationError{Kind: ErrMalformedBody, Message: fmt.Sprintf("corpo da requisição inválido: %v", err)}
}

// GatewayError wraps any failure reported by the payment gateway: auth,
// network and business rejections all collapse into it.
type GatewayError struct {
	Op      string
	Message string
	Detail  string
	Err     error
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func NewGatewayError(op string, err error) *GatewayError {
	var existing *GatewayError
	if errors.As(err, &existing) {
		return existing
	}
	gatewayErr := &GatewayError{Op: op, Message: err.Error(), Err: err}
	var detailed interface{ Detail() string }
	if errors.As(err, &detailed) {
		gatewayErr.Detail = detailed.Detail()
	}
	return gatewayErr
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
