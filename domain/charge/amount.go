package charge

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const amountPlaces = 2

// Amount holds the raw "valor" field, which callers may send either as a
// JSON number or as a numeric string.
type Amount struct {
	raw string
	set bool
}

func NewAmount(raw string) Amount {
	return Amount{raw: raw, set: true}
}

func (a Amount) Present() bool {
	return a.set && strings.TrimSpace(a.raw) != ""
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = NewAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("valor must be a number or a numeric string")
	}
	*a = NewAmount(n.String())
	return nil
}

func (a Amount) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(a.raw))
	if err != nil {
		return decimal.Decimal{}, NewInvalidAmountError("valor deve ser um número decimal")
	}
	if d.IsNegative() {
		return decimal.Decimal{}, NewInvalidAmountError("valor não pode ser negativo")
	}
	return d, nil
}

// Format returns the amount with exactly two decimal places, the only shape
// the gateway accepts for valor.original.
func (a Amount) Format() (string, error) {
	d, err := a.Decimal()
	if err != nil {
		return "", err
	}
	return d.StringFixed(amountPlaces), nil
}
