package charge

import "strings"

// CreateRequest is the body accepted by the charge creation endpoint.
type CreateRequest struct {
	Txid      *string `json:"txid"`
	Valor     Amount  `json:"valor"`
	Descricao *string `json:"descricao"`
}

type StatusRequest struct {
	Txid string `json:"txid"`
}

// ValidCreate is a CreateRequest that passed validation. An empty Txid asks
// the gateway to assign one.
type ValidCreate struct {
	Txid        string
	Amount      string
	Description string
}

type CreationResult struct {
	Txid        string
	LocId       string
	QRCode      string
	ImageQRCode string
}

type StatusResult struct {
	Txid       string
	Status     string
	Valor      string
	CopiaECola string
}

func (r CreateRequest) Validate() (ValidCreate, error) {
	if !r.Valor.Present() {
		return ValidCreate{}, NewMissingFieldError("valor", "valor é obrigatório")
	}
	amount, err := r.Valor.Format()
	if err != nil {
		return ValidCreate{}, err
	}

	valid := ValidCreate{Amount: amount}
	// A supplied txid goes to the gateway exactly as sent.
	if r.Txid != nil {
		if strings.TrimSpace(*r.Txid) == "" {
			return ValidCreate{}, NewMissingFieldError("txid", "txid, quando informado, não pode ser vazio")
		}
		valid.Txid = *r.Txid
	}
	if r.Descricao != nil {
		valid.Description = *r.Descricao
	}
	return valid, nil
}

func ValidateTxid(txid string) error {
	if strings.TrimSpace(txid) == "" {
		return NewMissingFieldError("txid", "txid é obrigatório")
	}
	return nil
}
