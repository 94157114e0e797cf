package cryptopay

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type createInvoiceRequest struct {
	Asset         string `json:"asset"`
	Amount        string `json:"amount"`
	Description   string `json:"description,omitempty"`
	HiddenMessage string `json:"hidden_message,omitempty"`
	Payload       string `json:"payload,omitempty"`
	ExpiresIn     int64  `json:"expires_in,omitempty"`
}

type apiError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

type apiResponse[T any] struct {
	OK     bool      `json:"ok"`
	Result *T        `json:"result"`
	Error  *apiError `json:"error"`
}

// invoiceDTO is the invoice object shared by API results and webhook
// updates.
type invoiceDTO struct {
	InvoiceID         flexString `json:"invoice_id"`
	Status            string     `json:"status"`
	Description       string     `json:"description"`
	HiddenMessage     string     `json:"hidden_message"`
	Payload           string     `json:"payload"`
	PayURL            string     `json:"pay_url"`
	BotInvoiceURL     string     `json:"bot_invoice_url"`
	MiniAppInvoiceURL string     `json:"mini_app_invoice_url"`
}

func (d invoiceDTO) payURL() string {
	switch {
	case d.PayURL != "":
		return d.PayURL
	case d.BotInvoiceURL != "":
		return d.BotInvoiceURL
	default:
		return d.MiniAppInvoiceURL
	}
}

// flexString accepts a JSON string or number. Crypto Pay sends numeric
// invoice ids; hand-written callers often send strings.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
