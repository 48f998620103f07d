package mercadopago

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type preferenceItem struct {
	Title      string      `json:"title"`
	Quantity   int         `json:"quantity"`
	CurrencyID string      `json:"currency_id"`
	UnitPrice  json.Number `json:"unit_price"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type preferenceBody struct {
	Items              []preferenceItem  `json:"items"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	BackURLs           backURLs          `json:"back_urls"`
	AutoReturn         string            `json:"auto_return,omitempty"`
	ExternalReference  string            `json:"external_reference"`
	NotificationURL    string            `json:"notification_url,omitempty"`
	Expires            bool              `json:"expires"`
	ExpirationDateFrom string            `json:"expiration_date_from,omitempty"`
	ExpirationDateTo   string            `json:"expiration_date_to,omitempty"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type paymentResponse struct {
	ID                interface{}     `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
