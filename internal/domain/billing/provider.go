package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PreferenceRequest carries everything the provider needs to open a
// checkout for a single item.
type PreferenceRequest struct {
	Title             string
	Amount            decimal.Decimal
	Currency          string
	MetadataUserID    string
	ExternalReference string
	NotificationURL   string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	AutoReturn        string
	Expiry            time.Duration
}

type Preference struct {
	ID          string
	RedirectURL string
}

// ProviderPayment is the provider's authoritative view of a payment.
type ProviderPayment struct {
	ID                string
	Status            Status
	StatusDetail      string
	ExternalReference string
	Amount            decimal.Decimal
}
