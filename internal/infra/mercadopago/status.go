package mercadopago

import (
	"strings"

	"pagamento-api/internal/domain/billing"
)

// NormalizeStatus maps a MercadoPago payment status onto billing.Status.
// Unrecognised values are kept as-is so new provider statuses still land in
// the store.
func NormalizeStatus(s string) billing.Status {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return billing.StatusPending
	case "canceled":
		return billing.StatusCancelled
	default:
		return billing.Status(s)
	}
}
