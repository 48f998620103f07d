package reconciliation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"pagamento-api/internal/domain/billing"
)

// ActionPaymentUpdated is the only notification action that can change a
// payment record.
const ActionPaymentUpdated = "payment.updated"

type Event struct {
	Action    string
	Type      string
	PaymentID string
}

type notification struct {
	Action string `json:"action"`
	Type   string `json:"type"`
	Data   struct {
		ID interface{} `json:"id"`
	} `json:"data"`
}

// ParseEvent decodes a provider notification body. Only undecodable JSON is
// an error; a missing or oddly typed data.id yields an empty PaymentID.
func ParseEvent(body []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var n notification
	if err := dec.Decode(&n); err != nil {
		return Event{}, fmt.Errorf("%w: malformed notification: %v", billing.ErrValidation, err)
	}

	// data.id arrives as a JSON number or a string depending on the topic
	id, err := cast.ToStringE(n.Data.ID)
	if err != nil {
		id = ""
	}
	return Event{
		Action:    strings.TrimSpace(n.Action),
		Type:      strings.TrimSpace(n.Type),
		PaymentID: strings.TrimSpace(id),
	}, nil
}

// Relevant reports whether the event should trigger a provider re-check.
func (ev Event) Relevant() bool {
	return ev.Action == ActionPaymentUpdated && ev.PaymentID != ""
}

// HandleWebhook applies a provider notification. The notification body is
// never trusted for status: relevant events only trigger ReconcilePayment.
// Replaying an event converges on the same stored status.
func (e *Engine) HandleWebhook(ctx context.Context, ev Event) (*Result, error) {
	if !ev.Relevant() {
		e.log.Debug().
			Str("action", ev.Action).
			Str("type", ev.Type).
			Str("payment_id", ev.PaymentID).
			Msg("webhook ignored")
		return &Result{Outcome: OutcomeIgnored, PaymentID: ev.PaymentID}, nil
	}
	return e.ReconcilePayment(ctx, ev.PaymentID)
}
