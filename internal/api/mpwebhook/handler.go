package mpwebhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pagamento-api/internal/domain/billing"
	"pagamento-api/internal/infra/mercadopago"
	"pagamento-api/internal/reconciliation"
)

const maxBodyBytes = 65536

type Reconciler interface {
	HandleWebhook(ctx context.Context, ev reconciliation.Event) (*reconciliation.Result, error)
}

type Handler struct {
	rec    Reconciler
	secret string
	log    zerolog.Logger
}

// NewHandler builds the notification endpoint. An empty secret disables the
// x-signature check.
func NewHandler(rec Reconciler, secret string, log zerolog.Logger) *Handler {
	return &Handler{rec: rec, secret: secret, log: log.With().Str("component", "mpwebhook").Logger()}
}

// Receive acknowledges MercadoPago notifications. Anything other than 200
// makes the provider redeliver, so only retryable failures answer 503.
func (h *Handler) Receive(c *gin.Context) {
	payload, err := readBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	ev, err := reconciliation.ParseEvent(payload)
	if err != nil {
		h.log.Warn().Err(err).Msg("malformed notification")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
		return
	}

	if h.secret != "" {
		dataID := strings.TrimSpace(c.Query("data.id"))
		if dataID == "" {
			dataID = ev.PaymentID
		}
		err := mercadopago.VerifySignature(h.secret, c.GetHeader("x-signature"), c.GetHeader("x-request-id"), dataID)
		if err != nil {
			h.log.Warn().Err(err).Str("payment_id", ev.PaymentID).Msg("signature verification failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Signature verification failed"})
			return
		}
	}

	res, err := h.rec.HandleWebhook(c.Request.Context(), ev)
	if err != nil {
		status := http.StatusInternalServerError
		if billing.Retryable(err) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		h.log.Error().Err(err).Str("payment_id", ev.PaymentID).Int("status", status).Msg("notification not applied")
		c.JSON(status, gin.H{"error": "Notification not processed"})
		return
	}

	h.log.Info().
		Str("action", ev.Action).
		Str("payment_id", ev.PaymentID).
		Str("outcome", string(res.Outcome)).
		Msg("notification handled")
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
