package admin

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"pagamento-api/internal/api/respond"
	"pagamento-api/internal/domain/billing"
	"pagamento-api/internal/reconciliation"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	recentWindow    = 30 * 24 * time.Hour
)

type PaymentStore interface {
	ListAll(ctx context.Context, limit, offset int) ([]billing.Payment, error)
	Stats(ctx context.Context, since time.Time) (*billing.Stats, error)
}

type Reconciler interface {
	ReconcilePayment(ctx context.Context, paymentID string) (*reconciliation.Result, error)
}

type Handler struct {
	payments   PaymentStore
	rec        Reconciler
	log        zerolog.Logger
	production bool
	now        func() time.Time
}

func NewHandler(payments PaymentStore, rec Reconciler, log zerolog.Logger, production bool) *Handler {
	return &Handler{
		payments:   payments,
		rec:        rec,
		log:        log.With().Str("component", "admin").Logger(),
		production: production,
		now:        time.Now,
	}
}

type AdminPayment struct {
	ID           uint            `json:"id"`
	UserID       string          `json:"userId"`
	Valor        decimal.Decimal `json:"valor"`
	Status       billing.Status  `json:"status"`
	PreferenceID string          `json:"preferenceId"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

type AdminStats struct {
	TotalPayments  int64                    `json:"totalPayments"`
	ByStatus       map[billing.Status]int64 `json:"byStatus"`
	ApprovedVolume decimal.Decimal          `json:"approvedVolume"`
	RecentVolume   decimal.Decimal          `json:"recentVolume"`
}

// ListAllPayments pages through every payment, newest first.
// Query: ?limit=&offset=
func (h *Handler) ListAllPayments(c *gin.Context) {
	limit := cast.ToInt(c.DefaultQuery("limit", "0"))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := cast.ToInt(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	payments, err := h.payments.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list payments failed")
		respond.Error(c, err, "Failed to load payments", h.production)
		return
	}

	result := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		result = append(result, AdminPayment{
			ID:           p.ID,
			UserID:       p.UserID,
			Valor:        p.Amount,
			Status:       p.Status,
			PreferenceID: p.PreferenceID,
			CreatedAt:    p.CreatedAt.Format("2006-01-02 15:04"),
			UpdatedAt:    p.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	s, err := h.payments.Stats(c.Request.Context(), h.now().Add(-recentWindow))
	if err != nil {
		h.log.Error().Err(err).Msg("payment stats failed")
		respond.Error(c, err, "Failed to load stats", h.production)
		return
	}

	c.JSON(http.StatusOK, AdminStats{
		TotalPayments:  s.Total,
		ByStatus:       s.ByStatus,
		ApprovedVolume: s.ApprovedVolume,
		RecentVolume:   s.RecentVolume,
	})
}

// ReconcilePayment re-checks a provider payment on demand, for
// notifications that were lost or exhausted their retries.
func (h *Handler) ReconcilePayment(c *gin.Context) {
	paymentID := strings.TrimSpace(c.Param("paymentId"))
	if paymentID == "" || len(paymentID) > 100 {
		respond.Invalid(c, respond.MsgInvalidParams, respond.FieldDetail{Field: "paymentId", Message: "deve ter entre 1 e 100 caracteres"})
		return
	}

	res, err := h.rec.ReconcilePayment(c.Request.Context(), paymentID)
	if err != nil {
		h.log.Error().Err(err).Str("payment_id", paymentID).Msg("manual reconciliation failed")
		status := http.StatusInternalServerError
		if billing.Retryable(err) {
			status = http.StatusServiceUnavailable
		}
		body := gin.H{"error": "Reconciliation failed"}
		if !h.production {
			body["details"] = err.Error()
		}
		c.JSON(status, body)
		return
	}

	h.log.Info().
		Str("payment_id", paymentID).
		Str("admin", c.GetString("email")).
		Str("outcome", string(res.Outcome)).
		Msg("manual reconciliation")
	c.JSON(http.StatusOK, res)
}
