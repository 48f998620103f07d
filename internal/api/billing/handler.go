package billing

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pagamento-api/internal/api/respond"
	domain "pagamento-api/internal/domain/billing"
	"pagamento-api/internal/reconciliation"
)

// Service is the part of the reconciliation engine the public payment
// routes use.
type Service interface {
	Initiate(ctx context.Context, userID string, amount decimal.Decimal) (*reconciliation.Checkout, error)
	VerifyStatus(ctx context.Context, preferenceID string) domain.Status
	VerifyLatestForUser(ctx context.Context, userID string) domain.Status
}

type Handler struct {
	svc        Service
	log        zerolog.Logger
	production bool
}

func NewHandler(svc Service, log zerolog.Logger, production bool) *Handler {
	return &Handler{svc: svc, log: log, production: production}
}

type gerarPagamentoRequest struct {
	UserID string           `json:"userId" binding:"required,min=1,max=100"`
	Valor  *decimal.Decimal `json:"valor" binding:"required"`
}

// GerarPagamento opens a checkout preference and answers with the link the
// client should be redirected to.
func (h *Handler) GerarPagamento(c *gin.Context) {
	var body gerarPagamentoRequest
	if !respond.BindJSON(c, &body) {
		return
	}

	checkout, err := h.svc.Initiate(c.Request.Context(), body.UserID, *body.Valor)
	if err != nil {
		respond.Error(c, err, "Erro ao gerar pagamento", h.production)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"linkPagamento": checkout.RedirectURL,
		"preferenceId":  checkout.PreferenceID,
	})
}

type verificarPagamentoRequest struct {
	PreferenceID string `json:"preferenceId" binding:"omitempty,max=100"`
	UserID       string `json:"userId" binding:"omitempty,max=100"`
}

// VerificarPagamento reports the stored status. preferenceId wins over
// userId; the latter resolves to the user's latest payment.
func (h *Handler) VerificarPagamento(c *gin.Context) {
	var body verificarPagamentoRequest
	if !respond.BindJSON(c, &body) {
		return
	}

	prefID := strings.TrimSpace(body.PreferenceID)
	userID := strings.TrimSpace(body.UserID)

	var status domain.Status
	switch {
	case prefID != "":
		status = h.svc.VerifyStatus(c.Request.Context(), prefID)
	case userID != "":
		status = h.svc.VerifyLatestForUser(c.Request.Context(), userID)
	default:
		respond.Invalid(c, respond.MsgInvalidData, respond.FieldDetail{Field: "preferenceId", Message: "campo obrigatório"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
