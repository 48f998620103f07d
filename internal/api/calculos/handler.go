package calculos

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pagamento-api/internal/api/respond"
	domain "pagamento-api/internal/domain/calculos"
)

type Store interface {
	Save(ctx context.Context, c *domain.Calculation) error
	ListByUser(ctx context.Context, userID string) ([]domain.Calculation, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type Handler struct {
	store      Store
	log        zerolog.Logger
	production bool
}

func NewHandler(store Store, log zerolog.Logger, production bool) *Handler {
	return &Handler{store: store, log: log, production: production}
}

type salvarCalculoRequest struct {
	UserID    string   `json:"userId" binding:"required,min=1,max=100"`
	DP        *float64 `json:"dp" binding:"required,gte=0,lte=100"`
	CFSD      *float64 `json:"cfsd" binding:"required,gte=0,lte=100"`
	NEP       *float64 `json:"nep" binding:"required,gte=0,lte=100"`
	DEM       *float64 `json:"dem" binding:"required,gte=0,lte=100"`
	Resultado *float64 `json:"resultado" binding:"required,gte=0,lte=100"`
}

type userParam struct {
	UserID string `uri:"userId" json:"userId" binding:"required,min=1,max=100"`
}

func (h *Handler) SalvarCalculo(c *gin.Context) {
	var body salvarCalculoRequest
	if !respond.BindJSON(c, &body) {
		return
	}

	calc := &domain.Calculation{
		UserID:    strings.TrimSpace(body.UserID),
		DP:        *body.DP,
		CFSD:      *body.CFSD,
		NEP:       *body.NEP,
		DEM:       *body.DEM,
		Resultado: *body.Resultado,
	}
	if err := h.store.Save(c.Request.Context(), calc); err != nil {
		h.log.Error().Err(err).Str("user_id", calc.UserID).Msg("save calculation failed")
		respond.Error(c, err, "Erro ao salvar cálculo", h.production)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": calc.ID})
}

func (h *Handler) ListCalculos(c *gin.Context) {
	var p userParam
	if !respond.BindURI(c, &p) {
		return
	}

	calcs, err := h.store.ListByUser(c.Request.Context(), p.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", p.UserID).Msg("list calculations failed")
		respond.Error(c, err, "Erro ao carregar cálculos", h.production)
		return
	}
	c.JSON(http.StatusOK, calcs)
}

// DeleteCalculos purges a user's history. Admin only.
func (h *Handler) DeleteCalculos(c *gin.Context) {
	var p userParam
	if !respond.BindURI(c, &p) {
		return
	}

	n, err := h.store.DeleteByUser(c.Request.Context(), p.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", p.UserID).Msg("delete calculations failed")
		respond.Error(c, err, "Erro ao remover cálculos", h.production)
		return
	}

	h.log.Info().Str("user_id", p.UserID).Int64("deleted", n).Msg("calculation history purged")
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
