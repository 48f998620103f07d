package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	adminapi "pagamento-api/internal/api/admin"
	billingapi "pagamento-api/internal/api/billing"
	calculosapi "pagamento-api/internal/api/calculos"
	"pagamento-api/internal/api/mpwebhook"
	"pagamento-api/internal/app"
	"pagamento-api/internal/app/http/middleware"
)

// RegisterRoutes mounts every route at the root and again under /api.
func RegisterRoutes(r *gin.Engine, a *app.App) {
	prod := a.Config.IsProduction()

	h := handlers{
		billing:  billingapi.NewHandler(a.Engine, a.Log, prod),
		webhook:  mpwebhook.NewHandler(a.Engine, a.Config.MPWebhookSecret, a.Log),
		calculos: calculosapi.NewHandler(a.Calculos, a.Log, prod),
		admin:    adminapi.NewHandler(a.Payments, a.Engine, a.Log, prod),
		auth:     middleware.AuthMiddleware(a.Config.JWTSecret),
	}

	mount(r.Group("/"), h)
	mount(r.Group("/api"), h)
}

type handlers struct {
	billing  *billingapi.Handler
	webhook  *mpwebhook.Handler
	calculos *calculosapi.Handler
	admin    *adminapi.Handler
	auth     gin.HandlerFunc
}

func mount(g *gin.RouterGroup, h handlers) {
	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	g.POST("/webhook", h.webhook.Receive)

	// Input sanitization on public routes only
	public := g.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/gerar-pagamento", h.billing.GerarPagamento)
	public.POST("/verificar-pagamento", h.billing.VerificarPagamento)
	public.POST("/salvar-calculo", h.calculos.SalvarCalculo)
	public.GET("/calculos/:userId", h.calculos.ListCalculos)
	public.GET("/calculos/:userId/export", h.calculos.ExportCalculos)

	// Admin routes
	restricted := g.Group("/")
	restricted.Use(h.auth, middleware.RequireRole("admin"))
	restricted.DELETE("/calculos/:userId", h.calculos.DeleteCalculos)

	admin := g.Group("/admin")
	admin.Use(h.auth, middleware.RequireRole("admin"))
	admin.GET("/pagamentos", h.admin.ListAllPayments)
	admin.GET("/stats", h.admin.GetAdminStats)
	admin.POST("/pagamentos/:paymentId/reconciliar", h.admin.ReconcilePayment)
}

// CORSConfig allows every origin for "*" and otherwise the comma separated
// list, with credentials.
func CORSConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	var origins []string
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
