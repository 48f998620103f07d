// Package app assembles the long-lived service objects from configuration.
package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"pagamento-api/config"
	"pagamento-api/database"
	"pagamento-api/internal/domain/billing"
	"pagamento-api/internal/domain/calculos"
	"pagamento-api/internal/infra/mercadopago"
	"pagamento-api/internal/reconciliation"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      zerolog.Logger
	Payments *billing.Repository
	Calculos *calculos.Repository
	Provider *mercadopago.Client
	Engine   *reconciliation.Engine
}

// New opens the database pool, migrates and wires the service. Close
// releases the pool.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return Assemble(cfg, db, log), nil
}

// Assemble wires the service on top of an already open database.
func Assemble(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *App {
	payments := billing.NewRepository(db)
	provider := mercadopago.NewClient(mercadopago.Config{
		AccessToken: cfg.MPAccessToken,
		BaseURL:     cfg.MPBaseURL,
		Timeout:     cfg.MPTimeout,
		Sandbox:     cfg.MPSandbox,
	})
	engine := reconciliation.New(payments, provider, reconciliation.Options{
		ItemTitle:       cfg.ItemTitle,
		Currency:        cfg.Currency,
		NotificationURL: cfg.NotificationURL,
		SuccessURL:      cfg.BackURLs.Success,
		FailureURL:      cfg.BackURLs.Failure,
		PendingURL:      cfg.BackURLs.Pending,
		AutoReturn:      cfg.AutoReturn,
		Expiry:          cfg.PreferenceExpiration,
		MaxAmount:       cfg.MaxAmount,
	}, log)

	return &App{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Payments: payments,
		Calculos: calculos.NewRepository(db),
		Provider: provider,
		Engine:   engine,
	}
}

func (a *App) Close() error {
	return database.Close(a.DB)
}

// NewLogger writes human-readable output in development and JSON lines in
// production.
func NewLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	level := zerolog.DebugLevel
	if cfg.IsProduction() {
		level = zerolog.InfoLevel
	} else {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "pagamento-api").Logger()
}
