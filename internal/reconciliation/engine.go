// Package reconciliation tracks a payment from preference creation until the
// provider reports a settled status.
//
// The provider is the only source of truth for status. Webhooks are treated
// as a hint to re-fetch the payment, and every store write happens after the
// provider call that justifies it. Records are resolved as the latest
// payment of the user named by the payment's external reference: provider
// notifications carry the payment id and external reference but not always
// the originating preference id, so two payments in flight for one user may
// update the wrong row. That limitation is accepted.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pagamento-api/internal/domain/billing"
)

// Store is the record store the engine needs. Each call is one atomic round
// trip; nil, nil means "no such record".
type Store interface {
	InsertPending(ctx context.Context, userID string, amount decimal.Decimal, preferenceID string) (*billing.Payment, error)
	UpdateStatusForLatestByUser(ctx context.Context, userID string, expected, status billing.Status) (bool, error)
	FindByPreferenceID(ctx context.Context, preferenceID string) (*billing.Payment, error)
	FindLatestByUser(ctx context.Context, userID string) (*billing.Payment, error)
}

// Provider wraps the outbound payment provider API.
type Provider interface {
	CreatePreference(ctx context.Context, req billing.PreferenceRequest) (*billing.Preference, error)
	FetchPayment(ctx context.Context, paymentID string) (*billing.ProviderPayment, error)
}

type Options struct {
	ItemTitle       string
	Currency        string
	NotificationURL string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
	AutoReturn      string
	Expiry          time.Duration
	MaxAmount       decimal.Decimal
}

const (
	DefaultItemTitle = "Acesso ao cálculo da nota"
	DefaultCurrency  = "BRL"
	DefaultExpiry    = 24 * time.Hour

	maxUserIDLength = 100
)

var DefaultMaxAmount = decimal.NewFromInt(10000)

type Engine struct {
	store    Store
	provider Provider
	opts     Options
	log      zerolog.Logger
}

func New(store Store, provider Provider, opts Options, log zerolog.Logger) *Engine {
	if opts.ItemTitle == "" {
		opts.ItemTitle = DefaultItemTitle
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if !opts.MaxAmount.IsPositive() {
		opts.MaxAmount = DefaultMaxAmount
	}
	return &Engine{
		store:    store,
		provider: provider,
		opts:     opts,
		log:      log.With().Str("component", "reconciliation").Logger(),
	}
}

type Checkout struct {
	PreferenceID string
	RedirectURL  string
	Payment      *billing.Payment
}

// ValidateRequest checks the inputs of Initiate without side effects.
func (e *Engine) ValidateRequest(userID string, amount decimal.Decimal) error {
	userID = strings.TrimSpace(userID)
	switch {
	case userID == "":
		return &billing.FieldError{Field: "userId", Message: "campo obrigatório"}
	case len(userID) > maxUserIDLength:
		return &billing.FieldError{Field: "userId", Message: fmt.Sprintf("deve ter no máximo %d caracteres", maxUserIDLength)}
	case !amount.IsPositive():
		return &billing.FieldError{Field: "valor", Message: "deve ser maior que zero"}
	case amount.GreaterThan(e.opts.MaxAmount):
		return &billing.FieldError{Field: "valor", Message: "deve ser no máximo " + e.opts.MaxAmount.String()}
	case !amount.Equal(amount.Round(2)):
		// the column is numeric(12,2); the provider must be charged what is stored
		return &billing.FieldError{Field: "valor", Message: "deve ter no máximo 2 casas decimais"}
	}
	return nil
}

// Initiate creates a provider preference and records it as pending. A
// provider failure leaves no record behind. Calling it twice creates two
// independent preferences.
func (e *Engine) Initiate(ctx context.Context, userID string, amount decimal.Decimal) (*Checkout, error) {
	if err := e.ValidateRequest(userID, amount); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)

	pref, err := e.provider.CreatePreference(ctx, billing.PreferenceRequest{
		Title:             e.opts.ItemTitle,
		Amount:            amount,
		Currency:          e.opts.Currency,
		MetadataUserID:    userID,
		ExternalReference: userID,
		NotificationURL:   e.opts.NotificationURL,
		SuccessURL:        e.opts.SuccessURL,
		FailureURL:        e.opts.FailureURL,
		PendingURL:        e.opts.PendingURL,
		AutoReturn:        e.opts.AutoReturn,
		Expiry:            e.opts.Expiry,
	})
	if err != nil {
		e.log.Error().Err(err).Str("user_id", userID).Msg("preference creation failed")
		return nil, fmt.Errorf("%w: %w", billing.ErrPaymentCreationFailed, err)
	}

	payment, err := e.store.InsertPending(ctx, userID, amount, pref.ID)
	if err != nil {
		e.log.Error().Err(err).
			Str("user_id", userID).
			Str("preference_id", pref.ID).
			Msg("preference created but pending record not stored")
		return nil, fmt.Errorf("%w: %w", billing.ErrPaymentCreationFailed, err)
	}

	e.log.Info().
		Str("user_id", userID).
		Str("preference_id", pref.ID).
		Str("valor", amount.String()).
		Msg("payment preference created")

	return &Checkout{
		PreferenceID: pref.ID,
		RedirectURL:  pref.RedirectURL,
		Payment:      payment,
	}, nil
}

// VerifyStatus reads the stored status of a preference. Unknown preferences
// and store failures both report pending.
func (e *Engine) VerifyStatus(ctx context.Context, preferenceID string) billing.Status {
	p, err := e.store.FindByPreferenceID(ctx, preferenceID)
	if err != nil {
		e.log.Error().Err(err).Str("preference_id", preferenceID).Msg("verify status: store read failed")
		return billing.StatusPending
	}
	if p == nil {
		return billing.StatusPending
	}
	return p.Status
}

// VerifyLatestForUser reads the status of the user's most recent payment,
// with the same defaulting as VerifyStatus.
func (e *Engine) VerifyLatestForUser(ctx context.Context, userID string) billing.Status {
	p, err := e.store.FindLatestByUser(ctx, userID)
	if err != nil {
		e.log.Error().Err(err).Str("user_id", userID).Msg("verify status: store read failed")
		return billing.StatusPending
	}
	if p == nil {
		return billing.StatusPending
	}
	return p.Status
}

type Outcome string

const (
	// OutcomeIgnored: the event or payment is not something this service tracks.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUnmatched: no record exists for the payment's user yet.
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeRefused: the provider status would move a terminal record backwards.
	OutcomeRefused Outcome = "refused"
	OutcomeUpdated Outcome = "updated"
)

type Result struct {
	Outcome      Outcome        `json:"outcome"`
	PaymentID    string         `json:"paymentId,omitempty"`
	UserID       string         `json:"userId,omitempty"`
	PreferenceID string         `json:"preferenceId,omitempty"`
	From         billing.Status `json:"from,omitempty"`
	To           billing.Status `json:"to,omitempty"`
}

// ReconcilePayment re-reads a payment from the provider and applies its
// status to the latest record of the payment's user. Errors are returned
// only for conditions a later retry can fix.
func (e *Engine) ReconcilePayment(ctx context.Context, paymentID string) (*Result, error) {
	res := &Result{Outcome: OutcomeIgnored, PaymentID: paymentID}
	log := e.log.With().Str("payment_id", paymentID).Logger()

	pay, err := e.provider.FetchPayment(ctx, paymentID)
	if errors.Is(err, billing.ErrNotFound) {
		log.Info().Msg("payment unknown to provider, ignoring")
		return res, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("payment fetch failed")
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}

	userID := strings.TrimSpace(pay.ExternalReference)
	if userID == "" {
		log.Info().Msg("payment has no external reference, ignoring")
		return res, nil
	}
	res.UserID = userID
	res.To = pay.Status
	log = log.With().Str("user_id", userID).Str("status", string(pay.Status)).Logger()

	current, err := e.store.FindLatestByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("latest payment lookup failed")
		return nil, err
	}
	if current == nil {
		log.Warn().Msg("no payment record for user, ignoring")
		res.Outcome = OutcomeUnmatched
		return res, nil
	}
	res.PreferenceID = current.PreferenceID
	res.From = current.Status

	if current.Status == pay.Status {
		res.Outcome = OutcomeUnchanged
		return res, nil
	}
	if !billing.CanTransition(current.Status, pay.Status) {
		log.Warn().
			Str("preference_id", current.PreferenceID).
			Str("current", string(current.Status)).
			Msg("refusing to overwrite terminal payment status")
		res.Outcome = OutcomeRefused
		return res, nil
	}

	ok, err := e.store.UpdateStatusForLatestByUser(ctx, userID, current.Status, pay.Status)
	if err != nil {
		log.Error().Err(err).Msg("status update failed")
		return nil, err
	}
	if !ok {
		log.Warn().Str("preference_id", current.PreferenceID).Msg("payment record changed during reconciliation")
		return nil, fmt.Errorf("%w: user_id=%s preference_id=%s", billing.ErrStaleRecord, userID, current.PreferenceID)
	}

	log.Info().
		Str("preference_id", current.PreferenceID).
		Str("from", string(current.Status)).
		Msg("payment status updated")
	res.Outcome = OutcomeUpdated
	return res, nil
}
