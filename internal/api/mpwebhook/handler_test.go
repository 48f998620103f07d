package mpwebhook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"pagamento-api/internal/domain/billing"
	"pagamento-api/internal/infra/mercadopago"
	"pagamento-api/internal/reconciliation"
)

type mockReconciler struct {
	HandleWebhookFunc func(ctx context.Context, ev reconciliation.Event) (*reconciliation.Result, error)
	calls             []reconciliation.Event
}

func (m *mockReconciler) HandleWebhook(ctx context.Context, ev reconciliation.Event) (*reconciliation.Result, error) {
	m.calls = append(m.calls, ev)
	if m.HandleWebhookFunc == nil {
		return &reconciliation.Result{Outcome: reconciliation.OutcomeUpdated}, nil
	}
	return m.HandleWebhookFunc(ctx, ev)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func send(h *Handler, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/webhook", h.Receive)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReceiveAcknowledges(t *testing.T) {
	rec := &mockReconciler{}
	h := NewHandler(rec, "", zerolog.Nop())

	w := send(h, "/webhook", `{"action":"payment.updated","type":"payment","data":{"id":123}}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	if assert.Len(t, rec.calls, 1) {
		assert.Equal(t, "123", rec.calls[0].PaymentID)
		assert.Equal(t, reconciliation.ActionPaymentUpdated, rec.calls[0].Action)
	}
}

func TestReceiveIgnoredEventStillAcknowledged(t *testing.T) {
	rec := &mockReconciler{HandleWebhookFunc: func(context.Context, reconciliation.Event) (*reconciliation.Result, error) {
		return &reconciliation.Result{Outcome: reconciliation.OutcomeIgnored}, nil
	}}
	h := NewHandler(rec, "", zerolog.Nop())

	w := send(h, "/webhook", `{"action":"payment.created","data":{"id":"1"}}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReceiveMalformed(t *testing.T) {
	rec := &mockReconciler{}
	h := NewHandler(rec, "", zerolog.Nop())

	w := send(h, "/webhook", `{"action":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.calls)
}

func TestReceiveRetryableFailures(t *testing.T) {
	errs := []error{
		fmt.Errorf("fetch payment 1: %w", billing.ErrProviderUnavailable),
		billing.ErrPersistence,
		billing.ErrStaleRecord,
	}
	for _, e := range errs {
		rec := &mockReconciler{HandleWebhookFunc: func(context.Context, reconciliation.Event) (*reconciliation.Result, error) {
			return nil, e
		}}
		h := NewHandler(rec, "", zerolog.Nop())
		w := send(h, "/webhook", `{"action":"payment.updated","data":{"id":"1"}}`, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, e.Error())
	}
}

func TestReceiveSignature(t *testing.T) {
	const secret = "whsec"
	body := `{"action":"payment.updated","data":{"id":"987"}}`
	sig := "ts=1704908010,v1=" + mercadopago.Sign(secret, "req-9", "987", "1704908010")

	t.Run("valid", func(t *testing.T) {
		rec := &mockReconciler{}
		w := send(NewHandler(rec, secret, zerolog.Nop()), "/webhook?data.id=987&type=payment", body,
			map[string]string{"x-signature": sig, "x-request-id": "req-9"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, rec.calls, 1)
	})

	t.Run("id from body", func(t *testing.T) {
		rec := &mockReconciler{}
		w := send(NewHandler(rec, secret, zerolog.Nop()), "/webhook", body,
			map[string]string{"x-signature": sig, "x-request-id": "req-9"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := &mockReconciler{}
		w := send(NewHandler(rec, secret, zerolog.Nop()), "/webhook", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, rec.calls)
	})

	t.Run("tampered", func(t *testing.T) {
		rec := &mockReconciler{}
		w := send(NewHandler(rec, secret, zerolog.Nop()), "/webhook", body,
			map[string]string{"x-signature": sig, "x-request-id": "req-other"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, rec.calls)
	})
}
