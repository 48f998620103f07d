package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagamento-api/internal/domain/billing"
)

type sample struct {
	UserID string  `json:"userId" binding:"required,min=1,max=5"`
	Score  float64 `json:"score" binding:"gte=0,lte=100"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, body string, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	r := gin.New()
	r.POST("/", h)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestBindJSONReportsJSONFieldNames(t *testing.T) {
	w, out := run(t, `{"userId":"toolong","score":101}`, func(c *gin.Context) {
		var s sample
		if !BindJSON(c, &s) {
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgInvalidData, out["error"])
	details := out["details"].([]interface{})
	require.Len(t, details, 2)
	first := details[0].(map[string]interface{})
	assert.Equal(t, "userId", first["field"])
	assert.Equal(t, "deve ter no máximo 5 caracteres", first["message"])
	second := details[1].(map[string]interface{})
	assert.Equal(t, "score", second["field"])
}

func TestBindJSONMalformed(t *testing.T) {
	w, out := run(t, `{"userId":`, func(c *gin.Context) {
		var s sample
		BindJSON(c, &s)
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := out["details"].([]interface{})
	assert.Equal(t, "body", details[0].(map[string]interface{})["field"])
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		production bool
		status     int
		details    bool
	}{
		{"validation", &billing.FieldError{Field: "valor", Message: "deve ser maior que zero"}, true, http.StatusBadRequest, true},
		{"creation failed dev", fmt.Errorf("%w: %w", billing.ErrPaymentCreationFailed, billing.ErrProviderUnavailable), false, http.StatusInternalServerError, true},
		{"creation failed prod", fmt.Errorf("%w: %w", billing.ErrPaymentCreationFailed, billing.ErrProviderUnavailable), true, http.StatusInternalServerError, false},
		{"stale", billing.ErrStaleRecord, true, http.StatusServiceUnavailable, false},
		{"persistence", fmt.Errorf("%w: db down", billing.ErrPersistence), true, http.StatusServiceUnavailable, false},
		{"persistence dev", fmt.Errorf("%w: db down", billing.ErrPersistence), false, http.StatusServiceUnavailable, true},
		{"creation failed on insert", fmt.Errorf("%w: %w", billing.ErrPaymentCreationFailed, billing.ErrPersistence), true, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, out := run(t, `{}`, func(c *gin.Context) {
				Error(c, tc.err, "Erro ao gerar pagamento", tc.production)
			})
			assert.Equal(t, tc.status, w.Code)
			_, has := out["details"]
			assert.Equal(t, tc.details, has)
		})
	}
}
