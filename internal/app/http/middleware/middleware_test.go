package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func adminRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(secret), RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("email")})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"email": "ops@example.com", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	})
	user := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"role": "user", "exp": time.Now().Add(time.Hour).Unix(),
	})
	noRole := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"role": "admin", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	otherKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"role": "admin"})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"admin", "Bearer " + valid, http.StatusOK},
		{"wrong role", "Bearer " + user, http.StatusForbidden},
		{"no role", "Bearer " + noRole, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherKey, http.StatusUnauthorized},
		{"no bearer prefix", valid, http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			adminRouter(testSecret).ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"email":"ops@example.com"}`, w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareWithoutSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	adminRouter("").ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSanitizeInput(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	var seen []byte
	r.POST("/", func(c *gin.Context) {
		seen, _ = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	body := `{"userId":"<script>alert(1)</script>bob","valor":50.10,"nested":{"name":"<b>x</b>"},"list":["<i>y</i>"]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(seen))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&got))
	assert.Equal(t, "bob", got["userId"])
	assert.Equal(t, json.Number("50.10"), got["valor"])
	assert.Equal(t, map[string]interface{}{"name": "x"}, got["nested"])
	assert.Equal(t, []interface{}{"y"}, got["list"])
}

func TestSanitizeInputRejectsMalformed(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, body := range []string{`{"a":`, `[1,2]`, ``} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := httptest.NewRecorder()
	r.GET("/g", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/g", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "abc-123", entry["request_id"])
	assert.Equal(t, "/x", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
