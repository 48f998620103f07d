package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"pagamento-api/internal/api/respond"
)

const maxJSONBody = 1 << 20

// SanitizeAndCleanInputMiddleware strips markup from every string in a JSON
// object body, nested values included, using bluemonday's strict policy.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBody))
		if err != nil {
			respond.Invalid(c, respond.MsgInvalidData, respond.FieldDetail{Field: "body", Message: "corpo da requisição inválido"})
			return
		}

		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		var body map[string]interface{}
		if err := dec.Decode(&body); err != nil {
			respond.Invalid(c, respond.MsgInvalidData, respond.FieldDetail{Field: "body", Message: "JSON inválido"})
			return
		}

		for k, v := range body {
			body[k] = sanitize(policy, v)
		}

		newBody, err := json.Marshal(body)
		if err != nil {
			respond.Invalid(c, respond.MsgInvalidData, respond.FieldDetail{Field: "body", Message: "JSON inválido"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitize(policy *bluemonday.Policy, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return policy.Sanitize(t)
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = sanitize(policy, inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = sanitize(policy, inner)
		}
		return t
	}
	return v
}
