// Package respond holds the JSON error shapes shared by every handler.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"pagamento-api/internal/domain/billing"
)

const (
	MsgInvalidData   = "Dados inválidos"
	MsgInvalidParams = "Parâmetros inválidos"
	MsgInternal      = "Erro interno"
)

type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// useJSONNames makes validator report fields by their json tag.
func useJSONNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// BindJSON decodes and validates the request body into obj. On failure it
// writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	useJSONNames()
	if err := c.ShouldBindJSON(obj); err != nil {
		Invalid(c, MsgInvalidData, Details(err)...)
		return false
	}
	return true
}

// BindURI validates path parameters into obj.
func BindURI(c *gin.Context, obj interface{}) bool {
	useJSONNames()
	if err := c.ShouldBindUri(obj); err != nil {
		Invalid(c, MsgInvalidParams, Details(err)...)
		return false
	}
	return true
}

func Invalid(c *gin.Context, msg string, details ...FieldDetail) {
	if details == nil {
		details = []FieldDetail{}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "details": details})
}

// Details converts binding and validation errors to per-field messages.
func Details(err error) []FieldDetail {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := make([]FieldDetail, 0, len(ves))
		for _, fe := range ves {
			out = append(out, FieldDetail{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}

	var fe *billing.FieldError
	if errors.As(err, &fe) {
		return []FieldDetail{{Field: fe.Field, Message: fe.Message}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldDetail{{Field: typeErr.Field, Message: "tipo inválido, esperado " + typeErr.Type.String()}}
	}
	if errors.Is(err, io.EOF) {
		return []FieldDetail{{Field: "body", Message: "corpo da requisição vazio"}}
	}
	return []FieldDetail{{Field: "body", Message: "JSON inválido"}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		return "deve ser no máximo " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter no mínimo %s caracteres", fe.Param())
		}
		return "deve ser no mínimo " + fe.Param()
	case "gte":
		return "deve ser maior ou igual a " + fe.Param()
	case "lte":
		return "deve ser menor ou igual a " + fe.Param()
	case "gt":
		return "deve ser maior que " + fe.Param()
	}
	return "valor inválido (" + fe.Tag() + ")"
}

// Error maps a domain error onto a status code. Internal causes are only
// exposed outside production.
func Error(c *gin.Context, err error, publicMsg string, production bool) {
	if errors.Is(err, billing.ErrValidation) {
		Invalid(c, MsgInvalidData, Details(err)...)
		return
	}

	// creation failures wrap ErrPersistence but keep their own code
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, billing.ErrPaymentCreationFailed):
	case errors.Is(err, billing.ErrPersistence), errors.Is(err, billing.ErrStaleRecord):
		status = http.StatusServiceUnavailable
	}

	body := gin.H{"error": publicMsg}
	if !production {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
