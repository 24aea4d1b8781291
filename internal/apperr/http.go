package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes err to the response and aborts the handler chain.
// Internal errors are logged and replaced with a generic message.
func JSON(c *gin.Context, err error) {
	status := StatusCode(err)
	resp := ErrorResponse{Code: KindOf(err).String()}

	var e *Error
	if status == http.StatusInternalServerError || !errors.As(err, &e) {
		slog.Error("Request failed",
			"error", err,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
		)
		resp.Error = "internal server error"
	} else {
		resp.Error = e.Error()
		if e.Message != "" {
			resp.Error = e.Message
		}
		resp.Fields = e.Fields
	}

	c.AbortWithStatusJSON(status, resp)
}

// FromBinding converts a gin binding error into a validation error keyed by
// JSON/form field name. A body cut off by http.MaxBytesReader becomes
// KindTooLarge.
func FromBinding(err error) *Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return TooLarge(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation("body", err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = describe(fe)
	}
	return ValidationFields(fields)
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "body"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "min":
		return "ensure this field has at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "username":
		return "may contain only letters, digits and @/./+/-/_ characters"
	default:
		return "failed on '" + fe.Tag() + "' validation"
	}
}

// RegisterJSONTagNames makes gin's validator report fields by their json or
// form tag instead of the Go struct field name.
func RegisterJSONTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}
