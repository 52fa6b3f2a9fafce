// Package request decodes JSON bodies into tagged request schemas and
// validates them before they reach a handler's policy call.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vadim/campus-market/internal/httpx/response"
)

// MaxBodyBytes caps request bodies
const MaxBodyBytes = 1 << 20

// ErrInvalidJSON is returned for bodies that do not decode
var ErrInvalidJSON = errors.New("invalid JSON")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors match the request body
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
	return v
}

// Decode reads r's JSON body into dst and validates it
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return Validate(dst)
}

// Validate runs struct-tag validation on v
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// WriteError answers a Decode failure. It reports whether err was handled.
func WriteError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if fields := FieldErrors(err); fields != nil {
		response.ValidationFailed(w, fields)
		return true
	}
	response.BadRequest(w, ErrInvalidJSON.Error())
	return true
}

// FieldErrors converts validator errors into response field errors
func FieldErrors(err error) []response.FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make([]response.FieldError, len(ve))
	for i, fe := range ve {
		out[i] = response.FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
		}
		switch fe.Tag() {
		case "required":
			out[i].Message = fmt.Sprintf("%s is required", fe.Field())
		case "oneof":
			out[i].Message = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		case "min":
			out[i].Message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "gte":
			out[i].Message = fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
		default:
			out[i].Message = fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
		}
	}
	return out
}
