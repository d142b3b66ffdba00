// Package bind decodes and validates JSON request bodies
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

// MaxBody caps request bodies; larger payloads fail to decode
const MaxBody = 1 << 20

var (
	vOnce sync.Once
	vld   *validator.Validate
	trans ut.Translator
)

func get() (*validator.Validate, ut.Translator) {
	vOnce.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		vld = validator.New(validator.WithRequiredStructEnabled())
		vld.RegisterTagNameFunc(jsonName)
		// gte/lte on decimals compare the float value
		vld.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = entrans.RegisterDefaultTranslations(vld, trans)

		short(vld, "min", "{0} must be at least {1}")
		short(vld, "max", "{0} must be at most {1}")
	})
	return vld, trans
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// short swaps the stock message of a param tag; {0} is the field, {1} the param
func short(v *validator.Validate, tag, msg string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, msg, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// RegisterTag adds a custom validate tag; msg may use {0} for the json field name
func RegisterTag(tag string, ok func(validator.FieldLevel) bool, msg string) error {
	v, _ := get()
	if err := v.RegisterValidation(tag, ok); err != nil {
		return err
	}
	short(v, tag, msg)
	return nil
}

// ParseJSON decodes the body into T and validates it
// unknown fields, trailing data and empty bodies on writes are json errors; failed tags are
// validation errors naming the first offending field
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero T
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	peek := make([]byte, 1)
	n, _ := r.Body.Read(peek)
	if n == 0 {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(io.LimitReader(io.MultiReader(bytes.NewReader(peek[:n]), r.Body), MaxBody))
	dec.DisallowUnknownFields()

	var dst T
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	v, _ := get()
	if err := v.Struct(dst); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return zero, perr.JSONErrf("validation error")
		}
		field, msg := firstFailure(err)
		return zero, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
	}
	return dst, nil
}

func firstFailure(err error) (field, msg string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		_, t := get()
		return verrs[0].Field(), verrs[0].Translate(t)
	}
	return "", err.Error()
}
