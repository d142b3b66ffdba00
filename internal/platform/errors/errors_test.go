package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{250, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := c.code.Status(); got != c.want {
			t.Fatalf("code %d status = %d, want %d", c.code, got, c.want)
		}
	}
	if HTTPStatus(stderrs.New("plain")) != http.StatusInternalServerError {
		t.Fatal("foreign errors should be 500")
	}
}

func TestErrorRendering(t *testing.T) {
	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}
	cause := stderrs.New("conn reset")
	err := Wrapf(cause, ErrorCodeUnavailable, "refetch %s", "p1")
	if err.Error() != "refetch p1: conn reset" {
		t.Fatalf("wrapped = %q", err.Error())
	}
	if !stderrs.Is(err, cause) || Root(fmt.Errorf("outer: %w", err)) != cause {
		t.Fatal("cause lost")
	}
	op := WithOp(err, "session.save")
	if op.Error() != "session.save: refetch p1: conn reset" {
		t.Fatalf("with op = %q", op.Error())
	}
	if e, _ := As(err); e.Op() != "" {
		t.Fatal("WithOp mutated the original")
	}
}

func TestWithField(t *testing.T) {
	base := InvalidArgf("year must be between 1 and 10")
	tagged := WithField(base, "year")
	if e, _ := As(tagged); e.Field() != "year" || e.Code() != ErrorCodeInvalidArgument {
		t.Fatalf("tagged = %+v", e)
	}
	if e, _ := As(base); e.Field() != "" {
		t.Fatal("WithField mutated the original")
	}
	plain := stderrs.New("plain")
	if WithField(plain, "x") != plain {
		t.Fatal("foreign error should pass through")
	}
}

func TestWireFrom(t *testing.T) {
	if w := WireFrom(nil); w != (Wire{}) {
		t.Fatalf("nil wire = %+v", w)
	}
	w := WireFrom(fmt.Errorf("ctx: %w", WithField(Conflictf("session is not in edit mode"), "state")))
	if w.Code != ErrorCodeConflict || w.Message != "session is not in edit mode" || w.Field != "state" {
		t.Fatalf("wire = %+v", w)
	}
	if w := WireFrom(stderrs.New("boom")); w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("foreign wire = %+v", w)
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCode
	}{
		{nil, ErrorCodeUnknown},
		{stderrs.New("x"), ErrorCodeUnknown},
		{ErrNotFound, ErrorCodeNotFound},
		{NotFoundf("commission %s", "c1"), ErrorCodeNotFound},
		{JSONErrf("bad"), ErrorCodeJSON},
		{PanicErrf("boom"), ErrorCodePanic},
		{Unauthorizedf("no token"), ErrorCodeUnauthorized},
		{fmt.Errorf("wrapped: %w", Conflictf("busy")), ErrorCodeConflict},
	}
	for i, c := range cases {
		if got := CodeOf(c.err); got != c.want {
			t.Fatalf("case %d: CodeOf = %d, want %d", i, got, c.want)
		}
		if !IsCode(c.err, c.want) {
			t.Fatalf("case %d: IsCode false", i)
		}
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", Newf(ErrorCodeUnavailable, "upstream 503"), true},
		{"conflict", Conflictf("busy"), false},
		{"canceled", Wrapf(context.Canceled, ErrorCodeUnavailable, "list"), false},
		{"deadline", context.DeadlineExceeded, false},
		{"commit text", stderrs.New("commit unexpectedly resulted in rollback"), true},
		{"plain", stderrs.New("syntax error"), false},
	}
	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("%s: Retryable = %v, want %v", c.name, got, c.want)
		}
	}
}
