package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeCircuitOpen, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeUpstream, http.StatusBadGateway},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError}, // default branch
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	src := stderrs.New("root")
	e1 := Wrapf(src, ErrorCodeUnavailable, "llm %s", "down")
	if want := "llm down: root"; e1.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e1.Error(), want)
	}

	// op prefixes the rendered message but not the wire message
	e2 := WithOp(e1, "llm.decide")
	if want := "llm.decide: llm down: root"; e2.Error() != want {
		t.Fatalf("WithOp().Error = %q, want %q", e2.Error(), want)
	}
	if w := WireFrom(e2); w.Message != "llm down" || w.Op != "llm.decide" {
		t.Fatalf("WireFrom mismatch: %+v", w)
	}
	if oe, _ := As(e1); oe.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}

	// foreign errors keep their text when labelled
	f := WithOp(src, "db.query")
	if fe, ok := As(f); !ok || fe.Op() != "db.query" || fe.Code() != ErrorCodeUnknown {
		t.Fatalf("WithOp(foreign) = %+v", fe)
	}
	if WithOp(nil, "x") != nil {
		t.Fatalf("WithOp(nil) should stay nil")
	}

	if fe, _ := As(WithField(Validationf("bad"), "question")); fe.Field() != "question" {
		t.Fatalf("WithField failed")
	}

	deep := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", src))
	if got := Root(deep); got == nil || got.Error() != "root" {
		t.Fatalf("Root() failed, got %v", got)
	}

	if WrapIf(nil, ErrorCodeDB, "ignored") != nil {
		t.Fatalf("WrapIf(nil) should return nil")
	}
	if ErrorCodeCircuitOpen.String() != "circuit_open" {
		t.Fatalf("String() = %q", ErrorCodeCircuitOpen.String())
	}
}

func TestFromHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCode
		retry  bool
	}{
		{429, ErrorCodeTooManyRequests, true},
		{500, ErrorCodeUnavailable, true},
		{502, ErrorCodeUnavailable, true},
		{503, ErrorCodeUnavailable, true},
		{504, ErrorCodeTimeout, true},
		{400, ErrorCodeInvalidArgument, false},
		{401, ErrorCodeUnauthorized, false},
		{403, ErrorCodeForbidden, false},
		{404, ErrorCodeNotFound, false},
		{422, ErrorCodeInvalidArgument, false},
	}
	for _, c := range cases {
		err := FromHTTPStatus(c.status, nil, "chat completion")
		if CodeOf(err) != c.want {
			t.Fatalf("FromHTTPStatus(%d) code = %v, want %v", c.status, CodeOf(err), c.want)
		}
		if Retryable(err) != c.retry {
			t.Fatalf("Retryable(status %d) = %v, want %v", c.status, !c.retry, c.retry)
		}
	}
}

func TestHTTPHelper(t *testing.T) {
	if st, w := HTTP(nil); st != 200 || w != (Wire{}) {
		t.Fatalf("HTTP(nil) mismatch: %d %+v", st, w)
	}
	st, w := HTTP(Newf(ErrorCodeCircuitOpen, "llm circuit open; retry after 12s"))
	if st != 503 || w.Code != ErrorCodeCircuitOpen {
		t.Fatalf("HTTP(err) mismatch: %d %+v", st, w)
	}
}
