package otpgate

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorKindStatus(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want int
	}{
		{KindNotFound, http.StatusBadRequest},
		{KindValidation, http.StatusBadRequest},
		{KindAuth, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindDatabase, http.StatusInternalServerError},
		{KindRateLimit, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.kind.Status(); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestEnvelopeOperationalError(t *testing.T) {
	apiErr := validationError("Incorrect OTP. 1 attempts left", ErrOTPMismatch)
	apiErr.Details = map[string]string{"attempts_left": "1"}

	status, body := Envelope(apiErr)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body.Message != "Incorrect OTP. 1 attempts left" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Details["attempts_left"] != "1" {
		t.Fatalf("details lost: %+v", body.Details)
	}
}

func TestEnvelopeCollapsesUnexpectedErrors(t *testing.T) {
	for _, err := range []error{
		errors.New("pq: connection refused"),
		newError(KindInternal, "internal detail that must not leak", nil),
	} {
		status, body := Envelope(err)
		if status != http.StatusInternalServerError {
			t.Fatalf("%v: expected 500, got %d", err, status)
		}
		if body.Message != "Something went wrong, please try again" {
			t.Fatalf("%v: leaked message %q", err, body.Message)
		}
		if body.Details != nil {
			t.Fatalf("%v: leaked details %+v", err, body.Details)
		}
	}
}

func TestErrorUnwrapKeepsSentinel(t *testing.T) {
	err := rateLimitError("Too many OTP requests", ErrSpamLocked)
	if !errors.Is(err, ErrSpamLocked) {
		t.Fatal("wrapped sentinel must survive errors.Is")
	}
	if !err.Operational() {
		t.Fatal("rate-limit errors are operational")
	}
}

func TestOKEnvelope(t *testing.T) {
	resp := OK(http.StatusCreated, "User registered successfully", map[string]string{"id": "user-1"})
	if !resp.Success || resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected response: %+v", resp)
	}

	resp = OK(http.StatusBadRequest, "nope", nil)
	if resp.Success {
		t.Fatal("4xx response must not be marked successful")
	}
}
