package otpgate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRequestRegistrationRejectsExistingEmail(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	f.users.put(UserRecord{UserID: "user-1", Email: "ada@example.com", Name: "Ada"})

	err := f.engine.RequestRegistration(ctx, "Ada", "ada@example.com")
	asEngineError(t, err, KindValidation)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if f.mr.Exists(otpKey("ada@example.com")) {
		t.Fatal("no passcode may be issued for an existing email")
	}
}

func TestRequestRegistrationRequiresInput(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	if err := f.engine.RequestRegistration(ctx, "", "ada@example.com"); err == nil {
		t.Fatal("expected validation error for missing name")
	}
	if err := f.engine.RequestRegistration(ctx, "Ada", "   "); err == nil {
		t.Fatal("expected validation error for blank email")
	}
}

func TestRegistrationFlow(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	// Mixed case in: the engine normalizes before touching any state.
	if err := f.engine.RequestRegistration(ctx, "Ada", "Ada@Example.COM"); err != nil {
		t.Fatalf("request registration: %v", err)
	}

	code := storedOTP(t, f.mr, "ada@example.com")

	profile, err := f.engine.CompleteRegistration(ctx, "Ada", "Ada@Example.COM", code, "sufficiently long pass")
	if err != nil {
		t.Fatalf("complete registration: %v", err)
	}
	if profile.UserID == "" {
		t.Fatal("expected a user id")
	}
	if profile.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", profile.Email)
	}

	stored, err := f.users.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", stored.PasswordHash)
	}

	f.engine.Close()
	sent := f.mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sent))
	}
	if sent[0].Template != f.engine.config.Mail.ActivationTemplate {
		t.Fatalf("expected activation template, got %q", sent[0].Template)
	}
	if sent[0].To != "ada@example.com" {
		t.Fatalf("expected delivery to normalized email, got %q", sent[0].To)
	}
}

func TestCompleteRegistrationWrongCode(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	if err := f.engine.RequestRegistration(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("request registration: %v", err)
	}
	code := storedOTP(t, f.mr, "ada@example.com")

	_, err := f.engine.CompleteRegistration(ctx, "Ada", "ada@example.com", wrongCode(code), "sufficiently long pass")
	apiErr := asEngineError(t, err, KindValidation)
	if apiErr.Details["attempts_left"] != "1" {
		t.Fatalf("expected 1 attempt left, got %q", apiErr.Details["attempts_left"])
	}

	if _, err := f.users.FindByEmail(ctx, "ada@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatal("no user may be created on a failed verification")
	}

	// The live passcode still works after a miss with retries left.
	if _, err := f.engine.CompleteRegistration(ctx, "Ada", "ada@example.com", code, "sufficiently long pass"); err != nil {
		t.Fatalf("complete with the right code: %v", err)
	}
}

func TestCompleteRegistrationExpiredCode(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	if err := f.engine.RequestRegistration(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("request registration: %v", err)
	}
	code := storedOTP(t, f.mr, "ada@example.com")

	f.mr.FastForward(f.engine.config.OTP.SecretTTL + time.Second)

	_, err := f.engine.CompleteRegistration(ctx, "Ada", "ada@example.com", code, "sufficiently long pass")
	asEngineError(t, err, KindValidation)
	if !errors.Is(err, ErrNoActiveOTP) {
		t.Fatalf("expected expired-code rejection, got %v", err)
	}
}

func TestRequestRegistrationCooldown(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	if err := f.engine.RequestRegistration(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}

	err := f.engine.RequestRegistration(ctx, "Ada", "ada@example.com")
	asEngineError(t, err, KindRateLimit)
	if !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("expected cooldown denial, got %v", err)
	}

	f.mr.FastForward(f.engine.config.OTP.CooldownTTL + time.Second)

	if err := f.engine.RequestRegistration(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("request after cooldown: %v", err)
	}
}
