package otpgate

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func seedResetUser(t *testing.T, f *engineFixture, oldPassword string) UserRecord {
	t.Helper()

	user := UserRecord{
		UserID:       "user-1",
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: mustHash(t, oldPassword),
	}
	f.users.put(user)
	return user
}

func TestRequestPasswordResetUnknownUser(t *testing.T) {
	f := newEngineFixture(t, nil)

	err := f.engine.RequestPasswordReset(context.Background(), "ghost@example.com")
	apiErr := asEngineError(t, err, KindNotFound)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected not-found rejection, got %v", err)
	}
	if apiErr.Status() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", apiErr.Status())
	}
	if f.mr.Exists(otpKey("ghost@example.com")) {
		t.Fatal("no passcode may be issued for an unknown email")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedResetUser(t, f, "old password 1")

	if err := f.engine.RequestPasswordReset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	code := storedOTP(t, f.mr, "ada@example.com")

	if err := f.engine.VerifyPasswordReset(ctx, "ada@example.com", code); err != nil {
		t.Fatalf("verify reset: %v", err)
	}
	if !f.mr.Exists(resetGrantKey("ada@example.com")) {
		t.Fatal("verification must record the reset grant")
	}

	if err := f.engine.CompletePasswordReset(ctx, "ada@example.com", "new password 2"); err != nil {
		t.Fatalf("complete reset: %v", err)
	}
	if f.mr.Exists(resetGrantKey("ada@example.com")) {
		t.Fatal("a persisted update must consume the grant")
	}

	// Old credential dead, new one live.
	if _, _, err := f.engine.Login(ctx, "ada@example.com", "old password 1"); err == nil {
		t.Fatal("old password must stop working")
	}
	if _, _, err := f.engine.Login(ctx, "ada@example.com", "new password 2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestCompletePasswordResetRequiresVerification(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedResetUser(t, f, "old password 1")

	err := f.engine.CompletePasswordReset(ctx, "ada@example.com", "new password 2")
	asEngineError(t, err, KindAuth)
	if !errors.Is(err, ErrResetNotVerified) {
		t.Fatalf("expected unverified rejection, got %v", err)
	}

	// The stored credential is untouched.
	if _, _, err := f.engine.Login(ctx, "ada@example.com", "old password 1"); err != nil {
		t.Fatalf("old password must keep working: %v", err)
	}
}

func TestCompletePasswordResetRejectsReuse(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedResetUser(t, f, "old password 1")

	if err := f.engine.RequestPasswordReset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	code := storedOTP(t, f.mr, "ada@example.com")
	if err := f.engine.VerifyPasswordReset(ctx, "ada@example.com", code); err != nil {
		t.Fatalf("verify reset: %v", err)
	}

	err := f.engine.CompletePasswordReset(ctx, "ada@example.com", "old password 1")
	asEngineError(t, err, KindValidation)
	if !errors.Is(err, ErrPasswordReuse) {
		t.Fatalf("expected reuse rejection, got %v", err)
	}

	// A reuse rejection does not burn the grant; the user retries with a
	// genuinely new password without re-verifying.
	if !f.mr.Exists(resetGrantKey("ada@example.com")) {
		t.Fatal("reuse rejection must keep the grant")
	}
	if err := f.engine.CompletePasswordReset(ctx, "ada@example.com", "new password 2"); err != nil {
		t.Fatalf("complete with a new password: %v", err)
	}
}

func TestVerifyPasswordResetWrongCodeGrantsNothing(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedResetUser(t, f, "old password 1")

	if err := f.engine.RequestPasswordReset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	code := storedOTP(t, f.mr, "ada@example.com")

	if err := f.engine.VerifyPasswordReset(ctx, "ada@example.com", wrongCode(code)); err == nil {
		t.Fatal("expected wrong-code rejection")
	}
	if f.mr.Exists(resetGrantKey("ada@example.com")) {
		t.Fatal("a failed verification must not record a grant")
	}
}
