package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/one2zero1/janejase-backend/internal/model"
)

const testSecret = "test-jwt-secret-32bytes-long!!!!"

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	tok, err := svc.Issue("user-uuid-123", 0)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Errorf("expected JWT format (3 segments), got %q", tok)
	}

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if subject != "user-uuid-123" {
		t.Errorf("subject = %q, want %q", subject, "user-uuid-123")
	}
}

func TestIssue_EmptySubject_ReturnsError(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	if _, err := svc.Issue("", 0); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestVerify_ExpiredToken_ReturnsTokenExpired(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	// 発行時刻を固定し、検証時刻をTTL経過後まで進める
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	tok, err := svc.Issue("user-1", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(11 * time.Minute) }

	_, err = svc.Verify(tok)
	if err == nil {
		t.Fatal("expected error for expired token")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeTokenExpired {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeTokenExpired)
	}
}

func TestVerify_JustBeforeExpiry_Succeeds(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	tok, err := svc.Issue("user-1", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(9 * time.Minute) }

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if subject != "user-1" {
		t.Errorf("subject = %q, want %q", subject, "user-1")
	}
}

func TestVerify_DifferentSecret_ReturnsInvalidSignature(t *testing.T) {
	issuer := NewService(testSecret, time.Hour)
	verifier := NewService("another-secret-entirely!!!!!!!!!", time.Hour)

	tok, err := issuer.Issue("user-1", 0)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = verifier.Verify(tok)
	if err == nil {
		t.Fatal("expected error for token signed with different secret")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidSignature {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidSignature)
	}
}

func TestVerify_MalformedToken_ReturnsUnauthorized(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(tok)
		if err == nil {
			t.Errorf("Verify(%q) should fail", tok)
			continue
		}
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("Verify(%q): expected *model.APIError, got %T", tok, err)
			continue
		}
		if apiErr.Code != model.ErrCodeUnauthorized {
			t.Errorf("Verify(%q): Code = %q, want %q", tok, apiErr.Code, model.ErrCodeUnauthorized)
		}
	}
}
