package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService(now time.Time) *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour).
		WithClock(func() time.Time { return now })
}

func TestHMACService_RoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)
	uid, sid := uuid.New(), uuid.New()

	access, err := svc.GenerateAccessToken(uid, sid, "a@b.c")
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	claims, err := svc.ValidateToken(access)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if claims.UserID != uid || claims.SessionID != sid {
		t.Fatalf("unexpected ids in claims: %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess || svc.IsRefreshToken(claims) {
		t.Fatalf("expected access token, got %q", claims.TokenType)
	}

	refresh, err := svc.GenerateRefreshToken(uid, sid)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	claims, err = svc.ValidateToken(refresh)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if !svc.IsRefreshToken(claims) {
		t.Fatalf("expected refresh token")
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestHMACService_Expired(t *testing.T) {
	issued := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	tok, err := newTestService(issued).GenerateAccessToken(uuid.New(), uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = newTestService(issued.Add(time.Hour)).ValidateToken(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_Malformed(t *testing.T) {
	_, err := newTestService(time.Now()).ValidateToken("not-a-jwt")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestHMACService_WrongSecret(t *testing.T) {
	now := time.Now()
	other := NewHMACService("x", "y", time.Minute, time.Hour).WithClock(func() time.Time { return now })
	tok, err := other.GenerateAccessToken(uuid.New(), uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = newTestService(now).ValidateToken(tok)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestHMACService_RejectsNilIDs(t *testing.T) {
	if _, err := newTestService(time.Now()).GenerateAccessToken(uuid.Nil, uuid.New(), ""); err == nil {
		t.Fatalf("expected error for nil user id")
	}
	if _, err := newTestService(time.Now()).GenerateRefreshToken(uuid.New(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil session id")
	}
}
