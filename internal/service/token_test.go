package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, nil, 0)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	username, err := svc.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q, want %q", username, "alice")
	}
	if svc.IsExpired(token) {
		t.Error("fresh token reported expired")
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute, nil, 0)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Validate(context.Background(), token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
	if !svc.IsExpired(token) {
		t.Error("expired token not reported expired")
	}
}

func TestTokenService_Invalid(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, nil, 0)

	for _, raw := range []string{"", "garbage", "aa.bb.cc"} {
		if _, err := svc.Validate(context.Background(), raw); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Validate(%q) error = %v, want ErrTokenInvalid", raw, err)
		}
	}

	// Token signed with a different secret fails verification.
	other := NewTokenService("other-secret", time.Hour, nil, 0)
	token, err := other.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Validate(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("cross-secret error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_ValidationCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cacheTTL := 15 * time.Minute
	svc := NewTokenService("test-secret", time.Hour, client, cacheTTL)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Validate(context.Background(), token); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("cached keys = %d, want 1", len(keys))
	}
	if ttl := mr.TTL(keys[0]); ttl != cacheTTL {
		t.Errorf("cache TTL = %s, want %s", ttl, cacheTTL)
	}

	// A cached entry answers even after the token itself would fail, the
	// documented revocation window.
	mr.Set(keys[0], "alice")
	if _, err := svc.Validate(context.Background(), token); err != nil {
		t.Fatalf("cached Validate: %v", err)
	}
}
