package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"attendtrack/api/internal/config"
	"attendtrack/api/internal/model"
)

func newTestAuth(t *testing.T, guard *LoginGuard) *AuthService {
	t.Helper()
	tokens := NewTokenService("test-secret", time.Hour, nil, 0)
	cfg := &config.Config{AdminPassword: "admin-pass", HRPassword: "hr-pass"}
	return NewAuthService(newTestDB(t), tokens, guard, cfg)
}

func newTestGuard(t *testing.T) *LoginGuard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLoginGuard(client, 5, 15*time.Minute)
}

func signup(username, email string) *model.SignupRequest {
	return &model.SignupRequest{Username: username, Password: "secret123", Email: email}
}

func TestRegister_DuplicateRejectedWithoutMutation(t *testing.T) {
	svc := newTestAuth(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, signup("alice", "alice@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	tests := []struct {
		name string
		req  *model.SignupRequest
	}{
		{"same username", signup("alice", "other@example.com")},
		{"same email", signup("bob", "alice@example.com")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.req); !errors.Is(err, ErrUserExists) {
				t.Fatalf("error = %v, want ErrUserExists", err)
			}
		})
	}

	var count int64
	if err := svc.db.Model(&model.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("users = %d, want 1", count)
	}
}

func TestAuthenticate_GenericFailure(t *testing.T) {
	svc := newTestAuth(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, signup("alice", "alice@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "secret123"},
		{"wrong password", "alice", "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, "127.0.0.1", tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthenticate_Success(t *testing.T) {
	svc := newTestAuth(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, signup("alice", "alice@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Authenticate(ctx, "127.0.0.1", "alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resp.Token == "" {
		t.Error("no token issued")
	}
	if resp.User.Username != "alice" {
		t.Errorf("username = %q, want %q", resp.User.Username, "alice")
	}
}

func TestAuthenticate_BuiltinProvisioning(t *testing.T) {
	svc := newTestAuth(t, nil)
	ctx := context.Background()

	resp, err := svc.Authenticate(ctx, "127.0.0.1", "admin", "admin-pass")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if resp.User.Role != "admin" {
		t.Errorf("role = %q, want %q", resp.User.Role, "admin")
	}

	// Second login hits the provisioned row, not another insert.
	if _, err := svc.Authenticate(ctx, "127.0.0.1", "admin", "admin-pass"); err != nil {
		t.Fatalf("second admin login: %v", err)
	}
	var count int64
	if err := svc.db.Model(&model.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("admin rows = %d, want 1", count)
	}
}

func TestAuthenticate_LockoutAfterFiveFailures(t *testing.T) {
	guard := newTestGuard(t)
	svc := newTestAuth(t, guard)
	ctx := context.Background()

	if _, err := svc.Register(ctx, signup("alice", "alice@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate(ctx, "10.0.0.1", "alice", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// The sixth attempt is rejected even with the right password.
	if _, err := svc.Authenticate(ctx, "10.0.0.1", "alice", "secret123"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("locked attempt error = %v, want ErrTooManyAttempts", err)
	}

	// A different IP is not affected.
	if _, err := svc.Authenticate(ctx, "10.0.0.2", "alice", "secret123"); err != nil {
		t.Fatalf("other IP login: %v", err)
	}
}

func TestAuthenticate_GuardResetsOnSuccess(t *testing.T) {
	guard := newTestGuard(t)
	svc := newTestAuth(t, guard)
	ctx := context.Background()

	if _, err := svc.Register(ctx, signup("alice", "alice@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 4; i++ {
		svc.Authenticate(ctx, "10.0.0.1", "alice", "wrong")
	}
	if _, err := svc.Authenticate(ctx, "10.0.0.1", "alice", "secret123"); err != nil {
		t.Fatalf("login before lockout: %v", err)
	}

	// Counter was reset; four more failures still stay under the limit.
	for i := 0; i < 4; i++ {
		svc.Authenticate(ctx, "10.0.0.1", "alice", "wrong")
	}
	if _, err := svc.Authenticate(ctx, "10.0.0.1", "alice", "secret123"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}
