package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attendtrack/api/internal/config"
	"attendtrack/api/internal/model"
)

var (
	// ErrInvalidCredentials hides whether the username or password was
	// wrong, so login failures never leak which accounts exist.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists is returned when signup hits an existing username or email.
	ErrUserExists = errors.New("username or email already exists")
	// ErrTooManyAttempts is returned while a login lockout window is active.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

// Built-in accounts provisioned on first reference.
var builtinAccounts = map[string]bool{
	"admin": true,
	"hr":    true,
}

// AuthService handles signup and login.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
	guard  *LoginGuard
	cfg    *config.Config
}

// NewAuthService creates a new auth service. guard may be nil to disable
// the failed-login lockout.
func NewAuthService(db *gorm.DB, tokens *TokenService, guard *LoginGuard, cfg *config.Config) *AuthService {
	return &AuthService{db: db, tokens: tokens, guard: guard, cfg: cfg}
}

// Register creates a user and issues a token. Nothing is persisted when
// the username or email is already taken.
func (s *AuthService) Register(ctx context.Context, req *model.SignupRequest) (*model.LoginResponse, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username: req.Username,
		Password: string(hashed),
		Email:    req.Email,
		Role:     "user",
		Status:   1,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, User: user}, nil
}

// Authenticate verifies credentials and issues a token. All lookup and
// verification failures collapse to ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, ip, username, password string) (*model.LoginResponse, error) {
	if s.guard != nil {
		locked, err := s.guard.IsLocked(ctx, ip, username)
		if err != nil {
			log.Printf("[Auth] Login guard check failed: %v", err)
		} else if locked {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.lookupUser(ctx, username)
	if err != nil {
		s.recordFailure(ctx, ip, username)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.recordFailure(ctx, ip, username)
		return nil, ErrInvalidCredentials
	}

	if user.Status != 1 {
		s.recordFailure(ctx, ip, username)
		return nil, ErrInvalidCredentials
	}

	if s.guard != nil {
		if err := s.guard.Reset(ctx, ip, username); err != nil {
			log.Printf("[Auth] Login guard reset failed: %v", err)
		}
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, User: *user}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, ip, username string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Fail(ctx, ip, username); err != nil {
		log.Printf("[Auth] Login guard update failed: %v", err)
	}
}

// lookupUser finds a user, provisioning the built-in accounts on first
// reference with passwords taken from config.
func (s *AuthService) lookupUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, ok := builtinAccounts[username]; !ok {
		return nil, err
	}
	return s.provisionBuiltin(ctx, username)
}

func (s *AuthService) provisionBuiltin(ctx context.Context, username string) (*model.User, error) {
	password := s.cfg.AdminPassword
	if username == "hr" {
		password = s.cfg.HRPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username: username,
		Password: string(hashed),
		Email:    username + "@attendtrack.local",
		Role:     username,
		Status:   1,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent login may have provisioned it first.
		var existing model.User
		if lookupErr := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	log.Printf("[Auth] Provisioned built-in account %q", username)
	return &user, nil
}

// LoginGuard counts consecutive failed logins per (ip, username) in a
// Redis fixed window, so the lockout survives restarts and is shared
// across instances.
type LoginGuard struct {
	redis       *redis.Client
	maxFailures int
	window      time.Duration
}

// NewLoginGuard creates a login guard.
func NewLoginGuard(redisClient *redis.Client, maxFailures int, window time.Duration) *LoginGuard {
	return &LoginGuard{redis: redisClient, maxFailures: maxFailures, window: window}
}

// IsLocked reports whether further attempts are currently rejected.
func (g *LoginGuard) IsLocked(ctx context.Context, ip, username string) (bool, error) {
	count, err := g.redis.Get(ctx, g.key(ip, username)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return count >= g.maxFailures, nil
}

// Fail records one failed attempt. The window starts at the first failure.
func (g *LoginGuard) Fail(ctx context.Context, ip, username string) error {
	key := g.key(ip, username)
	count, err := g.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return g.redis.Expire(ctx, key, g.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, ip, username string) error {
	return g.redis.Del(ctx, g.key(ip, username)).Err()
}

func (g *LoginGuard) key(ip, username string) string {
	return fmt.Sprintf("att:loginfail:%s:%s", ip, username)
}
