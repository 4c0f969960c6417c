package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrTokenInvalid covers malformed tokens and bad signatures.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for structurally valid but expired tokens.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and validates signed bearer tokens.
// Validation results are cached in Redis keyed by a digest of the raw
// token, so a token revoked out of band can stay valid for up to the
// cache TTL. Immediate revocation is an explicit non-goal.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewTokenService creates a token service. redisClient may be nil, in
// which case validation is never cached.
func NewTokenService(secret string, ttl time.Duration, redisClient *redis.Client, cacheTTL time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

// Issue creates a signed token with subject = username.
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the subject username.
func (s *TokenService) Validate(ctx context.Context, raw string) (string, error) {
	if username, ok := s.cachedUsername(ctx, raw); ok {
		return username, nil
	}

	username, err := s.verify(raw)
	if err != nil {
		return "", err
	}

	s.cacheUsername(ctx, raw, username)
	return username, nil
}

// IsExpired reports whether a token is structurally valid but expired.
func (s *TokenService) IsExpired(raw string) bool {
	_, err := s.verify(raw)
	return errors.Is(err, ErrTokenExpired)
}

func (s *TokenService) verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (s *TokenService) cachedUsername(ctx context.Context, raw string) (string, bool) {
	if s.redis == nil {
		return "", false
	}
	username, err := s.redis.Get(ctx, tokenCacheKey(raw)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[Token] Cache lookup failed: %v", err)
		}
		return "", false
	}
	return username, true
}

func (s *TokenService) cacheUsername(ctx context.Context, raw, username string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, tokenCacheKey(raw), username, s.cacheTTL).Err(); err != nil {
		log.Printf("[Token] Cache store failed: %v", err)
	}
}

func tokenCacheKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "att:token:" + hex.EncodeToString(sum[:])
}
