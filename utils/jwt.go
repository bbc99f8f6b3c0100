package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
)

// RedisClient is the optional shared Redis client used for realtime
// notification broadcast and token revocation. It stays nil when REDIS_ADDR
// is not configured; everything that uses it degrades to DB-only behavior.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		// Startup carries on; broadcast and revocation simply stay off.
		return
	}
	RedisClient = rc
}

type contextKey string

const UserIDKey = contextKey("userID")
const UserRoleKey = contextKey("userRole")
const UserEmailKey = contextKey("userEmail")
const RequestIDKey = contextKey("requestID")

// ValidateAccessToken parses and validates a bearer token issued by the
// identity service. HS256 only; jti revocation is checked against Redis when
// configured.
func ValidateAccessToken(tokenStr string) (jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token expired")
		}
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if jti, ok := claims["jti"].(string); ok && jti != "" && RedisClient != nil {
		revoked, err := RedisClient.Exists(context.Background(), "revoked:"+jti).Result()
		if err == nil && revoked > 0 {
			return nil, errors.New("token revoked")
		}
	}
	return claims, nil
}

// RevokeJTI marks a token id revoked for ttl. No-op without Redis.
func RevokeJTI(jti string, ttl time.Duration) error {
	if RedisClient == nil || jti == "" {
		return nil
	}
	return RedisClient.Set(context.Background(), "revoked:"+jti, "1", ttl).Err()
}

// GetUserID returns the authenticated user id placed in the request context
// by the auth middleware.
func GetUserID(r *http.Request) (uint, bool) {
	v := r.Context().Value(UserIDKey)
	id, ok := v.(uint)
	return id, ok
}

// GetUserRole returns the actor role ("asker" or "solver") from the request
// context.
func GetUserRole(r *http.Request) string {
	if role, ok := r.Context().Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

// GetUserEmail returns the actor's email claim, empty when the identity
// service did not include one.
func GetUserEmail(r *http.Request) string {
	if email, ok := r.Context().Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}
