package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin may trigger administrative operations such as the expiry sweep.
const RoleAdmin = "admin"

type contextKey int

const (
	userIDKey contextKey = iota
	roleKey
	callerSinkKey
)

// Claims are the bearer token claims. The subject is the user ID.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// WithIdentity returns a context carrying the authenticated caller.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// withCallerSink lets an outer middleware learn who the authenticator admitted.
func withCallerSink(ctx context.Context, caller *string) context.Context {
	return context.WithValue(ctx, callerSinkKey, caller)
}

// UserIDFrom returns the authenticated caller's user ID.
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(roleKey).(string)
	return role == RoleAdmin
}

// IssueToken signs an HS256 token for userID. Used by local tooling and tests.
func IssueToken(secret []byte, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// NewAuthenticator rejects requests without a valid bearer token and stores the caller's
// identity in the request context.
func NewAuthenticator(secret []byte, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := ParseToken(secret, tokenString)
			if err != nil {
				logger.Debug("rejected bearer token", slog.String("error", err.Error()))
				unauthorized(w, "invalid bearer token")
				return
			}

			if sink, ok := r.Context().Value(callerSinkKey).(*string); ok {
				*sink = claims.Subject
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Subject, claims.Role)))
		}
		return http.HandlerFunc(fn)
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized", "message": message})
}
