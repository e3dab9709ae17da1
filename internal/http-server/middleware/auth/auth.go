// Package auth verifies bearer tokens and exposes the authenticated owner id
// to handlers through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"gallery/internal/lib/api/response"
	"gallery/internal/lib/logger/sl"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims identify the user a token was issued for.
type Claims struct {
	UserID string `json:"uid"`
	jwt.StandardClaims
}

type ctxKey struct{}

func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ownerID)
}

// OwnerID returns the id of the authenticated user.
func OwnerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// NewToken issues an HS256 token for userID.
func NewToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates the signature and expiry of tokenString.
func Parse(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func New(log *slog.Logger, secret []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/auth"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err == nil {
				var claims *Claims
				claims, err = Parse(secret, tokenString)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), claims.UserID)))
					return
				}
			}

			log.Warn("request rejected", slog.String("path", r.URL.Path), sl.Err(err))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
		}

		return http.HandlerFunc(fn)
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}

	return strings.TrimSpace(token), nil
}
