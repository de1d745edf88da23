package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "landregistry/pkg/domain"
)

type contextKeyCaller struct{}

// Caller retrieves the authenticated caller identity from the context.
func Caller(ctx context.Context) id.Identity {
	identity, _ := ctx.Value(contextKeyCaller{}).(id.Identity)
	return identity
}

func withCaller(ctx context.Context, identity id.Identity) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, identity)
}

// IdentityValidator resolves a bearer token to a caller identity.
type IdentityValidator interface {
	Validate(tokenString string) (id.Identity, error)
}

// HMACValidator validates HS256 tokens whose subject claim carries the caller
// identity.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(key string) *HMACValidator {
	return &HMACValidator{key: []byte(key)}
}

func (v *HMACValidator) Validate(tokenString string) (id.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return id.Zero, fmt.Errorf("parse token: %w", err)
	}
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return id.Zero, fmt.Errorf("token subject: %w", err)
	}
	identity, ok := id.ParseIdentity(subject)
	if !ok {
		return id.Zero, fmt.Errorf("token subject is blank")
	}
	return identity, nil
}

// MintToken issues an HS256 token for identity. Used by tooling and tests;
// the registry itself only validates.
func (v *HMACValidator) MintToken(identity id.Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": identity.String(),
	})
	return token.SignedString(v.key)
}

// RequireCaller resolves the caller identity for every request. With a
// validator configured it demands a bearer token; without one it falls back
// to the X-Caller-Identity header, which keeps development and tests simple.
func RequireCaller(validator IdentityValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var identity id.Identity

			if validator != nil {
				const bearerPrefix = "Bearer "
				header := r.Header.Get("Authorization")
				if !strings.HasPrefix(header, bearerPrefix) {
					writeUnauthorized(w, "missing bearer token")
					return
				}
				resolved, err := validator.Validate(strings.TrimPrefix(header, bearerPrefix))
				if err != nil {
					logger.WarnContext(r.Context(), "token rejected",
						"error", err,
						"request_id", GetRequestID(r.Context()),
					)
					writeUnauthorized(w, "invalid token")
					return
				}
				identity = resolved
			} else {
				resolved, ok := id.ParseIdentity(r.Header.Get("X-Caller-Identity"))
				if !ok {
					writeUnauthorized(w, "missing caller identity")
					return
				}
				identity = resolved
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), identity)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"error":"unauthorized","message":%q}`, message)
}
