package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const counselorClaimsKey contextKey = "counselorClaims"

// CounselorClaims identifies the counselor behind an admin-surface request.
// Subject carries the counselor ID; Name is optional display identity.
type CounselorClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// CounselorJWT guards the counselor admin surface with an HMAC-signed JWT.
// An empty secret disables the surface entirely rather than leaving it open.
func CounselorJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "counselor access disabled", http.StatusUnauthorized)
				return
			}
			tokenString, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims := &CounselorClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims,
				func(*jwt.Token) (any, error) { return []byte(secret), nil },
				jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			)
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), counselorClaimsKey, *claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// CounselorFromContext returns the verified counselor claims, if any.
func CounselorFromContext(ctx context.Context) (CounselorClaims, bool) {
	claims, ok := ctx.Value(counselorClaimsKey).(CounselorClaims)
	return claims, ok
}
