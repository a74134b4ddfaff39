package http

import (
	"context"
	"net/http"
	"strings"

	"barangay-asset-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

func claimsFrom(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey).(*security.UserClaims)
	return claims
}

// authMiddleware validates the bearer token and stashes the claims on the
// request context. Every route behind the router requires a valid token.
func authMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireStaff gates staff-only operations on the role claim.
func requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || !claims.IsStaff() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "staff role required"})
			return
		}
		next(w, r)
	}
}
