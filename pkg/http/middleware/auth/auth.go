package auth

import (
	"net/http"
	"strings"

	"github.com/corray333/jersey-shop/pkg/auth"
	"github.com/corray333/jersey-shop/pkg/http/response"
)

type tokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// NewAuthMiddleware rejects requests without a valid bearer token and stores
// the verified claims in the request context.
func NewAuthMiddleware(parser tokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				response.Error(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin must run after NewAuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin() {
			response.Forbidden(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
