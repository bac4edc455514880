package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mfontenla/easyshop-api/internal/rest"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Exemption admits requests matching Prefix (and Method, when set) past the
// gate without a credential.
type Exemption struct {
	Method string // empty matches any method
	Prefix string
}

// DefaultExemptions mirrors the public surface: login, signup, and GET
// reads of uploaded assets, products, and categories.
func DefaultExemptions() []Exemption {
	return []Exemption{
		{Prefix: "/api/v1/user/login"},
		{Prefix: "/api/v1/user/signup"},
		{Method: http.MethodGet, Prefix: "/uploads"},
		{Method: http.MethodGet, Prefix: "/api/v1/products"},
		{Method: http.MethodGet, Prefix: "/api/v1/categories"},
	}
}

// Gate is the request-level access control: a bearer credential check with
// a configurable exemption list, plus a secondary admin-role check applied
// to selected routes.
type Gate struct {
	tokens     *TokenManager
	exemptions []Exemption
	logger     *slog.Logger
}

func NewGate(tokens *TokenManager, exemptions []Exemption, logger *slog.Logger) *Gate {
	return &Gate{tokens: tokens, exemptions: exemptions, logger: logger}
}

func (g *Gate) exempt(r *http.Request) bool {
	for _, e := range g.exemptions {
		if e.Method != "" && e.Method != r.Method {
			continue
		}
		if strings.HasPrefix(r.URL.Path, e.Prefix) {
			return true
		}
	}
	return false
}

// Authenticate wraps the whole mux. Exempted requests pass through
// untouched; everything else needs a valid bearer token, whose claims are
// attached to the request context for downstream handlers.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			rest.Fail(w, g.logger, http.StatusUnauthorized, "Unauthorized: missing bearer token")
			return
		}

		claims, err := g.tokens.Validate(token)
		if err != nil {
			g.logger.Info("rejected credential", "path", r.URL.Path, "error", err)
			rest.Fail(w, g.logger, http.StatusUnauthorized, "Unauthorized: invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated callers without the admin role flag.
// Applied per-route to the admin-only operations.
func (g *Gate) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			rest.Fail(w, g.logger, http.StatusUnauthorized, "Unauthorized: missing bearer token")
			return
		}
		if !claims.IsAdmin {
			rest.Fail(w, g.logger, http.StatusForbidden, "Forbidden: administrator role required")
			return
		}
		next(w, r)
	}
}

// ClaimsFromContext returns the decoded identity, or nil on exempted or
// unauthenticated requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}
