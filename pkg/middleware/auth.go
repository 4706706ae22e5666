package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/serrors"
	"github.com/fieldops/sopdesk/pkg/tokens"
)

// Authorize verifies the bearer token when present and resolves the caller's
// identity into the context: organisation id, user id and role. The
// organisation id is resolved exactly once here and must not change for the
// remainder of the request. Requests without a token pass through
// unauthenticated; route guards decide whether that is acceptable.
func Authorize(issuer *tokens.Issuer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				httpapi.Error(w, serrors.ErrUnauthorized)
				return
			}

			claims, err := issuer.ValidateAccess(raw)
			if err != nil {
				httpapi.Error(w, err)
				return
			}

			ctx := r.Context()
			ctx = composables.WithTenantID(ctx, claims.OrganisationID)
			ctx = composables.WithUserID(ctx, claims.UserID)
			ctx = composables.WithUserRole(ctx, claims.Role)
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated rejects requests without a resolved identity.
func RequireAuthenticated() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseTenantID(r.Context()); err != nil {
				httpapi.Error(w, serrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects authenticated requests whose role claim differs.
func RequireRole(role string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, err := composables.UseUserRole(r.Context())
			if err != nil {
				httpapi.Error(w, serrors.ErrUnauthorized)
				return
			}
			if got != role {
				httpapi.Error(w, serrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
