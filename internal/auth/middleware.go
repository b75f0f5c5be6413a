package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"sweetShopManagement/models"
	"sweetShopManagement/repository"
)

type userKey struct{}

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser retrieves the authenticated user from context (if any).
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// RequireAuth returns middleware that resolves the Bearer token to a live user
// row and attaches it to the request context. A token whose user has since been
// deleted is rejected the same way as a bad signature.
func RequireAuth(users *repository.UserRepository, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing token")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "missing token")
				return
			}

			id, err := ParseToken(strings.TrimSpace(parts[1]), secret)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			u, err := users.GetByID(r.Context(), id)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
				return
			}
			if u == nil {
				unauthorized(w, "invalid token user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireAdmin gates a route to admin users. It composes after RequireAuth;
// a request that somehow reaches it unauthenticated gets 401, a non-admin 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			unauthorized(w, "not authenticated")
			return
		}
		if !u.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "admin only"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
