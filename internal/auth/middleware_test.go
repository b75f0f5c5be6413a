package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetShopManagement/internal/testutil"
	"sweetShopManagement/models"
	"sweetShopManagement/repository"
)

func authedProbe(t *testing.T, users *repository.UserRepository) (http.Handler, *bool) {
	t.Helper()
	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		require.True(t, ok, "user missing from context")
		require.NotZero(t, u.ID)
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(users, testSecret)(inner), &reached
}

func TestRequireAuth(t *testing.T) {
	d := testutil.OpenMigratedDB(t, "mw_auth")
	users := repository.NewUserRepository(d)
	ctx := context.Background()

	u, err := users.Create(ctx, "alice", "alice@x.com", "h", models.RoleUser)
	require.NoError(t, err)

	valid, err := IssueToken(testSecret, u.ID, time.Hour)
	require.NoError(t, err)

	deleted, err := users.Create(ctx, "ghost", "ghost@x.com", "h", models.RoleUser)
	require.NoError(t, err)
	ghostToken, err := IssueToken(testSecret, deleted.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, users.Delete(ctx, deleted.ID))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + testutil.SignedToken(t, "other-secret", strconv.FormatInt(u.ID, 10)), http.StatusUnauthorized},
		{"user deleted after issuance", "Bearer " + ghostToken, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, reached := authedProbe(t, users)
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantStatus == http.StatusOK, *reached)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireAdmin(inner)

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: 1, Role: models.RoleUser}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"admin only"}`, rec.Body.String())
	})

	t.Run("admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: 1, Role: models.RoleAdmin}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
