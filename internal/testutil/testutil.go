package testutil

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"sweetShopManagement/internal/db"
)

// OpenMigratedDB opens an in-memory SQLite database and applies all migrations.
// Caller does not need to close it; cleanup is registered on t.
func OpenMigratedDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache keeps the data visible across pooled connections.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if _, err := db.MigrateAll(d); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return d
}

// SignedToken returns an HS256 JWT whose subject is the given user id,
// expiring one hour from now.
func SignedToken(t *testing.T, secret, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// WithBearer sets the Authorization header on the request and returns it.
func WithBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
