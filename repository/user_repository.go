package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"sweetShopManagement/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with the given credentials and role.
// passwordHash must already be hashed; this layer never sees plaintext.
// A username or email collision returns ErrDuplicateUser.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string, role models.Role) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (username, email, password, role) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, string(role))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Username: username, Email: email, PasswordHash: passwordHash, Role: role}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT id, username, email, password, role FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT id, username, email, password, role FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

// ExistsByUsernameOrEmail reports whether any user already holds the given
// username or email. Used for the precise 409 on register; the unique indexes
// remain the real guarantee under races.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ? OR email = ?`, username, email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureAdmin seeds an admin account if no user holds the given username/email yet.
// Returns true when a new admin was inserted. Intended for startup.
func (r *UserRepository) EnsureAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	exists, err := r.ExistsByUsernameOrEmail(ctx, username, username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := r.Create(ctx, username, username, passwordHash, models.RoleAdmin); err != nil {
		// Lost a race against a concurrent seed; the admin exists either way.
		if errors.Is(err, ErrDuplicateUser) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}
