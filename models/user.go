package models

// Role is the coarse authorization tag attached to every user.
// Keeping it a dedicated type (rather than a bare string compared ad hoc)
// means handlers can only ever check against the two known values.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account in the system.
// It maps to the `users` table in SQLite. The password hash never leaves the server.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password" json:"-"`
	Role         Role   `db:"role" json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
