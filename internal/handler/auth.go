package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"sweetShopManagement/internal/auth"
	"sweetShopManagement/models"
	"sweetShopManagement/repository"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user account and issues a bearer token for it.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		a.respondError(w, http.StatusBadRequest, "username and password required")
		return
	}
	if !emailRe.MatchString(req.Email) {
		a.respondError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	exists, err := a.users.ExistsByUsernameOrEmail(r.Context(), req.Username, req.Email)
	if err != nil {
		a.internalError(w, "register: exists probe", err)
		return
	}
	if exists {
		a.respondError(w, http.StatusConflict, "username or email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.internalError(w, "register: hash password", err)
		return
	}

	u, err := a.users.Create(r.Context(), req.Username, req.Email, string(hash), models.RoleUser)
	if err != nil {
		// The probe above races against concurrent registrations; the unique
		// indexes are authoritative.
		if errors.Is(err, repository.ErrDuplicateUser) {
			a.respondError(w, http.StatusConflict, "username or email already exists")
			return
		}
		a.internalError(w, "register: create user", err)
		return
	}

	token, err := auth.IssueToken(a.secret, u.ID, auth.TokenTTL)
	if err != nil {
		a.internalError(w, "register: issue token", err)
		return
	}
	a.respondJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

// Login verifies credentials and issues a bearer token. Unknown usernames and
// wrong passwords produce the identical response so usernames cannot be
// enumerated.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		a.respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	u, err := a.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		a.internalError(w, "login: get user", err)
		return
	}
	if u == nil {
		a.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		a.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.IssueToken(a.secret, u.ID, auth.TokenTTL)
	if err != nil {
		a.internalError(w, "login: issue token", err)
		return
	}
	a.respondJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}
