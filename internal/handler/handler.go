package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"sweetShopManagement/repository"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	log    *zap.Logger
	users  *repository.UserRepository
	sweets *repository.SweetRepository
	secret string
}

func NewApp(log *zap.Logger, users *repository.UserRepository, sweets *repository.SweetRepository, jwtSecret string) *App {
	return &App{log: log, users: users, sweets: sweets, secret: jwtSecret}
}

func (a *App) respondJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		a.log.Error("marshal response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		a.log.Error("write response", zap.Error(err))
	}
}

func (a *App) respondError(w http.ResponseWriter, code int, msg string) {
	a.respondJSON(w, code, map[string]string{"error": msg})
}

// internalError logs the unexpected failure and answers with a generic 500.
// No internals leak to clients.
func (a *App) internalError(w http.ResponseWriter, op string, err error) {
	a.log.Error(op, zap.Error(err))
	a.respondError(w, http.StatusInternalServerError, "internal server error")
}

// Health answers liveness probes.
func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
