package handler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sweetShopManagement/models"
	"sweetShopManagement/repository"
)

type sweetRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int64   `json:"quantity"`
}

// amountRequest carries the purchase/restock amount. Amounts are integers only:
// the stock column is integral and fractional amounts would silently truncate.
type amountRequest struct {
	Quantity *float64 `json:"quantity"`
}

func sweetID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseAmount extracts the amount from an optional JSON body, defaulting to 1.
// Zero, negative, and fractional amounts are rejected.
func parseAmount(r *http.Request) (int64, error) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return 0, errors.New("invalid request body")
	}
	if req.Quantity == nil {
		return 1, nil
	}
	q := *req.Quantity
	if q < 1 || q != math.Trunc(q) {
		return 0, errors.New("quantity must be a positive integer")
	}
	return int64(q), nil
}

// ListSweets returns every catalog row, ordered by id.
func (a *App) ListSweets(w http.ResponseWriter, r *http.Request) {
	rows, err := a.sweets.List(r.Context())
	if err != nil {
		a.internalError(w, "list sweets", err)
		return
	}
	if rows == nil {
		rows = []models.Sweet{}
	}
	a.respondJSON(w, http.StatusOK, rows)
}

// SearchSweets filters the catalog by optional name substring, exact category,
// and inclusive price bounds.
func (a *App) SearchSweets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p repository.SearchParams

	if v := q.Get("q"); v != "" {
		p.NameContains = &v
	}
	if v := q.Get("category"); v != "" {
		p.Category = &v
	}
	if v := q.Get("minPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			a.respondError(w, http.StatusBadRequest, "invalid minPrice")
			return
		}
		p.MinPrice = &f
	}
	if v := q.Get("maxPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			a.respondError(w, http.StatusBadRequest, "invalid maxPrice")
			return
		}
		p.MaxPrice = &f
	}

	rows, err := a.sweets.Search(r.Context(), p)
	if err != nil {
		a.internalError(w, "search sweets", err)
		return
	}
	if rows == nil {
		rows = []models.Sweet{}
	}
	a.respondJSON(w, http.StatusOK, rows)
}

// CreateSweet adds a catalog row. Quantity defaults to zero.
func (a *App) CreateSweet(w http.ResponseWriter, r *http.Request) {
	var req sweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || *req.Name == "" || req.Price == nil {
		a.respondError(w, http.StatusBadRequest, "name and price required")
		return
	}
	if *req.Price < 0 {
		a.respondError(w, http.StatusBadRequest, "price must be non-negative")
		return
	}
	s := &models.Sweet{Name: *req.Name, Category: req.Category, Price: *req.Price}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			a.respondError(w, http.StatusBadRequest, "quantity must be non-negative")
			return
		}
		s.Quantity = *req.Quantity
	}

	created, err := a.sweets.Create(r.Context(), s)
	if err != nil {
		a.internalError(w, "create sweet", err)
		return
	}
	a.respondJSON(w, http.StatusCreated, created)
}

// UpdateSweet applies a partial update; fields missing from the body keep
// their stored values.
func (a *App) UpdateSweet(w http.ResponseWriter, r *http.Request) {
	id, err := sweetID(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req sweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Price != nil && *req.Price < 0 {
		a.respondError(w, http.StatusBadRequest, "price must be non-negative")
		return
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		a.respondError(w, http.StatusBadRequest, "quantity must be non-negative")
		return
	}

	updated, err := a.sweets.Update(r.Context(), id, repository.UpdateParams{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			a.respondError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, "update sweet", err)
		return
	}
	a.respondJSON(w, http.StatusOK, updated)
}

// DeleteSweet removes a catalog row.
func (a *App) DeleteSweet(w http.ResponseWriter, r *http.Request) {
	id, err := sweetID(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := a.sweets.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			a.respondError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, "delete sweet", err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PurchaseSweet decrements stock for the authenticated buyer. The decrement is
// conditional at the SQL layer, so concurrent purchases cannot oversell.
func (a *App) PurchaseSweet(w http.ResponseWriter, r *http.Request) {
	id, err := sweetID(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	qty, err := parseAmount(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := a.sweets.Purchase(r.Context(), id, qty)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			a.respondError(w, http.StatusNotFound, "not found")
		case errors.Is(err, repository.ErrInsufficientStock):
			a.respondError(w, http.StatusBadRequest, "insufficient stock")
		default:
			a.internalError(w, "purchase sweet", err)
		}
		return
	}
	a.respondJSON(w, http.StatusOK, s)
}

// RestockSweet increments stock.
func (a *App) RestockSweet(w http.ResponseWriter, r *http.Request) {
	id, err := sweetID(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	qty, err := parseAmount(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := a.sweets.Restock(r.Context(), id, qty)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			a.respondError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, "restock sweet", err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"success": true, "sweet": s})
}
