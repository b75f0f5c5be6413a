package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"sweetShopManagement/models"
)

type SweetRepository struct {
	db *sql.DB
}

func NewSweetRepository(db *sql.DB) *SweetRepository {
	return &SweetRepository{db: db}
}

func scanSweet(row interface{ Scan(...any) error }) (*models.Sweet, error) {
	var s models.Sweet
	var category sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &category, &s.Price, &s.Quantity); err != nil {
		return nil, err
	}
	if category.Valid {
		v := category.String
		s.Category = &v
	}
	return &s, nil
}

// List returns all catalog rows ordered by id ascending.
func (r *SweetRepository) List(ctx context.Context) ([]models.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, category, price, quantity FROM sweets ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Sweet
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchParams contains the optional, conjunctive catalog filters.
// A nil field imposes no constraint.
type SearchParams struct {
	NameContains *string
	Category     *string
	MinPrice     *float64
	MaxPrice     *float64
}

// Search returns sweets matching all supplied filters, ordered by id asc.
// Price bounds are inclusive; name matching uses LIKE under the database's
// default collation.
func (r *SweetRepository) Search(ctx context.Context, p SearchParams) ([]models.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if p.NameContains != nil && strings.TrimSpace(*p.NameContains) != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+strings.TrimSpace(*p.NameContains)+"%")
	}
	if p.Category != nil && *p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, *p.Category)
	}
	if p.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *p.MinPrice)
	}
	if p.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *p.MaxPrice)
	}

	query := `SELECT id, name, category, price, quantity FROM sweets`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Sweet
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new sweet and returns it with the generated id.
func (r *SweetRepository) Create(ctx context.Context, s *models.Sweet) (*models.Sweet, error) {
	if s == nil {
		return nil, errors.New("sweet is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var category any
	if s.Category != nil {
		category = *s.Category
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO sweets (name, category, price, quantity) VALUES (?, ?, ?, ?)`,
		s.Name, category, s.Price, s.Quantity)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = id
	return s, nil
}

func (r *SweetRepository) GetByID(ctx context.Context, id int64) (*models.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSweet(r.db.QueryRowContext(ctx, `SELECT id, name, category, price, quantity FROM sweets WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// UpdateParams contains the optional fields of a partial update.
// A nil field retains the stored value.
type UpdateParams struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
}

// Update applies a partial update by id and returns the updated row.
// Returns ErrNotFound if the id does not exist. Admin-only and low-contention,
// so read-then-write is acceptable here (unlike Purchase).
func (r *SweetRepository) Update(ctx context.Context, id int64, p UpdateParams) (*models.Sweet, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	if p.Name != nil {
		existing.Name = *p.Name
	}
	if p.Category != nil {
		existing.Category = p.Category
	}
	if p.Price != nil {
		existing.Price = *p.Price
	}
	if p.Quantity != nil {
		existing.Quantity = *p.Quantity
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var category any
	if existing.Category != nil {
		category = *existing.Category
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE sweets SET name = ?, category = ?, price = ?, quantity = ? WHERE id = ?`,
		existing.Name, category, existing.Price, existing.Quantity, id); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a sweet by id. Returns ErrNotFound when no row was affected.
func (r *SweetRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM sweets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purchase decrements stock by qty only if enough stock exists. The check and
// the decrement are a single conditional UPDATE, so concurrent purchasers
// serialize at the storage layer and stock can never go negative.
// Returns ErrNotFound if the id is absent and ErrInsufficientStock if the row
// exists but holds less than qty. On success returns the post-decrement row.
func (r *SweetRepository) Purchase(ctx context.Context, id int64, qty int64) (*models.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE sweets SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`, qty, id, qty)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientStock
	}
	return r.GetByID(ctx, id)
}

// Restock increments stock by qty. Returns ErrNotFound when the id is absent.
// Positive-amount validation happens at the handler.
func (r *SweetRepository) Restock(ctx context.Context, id int64, qty int64) (*models.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE sweets SET quantity = quantity + ? WHERE id = ?`, qty, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
