package models

// Sweet is a catalog item with its current stock level.
// It maps to the `sweets` table in SQLite. Category is optional (NULL in the DB).
// Quantity never goes below zero; the repository enforces that at the SQL layer.
type Sweet struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Category *string `db:"category" json:"category"`
	Price    float64 `db:"price" json:"price"`
	Quantity int64   `db:"quantity" json:"quantity"`
}
