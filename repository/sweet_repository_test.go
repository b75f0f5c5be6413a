package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sweetShopManagement/internal/testutil"
	"sweetShopManagement/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func seedSweet(t *testing.T, repo *SweetRepository, name, category string, price float64, qty int64) *models.Sweet {
	t.Helper()
	s := &models.Sweet{Name: name, Price: price, Quantity: qty}
	if category != "" {
		s.Category = &category
	}
	created, err := repo.Create(context.Background(), s)
	if err != nil {
		t.Fatalf("seed sweet %q: %v", name, err)
	}
	return created
}

func TestSweetRepository_CRUD(t *testing.T) {
	d := testutil.OpenMigratedDB(t, "sweetrepo")
	repo := NewSweetRepository(d)
	ctx := context.Background()

	s := seedSweet(t, repo, "Ladoo", "Traditional", 10, 0)
	if s.ID == 0 {
		t.Fatalf("expected generated id, got %+v", s)
	}

	// List is ordered by id asc
	seedSweet(t, repo, "Barfi", "Traditional", 8, 3)
	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	if list[0].Name != "Ladoo" || list[1].Name != "Barfi" {
		t.Fatalf("wrong order: %+v", list)
	}

	// Partial update keeps unsupplied fields
	updated, err := repo.Update(ctx, s.ID, UpdateParams{Price: f64Ptr(12)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 12 || updated.Name != "Ladoo" || updated.Quantity != 0 {
		t.Fatalf("partial update lost fields: %+v", updated)
	}

	// Update of a missing id
	if _, err := repo.Update(ctx, 9999, UpdateParams{Name: strPtr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Delete
	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestSweetRepository_Search(t *testing.T) {
	d := testutil.OpenMigratedDB(t, "sweetrepo_search")
	repo := NewSweetRepository(d)
	ctx := context.Background()

	seedSweet(t, repo, "Chocolate Truffle", "Chocolate", 2.5, 20)
	seedSweet(t, repo, "Strawberry Candy", "Fruity", 1.25, 50)
	seedSweet(t, repo, "Caramel Bite", "Caramel", 7.5, 30)
	seedSweet(t, repo, "Dark Chocolate Bar", "Chocolate", 9, 10)

	tests := []struct {
		name   string
		params SearchParams
		want   []string
	}{
		{"no filters", SearchParams{}, []string{"Chocolate Truffle", "Strawberry Candy", "Caramel Bite", "Dark Chocolate Bar"}},
		{"name substring", SearchParams{NameContains: strPtr("Chocolate")}, []string{"Chocolate Truffle", "Dark Chocolate Bar"}},
		{"category exact", SearchParams{Category: strPtr("Fruity")}, []string{"Strawberry Candy"}},
		{"price bounds inclusive", SearchParams{MinPrice: f64Ptr(2.5), MaxPrice: f64Ptr(7.5)}, []string{"Chocolate Truffle", "Caramel Bite"}},
		{"conjunctive filters", SearchParams{NameContains: strPtr("Chocolate"), MaxPrice: f64Ptr(5)}, []string{"Chocolate Truffle"}},
		{"no match", SearchParams{Category: strPtr("Sour")}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tc.params)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d rows, want %d: %+v", len(got), len(tc.want), got)
			}
			for i := range got {
				if got[i].Name != tc.want[i] {
					t.Fatalf("row %d: got %q want %q", i, got[i].Name, tc.want[i])
				}
			}
		})
	}
}

func TestSweetRepository_PurchaseBoundaries(t *testing.T) {
	d := testutil.OpenMigratedDB(t, "sweetrepo_purchase")
	repo := NewSweetRepository(d)
	ctx := context.Background()

	s := seedSweet(t, repo, "Ladoo", "", 10, 5)

	// requested < stock
	after, err := repo.Purchase(ctx, s.ID, 2)
	if err != nil || after.Quantity != 3 {
		t.Fatalf("purchase 2 of 5: %+v err=%v", after, err)
	}

	// requested == stock drains to zero
	after, err = repo.Purchase(ctx, s.ID, 3)
	if err != nil || after.Quantity != 0 {
		t.Fatalf("purchase remaining 3: %+v err=%v", after, err)
	}

	// requested > stock fails and leaves stock unchanged
	if _, err := repo.Purchase(ctx, s.ID, 1); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	cur, err := repo.GetByID(ctx, s.ID)
	if err != nil || cur.Quantity != 0 {
		t.Fatalf("stock changed on failed purchase: %+v err=%v", cur, err)
	}

	// missing id
	if _, err := repo.Purchase(ctx, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSweetRepository_ConcurrentPurchases(t *testing.T) {
	d := testutil.OpenMigratedDB(t, "sweetrepo_concurrent")
	repo := NewSweetRepository(d)
	ctx := context.Background()

	const stock = 5
	const buyers = 16

	s := seedSweet(t, repo, "Ladoo", "", 10, stock)

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Purchase(ctx, s.ID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected purchase error: %v", err)
		}
	}
	if ok != stock || insufficient != buyers-stock {
		t.Fatalf("expected %d successes and %d rejections, got %d and %d", stock, buyers-stock, ok, insufficient)
	}

	cur, err := repo.GetByID(ctx, s.ID)
	if err != nil || cur.Quantity != 0 {
		t.Fatalf("final stock should be 0, got %+v err=%v", cur, err)
	}
}

func TestSweetRepository_Restock(t *testing.T) {
	d := testutil.OpenMigratedDB(t, "sweetrepo_restock")
	repo := NewSweetRepository(d)
	ctx := context.Background()

	s := seedSweet(t, repo, "Ladoo", "", 10, 2)

	after, err := repo.Restock(ctx, s.ID, 3)
	if err != nil || after.Quantity != 5 {
		t.Fatalf("restock: %+v err=%v", after, err)
	}

	if _, err := repo.Restock(ctx, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
