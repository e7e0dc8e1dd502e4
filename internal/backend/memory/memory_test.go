package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"expensedash/internal/core"
)

func TestTableSaveListDelete(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable[core.Category]()

	r, err := tbl.Save(ctx, core.Category{Name: "Food", Code: "FOOD", Description: "d"})
	if err != nil || !r.Success || r.Message != "Created" {
		t.Fatalf("unexpected create: %+v err=%v", r, err)
	}

	res, _ := tbl.List(ctx, core.Filters{})
	if len(res.Items) != 1 || res.Items[0].ID != 1 {
		t.Fatalf("unexpected list: %+v", res.Items)
	}

	updated := res.Items[0]
	updated.Name = "Groceries"
	if r, err := tbl.Save(ctx, updated); err != nil || r.Message != "Updated" {
		t.Fatalf("unexpected update: %+v err=%v", r, err)
	}
	got, err := tbl.Get(ctx, 1)
	if err != nil || got.Name != "Groceries" {
		t.Fatalf("unexpected get: %+v err=%v", got, err)
	}

	if _, err := tbl.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tbl.Delete(ctx, 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := tbl.Save(ctx, core.Category{ID: 42, Name: "x", Code: "x", Description: "x"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update of missing id should fail, got %v", err)
	}
}

func TestTableSaveRejectsInvalid(t *testing.T) {
	tbl := NewTable[core.Status]()
	if _, err := tbl.Save(context.Background(), core.Status{Name: "Paid"}); err == nil {
		t.Fatal("expected validation error")
	}
	res, _ := tbl.List(context.Background(), core.Filters{})
	if len(res.Items) != 0 {
		t.Fatalf("invalid item was stored: %+v", res.Items)
	}
}

func TestTableListFilters(t *testing.T) {
	tbl := NewTable(
		core.Category{Name: "Food", Code: "FOOD", Description: "d"},
		core.Category{Name: "Home", Code: "HOME", Description: "d"},
	)
	res, _ := tbl.List(context.Background(), core.Filters{"name": "foo", "code": ""})
	if len(res.Items) != 1 || res.Items[0].Code != "FOOD" {
		t.Fatalf("unexpected filtered list: %+v", res.Items)
	}
}

func TestSpending(t *testing.T) {
	ctx := context.Background()
	s := NewFromFiles(t.TempDir())
	for _, tx := range []core.Transaction{
		{Description: "a", Amount: decimal.RequireFromString("10.50"), Status: "PAID", Category: "FOOD", CreatedBy: "ada"},
		{Description: "b", Amount: decimal.RequireFromString("4.50"), Status: "PAID", Category: "food", CreatedBy: "ada"},
		{Description: "c", Amount: decimal.RequireFromString("100"), Status: "PAID", Category: "MISC", CreatedBy: "ada"},
	} {
		if _, err := s.Transactions().Save(ctx, tx); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	rows, err := s.SpendingByCategory(ctx)
	if err != nil {
		t.Fatalf("spending: %v", err)
	}
	if len(rows) != 2 || rows[0].Category != "Food" || !rows[0].AmountSpent.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[1].Category != "MISC" {
		t.Fatalf("unknown code should be used as label, got %q", rows[1].Category)
	}

	total, _ := s.TotalSpending(ctx)
	if !total.Equal(decimal.NewFromInt(115)) {
		t.Fatalf("total = %s", total)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	res, _ := s.Categories().List(context.Background(), core.Filters{})
	if len(res.Items) == 0 {
		t.Fatalf("expected defaults when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_categories.txt", "# header\nFOOD,Food,Groceries\nHOME\nFOOD,Dup\n\n")
	mustWrite("seed_statuses.txt", "PAID,Paid\n")

	s = NewFromFiles(dir)
	cats, _ := s.Categories().List(context.Background(), core.Filters{})
	if len(cats.Items) != 2 || cats.Items[0].Code != "FOOD" || cats.Items[1].Name != "HOME" {
		t.Fatalf("unexpected cats: %+v", cats.Items)
	}
	statuses, _ := s.Statuses().List(context.Background(), core.Filters{})
	if len(statuses.Items) != 1 || statuses.Items[0].Description != "Paid" {
		t.Fatalf("unexpected statuses: %+v", statuses.Items)
	}
}
