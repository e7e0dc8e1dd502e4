package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"expensedash/internal/core"
)

type Store struct {
	categories   *Table[core.Category]
	statuses     *Table[core.Status]
	transactions *Table[core.Transaction]
	users        *Table[core.User]
}

func New(cats []core.Category, statuses []core.Status) *Store {
	return &Store{
		categories:   NewTable(cats...),
		statuses:     NewTable(statuses...),
		transactions: NewTable[core.Transaction](),
		users:        NewTable[core.User](),
	}
}

// NewFromFiles seeds categories and statuses from "CODE,Name,Description"
// lines in seed_categories.txt and seed_statuses.txt under base. Missing
// files fall back to a small default set.
func NewFromFiles(base string) *Store {
	cats := make([]core.Category, 0)
	for _, rec := range readRecords(filepath.Join(base, "seed_categories.txt")) {
		cats = append(cats, core.Category{Code: rec[0], Name: rec[1], Description: rec[2], IsActive: true})
	}
	statuses := make([]core.Status, 0)
	for _, rec := range readRecords(filepath.Join(base, "seed_statuses.txt")) {
		statuses = append(statuses, core.Status{Code: rec[0], Name: rec[1], Description: rec[2], IsActive: true})
	}
	if len(cats) == 0 {
		cats = []core.Category{
			{Code: "FOOD", Name: "Food", Description: "Groceries and restaurants", IsActive: true},
			{Code: "HOME", Name: "Home", Description: "Rent and utilities", IsActive: true},
			{Code: "TRAVEL", Name: "Travel", Description: "Transport and trips", IsActive: true},
		}
	}
	if len(statuses) == 0 {
		statuses = []core.Status{
			{Code: "PENDING", Name: "Pending", Description: "Awaiting payment", IsActive: true},
			{Code: "PAID", Name: "Paid", Description: "Settled", IsActive: true},
		}
	}
	return New(cats, statuses)
}

func (s *Store) Categories() *Table[core.Category] { return s.categories }
func (s *Store) Statuses() *Table[core.Status] { return s.statuses }
func (s *Store) Transactions() *Table[core.Transaction] { return s.transactions }
func (s *Store) Users() *Table[core.User] { return s.users }

// SpendingByCategory sums transaction amounts per category code, labelled
// with the category name when it is known.
func (s *Store) SpendingByCategory(_ context.Context) ([]core.CategoryTotal, error) {
	names := make(map[string]string)
	for _, c := range s.categories.snapshot() {
		names[strings.ToUpper(c.Code)] = c.Name
	}

	var order []string
	sums := make(map[string]decimal.Decimal)
	for _, tx := range s.transactions.snapshot() {
		key := strings.ToUpper(tx.Category)
		if _, ok := sums[key]; !ok {
			order = append(order, key)
			sums[key] = decimal.Zero
		}
		sums[key] = sums[key].Add(tx.Amount)
	}

	out := make([]core.CategoryTotal, 0, len(order))
	for _, key := range order {
		label := names[key]
		if label == "" {
			label = key
		}
		out = append(out, core.CategoryTotal{Category: label, AmountSpent: sums[key]})
	}
	return out, nil
}

func (s *Store) TotalSpending(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range s.transactions.snapshot() {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func readRecords(path string) [][3]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out [][3]string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		var rec [3]string
		for i := range parts {
			rec[i] = strings.TrimSpace(parts[i])
		}
		if rec[0] == "" {
			continue
		}
		if rec[1] == "" {
			rec[1] = rec[0]
		}
		if rec[2] == "" {
			rec[2] = rec[1]
		}
		if _, ok := seen[rec[0]]; ok {
			continue
		}
		seen[rec[0]] = struct{}{}
		out = append(out, rec)
	}
	return out
}
