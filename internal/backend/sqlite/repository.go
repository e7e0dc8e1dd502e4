package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensedash/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db           *sql.DB
	categories   *Table[core.Category]
	statuses     *Table[core.Status]
	transactions *Table[core.Transaction]
	users        *Table[core.User]
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:           db,
		categories:   &Table[core.Category]{db: db, schema: categorySchema},
		statuses:     &Table[core.Status]{db: db, schema: statusSchema},
		transactions: &Table[core.Transaction]{db: db, schema: transactionSchema},
		users:        &Table[core.User]{db: db, schema: userSchema},
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Categories() *Table[core.Category] { return r.categories }

func (r *SQLiteRepository) Statuses() *Table[core.Status] { return r.statuses }

func (r *SQLiteRepository) Transactions() *Table[core.Transaction] { return r.transactions }

func (r *SQLiteRepository) Users() *Table[core.User] { return r.users }

// SpendingByCategory sums amounts per category code, labelled with the
// category name when one exists.
func (r *SQLiteRepository) SpendingByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, t.category), t.amount
		FROM transactions t
		LEFT JOIN categories c ON UPPER(c.code) = UPPER(t.category)
		ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("query category sums: %w", err)
	}
	defer rows.Close()

	var order []string
	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var label, amount string
		if err := rows.Scan(&label, &amount); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		if _, ok := sums[label]; !ok {
			order = append(order, label)
		}
		sums[label] = sums[label].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category sums: %w", err)
	}

	out := make([]core.CategoryTotal, 0, len(order))
	for _, label := range order {
		out = append(out, core.CategoryTotal{Category: label, AmountSpent: sums[label]})
	}
	return out, nil
}

func (r *SQLiteRepository) TotalSpending(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.SpendingByCategory(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.AmountSpent)
	}
	return total, nil
}

// schema maps one resource onto its table.
type schema[T core.Entity[T]] struct {
	table   string
	columns []string // excluding id
	// filters maps a filter key to the SQL predicate it binds.
	filters map[string]string
	scan    func(sc interface{ Scan(...any) error }) (T, error)
	values  func(item T) []any
}

// Table is a SQLite-backed resource store.
type Table[T core.Entity[T]] struct {
	db     *sql.DB
	schema schema[T]
}

func (t *Table[T]) List(ctx context.Context, f core.Filters) (core.ListResult[T], error) {
	var where []string
	var args []any
	for key, pred := range t.schema.filters {
		v := strings.TrimSpace(f[key])
		if v == "" {
			continue
		}
		where = append(where, pred)
		args = append(args, v)
	}
	q := fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(t.schema.columns, ", "), t.schema.table)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return core.ListResult[T]{}, fmt.Errorf("list %s: %w", t.schema.table, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := t.schema.scan(rows)
		if err != nil {
			return core.ListResult[T]{}, fmt.Errorf("scan %s: %w", t.schema.table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return core.ListResult[T]{}, fmt.Errorf("iterate %s: %w", t.schema.table, err)
	}
	return core.ListResult[T]{Success: true, Items: items}, nil
}

func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	q := fmt.Sprintf("SELECT id, %s FROM %s WHERE id = ?", strings.Join(t.schema.columns, ", "), t.schema.table)
	item, err := t.schema.scan(t.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return item, fmt.Errorf("%s id %d: %w", t.schema.table, id, core.ErrNotFound)
	}
	if err != nil {
		return item, fmt.Errorf("get %s %d: %w", t.schema.table, id, err)
	}
	return item, nil
}

// Save inserts when the id is 0 and updates otherwise.
func (t *Table[T]) Save(ctx context.Context, item T) (core.Reply, error) {
	if err := item.Validate(); err != nil {
		return core.Reply{}, err
	}

	cols := t.schema.columns
	values := t.schema.values(item)

	if item.EntityID() == 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.schema.table, strings.Join(cols, ", "), placeholders)
		res, err := t.db.ExecContext(ctx, q, values...)
		if err != nil {
			return core.Reply{}, fmt.Errorf("insert %s: %w", t.schema.table, err)
		}
		id, _ := res.LastInsertId()
		slog.DebugContext(ctx, "Row inserted", "table", t.schema.table, "id", id)
		return core.Reply{Success: true, Message: "Created"}, nil
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.schema.table, strings.Join(sets, ", "))
	res, err := t.db.ExecContext(ctx, q, append(values, item.EntityID())...)
	if err != nil {
		return core.Reply{}, fmt.Errorf("update %s: %w", t.schema.table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Reply{}, fmt.Errorf("%s id %d: %w", t.schema.table, item.EntityID(), core.ErrNotFound)
	}
	return core.Reply{Success: true, Message: "Updated"}, nil
}

func (t *Table[T]) Delete(ctx context.Context, id int64) (core.Reply, error) {
	res, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.schema.table), id)
	if err != nil {
		return core.Reply{}, fmt.Errorf("delete %s: %w", t.schema.table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Reply{}, fmt.Errorf("%s id %d: %w", t.schema.table, id, core.ErrNotFound)
	}
	return core.Reply{Success: true, Message: "Deleted"}, nil
}

const (
	likeName = "LOWER(name) LIKE '%' || LOWER(?) || '%'"
	likeCode = "LOWER(code) LIKE '%' || LOWER(?) || '%'"
)

var categorySchema = schema[core.Category]{
	table:   "categories",
	columns: []string{"name", "code", "description", "is_active"},
	filters: map[string]string{"name": likeName, "code": likeCode},
	scan: func(sc interface{ Scan(...any) error }) (core.Category, error) {
		var c core.Category
		err := sc.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.IsActive)
		return c, err
	},
	values: func(c core.Category) []any {
		return []any{c.Name, c.Code, c.Description, c.IsActive}
	},
}

var statusSchema = schema[core.Status]{
	table:   "statuses",
	columns: []string{"name", "code", "description", "is_active"},
	filters: map[string]string{"name": likeName, "code": likeCode},
	scan: func(sc interface{ Scan(...any) error }) (core.Status, error) {
		var s core.Status
		err := sc.Scan(&s.ID, &s.Name, &s.Code, &s.Description, &s.IsActive)
		return s, err
	},
	values: func(s core.Status) []any {
		return []any{s.Name, s.Code, s.Description, s.IsActive}
	},
}

var userSchema = schema[core.User]{
	table:   "users",
	columns: []string{"full_name", "email", "password", "is_active"},
	filters: map[string]string{"name": "LOWER(full_name) LIKE '%' || LOWER(?) || '%'"},
	scan: func(sc interface{ Scan(...any) error }) (core.User, error) {
		var u core.User
		err := sc.Scan(&u.ID, &u.FullName, &u.Email, &u.Password, &u.IsActive)
		return u, err
	},
	values: func(u core.User) []any {
		return []any{u.FullName, u.Email, u.Password, u.IsActive}
	},
}

var transactionSchema = schema[core.Transaction]{
	table:   "transactions",
	columns: []string{"description", "amount", "status", "category", "created_by", "created_date", "is_active"},
	filters: map[string]string{
		"name":         "LOWER(description) LIKE '%' || LOWER(?) || '%'",
		"statusCode":   "UPPER(status) = UPPER(?)",
		"categoryCode": "UPPER(category) = UPPER(?)",
	},
	scan: func(sc interface{ Scan(...any) error }) (core.Transaction, error) {
		var tx core.Transaction
		var amount, created string
		err := sc.Scan(&tx.ID, &tx.Description, &amount, &tx.Status, &tx.Category, &tx.CreatedBy, &created, &tx.IsActive)
		if err != nil {
			return tx, err
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return tx, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		if created != "" {
			if tx.CreatedDate, err = core.ParseTimestamp(created); err != nil {
				return tx, err
			}
		}
		return tx, nil
	},
	values: func(tx core.Transaction) []any {
		created := tx.CreatedDate.Time
		if created.IsZero() {
			created = time.Now().UTC()
		}
		return []any{tx.Description, tx.Amount.String(), tx.Status, tx.Category, tx.CreatedBy, created.Format(time.RFC3339), tx.IsActive}
	},
}
