package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"expensedash/internal/core"
)

const (
	spendingByCategoryPath = "/Transactions/GetTransactionByCategory"
	totalSpendingPath      = "/Transactions/GetTotalAmount"
)

// SpendingByCategory expects a JSON array of {category, amountSpent}.
func (c *Client) SpendingByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	body, err := c.call(ctx, "transaction", "by_category", http.MethodGet, spendingByCategoryPath, nil, nil)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Category    *string          `json:"category"`
		AmountSpent *decimal.Decimal `json:"amountSpent"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("spending by category: %w: %v", ErrUnexpectedShape, err)
	}
	out := make([]core.CategoryTotal, 0, len(rows))
	for i, r := range rows {
		if r.Category == nil || r.AmountSpent == nil {
			return nil, fmt.Errorf("spending by category row %d: %w", i, ErrUnexpectedShape)
		}
		out = append(out, core.CategoryTotal{Category: *r.Category, AmountSpent: *r.AmountSpent})
	}
	return out, nil
}

// TotalSpending expects {"totalSpending": <number>}.
func (c *Client) TotalSpending(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.call(ctx, "transaction", "total", http.MethodGet, totalSpendingPath, nil, nil)
	if err != nil {
		return decimal.Zero, err
	}
	var env struct {
		TotalSpending *json.Number `json:"totalSpending"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return decimal.Zero, fmt.Errorf("total spending: %w: %v", ErrUnexpectedShape, err)
	}
	if env.TotalSpending == nil {
		return decimal.Zero, fmt.Errorf("total spending: %w: missing totalSpending", ErrUnexpectedShape)
	}
	total, err := decimal.NewFromString(env.TotalSpending.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("total spending: %w: %v", ErrUnexpectedShape, err)
	}
	return total, nil
}
