package core

import "github.com/shopspring/decimal"

// CategoryTotal is one row of the spending-by-category aggregation.
type CategoryTotal struct {
	Category    string          `json:"category"`
	AmountSpent decimal.Decimal `json:"amountSpent"`
}

// SpendingOverview joins the per-category rows with the grand total.
type SpendingOverview struct {
	Categories []CategoryTotal
	Total      decimal.Decimal
}

// MutationEvent describes a successful save or delete.
type MutationEvent struct {
	Resource  string `json:"resource"`
	Operation string `json:"operation"`
	ID        int64  `json:"id,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
