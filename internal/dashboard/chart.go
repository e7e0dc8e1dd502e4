package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"expensedash/internal/backend"
	"expensedash/internal/core"
	"expensedash/internal/log"
)

// Bar is one rendered chart bar. Width is a percentage of the largest
// category.
type Bar struct {
	Label  string
	Amount string
	Width  int
}

// ChartState is what the chart partial renders.
type ChartState struct {
	Bars  []Bar
	Total string
	Error string
}

const chartError = "Failed to load data"

// LoadChart fetches the category breakdown and the grand total
// concurrently and renders only once both have succeeded.
func LoadChart(ctx context.Context, spending backend.SpendingReader, sl *log.StructuredLogger) ChartState {
	sl = orDefault(sl)
	var (
		rows  []core.CategoryTotal
		total decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = spending.SpendingByCategory(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = spending.TotalSpending(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		sl.LogError(ctx, chartError, err, log.ComponentDashboard, log.OpChart, nil)
		return ChartState{Error: chartError}
	}

	return ChartState{
		Bars:  bars(rows),
		Total: core.FormatAmount(total),
	}
}

func bars(rows []core.CategoryTotal) []Bar {
	max := decimal.Zero
	for _, r := range rows {
		if r.AmountSpent.GreaterThan(max) {
			max = r.AmountSpent
		}
	}

	out := make([]Bar, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bar{
			Label:  r.Category,
			Amount: core.FormatAmount(r.AmountSpent),
			Width:  barWidth(r.AmountSpent, max),
		})
	}
	return out
}

// barWidth is round-half-up(v*100/max), at least 2 for positive values and
// at most 100.
func barWidth(v, max decimal.Decimal) int {
	if !v.IsPositive() || !max.IsPositive() {
		return 0
	}
	w := int(v.Mul(decimal.NewFromInt(100)).Div(max).Round(0).IntPart())
	if w < 2 {
		w = 2
	}
	if w > 100 {
		w = 100
	}
	return w
}
