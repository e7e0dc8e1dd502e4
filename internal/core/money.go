package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ErrInvalidAmount = errors.New("amount must be a number greater than or equal to 0")

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

func init() {
	// The backend binds amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount parses a user-entered amount. Both '.' and ',' are accepted as
// decimal separator and the value is rounded to cents. Signs are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "+-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// FormatAmount renders d as US dollars, e.g. $1,234.50. The value is never
// converted to float, so large amounts keep every digit.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
		d = d.Neg()
	}
	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "$" + groupThousands(d.Truncate(0), whole) + "." + cents
}

var maxGroupedByPrinter = decimal.NewFromInt(math.MaxInt64)

// groupThousands inserts US thousands separators into the digits of whole.
func groupThousands(whole decimal.Decimal, digits string) string {
	if whole.LessThanOrEqual(maxGroupedByPrinter) {
		return amountPrinter.Sprint(number.Decimal(whole.IntPart()))
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
