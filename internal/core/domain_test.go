package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Food", Code: "FOOD", Description: "Groceries", IsActive: true}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{Name: "", Code: "FOOD", Description: "d"},
		{Name: "Food", Code: " ", Description: "d"},
		{Name: "Food", Code: "FOOD", Description: ""},
		{Name: "Food", Code: "FOOD", Description: strings.Repeat("x", 201)},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestUserValidate(t *testing.T) {
	if err := (User{FullName: "Ada Lovelace", Email: "ada@example.com"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (User{FullName: "", Email: "ada@example.com"}).Validate(); !errors.Is(err, ErrEmptyFullName) {
		t.Fatalf("expected ErrEmptyFullName, got %v", err)
	}
	if err := (User{FullName: "Ada", Email: "not-an-email"}).Validate(); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestUserValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		confirm  string
		editing  bool
		want     error
	}{
		{"secret", "secret", false, nil},
		{"secret", "other", false, ErrPasswordMismatch},
		{"", "", false, ErrEmptyPassword},
		{"", "", true, nil},
		{"secret", "", true, ErrPasswordMismatch},
	}
	for i, tc := range cases {
		err := User{Password: tc.password}.ValidatePassword(tc.confirm, tc.editing)
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description: "Lunch",
		Amount:      decimal.RequireFromString("12.50"),
		Status:      "PAID",
		Category:    "FOOD",
		CreatedBy:   "ada",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}

	bads := []func(Transaction) Transaction{
		func(tx Transaction) Transaction { tx.Description = ""; return tx },
		func(tx Transaction) Transaction { tx.Amount = decimal.NewFromInt(-1); return tx },
		func(tx Transaction) Transaction { tx.Status = ""; return tx },
		func(tx Transaction) Transaction { tx.Category = ""; return tx },
		func(tx Transaction) Transaction { tx.CreatedBy = ""; return tx },
	}
	for i, mutate := range bads {
		if err := mutate(good).Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestForSave(t *testing.T) {
	c := Category{ID: 7, Name: "Food", Code: "FOOD"}

	if got := ForSave(c, false); got.ID != 0 {
		t.Fatalf("create should clear id, got %d", got.ID)
	}
	if got := ForSave(c, true); got.ID != 7 {
		t.Fatalf("edit should keep id, got %d", got.ID)
	}
	if got := ForSave(Transaction{ID: 3}, false); got.ID != 0 {
		t.Fatalf("create should clear transaction id, got %d", got.ID)
	}
}

func TestTransactionJSON(t *testing.T) {
	raw := `{"id":4,"description":"Taxi","amount":18.4,"status":"PAID","category":"TRAVEL","createdBy":"ada","createdDate":"2024-05-01T10:20:30.1234567","isActive":true}`

	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("18.4")) {
		t.Fatalf("amount = %s", tx.Amount)
	}
	if tx.CreatedDate.Display() != "2024-05-01" {
		t.Fatalf("createdDate = %q", tx.CreatedDate.Display())
	}

	out, err := json.Marshal(Transaction{Amount: decimal.RequireFromString("18.40")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"amount":18.4`) {
		t.Fatalf("amount should be a JSON number, got %s", out)
	}
	if !strings.Contains(string(out), `"createdDate":null`) {
		t.Fatalf("zero date should be null, got %s", out)
	}
}

func TestMatches(t *testing.T) {
	tx := Transaction{Description: "Team lunch", Status: "PAID", Category: "FOOD"}
	cases := []struct {
		f    Filters
		want bool
	}{
		{Filters{}, true},
		{Filters{"name": "LUNCH"}, true},
		{Filters{"name": "dinner"}, false},
		{Filters{"statusCode": "paid", "categoryCode": "food"}, true},
		{Filters{"statusCode": "PA"}, false},
	}
	for i, tc := range cases {
		if got := tx.Matches(tc.f); got != tc.want {
			t.Fatalf("case %d: Matches(%v) = %v", i, tc.f, got)
		}
	}

	c := Category{Name: "Groceries", Code: "FOOD"}
	if !c.Matches(Filters{"name": "gro", "code": "fo"}) {
		t.Fatal("expected category to match partial name and code")
	}
}
