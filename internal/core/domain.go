package core

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	Category struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Code        string `json:"code"`
		Description string `json:"description"`
		IsActive    bool   `json:"isActive"`
	}

	Status struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Code        string `json:"code"`
		Description string `json:"description"`
		IsActive    bool   `json:"isActive"`
	}

	User struct {
		ID       int64  `json:"id"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		// Password is write-only: it is sent on save and never rendered.
		Password string `json:"password"`
		IsActive bool   `json:"isActive"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Status      string          `json:"status"`   // status code
		Category    string          `json:"category"` // category code
		CreatedBy   string          `json:"createdBy"`
		CreatedDate Timestamp       `json:"createdDate"`
		IsActive    bool            `json:"isActive"`
	}
)

var (
	ErrEmptyName        = errors.New("name is required")
	ErrEmptyCode        = errors.New("code is required")
	ErrEmptyDescription = errors.New("description is required")
	ErrEmptyFullName    = errors.New("full name is required")
	ErrInvalidEmail     = errors.New("a valid email is required")
	ErrEmptyPassword    = errors.New("password is required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyStatus      = errors.New("status is required")
	ErrEmptyCategory    = errors.New("category is required")
	ErrEmptyCreatedBy   = errors.New("created by is required")
)

// ErrNotFound reports that no entity has the requested id.
var ErrNotFound = errors.New("not found")

const maxDescriptionLen = 200

// Entity is implemented by every resource record.
type Entity[T any] interface {
	EntityID() int64
	WithID(id int64) T
	Matches(f Filters) bool
	Validate() error
}

func (c Category) EntityID() int64 { return c.ID }

func (c Category) WithID(id int64) Category {
	c.ID = id
	return c
}

func (s Status) EntityID() int64 { return s.ID }

func (s Status) WithID(id int64) Status {
	s.ID = id
	return s
}

func (u User) EntityID() int64 { return u.ID }

func (u User) WithID(id int64) User {
	u.ID = id
	return u
}

func (t Transaction) EntityID() int64 { return t.ID }

func (t Transaction) WithID(id int64) Transaction {
	t.ID = id
	return t
}

// Matches reports whether c satisfies the list filters. Text filters are
// case-insensitive substring matches; empty filters match everything.
func (c Category) Matches(f Filters) bool {
	return contains(c.Name, f["name"]) && contains(c.Code, f["code"])
}

func (s Status) Matches(f Filters) bool {
	return contains(s.Name, f["name"]) && contains(s.Code, f["code"])
}

func (u User) Matches(f Filters) bool {
	return contains(u.FullName, f["name"])
}

func (t Transaction) Matches(f Filters) bool {
	return contains(t.Description, f["name"]) &&
		equalFold(t.Status, f["statusCode"]) &&
		equalFold(t.Category, f["categoryCode"])
}

func contains(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}

func equalFold(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.EqualFold(value, filter)
}

func (c Category) Validate() error {
	return validateCoded(c.Name, c.Code, c.Description)
}

func (s Status) Validate() error {
	return validateCoded(s.Name, s.Code, s.Description)
}

func validateCoded(name, code, description string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	if len(description) > maxDescriptionLen {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Validate checks the fields shared by create and edit. Password rules
// depend on the mode and live in ValidatePassword.
func (u User) Validate() error {
	if strings.TrimSpace(u.FullName) == "" {
		return ErrEmptyFullName
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword requires a password on create. On edit an empty password
// is allowed; a non-empty one must match its confirmation.
func (u User) ValidatePassword(confirm string, editing bool) error {
	if u.Password == "" {
		if editing {
			return nil
		}
		return ErrEmptyPassword
	}
	if u.Password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > maxDescriptionLen {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Status) == "" {
		return ErrEmptyStatus
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.CreatedBy) == "" {
		return ErrEmptyCreatedBy
	}
	return nil
}

// ForSave builds the payload for a save call: id 0 means create, so the id is
// cleared unless the item is being edited.
func ForSave[T interface{ WithID(int64) T }](item T, editing bool) T {
	if !editing {
		return item.WithID(0)
	}
	return item
}
