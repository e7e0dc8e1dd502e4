package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"expensedash/internal/core"
	"expensedash/internal/dashboard"
)

// fieldView is one input of a filter bar or a form.
type fieldView struct {
	Name        string
	Label       string
	Type        string // text, email, password, number, textarea, checkbox, select, hidden
	Value       string
	Checked     bool
	Required    bool
	MaxLength   int
	Step        string
	Min         string
	Placeholder string
	Options     []optionView
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

// rowView is one list row. Cells are already formatted.
type rowView struct {
	ID         int64
	Cells      []string
	EditURL    string
	ConfirmURL string
}

// resourceView binds a dashboard resource to its page, table and form.
type resourceView[T core.Entity[T]] struct {
	res   *dashboard.Resource[T]
	path  string // URL segment
	title string

	columns      []string
	filterLabels []string // aligned with res.FilterKeys
	cells        func(T) []string
	label        func(T) string
	fields       func(ctx context.Context, item T, editing bool) []fieldView
	decode       func(p *RequestBodyParser, editing bool) (dashboard.Submission[T], error)
}

func text(name, label, value string, maxLen int) fieldView {
	return fieldView{Name: name, Label: label, Type: "text", Value: value, Required: true, MaxLength: maxLen}
}

func checkbox(name, label string, checked bool) fieldView {
	return fieldView{Name: name, Label: label, Type: "checkbox", Checked: checked}
}

// Categories and statuses share the same shape.

func codedCells(name, code, description string, active bool) []string {
	return []string{name, code, description, yesNo(active)}
}

func codedFields(name, code, description string, active bool) []fieldView {
	return []fieldView{
		text("name", "Name", name, 100),
		text("code", "Code", code, 20),
		{Name: "description", Label: "Description", Type: "textarea", Value: description, Required: true, MaxLength: 200},
		checkbox("isActive", "Active", active),
	}
}

func decodeID(p *RequestBodyParser) (int64, error) {
	return ParseID(p.Values(), "id", true)
}

func categoryView(d *dashboard.Dashboard) *resourceView[core.Category] {
	return &resourceView[core.Category]{
		res:          d.Categories,
		path:         "categories",
		title:        "Categories",
		columns:      []string{"Name", "Code", "Description", "Active"},
		filterLabels: []string{"Name", "Code"},
		cells: func(c core.Category) []string {
			return codedCells(c.Name, c.Code, c.Description, c.IsActive)
		},
		label: func(c core.Category) string { return c.Name },
		fields: func(_ context.Context, c core.Category, _ bool) []fieldView {
			return codedFields(c.Name, c.Code, c.Description, c.IsActive)
		},
		decode: func(p *RequestBodyParser, editing bool) (dashboard.Submission[core.Category], error) {
			id, err := decodeID(p)
			if err != nil {
				return dashboard.Submission[core.Category]{}, err
			}
			return dashboard.Submission[core.Category]{
				Editing: editing,
				Item: core.Category{
					ID:          id,
					Name:        p.Get("name"),
					Code:        p.Get("code"),
					Description: p.Get("description"),
					IsActive:    p.Bool("isActive"),
				},
			}, nil
		},
	}
}

func statusView(d *dashboard.Dashboard) *resourceView[core.Status] {
	return &resourceView[core.Status]{
		res:          d.Statuses,
		path:         "statuses",
		title:        "Statuses",
		columns:      []string{"Name", "Code", "Description", "Active"},
		filterLabels: []string{"Name", "Code"},
		cells: func(s core.Status) []string {
			return codedCells(s.Name, s.Code, s.Description, s.IsActive)
		},
		label: func(s core.Status) string { return s.Name },
		fields: func(_ context.Context, s core.Status, _ bool) []fieldView {
			return codedFields(s.Name, s.Code, s.Description, s.IsActive)
		},
		decode: func(p *RequestBodyParser, editing bool) (dashboard.Submission[core.Status], error) {
			id, err := decodeID(p)
			if err != nil {
				return dashboard.Submission[core.Status]{}, err
			}
			return dashboard.Submission[core.Status]{
				Editing: editing,
				Item: core.Status{
					ID:          id,
					Name:        p.Get("name"),
					Code:        p.Get("code"),
					Description: p.Get("description"),
					IsActive:    p.Bool("isActive"),
				},
			}, nil
		},
	}
}

var errInvalidDate = errors.New("invalid created date")

func transactionView(d *dashboard.Dashboard) *resourceView[core.Transaction] {
	return &resourceView[core.Transaction]{
		res:          d.Transactions,
		path:         "transactions",
		title:        "Transactions",
		columns:      []string{"Description", "Amount", "Category", "Status", "Created By", "Created", "Active"},
		filterLabels: []string{"Description", "Status code", "Category code"},
		cells: func(t core.Transaction) []string {
			return []string{
				t.Description,
				core.FormatAmount(t.Amount),
				t.Category,
				t.Status,
				t.CreatedBy,
				t.CreatedDate.Display(),
				yesNo(t.IsActive),
			}
		},
		label: func(t core.Transaction) string { return t.Description },
		fields: func(ctx context.Context, t core.Transaction, editing bool) []fieldView {
			opts := d.TransactionOptions(ctx)

			amount := ""
			if editing || !t.Amount.IsZero() {
				amount = t.Amount.StringFixed(2)
			}
			fields := []fieldView{
				{Name: "description", Label: "Description", Type: "textarea", Value: t.Description, Required: true, MaxLength: 200},
				{Name: "amount", Label: "Amount", Type: "number", Value: amount, Required: true, Step: "0.01", Min: "0"},
				categoryField(opts, t.Category),
				statusField(opts, t.Status),
				text("createdBy", "Created By", t.CreatedBy, 100),
				checkbox("isActive", "Active", t.IsActive),
			}
			if editing && !t.CreatedDate.IsZero() {
				fields = append(fields, fieldView{Name: "createdDate", Type: "hidden", Value: t.CreatedDate.Format(time.RFC3339)})
			}
			return fields
		},
		decode: func(p *RequestBodyParser, editing bool) (dashboard.Submission[core.Transaction], error) {
			var sub dashboard.Submission[core.Transaction]
			id, err := decodeID(p)
			if err != nil {
				return sub, err
			}
			amount, err := core.ParseAmount(p.Get("amount"))
			if err != nil {
				return sub, err
			}
			created := core.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
			if v := p.Get("createdDate"); v != "" {
				if created, err = core.ParseTimestamp(v); err != nil {
					return sub, errInvalidDate
				}
			}
			sub.Editing = editing
			sub.Item = core.Transaction{
				ID:          id,
				Description: p.Get("description"),
				Amount:      amount,
				Category:    p.Get("category"),
				Status:      p.Get("status"),
				CreatedBy:   p.Get("createdBy"),
				CreatedDate: created,
				IsActive:    p.Bool("isActive"),
			}
			return sub, nil
		},
	}
}

// categoryField offers the live category list, or a free-text input when
// the list could not be loaded.
func categoryField(opts dashboard.TransactionOptions, current string) fieldView {
	if opts.FreeText {
		return fieldView{Name: "category", Label: "Category", Type: "text", Value: current, Required: true, Placeholder: "Category code"}
	}
	choices := make([]optionView, 0, len(opts.Categories))
	for _, c := range opts.Categories {
		choices = append(choices, optionView{Value: c.Code, Label: c.Name, Selected: strings.EqualFold(c.Code, current)})
	}
	return fieldView{Name: "category", Label: "Category", Type: "select", Required: true, Options: choices}
}

func statusField(opts dashboard.TransactionOptions, current string) fieldView {
	if opts.FreeText {
		return fieldView{Name: "status", Label: "Status", Type: "text", Value: current, Required: true, Placeholder: "Status code"}
	}
	choices := make([]optionView, 0, len(opts.Statuses))
	for _, s := range opts.Statuses {
		choices = append(choices, optionView{Value: s.Code, Label: s.Name, Selected: strings.EqualFold(s.Code, current)})
	}
	return fieldView{Name: "status", Label: "Status", Type: "select", Required: true, Options: choices}
}

func userView(d *dashboard.Dashboard) *resourceView[core.User] {
	return &resourceView[core.User]{
		res:          d.Users,
		path:         "users",
		title:        "Users",
		columns:      []string{"Full Name", "Email", "Active"},
		filterLabels: []string{"Name"},
		cells: func(u core.User) []string {
			return []string{u.FullName, u.Email, yesNo(u.IsActive)}
		},
		label: func(u core.User) string { return u.FullName },
		fields: func(_ context.Context, u core.User, editing bool) []fieldView {
			// Passwords are never echoed back.
			return []fieldView{
				text("fullName", "Full Name", u.FullName, 100),
				{Name: "email", Label: "Email", Type: "email", Value: u.Email, Required: true, MaxLength: 254},
				{Name: "password", Label: "Password", Type: "password", Required: !editing,
					Placeholder: placeholderIf(editing, "Leave blank to keep")},
				{Name: "confirmPassword", Label: "Confirm Password", Type: "password", Required: !editing},
				checkbox("isActive", "Active", u.IsActive),
			}
		},
		decode: func(p *RequestBodyParser, editing bool) (dashboard.Submission[core.User], error) {
			id, err := decodeID(p)
			if err != nil {
				return dashboard.Submission[core.User]{}, err
			}
			confirm := p.Value("confirmPassword")
			return dashboard.Submission[core.User]{
				Editing: editing,
				Item: core.User{
					ID:       id,
					FullName: p.Get("fullName"),
					Email:    p.Get("email"),
					Password: p.Value("password"),
					IsActive: p.Bool("isActive"),
				},
				Check: func(u core.User) error {
					return u.ValidatePassword(confirm, editing)
				},
			}, nil
		},
	}
}

func placeholderIf(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}
