package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensedash/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "://nope"})
	assert.Error(t, err)
}

func TestListSendsEveryFilterKey(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		io.WriteString(w, `{"success":true,"transactions":[{"id":1,"description":"Lunch","amount":12.5,"status":"PAID","category":"FOOD","createdBy":"ada","isActive":true}]}`)
	})

	res, err := c.Transactions().List(context.Background(), core.Filters{"statusCode": "PAID"})
	require.NoError(t, err)
	assert.Equal(t, "/api/Transactions/GetAllTransactions", gotPath)
	assert.Equal(t, []string{""}, gotQuery["name"])
	assert.Equal(t, []string{"PAID"}, gotQuery["statusCode"])
	assert.Equal(t, []string{""}, gotQuery["categoryCode"])
	require.Len(t, res.Items, 1)
	assert.True(t, res.Success)
	assert.True(t, res.Items[0].Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestListEnvelopes(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		status  int
		success bool
		items   int
		wantErr error
	}{
		{"items", `{"success":true,"category":[{"id":1,"name":"Food","code":"FOOD"}]}`, 200, true, 1, nil},
		{"null items", `{"success":true,"category":null}`, 200, true, 0, nil},
		{"empty", `{"success":true,"category":[]}`, 200, true, 0, nil},
		{"backend says no", `{"success":false}`, 200, false, 0, nil},
		{"missing key", `{"success":true}`, 200, false, 0, ErrUnexpectedShape},
		{"missing success", `{"category":[]}`, 200, false, 0, ErrUnexpectedShape},
		{"not json", `oops`, 200, false, 0, ErrUnexpectedShape},
		{"bare array not allowed", `[]`, 200, false, 0, ErrUnexpectedShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			res, err := c.Categories().List(context.Background(), core.Filters{})
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.success, res.Success)
			assert.Len(t, res.Items, tc.items)
		})
	}
}

func TestUserListAcceptsBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":3,"fullName":"Ada","email":"ada@example.com","isActive":true}]`)
	})
	res, err := c.Users().List(context.Background(), core.Filters{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Ada", res.Items[0].FullName)
}

func TestNon2xxIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaboom", http.StatusInternalServerError)
	})
	_, err := c.Statuses().List(context.Background(), core.Filters{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "kaboom", se.Body)
}

func TestGetAcceptsEntityOrEnvelope(t *testing.T) {
	bodies := []string{
		`{"id":5,"name":"Food","code":"FOOD","description":"d","isActive":true}`,
		`{"success":true,"category":{"id":5,"name":"Food","code":"FOOD","description":"d","isActive":true}}`,
	}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/Category/GetCategoryById", r.URL.Path)
			assert.Equal(t, "5", r.URL.Query().Get("id"))
			io.WriteString(w, body)
		})
		got, err := c.Categories().Get(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.ID)
		assert.Equal(t, "FOOD", got.Code)
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false}`)
	})
	_, err := c.Categories().Get(context.Background(), 5)
	assert.True(t, errors.Is(err, ErrRejected))
}

func TestStatusGetPicksFromList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Status/GetAllStatus", r.URL.Path)
		io.WriteString(w, `{"success":true,"status":[{"id":1,"code":"PENDING"},{"id":2,"code":"PAID"}]}`)
	})
	got, err := c.Statuses().Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "PAID", got.Code)

	_, err = c.Statuses().Get(context.Background(), 9)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSavePostsFullRecord(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"success":true,"message":"Created"}`)
	})

	reply, err := c.Categories().Save(context.Background(), core.Category{Name: "Food", Code: "FOOD"})
	require.NoError(t, err)
	assert.Equal(t, core.Reply{Success: true, Message: "Created"}, reply)
	assert.Equal(t, float64(0), got["id"])
	assert.Equal(t, "Food", got["name"])
	assert.Contains(t, got, "isActive")
}

func TestSaveSurfacesRejection(t *testing.T) {
	for body, want := range map[string]error{
		`{"success":false,"message":"Duplicate"}`: ErrRejected,
		`{"success":tr`:                           ErrMalformedReply,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, body) })
		reply, err := c.Transactions().Save(context.Background(), core.Transaction{})
		assert.True(t, errors.Is(err, want), "body %s: got %v", body, err)
		assert.False(t, reply.Success)
	}
}

func TestDeleteUsesGetWithID(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/User/DeleteUser", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("id"))
		io.WriteString(w, "Deleted")
	})
	reply, err := c.Users().Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, core.Reply{Success: true, Message: "Deleted"}, reply)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSpending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/Transactions/GetTransactionByCategory":
			io.WriteString(w, `[{"category":"Food","amountSpent":20.5},{"category":"Travel","amountSpent":30}]`)
		case "/api/Transactions/GetTotalAmount":
			io.WriteString(w, `{"totalSpending":50.5}`)
		default:
			http.NotFound(w, r)
		}
	})

	rows, err := c.SpendingByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Food", rows[0].Category)

	total, err := c.TotalSpending(context.Background())
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("50.5")))
}

func TestSpendingShapeErrors(t *testing.T) {
	cases := map[string]string{
		"/api/Transactions/GetTransactionByCategory": `{"category":"Food"}`,
		"/api/Transactions/GetTotalAmount":           `{"total":1}`,
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, cases[r.URL.Path])
	})
	_, err := c.SpendingByCategory(context.Background())
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
	_, err = c.TotalSpending(context.Background())
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	_, err = c.Categories().List(context.Background(), core.Filters{})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}
