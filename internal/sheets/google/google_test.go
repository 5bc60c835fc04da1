package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

type fakeSheets struct {
	mu      sync.Mutex
	calls   []string
	values  [][]string
	failure int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if f.failure != 0 {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, f.failure)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodPut:
		var body struct {
			Values [][]string `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.values = body.Values
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			http.Error(w, "bad input option", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1", "updatedRows": len(body.Values)})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), "sheet-1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestReplaceRows(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	rows := [][]string{
		{"Date", "Type", "Category", "Amount", "Description"},
		{"2024-01-05", "Income", "Salary", "100", ""},
	}
	n, err := c.ReplaceRows(context.Background(), "Transactions", rows)
	if err != nil {
		t.Fatalf("ReplaceRows: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}
	if len(fake.calls) != 2 || !strings.HasPrefix(fake.calls[0], "POST ") || !strings.HasPrefix(fake.calls[1], "PUT ") {
		t.Fatalf("expected clear then update, got %v", fake.calls)
	}
	if !strings.Contains(fake.calls[1], "/v4/spreadsheets/sheet-1/values/") {
		t.Errorf("unexpected update path %q", fake.calls[1])
	}
	if len(fake.values) != 2 || fake.values[1][2] != "Salary" {
		t.Errorf("unexpected values sent: %v", fake.values)
	}
}

func TestReplaceRowsEmptyOnlyClears(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	n, err := c.ReplaceRows(context.Background(), "Transactions", nil)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("expected a single clear call, got %v", fake.calls)
	}
}

func TestReplaceRowsAPIError(t *testing.T) {
	c := newTestClient(t, &fakeSheets{failure: http.StatusForbidden})

	if _, err := c.ReplaceRows(context.Background(), "Transactions", [][]string{{"x"}}); err == nil {
		t.Fatal("expected error from API")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank id")
	}
}

func TestNewFromEnvMissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background(), "sheet-1")
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Bob's Sheet"); got != "'Bob''s Sheet'" {
		t.Errorf("quoteSheet = %q", got)
	}
}
