package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockForecast/internal/cache"
	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTidyRows_SortDedupeFilter(t *testing.T) {
	rows := []model.RawRow{
		{Date: "2024-01-03", Close: 3.0},
		{Date: "2024-01-01", Close: 1.0},
		{Date: "2024-01-03", Close: 33.0},
		{Date: "2023-12-31", Close: 0.5},
		{Date: "garbage", Close: 9.0},
		{Date: "2024-01-02", Close: 2.0},
	}
	got := tidyRows(rows, date(2024, 1, 1), date(2024, 1, 3))
	want := []interface{}{1.0, 2.0, 33.0, 9.0}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Close != w {
			t.Errorf("row %d: expected close %v, got %v", i, w, got[i].Close)
		}
	}
}

const yahooFixture = `{"chart":{"result":[{"meta":{"gmtoffset":-18000},
"timestamp":[1704205800,1704292200,1704378600],
"indicators":{"quote":[{"open":[100.5,null,102.0],"high":[101,103,104],"low":[99,100,101],
"close":[100.8,null,103.2],"volume":[1000,2000,null]}],
"adjclose":[{"adjclose":[100.7,null,103.1]}]}}],"error":null}}`

func TestYahooLoader_PreservesNulls(t *testing.T) {
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	l := NewYahooLoader(srv.URL, "")
	rows, err := l.Load(context.Background(), "SPX", date(2024, 1, 1), date(2024, 1, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" || gotInterval != "1d" {
		t.Errorf("unexpected request path=%q interval=%q", gotPath, gotInterval)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Date.(time.Time).Format("2006-01-02") != "2024-01-02" {
		t.Errorf("expected exchange-local date 2024-01-02, got %v", rows[0].Date)
	}
	if rows[1].Close != nil || rows[1].AdjClose != nil || rows[2].Volume != nil {
		t.Errorf("expected nulls preserved, got %+v / %+v", rows[1], rows[2])
	}
	if rows[2].AdjClose != 103.1 {
		t.Errorf("expected adjclose 103.1, got %v", rows[2].AdjClose)
	}
}

func TestYahooLoader_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	l := NewYahooLoader(srv.URL, "")
	l.Client.SetRetryCount(0)
	if _, err := l.Load(context.Background(), "NOPE", date(2024, 1, 1), date(2024, 1, 2)); err == nil {
		t.Fatal("expected error")
	}
}

func TestRESTLoader_BearerAndNulls(t *testing.T) {
	var auth, symbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		symbol = r.URL.Query().Get("symbol")
		w.Write([]byte(`[{"date":"2024-01-03","close":11.5,"volume":null},{"date":"2024-01-02","close":null,"open":10}]`))
	}))
	defer srv.Close()

	l := NewRESTLoader(srv.URL, "secret", "")
	rows, err := l.Load(context.Background(), "MSFT", date(2024, 1, 1), date(2024, 1, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer secret" || symbol != "MSFT" {
		t.Errorf("unexpected auth=%q symbol=%q", auth, symbol)
	}
	if len(rows) != 2 || rows[0].Date != "2024-01-02" {
		t.Fatalf("expected sorted rows, got %+v", rows)
	}
	if rows[0].Close != nil || rows[0].Open != 10.0 || rows[1].Volume != nil {
		t.Errorf("unexpected cells %+v", rows)
	}
}

func TestRESTLoader_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	l := NewRESTLoader(srv.URL, "", "")
	if _, err := l.Load(context.Background(), "X", time.Time{}, time.Time{}); err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestCSVLoader_HeaderAliases(t *testing.T) {
	dir := t.TempDir()
	content := "date,open,high,low,close,adj_close,volume\n" +
		"2024-01-02,10,11,9,10.5,10.4,100\n" +
		"2024-01-01,9,10,8,9.5,,\n"
	if err := os.WriteFile(filepath.Join(dir, "GME.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := NewCSVLoader(dir).Load(context.Background(), "GME", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Close != "9.5" || rows[0].AdjClose != "" || rows[1].Volume != "100" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestCSV_WriteReadRoundTrip(t *testing.T) {
	res, err := cleaning.Clean([]model.RawRow{
		{Date: "2024-01-01", Close: 1.5, Volume: 10.0},
		{Date: "2024-01-02", Close: 2.5},
	}, cleaning.Options{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	var sb strings.Builder
	if err := WriteCSV(&sb, res.Bars); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(sb.String(), "Date,Open,High,Low,Close,Adj Close,Volume\n2024-01-01,,,,1.5,,10\n") {
		t.Errorf("unexpected CSV:\n%s", sb.String())
	}
	rows, err := ReadCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[1].Close != "2.5" || rows[1].Volume != "10" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestCollector_UsesCache(t *testing.T) {
	mock := &MockLoader{Price: 100}
	c := NewCollector(mock, cache.New(time.Hour, time.Minute, nil), cleaning.Options{})
	start, end := date(2024, 1, 1), date(2024, 3, 1)

	ds, err := c.Collect(context.Background(), "GOOG", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.FromCache || ds.Series.Len() == 0 {
		t.Errorf("expected fresh non-empty dataset, got %+v", ds)
	}
	ds2, err := c.Collect(context.Background(), "GOOG", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ds2.FromCache || mock.Calls != 1 {
		t.Errorf("expected second collect from cache, calls=%d", mock.Calls)
	}
}

func TestCollector_LoaderError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCollector(&MockLoader{Err: boom}, nil, cleaning.Options{})
	_, err := c.Collect(context.Background(), "GOOG", date(2024, 1, 1), date(2024, 1, 2))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped loader error, got %v", err)
	}
}

func TestCollector_CleaningError(t *testing.T) {
	c := NewCollector(&MockLoader{Rows: []model.RawRow{}}, nil, cleaning.Options{})
	_, err := c.Collect(context.Background(), "GOOG", date(2024, 1, 1), date(2024, 1, 2))
	if !errors.Is(err, cleaning.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
