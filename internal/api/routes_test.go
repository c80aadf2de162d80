package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"StockBoard/internal/cache"
	"StockBoard/internal/collector"
	"StockBoard/internal/config"
)

func newTestServer(t *testing.T, fetcher collector.Fetcher) *Server {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return NewServer(collector.NewCollector(fetcher, cache.NewNoopCache()), cfg)
}

func doRequest(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rr, req)
	return rr
}

func TestDashboard_Success(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{BasePrice: 100})

	rr := doRequest(s, "/api/v1/dashboard?tickers=AAPL,MSFT&start=2024-01-01&end=2024-03-01&short=5&long=10")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var out dashboardJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(out.Reports))
	}
	if len(out.Errors) != 0 {
		t.Errorf("expected no errors, got %v", out.Errors)
	}
	rep := out.Reports[0]
	if len(rep.Dates) == 0 || len(rep.ShortMA) != len(rep.Dates) {
		t.Error("derived columns must align with dates")
	}
	if rep.DailyReturn[0] != nil {
		t.Error("first daily return must be null")
	}
	if rep.CumulativeReturn[0] == nil || *rep.CumulativeReturn[0] != 0 {
		t.Error("first cumulative return must be 0")
	}
	if len(out.Comparison.Dates) == 0 {
		t.Error("expected comparison dates")
	}
}

func TestDashboard_IsolatedTickerError(t *testing.T) {
	fetcher := &collector.MockFetcher{
		BasePrice: 100,
		Errs:      map[string]error{"ZZZZ": collector.ErrNotFound},
	}
	s := newTestServer(t, fetcher)

	rr := doRequest(s, "/api/v1/dashboard?tickers=AAPL,ZZZZ&start=2024-01-01&end=2024-03-01")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 despite one bad ticker, got %d", rr.Code)
	}

	var out dashboardJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Reports) != 1 || out.Reports[0].Symbol != "AAPL" {
		t.Fatalf("expected only AAPL report, got %+v", out.Reports)
	}
	if out.Errors["ZZZZ"].Kind != "not_found" {
		t.Errorf("expected not_found for ZZZZ, got %+v", out.Errors["ZZZZ"])
	}
}

func TestDashboard_InvalidParameters(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{BasePrice: 100})

	cases := map[string]string{
		"missing tickers": "/api/v1/dashboard",
		"bad date":        "/api/v1/dashboard?tickers=AAPL&start=01-02-2024",
		"start after end": "/api/v1/dashboard?tickers=AAPL&start=2024-03-01&end=2024-01-01",
		"zero window":     "/api/v1/dashboard?tickers=AAPL&short=0",
		"bad window":      "/api/v1/dashboard?tickers=AAPL&long=abc",
		"bad ticker":      "/api/v1/dashboard?tickers=WAYTOOLONGTICKER",
		"too many":        "/api/v1/dashboard?tickers=A,B,C,D,E,F,G,H,I,J,K",
	}
	for name, target := range cases {
		rr := doRequest(s, target)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rr.Code)
		}
	}
}

func TestSeries_NotFound(t *testing.T) {
	fetcher := &collector.MockFetcher{Errs: map[string]error{"ZZZZ": collector.ErrNotFound}}
	s := newTestServer(t, fetcher)

	rr := doRequest(s, "/api/v1/series/ZZZZ?start=2024-01-01&end=2024-03-01")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSeries_Unavailable(t *testing.T) {
	fetcher := &collector.MockFetcher{Errs: map[string]error{"AAPL": collector.ErrUnavailable}}
	s := newTestServer(t, fetcher)

	rr := doRequest(s, "/api/v1/series/AAPL?start=2024-01-01&end=2024-03-01")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

func TestExport_CSV(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{BasePrice: 100})

	rr := doRequest(s, "/api/v1/export/AAPL?start=2024-01-01&end=2024-03-01&format=csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type: got %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "AAPL_data.csv") {
		t.Errorf("content disposition: got %s", cd)
	}
	firstLine := strings.SplitN(rr.Body.String(), "\n", 2)[0]
	if firstLine != "date,open,high,low,close,volume,short_ma,long_ma,daily_return,cumulative_return" {
		t.Errorf("unexpected header: %s", firstLine)
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{BasePrice: 100})

	rr := doRequest(s, "/api/v1/export/AAPL?format=xml")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{BasePrice: 100})

	rr := doRequest(s, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "ok" || out.DataSource != "mock" {
		t.Errorf("unexpected health payload: %+v", out)
	}
}
