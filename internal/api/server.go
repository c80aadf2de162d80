package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"StockBoard/internal/collector"
	"StockBoard/internal/config"
)

var (
	dateRegexp   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	symbolRegexp = regexp.MustCompile(`^[A-Za-z0-9.^-]{1,12}$`)
)

// Server exposes the dashboard API and the static single-page frontend.
type Server struct {
	collector  *collector.Collector
	cfg        *config.Config
	httpServer *http.Server
	apiKey     string
}

// NewServer wires routes and middleware.
func NewServer(col *collector.Collector, cfg *config.Config) *Server {
	s := &Server{
		collector: col,
		cfg:       cfg,
		apiKey:    cfg.Server.APIKey,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/series/{symbol}", s.handleSeries)
	mux.HandleFunc("GET /api/v1/export/{symbol}", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Static single-page dashboard
	staticDir := cfg.Server.StaticDir
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})

	handler := s.authMiddleware(corsMiddleware(mux, cfg.Server.CORSOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	log.Printf("[INFO] dashboard listening on http://localhost%s", s.httpServer.Addr)
	if s.apiKey != "" {
		log.Println("[INFO] API authentication enabled (Bearer token)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only the JSON API is guarded; the page itself and health stay open.
		if s.apiKey == "" || !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request parsing ---

// parseRequest validates all query parameters before any fetch happens.
func (s *Server) parseRequest(r *http.Request, symbols []string) (collector.Request, error) {
	req := collector.Request{
		ShortWindow: s.cfg.Dashboard.ShortWindow,
		LongWindow:  s.cfg.Dashboard.LongWindow,
	}

	if len(symbols) == 0 {
		return req, fmt.Errorf("tickers parameter is required")
	}
	if max := s.cfg.Dashboard.MaxTickers; len(symbols) > max {
		return req, fmt.Errorf("too many tickers: %d (limit %d)", len(symbols), max)
	}
	for i, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if !symbolRegexp.MatchString(sym) {
			return req, fmt.Errorf("invalid ticker %q", sym)
		}
		symbols[i] = sym
	}
	req.Symbols = symbols

	q := r.URL.Query()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	if v := q.Get("end"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return req, fmt.Errorf("end: %w", err)
		}
		end = d
	}
	start := end.AddDate(0, 0, -s.cfg.Dashboard.LookbackDays)
	if v := q.Get("start"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return req, fmt.Errorf("start: %w", err)
		}
		start = d
	}
	if start.After(end) {
		return req, fmt.Errorf("start %s is after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	req.Start, req.End = start, end

	if v := q.Get("short"); v != "" {
		n, err := parseWindow(v)
		if err != nil {
			return req, fmt.Errorf("short: %w", err)
		}
		req.ShortWindow = n
	}
	if v := q.Get("long"); v != "" {
		n, err := parseWindow(v)
		if err != nil {
			return req, fmt.Errorf("long: %w", err)
		}
		req.LongWindow = n
	}
	return req, nil
}

func parseDate(v string) (time.Time, error) {
	if !dateRegexp.MatchString(v) {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", v, err)
	}
	return d, nil
}

func parseWindow(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid window %q, expected integer >= 1", v)
	}
	return n, nil
}

func splitTickers(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
