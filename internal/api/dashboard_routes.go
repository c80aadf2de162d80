package api

import (
	"errors"
	"log"
	"math"
	"net/http"

	"StockBoard/internal/collector"
	"StockBoard/internal/model"
)

type summaryJSON struct {
	CurrentPrice  *float64 `json:"current_price"`
	StartPrice    *float64 `json:"start_price"`
	TotalReturn   *float64 `json:"total_return"`
	Volatility    *float64 `json:"volatility"`
	AnnualizedVol *float64 `json:"annualized_volatility"`
}

type reportJSON struct {
	Symbol           string      `json:"symbol"`
	ShortWindow      int         `json:"short_window"`
	LongWindow       int         `json:"long_window"`
	Dates            []string    `json:"dates"`
	Open             []float64   `json:"open"`
	High             []float64   `json:"high"`
	Low              []float64   `json:"low"`
	Close            []float64   `json:"close"`
	Volume           []int64     `json:"volume"`
	ShortMA          []*float64  `json:"short_ma"`
	LongMA           []*float64  `json:"long_ma"`
	DailyReturn      []*float64  `json:"daily_return"`
	CumulativeReturn []*float64  `json:"cumulative_return"`
	Summary          summaryJSON `json:"summary"`
}

type tickerErrorJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type comparisonJSON struct {
	Dates   []string             `json:"dates"`
	Returns map[string][]float64 `json:"returns"`
}

type dashboardJSON struct {
	Reports    []reportJSON               `json:"reports"`
	Comparison comparisonJSON             `json:"comparison"`
	Errors     map[string]tickerErrorJSON `json:"errors"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r, splitTickers(r.URL.Query().Get("tickers")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.collector.Collect(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := dashboardJSON{
		Comparison: toComparisonJSON(res.Comparison),
		Errors:     map[string]tickerErrorJSON{},
	}
	for _, rep := range res.Reports {
		out.Reports = append(out.Reports, toReportJSON(rep))
	}
	for symbol, err := range res.Errors {
		out.Errors[symbol] = tickerErrorJSON{Kind: errorKind(err), Message: err.Error()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r, []string{r.PathValue("symbol")})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.collector.Collect(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ferr, ok := res.Errors[req.Symbols[0]]; ok {
		writeFetchError(w, ferr)
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(res.Reports[0]))
}

// writeFetchError maps fetch error kinds to HTTP statuses.
func writeFetchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collector.ErrNotFound), errors.Is(err, collector.ErrNoData):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, collector.ErrUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[ERROR] fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch series")
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, collector.ErrNotFound):
		return "not_found"
	case errors.Is(err, collector.ErrNoData):
		return "no_data"
	case errors.Is(err, collector.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func toReportJSON(rep *model.Report) reportJSON {
	n := rep.Series.Len()
	out := reportJSON{
		Symbol:           rep.Series.Symbol,
		ShortWindow:      rep.ShortWindow,
		LongWindow:       rep.LongWindow,
		Dates:            make([]string, n),
		Open:             make([]float64, n),
		High:             make([]float64, n),
		Low:              make([]float64, n),
		Close:            make([]float64, n),
		Volume:           make([]int64, n),
		ShortMA:          nullable(rep.ShortMA),
		LongMA:           nullable(rep.LongMA),
		DailyReturn:      nullable(rep.DailyReturn),
		CumulativeReturn: nullable(rep.CumulativeReturn),
		Summary: summaryJSON{
			CurrentPrice:  nullableScalar(rep.Summary.CurrentPrice),
			StartPrice:    nullableScalar(rep.Summary.StartPrice),
			TotalReturn:   nullableScalar(rep.Summary.TotalReturn),
			Volatility:    nullableScalar(rep.Summary.Volatility),
			AnnualizedVol: nullableScalar(rep.Summary.AnnualizedVol),
		},
	}
	for i, b := range rep.Series.Bars {
		out.Dates[i] = b.Date.Format("2006-01-02")
		out.Open[i] = b.Open
		out.High[i] = b.High
		out.Low[i] = b.Low
		out.Close[i] = b.Close
		out.Volume[i] = b.Volume
	}
	return out
}

func toComparisonJSON(cmp *model.Comparison) comparisonJSON {
	out := comparisonJSON{
		Dates:   make([]string, len(cmp.Dates)),
		Returns: cmp.Returns,
	}
	for i, d := range cmp.Dates {
		out.Dates[i] = d.Format("2006-01-02")
	}
	if out.Returns == nil {
		out.Returns = map[string][]float64{}
	}
	return out
}

// nullable converts NaN entries to JSON null.
func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = nullableScalar(v)
	}
	return out
}

func nullableScalar(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
