package api

import (
	"fmt"
	"log"
	"net/http"

	"StockBoard/internal/export"
	"StockBoard/internal/metrics"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r, []string{r.PathValue("symbol")})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	saver := export.NewSaver(format)
	if saver == nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported format %q, expected csv, json or parquet", format))
		return
	}

	symbol := req.Symbols[0]
	series, err := s.collector.FetchSeries(r.Context(), symbol, req.Start, req.End)
	if err != nil {
		writeFetchError(w, err)
		return
	}
	report, err := metrics.BuildReport(series, req.ShortWindow, req.LongWindow)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", saver.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_data.%s", symbol, saver.Extension())))
	if err := saver.Save(w, export.ReportRows(report)); err != nil {
		// Headers are gone at this point; all we can do is log.
		log.Printf("[ERROR] export %s as %s: %v", symbol, format, err)
	}
}
