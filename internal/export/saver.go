// Package export serializes ticker reports for download (csv, json, parquet).
package export

import (
	"io"
	"math"
	"strings"

	"StockBoard/internal/model"
)

// Row is one exported record: a raw bar plus its derived columns. Derived
// fields are pointers so an undefined value becomes an empty CSV cell, a JSON
// null, or a missing optional parquet value.
type Row struct {
	Date             string   `json:"date" parquet:"date"`
	Open             float64  `json:"open" parquet:"open"`
	High             float64  `json:"high" parquet:"high"`
	Low              float64  `json:"low" parquet:"low"`
	Close            float64  `json:"close" parquet:"close"`
	Volume           int64    `json:"volume" parquet:"volume"`
	ShortMA          *float64 `json:"short_ma" parquet:"short_ma,optional"`
	LongMA           *float64 `json:"long_ma" parquet:"long_ma,optional"`
	DailyReturn      *float64 `json:"daily_return" parquet:"daily_return,optional"`
	CumulativeReturn *float64 `json:"cumulative_return" parquet:"cumulative_return,optional"`
}

// Saver writes a report to an output stream in one format.
type Saver interface {
	Save(w io.Writer, rows []Row) error
	Extension() string
	ContentType() string
}

// NewSaver creates an implementation by format (csv, json, parquet).
// Returns nil if the format is not supported.
func NewSaver(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}

// ReportRows flattens a report into export rows, one per trading day.
func ReportRows(r *model.Report) []Row {
	rows := make([]Row, len(r.Series.Bars))
	for i, b := range r.Series.Bars {
		rows[i] = Row{
			Date:             b.Date.Format("2006-01-02"),
			Open:             b.Open,
			High:             b.High,
			Low:              b.Low,
			Close:            b.Close,
			Volume:           b.Volume,
			ShortMA:          optional(r.ShortMA[i]),
			LongMA:           optional(r.LongMA[i]),
			DailyReturn:      optional(r.DailyReturn[i]),
			CumulativeReturn: optional(r.CumulativeReturn[i]),
		}
	}
	return rows
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
