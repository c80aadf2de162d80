package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"StockBoard/internal/model"
)

// Header is the CSV column order, raw columns first.
var Header = []string{
	"date", "open", "high", "low", "close", "volume",
	"short_ma", "long_ma", "daily_return", "cumulative_return",
}

// CSVSaver writes rows as CSV with a header line.
type CSVSaver struct{}

func (CSVSaver) Extension() string   { return "csv" }
func (CSVSaver) ContentType() string { return "text/csv" }

func (CSVSaver) Save(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Date,
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			strconv.FormatInt(r.Volume, 10),
			optStr(r.ShortMA),
			optStr(r.LongMA),
			optStr(r.DailyReturn),
			optStr(r.CumulativeReturn),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optStr(p *float64) string {
	if p == nil {
		return ""
	}
	return floatStr(*p)
}

// ParseCSV reads the raw price columns of an exported file back into bars.
// Derived columns, if present, are ignored.
func ParseCSV(r io.Reader) ([]model.OHLCV, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	if records[0][0] != "date" {
		return nil, fmt.Errorf("unexpected header %q", records[0][0])
	}

	bars := make([]model.OHLCV, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, fmt.Errorf("row %d: expected at least 6 columns, got %d", i+1, len(rec))
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date: %w", i+1, err)
		}
		o, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse open: %w", i+1, err)
		}
		h, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse high: %w", i+1, err)
		}
		l, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse low: %w", i+1, err)
		}
		c, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse close: %w", i+1, err)
		}
		v, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse volume: %w", i+1, err)
		}
		bars = append(bars, model.OHLCV{Date: date, Open: o, High: h, Low: l, Close: c, Volume: v})
	}
	return bars, nil
}
