package metrics

import (
	"sort"
	"time"

	"StockBoard/internal/model"
)

// Compare aligns the cumulative returns of several tickers for side-by-side
// charting. Alignment policy: the intersection of trading dates across all
// inputs, with every column rebased at the first common date. This keeps all
// series on one gap-free x-axis; tickers trading on disjoint calendars simply
// contribute no common dates.
func Compare(reports []*model.Report) *model.Comparison {
	cmp := &model.Comparison{Returns: map[string][]float64{}}
	if len(reports) == 0 {
		return cmp
	}

	// Count how many series each date appears in. Dates are counted once per
	// series so a duplicated bar cannot stand in for another ticker's date.
	seen := map[time.Time]int{}
	for _, r := range reports {
		inReport := map[time.Time]struct{}{}
		for _, b := range r.Series.Bars {
			if _, dup := inReport[b.Date]; dup {
				continue
			}
			inReport[b.Date] = struct{}{}
			seen[b.Date]++
		}
	}
	var common []time.Time
	for d, n := range seen {
		if n == len(reports) {
			common = append(common, d)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })
	cmp.Dates = common

	for _, r := range reports {
		closeByDate := make(map[time.Time]float64, r.Series.Len())
		for _, b := range r.Series.Bars {
			closeByDate[b.Date] = b.Close
		}
		closes := make([]float64, len(common))
		for i, d := range common {
			closes[i] = closeByDate[d]
		}
		cmp.Symbols = append(cmp.Symbols, r.Series.Symbol)
		cmp.Returns[r.Series.Symbol] = CumulativeReturns(closes)
	}
	return cmp
}
