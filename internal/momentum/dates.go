package momentum

import "time"

// HistoryDateLayout is the DD-MM-YYYY layout of CoinGecko's history endpoint.
const HistoryDateLayout = "02-01-2006"

// HistoryDate returns the UTC calendar date daysAgo days before ref. The
// subtraction is in calendar days, not multiples of 24h.
func HistoryDate(ref time.Time, daysAgo int) string {
	return ref.UTC().AddDate(0, 0, -daysAgo).Format(HistoryDateLayout)
}
