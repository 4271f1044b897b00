package utils

import "time"

// UTCDay returns the calendar day of t in UTC as YYYY-MM-DD. Day rollover is
// detected by comparing these strings.
func UTCDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
