package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar-day key for ledgers (the day IS the ledger key)
// =============================================================================

// Date is a calendar date with no time-of-day component. DayLedgers,
// sales, expenses and close-outs are all keyed by Date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Equal(other Date) bool { return d == other }
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }
func (d Date) Next() Date         { return d.AddDays(1) }

// Properties
func (d Date) IsZero() bool    { return d == Date{} }
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }
func (d Date) String() string  { return d.Time().Format("2006-01-02") }
