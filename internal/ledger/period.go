// Package ledger holds the pure money arithmetic behind budget summaries and
// reports. Nothing in here touches storage; callers load rows and pass them in.
package ledger

import (
	"fmt"
	"strconv"
	"time"
)

const periodLayout = "2006-01"

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// ParsePeriod accepts the YYYY-MM form.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("value '%s' could not be parsed as a YYYY-MM period", s)
	}
	p := PeriodOf(t)
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// ParsePeriodParts accepts a month number and a four digit year.
func ParsePeriodParts(month, year string) (Period, error) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return Period{}, fmt.Errorf("month '%s' is not a number", month)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, fmt.Errorf("year '%s' is not a number", year)
	}
	return NewPeriod(y, m)
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("month %d is out of range 1-12", p.Month)
	}
	if p.Year < 1900 || p.Year > 9999 {
		return fmt.Errorf("year %d is out of range 1900-9999", p.Year)
	}
	return nil
}

// First is midnight UTC on the first day of the month.
func (p Period) First() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last is midnight UTC on the last day of the month.
func (p Period) Last() time.Time {
	return p.First().AddDate(0, 1, -1)
}

func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

func (p Period) String() string {
	return p.First().Format(periodLayout)
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}
