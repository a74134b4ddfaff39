package utils

import (
	"time"
)

type PeriodStatus string

const (
	PeriodActive   PeriodStatus = "ACTIVE"
	PeriodDueSoon  PeriodStatus = "DUE_SOON"
	PeriodOverdue  PeriodStatus = "OVERDUE"
	PeriodReturned PeriodStatus = "RETURNED"
)

// DefaultDueSoonHorizon flags a line as DUE_SOON within the final day of
// its window.
const DefaultDueSoonHorizon = 24 * time.Hour

// Remaining decomposes the time left before the return deadline for
// display. It is never persisted; clients re-request it instead of running
// their own countdowns.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// DeadlineOf returns the instant a rental becomes overdue. The return date
// is counted inside the rental window (durations are inclusive), so the
// deadline is the midnight after it.
func DeadlineOf(returnDate string) (time.Time, error) {
	d, err := ParseDate(returnDate)
	if err != nil {
		return time.Time{}, err
	}
	return d.AddDate(0, 0, 1), nil
}

// ClassifyPeriod derives a line's period status at the query instant.
// Returned lines stay RETURNED regardless of the deadline. The
// classification is computed server-side on every read; a cached overdue
// flag would go stale the moment the clock passes the deadline.
func ClassifyPeriod(returnDate string, returned bool, now time.Time, dueSoonHorizon time.Duration) (PeriodStatus, Remaining, error) {
	if returned {
		return PeriodReturned, Remaining{}, nil
	}
	deadline, err := DeadlineOf(returnDate)
	if err != nil {
		return "", Remaining{}, err
	}
	left := deadline.Sub(now)
	if left <= 0 {
		return PeriodOverdue, Remaining{}, nil
	}
	rem := Remaining{
		Days:    int64(left.Hours()) / 24,
		Hours:   int64(left.Hours()) % 24,
		Minutes: int64(left.Minutes()) % 60,
		Seconds: int64(left.Seconds()) % 60,
	}
	if left <= dueSoonHorizon {
		return PeriodDueSoon, rem, nil
	}
	return PeriodActive, rem, nil
}
