package utils

import (
	"fmt"
	"time"

	"barangay-asset-backend/internal/domain"
)

// DateLayout is the wire format for all rental dates.
const DateLayout = "2006-01-02"

// MaxRentalCalendarDays is how far past the start date a rental may end.
// An end date exactly MaxRentalCalendarDays after the start is legal, which
// makes the maximum inclusive duration MaxRentalCalendarDays+1 days.
const MaxRentalCalendarDays = 7

// ParseDate converts a yyyy-mm-dd string into a UTC midnight instant.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd: %w", dateStr, err)
	}
	return t, nil
}

// InclusiveDays counts rental days including both the start and end dates.
// Same-day rentals count as 1.
func InclusiveDays(start, end time.Time) int32 {
	return int32(end.Sub(start).Hours()/24) + 1
}

// MaxAllowedEnd returns the latest legal end date for a given start date.
func MaxAllowedEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, MaxRentalCalendarDays)
}

// ValidateWindow checks a requested rental window against policy and
// returns the inclusive duration in days. It fails with
// domain.ErrInvalidWindow when the end precedes the start and with
// domain.ErrWindowTooLong when the end exceeds MaxAllowedEnd(start).
// Cart admission, checkout and any staff path share this one function so
// the duration math cannot drift between call sites.
func ValidateWindow(startStr, endStr string) (int32, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidWindow, err)
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidWindow, err)
	}
	if end.Before(start) {
		return 0, domain.ErrInvalidWindow
	}
	if end.After(MaxAllowedEnd(start)) {
		return 0, domain.ErrWindowTooLong
	}
	return InclusiveDays(start, end), nil
}

// ValidateOverride checks a staff-set return date. Staff authority is
// higher than the rental cap, so only end >= start is enforced.
func ValidateOverride(startStr, endStr string) error {
	start, err := ParseDate(startStr)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidWindow, err)
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidWindow, err)
	}
	if end.Before(start) {
		return domain.ErrInvalidWindow
	}
	return nil
}
