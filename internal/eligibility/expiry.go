// Package eligibility decides which drivers, tractors and trailers may be
// assigned to a trip and whether a trip may be created.
//
// Everything here is pure: functions read only their arguments, perform no
// I/O and hold no locks, except Guard.Submit which hands the validated trip
// to a TripWriter. Callers supply freshly loaded records.
package eligibility

import "time"

// Classification is the expiry bucket of a document relative to a reference date.
type Classification string

const (
	// ClassNone means no expiry is tracked; no badge is shown.
	ClassNone         Classification = ""
	ClassExpired      Classification = "expired"
	ClassExpiringSoon Classification = "expiring_soon"
	ClassValid        Classification = "valid"
)

// Default expiring-soon thresholds, in days. Listings flag anything due in
// the next month; trip checks only flag documents that lapse within a week
// of departure.
const (
	DefaultListingWarnDays = 30
	DefaultTripWarnDays    = 7
)

const day = 24 * time.Hour

// DaysUntil returns the signed number of whole days from ref to expiry.
// Both dates are truncated to their calendar day first, so an expiry on the
// reference day is exactly 0. ok is false when expiry is nil.
func DaysUntil(expiry *time.Time, ref time.Time) (days int, ok bool) {
	if expiry == nil {
		return 0, false
	}
	return int(midnight(*expiry).Sub(midnight(ref)) / day), true
}

// Classify buckets a day offset: negative is expired, 0..threshold is
// expiring soon, anything later is valid.
func Classify(days, threshold int) Classification {
	switch {
	case days < 0:
		return ClassExpired
	case days <= threshold:
		return ClassExpiringSoon
	default:
		return ClassValid
	}
}

// ClassifyExpiry combines DaysUntil and Classify. A nil expiry yields ClassNone.
func ClassifyExpiry(expiry *time.Time, ref time.Time, threshold int) (Classification, int) {
	days, ok := DaysUntil(expiry, ref)
	if !ok {
		return ClassNone, 0
	}
	return Classify(days, threshold), days
}

// midnight maps t to 00:00 UTC of its own calendar date. Using UTC for the
// result keeps every day exactly 24h long regardless of DST in t's location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
