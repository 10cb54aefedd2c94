package eligibility

import (
	"fmt"
	"time"

	"github.com/rutacontrol/backend/internal/domain"
)

// Report is the outcome of checking a trip candidate's paperwork against its
// departure date. Any entry in Errors blocks submission; Warnings never do.
type Report struct {
	Errors   []string
	Warnings []string
}

// Blocking reports whether the report prevents the trip from being created.
func (r Report) Blocking() bool { return len(r.Errors) > 0 }

// Assignment is the set of records a trip candidate refers to.
type Assignment struct {
	Service domain.Service
	Driver  domain.Driver
	Tractor domain.Tractor
	Trailer domain.Trailer
}

// Evaluator checks document expiry as of a trip's departure date.
type Evaluator struct {
	tables   TableSource
	warnDays int
}

// NewEvaluator returns an Evaluator reading requirements from src and warning
// about documents expiring within warnDays after departure. A non-positive
// warnDays falls back to DefaultTripWarnDays.
func NewEvaluator(src TableSource, warnDays int) *Evaluator {
	if warnDays <= 0 {
		warnDays = DefaultTripWarnDays
	}
	return &Evaluator{tables: src, warnDays: warnDays}
}

// Evaluate checks every required document of the driver, tractor and trailer
// against the candidate's departure date. Messages are appended in the order
// driver, tractor, trailer, and within each resource in table order. The
// trailer's documents follow the trip's service, not the trailer's own.
// A candidate with no departure date yields an empty report.
func (e *Evaluator) Evaluate(c domain.TripCandidate, a Assignment) Report {
	rep := Report{Errors: []string{}, Warnings: []string{}}
	if c.DepartureDate == nil {
		return rep
	}
	table := e.tables.Table()
	dep := *c.DepartureDate

	subjects := []struct {
		kind domain.ResourceKind
		docs domain.Documents
	}{
		{domain.KindDriver, a.Driver.Documents},
		{domain.KindTractor, a.Tractor.Documents},
		{domain.KindTrailer, a.Trailer.Documents},
	}
	for _, s := range subjects {
		for _, k := range table.Required(s.kind, a.Service.Name) {
			e.check(&rep, s.kind, table.Label(k), s.docs.Expiry(k), dep)
		}
	}
	return rep
}

func (e *Evaluator) check(rep *Report, kind domain.ResourceKind, label string, expiry *time.Time, dep time.Time) {
	days, ok := DaysUntil(expiry, dep)
	if !ok {
		return
	}
	prefix := kind.Label()
	switch {
	case days < 0:
		rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %s will be EXPIRED on the departure date.", prefix, label))
	case days == 0:
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %s expires the same day as departure.", prefix, label))
	case days <= e.warnDays:
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %s expires %d day(s) after departure.", prefix, label, days))
	}
}
