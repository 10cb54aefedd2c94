package eligibility

import (
	"time"

	"github.com/rutacontrol/backend/internal/domain"
)

// Assignable is satisfied by domain.Driver, domain.Tractor and domain.Trailer.
type Assignable interface {
	Base() domain.Resource
}

// Blocked is a resource that cannot be assigned, with the reason shown to the user.
type Blocked[R Assignable] struct {
	Resource R
	Reason   string
}

// Availability splits a resource list into usable and blocked entries.
// Both slices are non-nil.
type Availability[R Assignable] struct {
	Usable  []R
	Blocked []Blocked[R]
}

// Partition classifies resources for a selector as of ref.
//
// With a service, resources whose service type does not match its name are
// dropped entirely; a resource with no service type cannot be shown to be
// compatible and is dropped too. A resource that is not available is blocked
// by its state without looking at documents. Otherwise the first required
// document (table order) that is expired as of ref blocks it.
func Partition[R Assignable](resources []R, service *domain.Service, ref time.Time, table *Table) Availability[R] {
	out := Availability[R]{
		Usable:  make([]R, 0, len(resources)),
		Blocked: []Blocked[R]{},
	}
	for _, r := range resources {
		base := r.Base()
		if service != nil && !base.MatchesService(service.Name) {
			continue
		}
		if base.State != domain.StateAvailable {
			out.Blocked = append(out.Blocked, Blocked[R]{Resource: r, Reason: base.State.Reason()})
			continue
		}
		if reason, blocked := expiredDocument(base, ref, table); blocked {
			out.Blocked = append(out.Blocked, Blocked[R]{Resource: r, Reason: reason})
			continue
		}
		out.Usable = append(out.Usable, r)
	}
	return out
}

func expiredDocument(r domain.Resource, ref time.Time, table *Table) (string, bool) {
	for _, k := range table.Required(r.Kind, r.ServiceType) {
		days, ok := DaysUntil(r.Documents.Expiry(k), ref)
		if ok && days < 0 {
			return table.Label(k) + " expired", true
		}
	}
	return "", false
}
