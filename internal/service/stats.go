package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
)

// StatsService builds the dashboard: trip and resource counts plus the
// documents that are expired or about to expire.
type StatsService struct {
	repos    TripRepos
	tables   eligibility.TableSource
	warnDays int
	now      func() time.Time
}

// NewStatsService constructs a StatsService. warnDays is the listing
// threshold; a non-positive value falls back to the default.
func NewStatsService(r TripRepos, tables eligibility.TableSource, warnDays int) *StatsService {
	if warnDays <= 0 {
		warnDays = eligibility.DefaultListingWarnDays
	}
	return &StatsService{repos: r, tables: tables, warnDays: warnDays, now: time.Now}
}

// Stats returns the dashboard payload as of now.
func (s *StatsService) Stats(ctx context.Context) (domain.Stats, error) {
	trips, err := s.repos.Trips.CountByState(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Stats: %w", err)
	}
	fleet, err := loadFleet(ctx, s.repos)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Stats: %w", err)
	}

	byState := map[domain.ResourceKind]map[domain.PhysicalState]int{
		domain.KindDriver:  {},
		domain.KindTractor: {},
		domain.KindTrailer: {},
	}
	for _, r := range fleet {
		byState[r.Kind][r.State]++
	}
	return domain.Stats{
		TripsByState:     trips,
		ResourcesByState: byState,
		Expiring:         s.expiring(fleet, s.warnDays),
	}, nil
}

// Expiring lists documents already expired or expiring within days, most
// urgent first. A non-positive days uses the listing threshold.
func (s *StatsService) Expiring(ctx context.Context, days int) ([]domain.ExpiringDocument, error) {
	if days <= 0 {
		days = s.warnDays
	}
	fleet, err := loadFleet(ctx, s.repos)
	if err != nil {
		return nil, fmt.Errorf("service.StatsService.Expiring: %w", err)
	}
	return s.expiring(fleet, days), nil
}

// fleetEntry is a resource together with the name shown on the dashboard.
type fleetEntry struct {
	domain.Resource
	name string
}

func loadFleet(ctx context.Context, r TripRepos) ([]fleetEntry, error) {
	var out []fleetEntry
	drivers, err := r.Drivers.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, d := range drivers {
		out = append(out, fleetEntry{Resource: withKind(d.Resource, domain.KindDriver), name: d.FullName()})
	}
	tractors, err := r.Tractors.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, t := range tractors {
		out = append(out, fleetEntry{Resource: withKind(t.Resource, domain.KindTractor), name: t.Plate})
	}
	trailers, err := r.Trailers.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, t := range trailers {
		out = append(out, fleetEntry{Resource: withKind(t.Resource, domain.KindTrailer), name: t.Plate})
	}
	return out, nil
}

func withKind(r domain.Resource, k domain.ResourceKind) domain.Resource {
	r.Kind = k
	return r
}

func (s *StatsService) expiring(fleet []fleetEntry, days int) []domain.ExpiringDocument {
	table := s.tables.Table()
	ref := s.now()
	out := []domain.ExpiringDocument{}
	for _, r := range fleet {
		for _, k := range table.Required(r.Kind, r.ServiceType) {
			exp := r.Documents.Expiry(k)
			class, left := eligibility.ClassifyExpiry(exp, ref, days)
			if class != eligibility.ClassExpired && class != eligibility.ClassExpiringSoon {
				continue
			}
			out = append(out, domain.ExpiringDocument{
				ResourceKind:  r.Kind,
				ResourceID:    r.ID,
				ResourceName:  r.name,
				Document:      k,
				DocumentLabel: table.Label(k),
				ExpiresOn:     *exp,
				DaysLeft:      left,
				Expired:       class == eligibility.ClassExpired,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out
}
