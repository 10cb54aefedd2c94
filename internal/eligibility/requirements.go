package eligibility

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/rutacontrol/backend/internal/domain"
)

//go:embed requirements.yaml
var defaultTableYAML []byte

// Table maps resource kinds and service types to the ordered list of
// documents that must be presented. It is immutable once built.
type Table struct {
	labels    map[domain.DocumentKind]string
	resources map[domain.ResourceKind][]domain.DocumentKind
	services  map[string][]domain.DocumentKind // keyed by normalised service name
}

type tableFile struct {
	Labels    map[string]string   `yaml:"labels"`
	Resources map[string][]string `yaml:"resources"`
	Services  map[string][]string `yaml:"services"`
}

// ParseTable builds a Table from YAML. Every document kind referenced under
// resources or services must have a label, and resource keys must be known
// kinds.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("eligibility.ParseTable: %w", err)
	}

	t := &Table{
		labels:    make(map[domain.DocumentKind]string, len(f.Labels)),
		resources: make(map[domain.ResourceKind][]domain.DocumentKind, len(f.Resources)),
		services:  make(map[string][]domain.DocumentKind, len(f.Services)),
	}
	for k, label := range f.Labels {
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("eligibility.ParseTable: document %q has an empty label", k)
		}
		t.labels[domain.DocumentKind(k)] = label
	}

	for k, docs := range f.Resources {
		kind := domain.ResourceKind(k)
		switch kind {
		case domain.KindDriver, domain.KindTractor, domain.KindTrailer:
		default:
			return nil, fmt.Errorf("eligibility.ParseTable: unknown resource kind %q", k)
		}
		list, err := t.kinds(docs)
		if err != nil {
			return nil, fmt.Errorf("eligibility.ParseTable: resources.%s: %w", k, err)
		}
		t.resources[kind] = list
	}

	for name, docs := range f.Services {
		key := normalizeService(name)
		if key == "" {
			return nil, fmt.Errorf("eligibility.ParseTable: empty service name")
		}
		if _, dup := t.services[key]; dup {
			return nil, fmt.Errorf("eligibility.ParseTable: service %q listed twice", name)
		}
		list, err := t.kinds(docs)
		if err != nil {
			return nil, fmt.Errorf("eligibility.ParseTable: services.%s: %w", name, err)
		}
		t.services[key] = list
	}
	return t, nil
}

func (t *Table) kinds(raw []string) ([]domain.DocumentKind, error) {
	out := make([]domain.DocumentKind, 0, len(raw))
	seen := make(map[domain.DocumentKind]bool, len(raw))
	for _, r := range raw {
		k := domain.DocumentKind(r)
		if _, ok := t.labels[k]; !ok {
			return nil, fmt.Errorf("document %q has no label", r)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out, nil
}

// LoadTable reads and parses a requirement table file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("eligibility.LoadTable: %w", err)
	}
	return ParseTable(data)
}

// DefaultTable returns the built-in requirement table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic("eligibility: built-in requirement table is invalid: " + err.Error())
	}
	return t
}

// Table lets a *Table be used wherever a TableSource is expected.
func (t *Table) Table() *Table { return t }

// ForService returns the trailer documents required for a service, in table
// order. Unknown or empty service types return an empty list.
func (t *Table) ForService(serviceType string) []domain.DocumentKind {
	return clone(t.services[normalizeService(serviceType)])
}

// Required returns every document a resource of the given kind must present
// when used for serviceType: the kind's base documents followed, for
// trailers, by the service documents.
func (t *Table) Required(kind domain.ResourceKind, serviceType string) []domain.DocumentKind {
	out := clone(t.resources[kind])
	if kind != domain.KindTrailer {
		return out
	}
	for _, k := range t.services[normalizeService(serviceType)] {
		if !contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// Label returns the display label for a document kind, falling back to the
// raw kind name.
func (t *Table) Label(k domain.DocumentKind) string {
	if l, ok := t.labels[k]; ok {
		return l
	}
	return string(k)
}

// ServiceNames lists the configured service names (normalised), sorted.
func (t *Table) ServiceNames() []string {
	out := make([]string, 0, len(t.services))
	for name := range t.services {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Retain returns a new Documents containing only the kinds required for the
// given resource kind and service type. Used when a resource's service type
// changes so stale document fields are dropped.
func (t *Table) Retain(kind domain.ResourceKind, serviceType string, docs domain.Documents) domain.Documents {
	out := make(domain.Documents)
	for _, k := range t.Required(kind, serviceType) {
		if exp, ok := docs[k]; ok {
			out[k] = exp
		}
	}
	return out
}

// Snapshot is a plain copy of a table, for display.
type Snapshot struct {
	Labels    map[domain.DocumentKind]string
	Resources map[domain.ResourceKind][]domain.DocumentKind
	Services  map[string][]domain.DocumentKind
}

// Snapshot copies the table's contents. Service keys are normalised names.
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		Labels:    make(map[domain.DocumentKind]string, len(t.labels)),
		Resources: make(map[domain.ResourceKind][]domain.DocumentKind, len(t.resources)),
		Services:  make(map[string][]domain.DocumentKind, len(t.services)),
	}
	for k, l := range t.labels {
		s.Labels[k] = l
	}
	for k, docs := range t.resources {
		s.Resources[k] = clone(docs)
	}
	for k, docs := range t.services {
		s.Services[k] = clone(docs)
	}
	return s
}

// TableSource yields the table to use for one evaluation.
type TableSource interface {
	Table() *Table
}

// Registry holds the active table and can swap it for a freshly read copy
// of its file. Readers always see a complete table.
type Registry struct {
	path string
	cur  atomic.Pointer[Table]
}

// NewRegistry loads the table from path, or the built-in table when path is empty.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Table returns the currently active table.
func (r *Registry) Table() *Table {
	return r.cur.Load()
}

// Path returns the file backing the registry, or "" for the built-in table.
func (r *Registry) Path() string { return r.path }

// Reload re-reads the backing file. On error the previous table stays active.
func (r *Registry) Reload() error {
	if r.path == "" {
		r.cur.Store(DefaultTable())
		return nil
	}
	t, err := LoadTable(r.path)
	if err != nil {
		return fmt.Errorf("eligibility.Registry.Reload: %w", err)
	}
	r.cur.Store(t)
	return nil
}

func normalizeService(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clone(in []domain.DocumentKind) []domain.DocumentKind {
	out := make([]domain.DocumentKind, len(in))
	copy(out, in)
	return out
}

func contains(list []domain.DocumentKind, k domain.DocumentKind) bool {
	for _, v := range list {
		if v == k {
			return true
		}
	}
	return false
}
