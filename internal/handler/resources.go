package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/rutacontrol/backend/internal/auth"
	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/middleware"
)

// documentsBody maps a document kind to its expiry date ("2006-01-02").
type documentsBody map[domain.DocumentKind]openapi_types.Date

func toDocumentsBody(d domain.Documents) documentsBody {
	out := make(documentsBody, len(d))
	for k, t := range d {
		out[k] = openapi_types.Date{Time: t}
	}
	return out
}

func (b documentsBody) toDomain() domain.Documents {
	out := make(domain.Documents, len(b))
	for k, d := range b {
		out[k] = d.Time
	}
	return out
}

// resourceBody holds the fields every resource shares.
type resourceBody struct {
	State       domain.PhysicalState `json:"state"`
	ServiceType string               `json:"service_type"`
	Documents   documentsBody        `json:"documents"`
}

func toResourceBody(r domain.Resource) resourceBody {
	return resourceBody{State: r.State, ServiceType: r.ServiceType, Documents: toDocumentsBody(r.Documents)}
}

func (b resourceBody) toDomain(id uuid.UUID) domain.Resource {
	return domain.Resource{ID: id, State: b.State, ServiceType: b.ServiceType, Documents: b.Documents.toDomain()}
}

type driverBody struct {
	ID uuid.UUID `json:"id"`
	resourceBody
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	NationalID    string    `json:"national_id"`
	Phone         string    `json:"phone"`
	LicenseNumber string    `json:"license_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type tractorBody struct {
	ID uuid.UUID `json:"id"`
	resourceBody
	Plate     string    `json:"plate"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type trailerBody struct {
	ID uuid.UUID `json:"id"`
	resourceBody
	Plate      string    `json:"plate"`
	Type       string    `json:"type"`
	CapacityM3 float64   `json:"capacity_m3"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type blockedBody[B any] struct {
	Resource B      `json:"resource"`
	Reason   string `json:"reason"`
}

type availabilityBody[B any] struct {
	Usable  []B              `json:"usable"`
	Blocked []blockedBody[B] `json:"blocked"`
}

type plateCheckBody struct {
	Exists bool   `json:"exists"`
	Info   string `json:"info,omitempty"`
}

// resourceHandler serves the CRUD, availability and plate-check routes of
// one resource kind. B is the JSON shape of R.
type resourceHandler[R eligibility.Assignable, B any] struct {
	svc    ResourceServicer[R]
	encode func(R) B
	decode func(id uuid.UUID, b B) R
}

func driverHandler(svc DriverServicer) resourceHandler[domain.Driver, driverBody] {
	return resourceHandler[domain.Driver, driverBody]{
		svc: svc,
		encode: func(d domain.Driver) driverBody {
			return driverBody{
				ID:            d.ID,
				resourceBody:  toResourceBody(d.Resource),
				FirstName:     d.FirstName,
				LastName:      d.LastName,
				NationalID:    d.NationalID,
				Phone:         d.Phone,
				LicenseNumber: d.LicenseNumber,
				CreatedAt:     d.CreatedAt,
				UpdatedAt:     d.UpdatedAt,
			}
		},
		decode: func(id uuid.UUID, b driverBody) domain.Driver {
			return domain.Driver{
				Resource:      b.resourceBody.toDomain(id),
				FirstName:     b.FirstName,
				LastName:      b.LastName,
				NationalID:    b.NationalID,
				Phone:         b.Phone,
				LicenseNumber: b.LicenseNumber,
			}
		},
	}
}

func tractorHandler(svc TractorServicer) resourceHandler[domain.Tractor, tractorBody] {
	return resourceHandler[domain.Tractor, tractorBody]{
		svc: svc,
		encode: func(t domain.Tractor) tractorBody {
			return tractorBody{
				ID:           t.ID,
				resourceBody: toResourceBody(t.Resource),
				Plate:        t.Plate,
				Brand:        t.Brand,
				Model:        t.Model,
				Year:         t.Year,
				CreatedAt:    t.CreatedAt,
				UpdatedAt:    t.UpdatedAt,
			}
		},
		decode: func(id uuid.UUID, b tractorBody) domain.Tractor {
			return domain.Tractor{
				Resource: b.resourceBody.toDomain(id),
				Plate:    b.Plate,
				Brand:    b.Brand,
				Model:    b.Model,
				Year:     b.Year,
			}
		},
	}
}

func trailerHandler(svc TrailerServicer) resourceHandler[domain.Trailer, trailerBody] {
	return resourceHandler[domain.Trailer, trailerBody]{
		svc: svc,
		encode: func(t domain.Trailer) trailerBody {
			return trailerBody{
				ID:           t.ID,
				resourceBody: toResourceBody(t.Resource),
				Plate:        t.Plate,
				Type:         t.Type,
				CapacityM3:   t.CapacityM3,
				CreatedAt:    t.CreatedAt,
				UpdatedAt:    t.UpdatedAt,
			}
		},
		decode: func(id uuid.UUID, b trailerBody) domain.Trailer {
			return domain.Trailer{
				Resource:   b.resourceBody.toDomain(id),
				Plate:      b.Plate,
				Type:       b.Type,
				CapacityM3: b.CapacityM3,
			}
		},
	}
}

// mount registers the routes on r. plates and limit are nil for resources
// without a plate.
func (h resourceHandler[R, B]) mount(r chi.Router, plates PlateChecker, limit func(http.Handler) http.Handler) {
	read := middleware.RequirePermission(auth.ResourcesRead)
	write := middleware.RequirePermission(auth.ResourcesWrite)

	r.With(read).Get("/", h.list)
	r.With(write).Post("/", h.create)
	r.With(read).Get("/availability", h.availability)
	if plates != nil {
		r.With(read, limit).Get("/plate-check", plateCheck(plates))
	}
	r.With(read).Get("/{id}", h.get)
	r.With(write).Put("/{id}", h.update)
	r.With(write).Delete("/{id}", h.delete)
}

// list handles GET /{kind}. Supports ?state= to filter by physical state.
func (h resourceHandler[R, B]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), domain.PhysicalState(r.URL.Query().Get("state")))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	out := make([]B, len(items))
	for i, it := range items {
		out[i] = h.encode(it)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h resourceHandler[R, B]) create(w http.ResponseWriter, r *http.Request) {
	var body B
	if !decodeJSON(w, r, &body) {
		return
	}
	created, err := h.svc.Create(r.Context(), h.decode(uuid.Nil, body))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.encode(created))
}

func (h resourceHandler[R, B]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.encode(item))
}

// update handles PUT /{kind}/{id}. The path id wins over any id in the body.
func (h resourceHandler[R, B]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body B
	if !decodeJSON(w, r, &body) {
		return
	}
	updated, err := h.svc.Update(r.Context(), h.decode(id, body))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.encode(updated))
}

func (h resourceHandler[R, B]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// availability handles GET /{kind}/availability?service_id=&date=.
// date defaults to today on the service side.
func (h resourceHandler[R, B]) availability(w http.ResponseWriter, r *http.Request) {
	serviceID, err := queryID(r, "service_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		date = &d
	}

	av, err := h.svc.Availability(r.Context(), serviceID, date)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	out := availabilityBody[B]{
		Usable:  make([]B, len(av.Usable)),
		Blocked: make([]blockedBody[B], len(av.Blocked)),
	}
	for i, u := range av.Usable {
		out.Usable[i] = h.encode(u)
	}
	for i, b := range av.Blocked {
		out.Blocked[i] = blockedBody[B]{Resource: h.encode(b.Resource), Reason: b.Reason}
	}
	writeJSON(w, http.StatusOK, out)
}

// plateCheck handles GET /{kind}/plate-check?plate=&exclude_id=.
func plateCheck(p PlateChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plate := strings.TrimSpace(r.URL.Query().Get("plate"))
		if plate == "" {
			badRequest(w, "plate is required")
			return
		}
		exclude, err := queryID(r, "exclude_id")
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		excludeID := uuid.Nil
		if exclude != nil {
			excludeID = *exclude
		}
		check, err := p.CheckPlate(r.Context(), plate, excludeID)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, plateCheckBody{Exists: check.Exists, Info: check.Info})
	}
}
