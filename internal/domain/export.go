package domain

// ExportRow is a single row in the trip report export.
// It is a flat, denormalized view: one row per destination, with trip fields
// repeated for every destination of that trip.
type ExportRow struct {
	TripID        string
	State         string
	DepartureDate string // "2006-01-02"
	Origin        string
	Service       string
	Driver        string
	TractorPlate  string
	TrailerPlate  string

	DestinationOrder    int
	DestinationLocation string
	Arrived             bool
}
