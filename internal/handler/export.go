package handler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rutacontrol/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "state", "departure_date", "origin", "service", "driver",
	"tractor_plate", "trailer_plate", "destination_order", "destination", "arrived",
}

type exportRowBody struct {
	TripID              string `json:"trip_id"`
	State               string `json:"state"`
	DepartureDate       string `json:"departure_date"`
	Origin              string `json:"origin"`
	Service             string `json:"service"`
	Driver              string `json:"driver"`
	TractorPlate        string `json:"tractor_plate"`
	TrailerPlate        string `json:"trailer_plate"`
	DestinationOrder    int    `json:"destination_order"`
	DestinationLocation string `json:"destination"`
	Arrived             bool   `json:"arrived"`
}

// GetExport handles GET /export.
// It returns one row per trip destination with the trip fields repeated.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		badRequest(w, "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if format == "csv" {
		writeCSV(w, r, rows)
		return
	}
	out := make([]exportRowBody, len(rows))
	for i, row := range rows {
		out[i] = exportRowBody(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV streams rows as an attachment.
func writeCSV(w http.ResponseWriter, r *http.Request, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, csvHeaders)
	for _, row := range rows {
		records = append(records, rowToCSVRecord(row))
	}
	// Headers are already sent, so a failure here can only be logged.
	if err := cw.WriteAll(records); err != nil {
		slog.ErrorContext(r.Context(), "write csv export", "error", err)
	}
}

// rowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func rowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.State,
		r.DepartureDate,
		r.Origin,
		r.Service,
		r.Driver,
		r.TractorPlate,
		r.TrailerPlate,
		strconv.Itoa(r.DestinationOrder),
		r.DestinationLocation,
		strconv.FormatBool(r.Arrived),
	}
}
