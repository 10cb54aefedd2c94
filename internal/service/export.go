package service

import (
	"context"
	"fmt"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/repo"
)

// ExportService assembles the flat trip report.
type ExportService struct {
	repo repo.ExportRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(r repo.ExportRepo) *ExportService {
	return &ExportService{repo: r}
}

// Export returns one ExportRow per trip destination.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	rows, err := s.repo.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if rows == nil {
		return []domain.ExportRow{}, nil
	}
	return rows, nil
}
