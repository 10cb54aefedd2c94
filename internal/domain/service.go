package domain

import (
	"time"

	"github.com/google/uuid"
)

// Service is an entry in the catalogue of transport services offered
// ("gas licuado", "combustible líquido", ...). Resources reference a service
// by name through their ServiceType.
type Service struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
