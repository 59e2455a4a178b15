package crawler

import (
	"context"
	"time"
)

// VacancySource enumerates the upstream taxonomy and listings.
type VacancySource interface {
	FetchAreas(ctx context.Context, names []string) ([]Area, error)
	FetchProfessionalRoles(ctx context.Context) ([]RoleCategory, error)
	FetchAllVacancies(ctx context.Context, areaID, roleID ID) []Vacancy
}

// VacancyStore persists listings. Lookups are by compound equality on the
// listing id and its entry date.
type VacancyStore interface {
	Exists(ctx context.Context, id, entryDate string) (bool, error)
	Insert(ctx context.Context, vacancy Vacancy) error
}

// Notifier delivers human-readable progress messages.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
