package ports

import (
	"context"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

// ItineraryRepository persists computed itineraries.
type ItineraryRepository interface {
	Insert(ctx context.Context, it *domain.Itinerary) error
	GetByID(ctx context.Context, id string) (*domain.Itinerary, error)
	// List returns itineraries newest first.
	List(ctx context.Context, offset, limit int) ([]domain.Itinerary, error)
	Count(ctx context.Context) (int, error)
}
