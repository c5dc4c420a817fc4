package handlers

import (
	"context"
	"time"

	"busbooking/internal/domain/models"
	"busbooking/internal/seatmap"
	"busbooking/internal/services"
	"busbooking/internal/session"
)

type JourneyFinder interface {
	Search(ctx context.Context, from, to, date string) ([]models.Journey, error)
	GetByID(ctx context.Context, id int64) (models.Journey, error)
	ListPoints(ctx context.Context, journeyID int64) (models.JourneyPoints, error)
}

type LayoutWriter interface {
	SaveLayout(ctx context.Context, busID string, p *seatmap.Payload) (int, error)
}

// API holds the collaborators every handler needs.
type API struct {
	Sessions *session.Manager
	Journeys JourneyFinder
	Layouts  LayoutWriter
	Checkout services.CheckoutService
	Bookings services.BookingService
	Docs     services.DocsService
	// OnLayoutSaved runs after an admin layout push was stored.
	OnLayoutSaved func(ctx context.Context, busID string)
	// DBPing backs /api/db-check; nil reports the database as not configured.
	DBPing   func(ctx context.Context) error
	Location *time.Location
}
