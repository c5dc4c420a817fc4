// Package selection keeps the shopper's chosen seats as an overlay on the
// seat grid. It reads seat status to validate clicks and never writes it.
package selection

import (
	"slices"

	"busbooking/internal/domain"
	"busbooking/internal/seatmap"
	"busbooking/internal/window"
)

// MaxSeats caps one booking.
const MaxSeats = 6

// Manager is an insertion-ordered set of seats. It is not safe for
// concurrent use; the owning session serializes access.
type Manager struct {
	order []SeatID
	limit int
}

func New() *Manager {
	return &Manager{limit: MaxSeats}
}

// Select toggles a seat. It returns true when the seat was added and false
// when it was removed. Adding is refused for sold or reserved seats (unless
// the bus has arrived and sold seats are open for the next journey), past
// the seat limit, and while the booking window is closed.
func (m *Manager) Select(grid *seatmap.Grid, win window.State, id SeatID) (bool, error) {
	if m.Contains(id) {
		m.Deselect(id)
		return false, nil
	}

	cell, ok := grid.Cell(id.Deck, id.Row, id.Col)
	if !ok {
		return false, domain.ValidationError{Field: "seat_id", Msg: "seat " + id.String() + " does not exist"}
	}
	switch cell.Status {
	case seatmap.Sold:
		if !win.NextJourneyAvailable {
			return false, domain.SeatUnavailableError{SeatID: id.String(), Status: cell.Status.String()}
		}
	case seatmap.Reserved:
		return false, domain.SeatUnavailableError{SeatID: id.String(), Status: cell.Status.String()}
	}
	if len(m.order) >= m.limit {
		return false, domain.SelectionLimitError{Limit: m.limit}
	}
	if !win.IsBookingOpen && !win.NextJourneyAvailable {
		return false, domain.BookingClosedError{Reason: win.ClosedReason()}
	}

	m.order = append(m.order, id)
	return true, nil
}

// Deselect removes a seat; it is always allowed.
func (m *Manager) Deselect(id SeatID) bool {
	i := slices.Index(m.order, id)
	if i < 0 {
		return false
	}
	m.order = slices.Delete(m.order, i, i+1)
	return true
}

func (m *Manager) Clear() {
	m.order = m.order[:0]
}

func (m *Manager) Contains(id SeatID) bool {
	return slices.Contains(m.order, id)
}

func (m *Manager) Len() int {
	return len(m.order)
}

// Seats returns the selection in insertion order.
func (m *Manager) Seats() []SeatID {
	return slices.Clone(m.order)
}

// Last is the most recently selected seat still in the set.
func (m *Manager) Last() (SeatID, bool) {
	if len(m.order) == 0 {
		return SeatID{}, false
	}
	return m.order[len(m.order)-1], true
}

// TotalPrice sums grid prices of the selection; seats without a price count as zero.
func (m *Manager) TotalPrice(grid *seatmap.Grid) domain.Money {
	var total domain.Money
	for _, id := range m.order {
		if cell, ok := grid.Cell(id.Deck, id.Row, id.Col); ok {
			total += cell.Price
		}
	}
	return total
}

// Prune drops seats that can no longer be held after the grid changed:
// positions that vanished, reserved seats, and sold seats outside the
// next-journey window. It returns the removed seats.
func (m *Manager) Prune(grid *seatmap.Grid, nextJourney bool) []SeatID {
	var removed []SeatID
	kept := m.order[:0]
	for _, id := range m.order {
		cell, ok := grid.Cell(id.Deck, id.Row, id.Col)
		drop := !ok || cell.Status == seatmap.Reserved || (cell.Status == seatmap.Sold && !nextJourney)
		if drop {
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed
}
