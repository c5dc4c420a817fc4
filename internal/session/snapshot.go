package session

import (
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/seatmap"
	"busbooking/internal/selection"
	"busbooking/internal/utils"
	"busbooking/internal/window"
	"busbooking/internal/wizard"
)

// SeatView is one rendered cell.
type SeatView struct {
	SeatID   string            `json:"seat_id"`
	Code     string            `json:"code"`
	Position string            `json:"position"`
	Status   seatmap.SeatState `json:"status"`
	Price    domain.Money      `json:"price"`
	Selected bool              `json:"selected"`
}

// SelectedView is a selected seat with its label and price for the side panel.
type SelectedView struct {
	selection.Label
	Price        domain.Money `json:"price"`
	PriceDisplay string       `json:"price_display"`
}

// Snapshot is a consistent copy of the session for rendering.
type Snapshot struct {
	ID            string               `json:"session_id"`
	Journey       models.Journey       `json:"journey"`
	Points        models.JourneyPoints `json:"points"`
	Window        window.State         `json:"window"`
	TripDate      string               `json:"trip_date"`
	ClosedReason  string               `json:"closed_reason,omitempty"`
	LowerDeck     [][]SeatView         `json:"lower_deck"`
	UpperDeck     [][]SeatView         `json:"upper_deck"`
	Selected      []SelectedView       `json:"selected_seats"`
	LastSelected  *SelectedView        `json:"last_selected,omitempty"`
	Total         domain.Money         `json:"total"`
	TotalDisplay  string               `json:"total_display"`
	MaxSeats      int                  `json:"max_seats"`
	Step          wizard.Step          `json:"step"`
	UnlockedStep  wizard.Step          `json:"unlocked_step"`
	Boarding      *models.Point        `json:"boarding_point,omitempty"`
	Dropping      *models.Point        `json:"dropping_point,omitempty"`
	AutoRefresh   bool                 `json:"auto_refresh"`
	Stale         bool                 `json:"stale"`
	DefaultLayout bool                 `json:"default_layout"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.ID,
		Journey:       s.Journey,
		Points:        s.Points,
		Window:        s.win,
		TripDate:      s.runDateLocked(),
		ClosedReason:  s.win.ClosedReason(),
		LowerDeck:     s.deckViewLocked(seatmap.Lower),
		UpperDeck:     s.deckViewLocked(seatmap.Upper),
		Selected:      []SelectedView{},
		Total:         s.sel.TotalPrice(s.grid),
		MaxSeats:      selection.MaxSeats,
		Step:          s.flow.Step(),
		UnlockedStep:  s.flow.Unlocked(),
		AutoRefresh:   s.autoRefresh,
		Stale:         s.pollFailures >= s.cfg.FailureThreshold,
		DefaultLayout: s.defaultLayout,
	}
	snap.TotalDisplay = utils.FormatMoney(snap.Total)
	for _, id := range s.sel.Seats() {
		snap.Selected = append(snap.Selected, s.selectedViewLocked(id))
	}
	if last, ok := s.sel.Last(); ok {
		v := s.selectedViewLocked(last)
		snap.LastSelected = &v
	}
	if p, ok := s.flow.Boarding(); ok {
		snap.Boarding = &p
	}
	if p, ok := s.flow.Dropping(); ok {
		snap.Dropping = &p
	}
	return snap
}

func (s *Session) selectedViewLocked(id selection.SeatID) SelectedView {
	cell, _ := s.grid.Cell(id.Deck, id.Row, id.Col)
	return SelectedView{Label: id.Label(), Price: cell.Price, PriceDisplay: utils.FormatMoney(cell.Price)}
}

func (s *Session) deckViewLocked(d seatmap.Deck) [][]SeatView {
	rows := s.grid.DeckRows(d)
	out := make([][]SeatView, len(rows))
	for r, row := range rows {
		out[r] = make([]SeatView, len(row))
		for c, cell := range row {
			id := selection.SeatID{Deck: d, Row: r, Col: c}
			out[r][c] = SeatView{
				SeatID:   id.String(),
				Code:     id.Code(),
				Position: id.Position(),
				Status:   cell.Status,
				Price:    cell.Price,
				Selected: s.sel.Contains(id),
			}
		}
	}
	return out
}
