package seatmap

import (
	"fmt"
	"strings"

	"busbooking/internal/domain"
)

// Columns is the logical width of every row: two seats, the aisle, one seat.
const Columns = 3

// SeatState is the inventory status of a single cell.
type SeatState int

const (
	Available SeatState = iota
	Sold
	Reserved
	LadiesOnly
)

func (s SeatState) String() string {
	switch s {
	case Available:
		return "available"
	case Sold:
		return "sold"
	case Reserved:
		return "reserved"
	case LadiesOnly:
		return "ladies_only"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// stateFromCode maps backend status codes. Unknown codes block the seat
// rather than offering it for sale.
func stateFromCode(code int) SeatState {
	switch code {
	case 0:
		return Available
	case 1:
		return Sold
	case 2:
		return Reserved
	case 3:
		return LadiesOnly
	default:
		return Reserved
	}
}

func (s SeatState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Deck int

const (
	Lower Deck = iota
	Upper
)

var Decks = []Deck{Lower, Upper}

func (d Deck) String() string {
	if d == Upper {
		return "upper"
	}
	return "lower"
}

// Label is the display name used in seat summaries.
func (d Deck) Label() string {
	if d == Upper {
		return "Upper"
	}
	return "Lower"
}

func ParseDeck(s string) (Deck, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lower", "l":
		return Lower, nil
	case "upper", "u":
		return Upper, nil
	}
	return Lower, fmt.Errorf("unknown deck %q", s)
}

func (d Deck) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Cell is one seat position; price lives next to status.
type Cell struct {
	Status SeatState    `json:"status"`
	Price  domain.Money `json:"price"`
}

// Grid is the dense two-deck seat layout of one journey.
type Grid struct {
	decks [2][][Columns]Cell
}

func newGrid(lower, upper [][Columns]Cell) *Grid {
	g := &Grid{}
	g.decks[Lower] = lower
	g.decks[Upper] = upper
	return g
}

// Rows returns the number of rows on a deck.
func (g *Grid) Rows(d Deck) int {
	if g == nil || d < Lower || d > Upper {
		return 0
	}
	return len(g.decks[d])
}

// Cell looks up a position; ok is false when it is outside the grid.
func (g *Grid) Cell(d Deck, row, col int) (Cell, bool) {
	if g == nil || d < Lower || d > Upper {
		return Cell{}, false
	}
	if row < 0 || row >= len(g.decks[d]) || col < 0 || col >= Columns {
		return Cell{}, false
	}
	return g.decks[d][row][col], true
}

// SetStatus overwrites one cell's status. Used for pushed updates.
func (g *Grid) SetStatus(d Deck, row, col int, st SeatState) bool {
	if _, ok := g.Cell(d, row, col); !ok {
		return false
	}
	g.decks[d][row][col].Status = st
	return true
}

// ResetSold flips every Sold cell back to Available and reports how many changed.
func (g *Grid) ResetSold() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, d := range Decks {
		for r := range g.decks[d] {
			for c := 0; c < Columns; c++ {
				if g.decks[d][r][c].Status == Sold {
					g.decks[d][r][c].Status = Available
					n++
				}
			}
		}
	}
	return n
}

// DeckRows returns a copy of a deck as nested slices, safe to hand to encoders.
func (g *Grid) DeckRows(d Deck) [][]Cell {
	if g == nil || d < Lower || d > Upper {
		return [][]Cell{}
	}
	out := make([][]Cell, len(g.decks[d]))
	for r, row := range g.decks[d] {
		out[r] = append([]Cell(nil), row[:]...)
	}
	return out
}

// Clone deep-copies the grid.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	c := &Grid{}
	for _, d := range Decks {
		c.decks[d] = append([][Columns]Cell(nil), g.decks[d]...)
	}
	return c
}

// Count returns the number of cells in a given state across both decks.
func (g *Grid) Count(st SeatState) int {
	if g == nil {
		return 0
	}
	n := 0
	for _, d := range Decks {
		for _, row := range g.decks[d] {
			for _, cell := range row {
				if cell.Status == st {
					n++
				}
			}
		}
	}
	return n
}
