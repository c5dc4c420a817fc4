package seatmap

import (
	"strconv"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/utils"
)

const (
	DefaultRows = 15
	// MaxRows bounds a deck; row keys beyond it are ignored.
	MaxRows = 64
)

var (
	DefaultLowerPrice = utils.Rupees(750)
	DefaultUpperPrice = utils.Rupees(900)
)

// Normalize turns a sparse payload into a dense grid. Rows are ordered by
// numeric index, gaps are filled with Available cells priced 0, and columns
// past the third are dropped. A nil or empty payload yields DefaultLayout.
func Normalize(p *Payload) *Grid {
	if p.Empty() {
		return DefaultLayout()
	}
	return newGrid(normalizeDeck(p.Lower), normalizeDeck(p.Upper))
}

func normalizeDeck(d DeckPayload) [][Columns]Cell {
	maxRow := max(maxIndex(d.Seats), maxIndex(d.Prices))

	rows := make([][Columns]Cell, maxRow+1)
	for rowKey, cols := range d.Seats {
		r, ok := parseIndex(rowKey)
		if !ok {
			continue
		}
		for colKey, code := range cols {
			c, ok := parseIndex(colKey)
			if !ok || c >= Columns {
				continue
			}
			rows[r][c].Status = stateFromCode(code)
		}
	}
	for rowKey, cols := range d.Prices {
		r, ok := parseIndex(rowKey)
		if !ok {
			continue
		}
		for colKey, price := range cols {
			c, ok := parseIndex(colKey)
			if !ok || c >= Columns {
				continue
			}
			rows[r][c].Price = domain.Money(price)
		}
	}
	return rows
}

// DefaultLayout is the fallback used when the backend has no layout: both
// decks with DefaultRows rows, all Available, upper berths dearer.
func DefaultLayout() *Grid {
	return newGrid(uniformDeck(DefaultRows, DefaultLowerPrice), uniformDeck(DefaultRows, DefaultUpperPrice))
}

func uniformDeck(rows int, price domain.Money) [][Columns]Cell {
	out := make([][Columns]Cell, rows)
	for r := range out {
		for c := 0; c < Columns; c++ {
			out[r][c] = Cell{Status: Available, Price: price}
		}
	}
	return out
}

func parseIndex(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || n < 0 || n >= MaxRows {
		return 0, false
	}
	return n, true
}

// maxIndex returns the highest usable row key, or -1.
func maxIndex[V any](m map[string]V) int {
	out := -1
	for k := range m {
		if n, ok := parseIndex(k); ok && n > out {
			out = n
		}
	}
	return out
}
