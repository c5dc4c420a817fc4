package selection

import (
	"fmt"
	"strconv"
	"strings"

	"busbooking/internal/seatmap"
)

// SeatID identifies a cell as "{deck}-{row}-{col}".
type SeatID struct {
	Deck seatmap.Deck
	Row  int
	Col  int
}

func (id SeatID) String() string {
	return fmt.Sprintf("%s-%d-%d", id.Deck, id.Row, id.Col)
}

func (id SeatID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *SeatID) UnmarshalText(b []byte) error {
	parsed, err := ParseSeatID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func ParseSeatID(s string) (SeatID, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return SeatID{}, fmt.Errorf("invalid seat id %q", s)
	}
	deck, err := seatmap.ParseDeck(parts[0])
	if err != nil {
		return SeatID{}, fmt.Errorf("invalid seat id %q: %w", s, err)
	}
	row, err := strconv.Atoi(parts[1])
	if err != nil || row < 0 {
		return SeatID{}, fmt.Errorf("invalid seat id %q: bad row", s)
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil || col < 0 || col >= seatmap.Columns {
		return SeatID{}, fmt.Errorf("invalid seat id %q: bad column", s)
	}
	return SeatID{Deck: deck, Row: row, Col: col}, nil
}

// Code is the printed seat number: row letter then column number, e.g. "B3".
func (id SeatID) Code() string {
	return rowLetters(id.Row) + strconv.Itoa(id.Col+1)
}

// Position reflects the 2+1 layout: the middle logical column sits on the aisle.
func (id SeatID) Position() string {
	if id.Col == 1 {
		return "Aisle"
	}
	return "Window"
}

// Label is what the side panel shows for a seat.
type Label struct {
	SeatID   string `json:"seat_id"`
	Code     string `json:"code"`
	Deck     string `json:"deck"`
	Position string `json:"position"`
}

func (id SeatID) Label() Label {
	return Label{
		SeatID:   id.String(),
		Code:     id.Code(),
		Deck:     id.Deck.Label(),
		Position: id.Position(),
	}
}

// rowLetters maps 0->A, 25->Z, 26->AA.
func rowLetters(row int) string {
	if row < 0 {
		return "?"
	}
	var b []byte
	for n := row; ; n = n/26 - 1 {
		b = append([]byte{byte('A' + n%26)}, b...)
		if n < 26 {
			break
		}
	}
	return string(b)
}
