package seatmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"busbooking/internal/domain"
	"busbooking/internal/utils"
)

// Price accepts either a JSON number (rupees) or a formatted string like "₹750".
type Price domain.Money

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*p = 0
			return nil
		}
		m, err := utils.ParseMoney(s)
		if err != nil {
			return err
		}
		*p = Price(m)
		return nil
	}
	m, err := utils.ParseMoney(string(b))
	if err != nil {
		return fmt.Errorf("price %s: %w", b, err)
	}
	*p = Price(m)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(utils.FormatMoney(domain.Money(p)))), nil
}

// DeckPayload is the sparse row/column keyed shape served by the backend.
type DeckPayload struct {
	Seats  map[string]map[string]int   `json:"seats"`
	Prices map[string]map[string]Price `json:"prices"`
}

func (d DeckPayload) empty() bool {
	for _, row := range d.Seats {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// Payload is a full layout for both decks.
type Payload struct {
	Lower DeckPayload `json:"lower"`
	Upper DeckPayload `json:"upper"`
}

// Empty reports whether neither deck carries any seat entry.
func (p *Payload) Empty() bool {
	return p == nil || (p.Lower.empty() && p.Upper.empty())
}

// Set records one cell, creating nested maps as needed.
func (d *DeckPayload) Set(row, col, status int, price domain.Money) {
	r, c := strconv.Itoa(row), strconv.Itoa(col)
	if d.Seats == nil {
		d.Seats = map[string]map[string]int{}
	}
	if d.Prices == nil {
		d.Prices = map[string]map[string]Price{}
	}
	if d.Seats[r] == nil {
		d.Seats[r] = map[string]int{}
	}
	if d.Prices[r] == nil {
		d.Prices[r] = map[string]Price{}
	}
	d.Seats[r][c] = status
	d.Prices[r][c] = Price(price)
}

// Deck returns the payload half for a deck.
func (p *Payload) Deck(d Deck) *DeckPayload {
	if d == Upper {
		return &p.Upper
	}
	return &p.Lower
}
