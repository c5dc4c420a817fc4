package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/seatmap"
	"busbooking/internal/utils"
)

const seatLayoutTable = "bus_seat_layouts"

// SeatLayoutRepo stores per-bus seat maps. It doubles as the seat status
// source when no real-time feed is configured.
type SeatLayoutRepo struct {
	DB *sql.DB
}

func (r SeatLayoutRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// FetchLayout loads a bus layout as a sparse payload. No rows is NotFound so
// callers fall back to the default layout.
func (r SeatLayoutRepo) FetchLayout(ctx context.Context, busID string) (*seatmap.Payload, error) {
	busID = strings.TrimSpace(busID)
	db := r.db()
	if busID == "" || db == nil || !intdb.HasTable(ctx, db, seatLayoutTable) {
		return nil, domain.NotFoundError{Resource: "seat layout"}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT deck, row_no, col_no, COALESCE(status, 0), COALESCE(price, '')
		FROM `+seatLayoutTable+`
		WHERE bus_id=?
		ORDER BY deck, row_no, col_no
	`, busID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to load seat layout", Err: err}
	}
	defer rows.Close()

	p := &seatmap.Payload{}
	n := 0
	for rows.Next() {
		var (
			deckRaw  string
			row, col int
			status   int
			priceRaw string
		)
		if err := rows.Scan(&deckRaw, &row, &col, &status, &priceRaw); err != nil {
			return nil, err
		}
		deck, err := seatmap.ParseDeck(deckRaw)
		if err != nil {
			utils.LogEvent("", "seat_layout", "skip_row", fmt.Sprintf("bus=%s deck=%q", busID, deckRaw))
			continue
		}
		price, err := utils.ParseMoney(priceRaw)
		if err != nil {
			price = 0
		}
		p.Deck(deck).Set(row, col, status, price)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.NotFoundError{Resource: "seat layout"}
	}
	return p, nil
}

// SaveLayout replaces every stored cell of a bus with the given payload.
func (r SeatLayoutRepo) SaveLayout(ctx context.Context, busID string, p *seatmap.Payload) (int, error) {
	busID = strings.TrimSpace(busID)
	if busID == "" {
		return 0, domain.ValidationError{Field: "bus_id", Msg: "bus id is required"}
	}
	if p.Empty() {
		return 0, domain.ValidationError{Field: "seats", Msg: "layout is empty"}
	}
	db := r.db()
	if db == nil || !intdb.HasTable(ctx, db, seatLayoutTable) {
		return 0, domain.InternalError{Msg: "seat layout table not available"}
	}

	grid := seatmap.Normalize(p)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.InternalError{Msg: "failed to start transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+seatLayoutTable+` WHERE bus_id=?`, busID); err != nil {
		return 0, domain.InternalError{Msg: "failed to clear seat layout", Err: err}
	}

	stmt := `INSERT INTO ` + seatLayoutTable + ` (bus_id, deck, row_no, col_no, status, price) VALUES (?,?,?,?,?,?)`
	n := 0
	for _, d := range seatmap.Decks {
		for row, cells := range grid.DeckRows(d) {
			for col, cell := range cells {
				if _, err := tx.ExecContext(ctx, stmt, busID, d.String(), row, col, int(cell.Status), utils.FormatMoney(cell.Price)); err != nil {
					return 0, domain.InternalError{Msg: "failed to save seat layout", Err: err}
				}
				n++
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, domain.InternalError{Msg: "failed to commit seat layout", Err: err}
	}
	return n, nil
}
