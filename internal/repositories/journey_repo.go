package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"
)

type JourneyRepo struct {
	DB *sql.DB
}

func (r JourneyRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// journeyColumns builds the select list, tolerating deployments without the
// optional operator_name and bus_type columns.
func journeyColumns(ctx context.Context, db *sql.DB) string {
	return fmt.Sprintf(`id, bus_id, route_from, route_to, CAST(trip_date AS CHAR), CAST(departure_time AS CHAR), CAST(arrival_time AS CHAR), %s, %s`,
		intdb.ColumnOr(ctx, db, "journeys", "operator_name", "''"),
		intdb.ColumnOr(ctx, db, "journeys", "bus_type", "''"),
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJourney(row rowScanner) (models.Journey, error) {
	var j models.Journey
	var busID, from, to, date, dep, arr, operator, busTyp sql.NullString
	if err := row.Scan(&j.ID, &busID, &from, &to, &date, &dep, &arr, &operator, &busTyp); err != nil {
		return models.Journey{}, err
	}
	j.BusID = strings.TrimSpace(busID.String)
	j.RouteFrom = strings.TrimSpace(from.String)
	j.RouteTo = strings.TrimSpace(to.String)
	j.TripDate = strings.TrimSpace(date.String)
	j.DepartureTime = utils.ShortClock(dep.String)
	j.ArrivalTime = utils.ShortClock(arr.String)
	j.OperatorName = strings.TrimSpace(operator.String)
	j.BusType = strings.TrimSpace(busTyp.String)
	return j, nil
}

func (r JourneyRepo) GetByID(ctx context.Context, id int64) (models.Journey, error) {
	if id <= 0 {
		return models.Journey{}, domain.ValidationError{Field: "journey_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil || !intdb.HasTable(ctx, db, "journeys") {
		return models.Journey{}, domain.NotFoundError{Resource: "journey"}
	}

	query := `SELECT ` + journeyColumns(ctx, db) + ` FROM journeys WHERE id=? LIMIT 1`
	j, err := scanJourney(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Journey{}, domain.NotFoundError{Resource: "journey", Err: err}
	}
	if err != nil {
		return models.Journey{}, domain.InternalError{Msg: "failed to load journey", Err: err}
	}
	return j, nil
}

// Search lists journeys on a route for a date, ordered by departure. Empty
// filters are ignored so the listing page can show everything.
func (r JourneyRepo) Search(ctx context.Context, from, to, date string) ([]models.Journey, error) {
	db := r.db()
	if db == nil || !intdb.HasTable(ctx, db, "journeys") {
		return []models.Journey{}, nil
	}

	where := []string{}
	args := []any{}
	if from = strings.TrimSpace(from); from != "" {
		where = append(where, "LOWER(route_from)=LOWER(?)")
		args = append(args, from)
	}
	if to = strings.TrimSpace(to); to != "" {
		where = append(where, "LOWER(route_to)=LOWER(?)")
		args = append(args, to)
	}
	if date = strings.TrimSpace(date); date != "" {
		where = append(where, "trip_date=?")
		args = append(args, date)
	}

	query := `SELECT ` + journeyColumns(ctx, db) + ` FROM journeys`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY trip_date ASC, departure_time ASC, id ASC LIMIT 200`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to search journeys", Err: err}
	}
	defer rows.Close()

	out := []models.Journey{}
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return out, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ListPoints returns boarding and dropping points of a journey in stop order.
// A missing journey_points table yields empty lists.
func (r JourneyRepo) ListPoints(ctx context.Context, journeyID int64) (models.JourneyPoints, error) {
	out := models.JourneyPoints{Boarding: []models.Point{}, Dropping: []models.Point{}}
	db := r.db()
	if db == nil || !intdb.HasTable(ctx, db, "journey_points") {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT id, kind, name, %s, CAST(point_time AS CHAR), %s FROM journey_points WHERE journey_id=? ORDER BY point_time ASC, id ASC`,
		intdb.ColumnOr(ctx, db, "journey_points", "address", "''"),
		intdb.ColumnOr(ctx, db, "journey_points", "landmark", "''"),
	)
	rows, err := db.QueryContext(ctx, query, journeyID)
	if err != nil {
		return out, domain.InternalError{Msg: "failed to load points", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Point
		var kind, name, addr, tm, landmark sql.NullString
		if err := rows.Scan(&p.ID, &kind, &name, &addr, &tm, &landmark); err != nil {
			return out, err
		}
		p.Name = strings.TrimSpace(name.String)
		p.Address = strings.TrimSpace(addr.String)
		p.Time = utils.ShortClock(tm.String)
		p.Landmark = strings.TrimSpace(landmark.String)
		switch models.PointKind(strings.ToLower(strings.TrimSpace(kind.String))) {
		case models.PointBoarding:
			p.Kind = models.PointBoarding
			out.Boarding = append(out.Boarding, p)
		case models.PointDropping:
			p.Kind = models.PointDropping
			out.Dropping = append(out.Dropping, p)
		}
	}
	return out, rows.Err()
}
