package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/selection"
	"busbooking/internal/utils"
)

type BookingRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BookingRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Create stores a pending booking with its seats and passengers in one
// transaction. A seat already booked on the same journey run aborts the whole
// booking with a ConflictError. The bus layout is never touched: sold seats
// live in booking_seats, keyed by journey and trip date.
func (r BookingRepo) Create(ctx context.Context, ref string, p models.BookingPayload) (models.Booking, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_ref", Msg: "reference is required"}
	}
	if len(p.Seats) == 0 {
		return models.Booking{}, domain.ValidationError{Field: "seats", Msg: "select at least one seat"}
	}
	if _, err := utils.ParseDate(p.TripDate, time.UTC); err != nil {
		return models.Booking{}, domain.ValidationError{Field: "trip_date", Msg: "trip date must be YYYY-MM-DD"}
	}
	db := r.db()
	if db == nil || !intdb.HasTable(ctx, db, "bookings") {
		return models.Booking{}, domain.InternalError{Msg: "bookings table not available"}
	}
	createdAt := utils.FormatDateTime(r.now())

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to start transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings
			(booking_ref, journey_id, trip_date, user_id, contact_name, contact_phone, contact_email,
			 boarding_point_id, dropping_point_id, total_amount, payment_status, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`, ref, p.JourneyID, p.TripDate, intdb.NullIfEmpty(p.UserID), p.Contact.Name, p.Contact.Phone, intdb.NullIfEmpty(p.Contact.Email),
		p.Boarding.ID, p.Dropping.ID, int64(p.Total), models.PaymentPending, createdAt)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "reference already used", Err: err}
		}
		return models.Booking{}, domain.InternalError{Msg: "failed to create booking", Err: err}
	}
	bookingID, err := res.LastInsertId()
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to read booking id", Err: err}
	}

	codeBySeat := make(map[string]string, len(p.Seats))
	for _, s := range p.Seats {
		codeBySeat[s.SeatID] = s.SeatCode
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO booking_seats (booking_id, journey_id, trip_date, seat_id, seat_code, deck, price)
			VALUES (?,?,?,?,?,?,?)
		`, bookingID, p.JourneyID, p.TripDate, s.SeatID, s.SeatCode, strings.ToLower(s.Deck), int64(s.Price)); err != nil {
			if intdb.IsDuplicateKey(err) {
				return models.Booking{}, domain.ConflictError{Resource: "seat", Msg: fmt.Sprintf("%s is already booked", s.SeatCode), Err: err}
			}
			return models.Booking{}, domain.InternalError{Msg: "failed to save booking seat", Err: err}
		}
	}

	for _, ps := range p.Passengers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO booking_passengers (booking_id, seat_code, passenger_name, age, gender)
			VALUES (?,?,?,?,?)
		`, bookingID, codeBySeat[ps.SeatID], ps.Name, ps.Age, ps.Gender); err != nil {
			return models.Booking{}, domain.InternalError{Msg: "failed to save passenger", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to commit booking", Err: err}
	}

	return models.Booking{
		ID:            bookingID,
		Ref:           ref,
		JourneyID:     p.JourneyID,
		TripDate:      p.TripDate,
		UserID:        p.UserID,
		Contact:       p.Contact,
		BoardingPoint: p.Boarding.Name,
		DroppingPoint: p.Dropping.Name,
		Total:         p.Total,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     createdAt,
		Seats:         p.Seats,
		Passengers:    p.Passengers,
	}, nil
}

const bookingSelect = `
	SELECT b.id, b.booking_ref, b.journey_id, COALESCE(CAST(b.trip_date AS CHAR), ''), COALESCE(b.user_id, ''),
		COALESCE(b.contact_name, ''), COALESCE(b.contact_phone, ''), COALESCE(b.contact_email, ''),
		COALESCE(bp.name, ''), COALESCE(dp.name, ''),
		COALESCE(b.total_amount, 0), COALESCE(b.payment_status, ''), COALESCE(CAST(b.created_at AS CHAR), '')
	FROM bookings b
	LEFT JOIN journey_points bp ON bp.id = b.boarding_point_id
	LEFT JOIN journey_points dp ON dp.id = b.dropping_point_id
`

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	var total int64
	err := row.Scan(&b.ID, &b.Ref, &b.JourneyID, &b.TripDate, &b.UserID,
		&b.Contact.Name, &b.Contact.Phone, &b.Contact.Email,
		&b.BoardingPoint, &b.DroppingPoint,
		&total, &b.PaymentStatus, &b.CreatedAt)
	b.Total = domain.Money(total)
	return b, err
}

// BookedSeats lists seat ids already booked on one run of a journey. A
// missing booking_seats table means nothing is booked yet.
func (r BookingRepo) BookedSeats(ctx context.Context, journeyID int64, tripDate string) ([]string, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "database not configured"}
	}
	if !intdb.HasTable(ctx, db, "booking_seats") {
		return []string{}, nil
	}
	rows, err := db.QueryContext(ctx, `
		SELECT seat_id FROM booking_seats
		WHERE journey_id=? AND trip_date=? AND seat_id IS NOT NULL
	`, journeyID, tripDate)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to load booked seats", Err: err}
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetByRef loads one booking with seats and passengers.
func (r BookingRepo) GetByRef(ctx context.Context, ref string) (models.Booking, error) {
	ref = strings.TrimSpace(ref)
	db := r.db()
	if ref == "" || db == nil || !intdb.HasTable(ctx, db, "bookings") {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}

	b, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.booking_ref=? LIMIT 1`, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to load booking", Err: err}
	}
	if err := r.loadLines(ctx, db, &b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// ListByUser returns a signed-in user's bookings, newest first.
func (r BookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ValidationError{Field: "user_id", Msg: "user id is required"}
	}
	return r.list(ctx, `b.user_id=?`, userID)
}

// ListByPhone returns bookings made with a contact phone, newest first.
func (r BookingRepo) ListByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, domain.ValidationError{Field: "phone", Msg: "phone is required"}
	}
	return r.list(ctx, `b.contact_phone=?`, phone)
}

func (r BookingRepo) list(ctx context.Context, where string, arg any) ([]models.Booking, error) {
	db := r.db()
	if db == nil || !intdb.HasTable(ctx, db, "bookings") {
		return []models.Booking{}, nil
	}

	rows, err := db.QueryContext(ctx, bookingSelect+` WHERE `+where+` ORDER BY b.created_at DESC, b.id DESC LIMIT 100`, arg)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list bookings", Err: err}
	}
	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range out {
		if err := r.loadLines(ctx, db, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// loadLines fills seats and passengers. Missing child tables leave them empty.
func (r BookingRepo) loadLines(ctx context.Context, db *sql.DB, b *models.Booking) error {
	b.Seats = []models.BookingSeat{}
	b.Passengers = []models.PassengerInput{}
	seatByCode := map[string]string{}

	if intdb.HasTable(ctx, db, "booking_seats") {
		rows, err := db.QueryContext(ctx, `
			SELECT COALESCE(seat_id, ''), seat_code, COALESCE(deck, ''), COALESCE(price, 0)
			FROM booking_seats WHERE booking_id=? ORDER BY id ASC
		`, b.ID)
		if err != nil {
			return domain.InternalError{Msg: "failed to load booking seats", Err: err}
		}
		for rows.Next() {
			var s models.BookingSeat
			var price int64
			if err := rows.Scan(&s.SeatID, &s.SeatCode, &s.Deck, &price); err != nil {
				rows.Close()
				return err
			}
			s.Price = domain.Money(price)
			if id, err := selection.ParseSeatID(s.SeatID); err == nil {
				l := id.Label()
				s.Deck, s.Position = l.Deck, l.Position
			}
			seatByCode[s.SeatCode] = s.SeatID
			b.Seats = append(b.Seats, s)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}

	if intdb.HasTable(ctx, db, "booking_passengers") {
		rows, err := db.QueryContext(ctx, `
			SELECT seat_code, passenger_name, COALESCE(age, 0), COALESCE(gender, '')
			FROM booking_passengers WHERE booking_id=? ORDER BY id ASC
		`, b.ID)
		if err != nil {
			return domain.InternalError{Msg: "failed to load passengers", Err: err}
		}
		defer rows.Close()
		for rows.Next() {
			var p models.PassengerInput
			var code string
			if err := rows.Scan(&code, &p.Name, &p.Age, &p.Gender); err != nil {
				return err
			}
			p.SeatID = seatByCode[code]
			b.Passengers = append(b.Passengers, p)
		}
		return rows.Err()
	}
	return nil
}
