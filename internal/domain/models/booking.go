package models

import "busbooking/internal/domain"

// Contact is who receives the ticket and payment link.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// PassengerInput carries per-seat passenger info.
type PassengerInput struct {
	SeatID string `json:"seat_id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// BookingSeat is one seat line of a booking.
type BookingSeat struct {
	SeatID     string       `json:"seat_id"`
	SeatCode   string       `json:"seat_code"`
	Deck       string       `json:"deck"`
	Position   string       `json:"position"`
	Price      domain.Money `json:"price"`
	LadiesOnly bool         `json:"ladies_only,omitempty"`
}

// BookingPayload is what checkout hands to the payment collaborator.
type BookingPayload struct {
	JourneyID  int64            `json:"journey_id"`
	TripDate   string           `json:"trip_date"` // YYYY-MM-DD run the seats are sold for
	UserID     string           `json:"user_id,omitempty"`
	Seats      []BookingSeat    `json:"seats"`
	Boarding   Point            `json:"boarding_point"`
	Dropping   Point            `json:"dropping_point"`
	Total      domain.Money     `json:"total"`
	Contact    Contact          `json:"contact"`
	Passengers []PassengerInput `json:"passengers"`
}

// Booking is a stored booking as shown in history.
type Booking struct {
	ID            int64            `json:"id"`
	Ref           string           `json:"booking_ref"`
	JourneyID     int64            `json:"journey_id"`
	TripDate      string           `json:"trip_date"`
	UserID        string           `json:"user_id,omitempty"`
	Contact       Contact          `json:"contact"`
	BoardingPoint string           `json:"boarding_point"`
	DroppingPoint string           `json:"dropping_point"`
	Total         domain.Money     `json:"total"`
	PaymentStatus string           `json:"payment_status"`
	CreatedAt     string           `json:"created_at"`
	Seats         []BookingSeat    `json:"seats"`
	Passengers    []PassengerInput `json:"passengers"`
	Journey       *Journey         `json:"journey,omitempty"`
}

// PaymentHandoff is returned to the client to continue at the gateway.
type PaymentHandoff struct {
	BookingRef  string       `json:"booking_ref"`
	Amount      domain.Money `json:"amount"`
	RedirectURL string       `json:"redirect_url"`
	Status      string       `json:"payment_status"`
}

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)
