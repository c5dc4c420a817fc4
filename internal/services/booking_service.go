package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"
	"busbooking/internal/wizard"

	"github.com/google/uuid"
)

// BookingStore persists and reads bookings.
type BookingStore interface {
	Create(ctx context.Context, ref string, p models.BookingPayload) (models.Booking, error)
	GetByRef(ctx context.Context, ref string) (models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByPhone(ctx context.Context, phone string) ([]models.Booking, error)
}

type JourneyReader interface {
	GetByID(ctx context.Context, id int64) (models.Journey, error)
}

// CheckoutService turns a validated checkout payload into a pending booking
// and a payment gateway redirect.
type CheckoutService struct {
	Bookings   BookingStore
	GatewayURL string
	RequestID  string
	NewRef     func() string
}

func (s CheckoutService) newRef() string {
	if s.NewRef != nil {
		return s.NewRef()
	}
	return uuid.NewString()
}

// Handoff stores the booking as pending and returns where to pay. Seats
// taken in the meantime surface as a ConflictError. A zero total is allowed:
// layouts without prices sell seats at zero.
func (s CheckoutService) Handoff(ctx context.Context, p models.BookingPayload) (models.PaymentHandoff, error) {
	if s.Bookings == nil {
		return models.PaymentHandoff{}, domain.InternalError{Msg: "booking store not configured"}
	}
	if len(p.Seats) == 0 {
		return models.PaymentHandoff{}, domain.ValidationError{Field: "seats", Msg: "nothing to pay for"}
	}
	if p.Total < 0 {
		return models.PaymentHandoff{}, domain.ValidationError{Field: "total", Msg: "total cannot be negative"}
	}

	ref := s.newRef()
	b, err := s.Bookings.Create(ctx, ref, p)
	if err != nil {
		utils.LogEvent(s.RequestID, "checkout", "create_failed", fmt.Sprintf("journey=%d seats=%d err=%v", p.JourneyID, len(p.Seats), err))
		return models.PaymentHandoff{}, err
	}
	utils.LogEvent(s.RequestID, "checkout", "handoff", fmt.Sprintf("ref=%s journey=%d seats=%d amount=%d", b.Ref, b.JourneyID, len(b.Seats), b.Total))

	return models.PaymentHandoff{
		BookingRef:  b.Ref,
		Amount:      b.Total,
		RedirectURL: s.redirectURL(b.Ref, b.Total),
		Status:      b.PaymentStatus,
	}, nil
}

func (s CheckoutService) redirectURL(ref string, amount domain.Money) string {
	base := strings.TrimRight(strings.TrimSpace(s.GatewayURL), "/")
	if base == "" {
		return ""
	}
	q := url.Values{}
	q.Set("booking_ref", ref)
	q.Set("amount", fmt.Sprintf("%d", int64(amount)))
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

// BookingService serves booking history and detail.
type BookingService struct {
	Bookings BookingStore
	Journeys JourneyReader
}

// Detail returns one booking with its journey attached when available.
func (s BookingService) Detail(ctx context.Context, ref string) (models.Booking, error) {
	b, err := s.Bookings.GetByRef(ctx, ref)
	if err != nil {
		return models.Booking{}, err
	}
	s.attachJourney(ctx, &b, map[int64]*models.Journey{})
	return b, nil
}

// History lists bookings of a signed-in user, or of a contact phone for
// guests. The user id wins when both are given. Guests get the guest view:
// anyone can type a phone number, so contact and passenger details stay out.
func (s BookingService) History(ctx context.Context, userID, phone string) ([]models.Booking, error) {
	var (
		list []models.Booking
		err  error
	)
	switch {
	case strings.TrimSpace(userID) != "":
		list, err = s.Bookings.ListByUser(ctx, userID)
	case strings.TrimSpace(phone) != "":
		normalized := wizard.NormalizePhone(phone)
		if !wizard.ValidPhone(normalized) {
			return nil, domain.ValidationError{Field: "phone", Msg: "enter a valid 10-digit mobile number"}
		}
		list, err = s.Bookings.ListByPhone(ctx, normalized)
	default:
		return nil, domain.ValidationError{Field: "phone", Msg: "sign in or provide a phone number"}
	}
	if err != nil {
		return nil, err
	}

	guest := strings.TrimSpace(userID) == ""
	seen := map[int64]*models.Journey{}
	for i := range list {
		s.attachJourney(ctx, &list[i], seen)
		if guest {
			list[i] = guestView(list[i])
		}
	}
	return list, nil
}

// guestView keeps what identifies a trip and drops personal data.
func guestView(b models.Booking) models.Booking {
	b.UserID = ""
	b.Contact = models.Contact{Name: maskName(b.Contact.Name)}
	b.Passengers = []models.PassengerInput{}
	return b
}

// maskName keeps the first letter of each word: "Meera Rao" -> "M. R.".
func maskName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + "."
	}
	return strings.Join(words, " ")
}

func (s BookingService) attachJourney(ctx context.Context, b *models.Booking, seen map[int64]*models.Journey) {
	if s.Journeys == nil || b.JourneyID <= 0 {
		return
	}
	if j, ok := seen[b.JourneyID]; ok {
		b.Journey = j
		return
	}
	j, err := s.Journeys.GetByID(ctx, b.JourneyID)
	if err != nil {
		seen[b.JourneyID] = nil
		return
	}
	seen[b.JourneyID] = &j
	b.Journey = &j
}
