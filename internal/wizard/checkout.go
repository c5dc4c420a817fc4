package wizard

import (
	"regexp"
	"strconv"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"
)

var (
	phoneRe = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

const (
	MinAge = 1
	MaxAge = 120
)

// CheckoutInput is the final form submission.
type CheckoutInput struct {
	Contact    models.Contact          `json:"contact"`
	Passengers []models.PassengerInput `json:"passengers"`
}

// NormalizePhone strips spaces, dashes and a leading +91 or 0.
func NormalizePhone(s string) string {
	s = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "+91")
	if len(s) == 11 && strings.HasPrefix(s, "0") {
		s = s[1:]
	}
	return s
}

// ValidPhone reports whether a normalized number is an Indian mobile number.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// Validate checks the contact and passenger forms against the selected seats.
// Every failing field is reported.
func Validate(in CheckoutInput, seats []models.BookingSeat) domain.ValidationErrors {
	var errs domain.ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, domain.ValidationError{Field: field, Msg: msg})
	}

	if strings.TrimSpace(in.Contact.Name) == "" {
		add("contact.name", "name is required")
	}
	if !phoneRe.MatchString(NormalizePhone(in.Contact.Phone)) {
		add("contact.phone", "enter a 10 digit mobile number starting with 6-9")
	}
	if !emailRe.MatchString(strings.TrimSpace(in.Contact.Email)) {
		add("contact.email", "enter a valid email address")
	}

	if len(seats) == 0 {
		add("seats", "select at least one seat")
	}
	if len(in.Passengers) != len(seats) {
		add("passengers", "enter one passenger per selected seat")
	}

	bySeat := make(map[string]models.BookingSeat, len(seats))
	for _, s := range seats {
		bySeat[s.SeatID] = s
	}
	seenName := map[string]bool{}
	seenSeat := map[string]bool{}
	for i, p := range in.Passengers {
		prefix := "passengers[" + strconv.Itoa(i) + "]."
		name := utils.NormalizeSpace(p.Name)
		switch {
		case name == "":
			add(prefix+"name", "name is required")
		case seenName[strings.ToLower(name)]:
			add(prefix+"name", "passenger names must be unique")
		default:
			seenName[strings.ToLower(name)] = true
		}
		if p.Age < MinAge || p.Age > MaxAge {
			add(prefix+"age", "age must be between 1 and 120")
		}

		seat, ok := bySeat[p.SeatID]
		switch {
		case !ok:
			add(prefix+"seat_id", "seat is not in the selection")
		case seenSeat[p.SeatID]:
			add(prefix+"seat_id", "seat already has a passenger")
		default:
			seenSeat[p.SeatID] = true
			if seat.LadiesOnly && !strings.EqualFold(strings.TrimSpace(p.Gender), "female") {
				add(prefix+"gender", "seat "+seat.SeatCode+" is reserved for women")
			}
		}
	}
	return errs
}

// BuildPayload validates the last step and assembles the booking handed to
// payment. The flow must be on the passenger step with both points chosen.
func (f *Flow) BuildPayload(journeyID int64, seats []models.BookingSeat, in CheckoutInput) (models.BookingPayload, error) {
	if f.step != PassengerInfo {
		return models.BookingPayload{}, domain.ValidationError{Field: "step", Msg: "finish the previous steps first"}
	}
	if err := f.gate(PassengerInfo, len(seats)); err != nil {
		return models.BookingPayload{}, err
	}
	if errs := Validate(in, seats); len(errs) > 0 {
		return models.BookingPayload{}, errs
	}

	var total domain.Money
	for _, s := range seats {
		total += s.Price
	}
	passengers := make([]models.PassengerInput, len(in.Passengers))
	for i, p := range in.Passengers {
		passengers[i] = models.PassengerInput{
			SeatID: p.SeatID,
			Name:   utils.NormalizeSpace(p.Name),
			Age:    p.Age,
			Gender: strings.ToLower(strings.TrimSpace(p.Gender)),
		}
	}
	return models.BookingPayload{
		JourneyID: journeyID,
		Seats:     append([]models.BookingSeat(nil), seats...),
		Boarding:  *f.boarding,
		Dropping:  *f.dropping,
		Total:     total,
		Contact: models.Contact{
			Name:  strings.TrimSpace(in.Contact.Name),
			Phone: NormalizePhone(in.Contact.Phone),
			Email: strings.ToLower(strings.TrimSpace(in.Contact.Email)),
		},
		Passengers: passengers,
	}, nil
}
