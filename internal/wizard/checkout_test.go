package wizard

import (
	"testing"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

func seats() []models.BookingSeat {
	return []models.BookingSeat{
		{SeatID: "lower-0-0", SeatCode: "A1", Deck: "Lower", Position: "Window", Price: 75000},
		{SeatID: "upper-1-1", SeatCode: "B2", Deck: "Upper", Position: "Aisle", Price: 90000, LadiesOnly: true},
	}
}

func validInput() CheckoutInput {
	return CheckoutInput{
		Contact: models.Contact{Name: "Asha Rao", Phone: "+91 98450 12345", Email: "Asha@Example.com"},
		Passengers: []models.PassengerInput{
			{SeatID: "lower-0-0", Name: "Ravi Rao", Age: 41, Gender: "male"},
			{SeatID: "upper-1-1", Name: "Asha  Rao", Age: 38, Gender: "Female"},
		},
	}
}

func readyFlow() *Flow {
	f := New()
	f.Next(2)
	f.SetPoints(&boardingPoint, &droppingPoint)
	f.Next(2)
	return f
}

func TestValidate_AcceptsGoodInput(t *testing.T) {
	if errs := Validate(validInput(), seats()); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutInput)
		field  string
	}{
		{"phone too short", func(in *CheckoutInput) { in.Contact.Phone = "98450" }, "contact.phone"},
		{"phone bad prefix", func(in *CheckoutInput) { in.Contact.Phone = "5845012345" }, "contact.phone"},
		{"email", func(in *CheckoutInput) { in.Contact.Email = "asha@" }, "contact.email"},
		{"contact name", func(in *CheckoutInput) { in.Contact.Name = " " }, "contact.name"},
		{"age zero", func(in *CheckoutInput) { in.Passengers[0].Age = 0 }, "passengers[0].age"},
		{"age too high", func(in *CheckoutInput) { in.Passengers[1].Age = 121 }, "passengers[1].age"},
		{"duplicate names", func(in *CheckoutInput) { in.Passengers[1].Name = "ravi rao" }, "passengers[1].name"},
		{"empty name", func(in *CheckoutInput) { in.Passengers[0].Name = "" }, "passengers[0].name"},
		{"ladies seat", func(in *CheckoutInput) { in.Passengers[1].Gender = "male" }, "passengers[1].gender"},
		{"unknown seat", func(in *CheckoutInput) { in.Passengers[0].SeatID = "lower-5-0" }, "passengers[0].seat_id"},
		{"same seat twice", func(in *CheckoutInput) { in.Passengers[1].SeatID = "lower-0-0" }, "passengers[1].seat_id"},
		{"missing passenger", func(in *CheckoutInput) { in.Passengers = in.Passengers[:1] }, "passengers"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			errs := Validate(in, seats())
			if _, ok := errs.Fields()[tc.field]; !ok {
				t.Fatalf("expected error on %s, got %v", tc.field, errs.Fields())
			}
		})
	}
}

func TestBuildPayload(t *testing.T) {
	p, err := readyFlow().BuildPayload(42, seats(), validInput())
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if p.Total != 165000 {
		t.Fatalf("total = %d", p.Total)
	}
	if p.Contact.Phone != "9845012345" || p.Contact.Email != "asha@example.com" {
		t.Fatalf("contact not normalized: %+v", p.Contact)
	}
	if p.Boarding.ID != boardingPoint.ID || p.Dropping.ID != droppingPoint.ID {
		t.Fatalf("points = %+v / %+v", p.Boarding, p.Dropping)
	}
	if p.Passengers[1].Name != "Asha Rao" || p.Passengers[1].Gender != "female" {
		t.Fatalf("passenger not normalized: %+v", p.Passengers[1])
	}
}

func TestBuildPayload_BlockedBeforeLastStep(t *testing.T) {
	f := New()
	f.Next(2)
	if _, err := f.BuildPayload(42, seats(), validInput()); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildPayload_InvalidFormKeepsFlowState(t *testing.T) {
	f := readyFlow()
	in := validInput()
	in.Contact.Email = "nope"
	_, err := f.BuildPayload(42, seats(), in)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.Step() != PassengerInfo {
		t.Fatalf("step changed to %s", f.Step())
	}
	if _, ok := f.Dropping(); !ok {
		t.Fatalf("dropping point cleared by failed submit")
	}
}
