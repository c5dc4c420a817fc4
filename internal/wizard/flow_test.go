package wizard

import (
	"testing"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

var (
	boardingPoint = models.Point{ID: 1, Kind: models.PointBoarding, Name: "Majestic", Time: "21:30"}
	droppingPoint = models.Point{ID: 9, Kind: models.PointDropping, Name: "Anand Rao Circle", Time: "06:00"}
)

func TestNext_RequiresSeats(t *testing.T) {
	f := New()
	if _, err := f.Next(0); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.Step() != SelectSeats {
		t.Fatalf("step moved to %s", f.Step())
	}
	if step, err := f.Next(1); err != nil || step != SelectBoardingDropping {
		t.Fatalf("next with one seat: step=%s err=%v", step, err)
	}
}

func TestNext_RequiresBothPoints(t *testing.T) {
	f := New()
	f.Next(2)
	if _, err := f.Next(2); !domain.IsValidation(err) {
		t.Fatalf("expected gate without points, got %v", err)
	}
	f.SetPoints(&boardingPoint, nil)
	if _, err := f.Next(2); !domain.IsValidation(err) {
		t.Fatalf("expected gate with only boarding, got %v", err)
	}
	f.SetPoints(nil, &droppingPoint)
	if step, err := f.Next(2); err != nil || step != PassengerInfo {
		t.Fatalf("step=%s err=%v", step, err)
	}
	if _, err := f.Next(2); err == nil {
		t.Fatalf("next past the last step should fail")
	}
}

func TestGoTo_BackwardKeepsCollectedState(t *testing.T) {
	f := New()
	f.Next(1)
	f.SetPoints(&boardingPoint, &droppingPoint)
	f.Next(1)

	if err := f.GoTo(SelectSeats, 1); err != nil {
		t.Fatalf("back to seats: %v", err)
	}
	if _, ok := f.Boarding(); !ok {
		t.Fatalf("boarding point lost on back navigation")
	}
	if f.Unlocked() != PassengerInfo {
		t.Fatalf("unlocked = %s", f.Unlocked())
	}
	if err := f.GoTo(PassengerInfo, 1); err != nil {
		t.Fatalf("return to unlocked step: %v", err)
	}
}

func TestGoTo_ForwardSkipRefused(t *testing.T) {
	f := New()
	if err := f.GoTo(PassengerInfo, 3); !domain.IsValidation(err) {
		t.Fatalf("skip forward should fail, got %v", err)
	}
	if err := f.GoTo(SelectBoardingDropping, 3); err != nil {
		t.Fatalf("next step via tab: %v", err)
	}
}

func TestGoTo_EmptiedSelectionRelocksLaterSteps(t *testing.T) {
	f := New()
	f.Next(1)
	f.SetPoints(&boardingPoint, &droppingPoint)
	f.Next(1)
	f.GoTo(SelectSeats, 1)

	if err := f.GoTo(PassengerInfo, 0); !domain.IsValidation(err) {
		t.Fatalf("step 3 reachable with no seats: %v", err)
	}
	if err := f.GoTo(SelectBoardingDropping, 0); !domain.IsValidation(err) {
		t.Fatalf("step 2 reachable with no seats: %v", err)
	}
}

func TestParseStep(t *testing.T) {
	for in, want := range map[string]Step{"1": SelectSeats, "select_boarding_dropping": SelectBoardingDropping, "3": PassengerInfo} {
		got, err := ParseStep(in)
		if err != nil || got != want {
			t.Fatalf("ParseStep(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseStep("4"); err == nil {
		t.Fatalf("ParseStep(4) should fail")
	}
}
