// Package wizard drives the three checkout steps: seats, boarding/dropping
// points, passenger details.
package wizard

import (
	"fmt"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type Step int

const (
	SelectSeats Step = iota + 1
	SelectBoardingDropping
	PassengerInfo
)

func (s Step) String() string {
	switch s {
	case SelectSeats:
		return "select_seats"
	case SelectBoardingDropping:
		return "select_boarding_dropping"
	case PassengerInfo:
		return "passenger_info"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStep accepts a step number ("1".."3") or its name.
func ParseStep(v string) (Step, error) {
	for _, s := range []Step{SelectSeats, SelectBoardingDropping, PassengerInfo} {
		if v == s.String() || v == fmt.Sprint(int(s)) {
			return s, nil
		}
	}
	return 0, domain.ValidationError{Field: "step", Msg: "unknown step " + v}
}

// Flow is the wizard position plus what step two collected. Seats live in
// the selection manager; the flow only sees their count.
type Flow struct {
	step     Step
	unlocked Step
	boarding *models.Point
	dropping *models.Point
}

func New() *Flow {
	return &Flow{step: SelectSeats, unlocked: SelectSeats}
}

func (f *Flow) Step() Step     { return f.step }
func (f *Flow) Unlocked() Step { return f.unlocked }

func (f *Flow) Boarding() (models.Point, bool) {
	if f.boarding == nil {
		return models.Point{}, false
	}
	return *f.boarding, true
}

func (f *Flow) Dropping() (models.Point, bool) {
	if f.dropping == nil {
		return models.Point{}, false
	}
	return *f.dropping, true
}

// SetPoints records the boarding and dropping choice; nil leaves a side unchanged.
func (f *Flow) SetPoints(boarding, dropping *models.Point) {
	if boarding != nil {
		b := *boarding
		f.boarding = &b
	}
	if dropping != nil {
		d := *dropping
		f.dropping = &d
	}
}

// gate reports why step to cannot be entered with the current data.
func (f *Flow) gate(to Step, seatCount int) error {
	if to >= SelectBoardingDropping && seatCount < 1 {
		return domain.ValidationError{Field: "seats", Msg: "select at least one seat"}
	}
	if to >= PassengerInfo && (f.boarding == nil || f.dropping == nil) {
		return domain.ValidationError{Field: "points", Msg: "choose a boarding and a dropping point"}
	}
	return nil
}

// Next moves one step forward when the current step is complete.
func (f *Flow) Next(seatCount int) (Step, error) {
	if f.step == PassengerInfo {
		return f.step, domain.ValidationError{Field: "step", Msg: "already at the last step"}
	}
	to := f.step + 1
	if err := f.gate(to, seatCount); err != nil {
		return f.step, err
	}
	f.step = to
	f.unlocked = max(f.unlocked, to)
	return f.step, nil
}

// GoTo jumps to a step. Going back is always allowed and keeps collected
// data. Going forward is limited to steps already unlocked and re-checks
// their gates, so emptying the selection locks the later steps again.
func (f *Flow) GoTo(to Step, seatCount int) error {
	if to < SelectSeats || to > PassengerInfo {
		return domain.ValidationError{Field: "step", Msg: "unknown step"}
	}
	if to <= f.step {
		f.step = to
		return nil
	}
	if to > f.unlocked && to != f.step+1 {
		return domain.ValidationError{Field: "step", Msg: "complete the previous step first"}
	}
	if err := f.gate(to, seatCount); err != nil {
		return err
	}
	f.step = to
	f.unlocked = max(f.unlocked, to)
	return nil
}

// Reset returns to the first step and forgets the chosen points.
func (f *Flow) Reset() {
	f.step = SelectSeats
	f.unlocked = SelectSeats
	f.boarding = nil
	f.dropping = nil
}
