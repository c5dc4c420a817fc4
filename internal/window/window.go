// Package window decides, from the wall clock and a journey's timetable,
// whether seats can still be booked.
package window

import (
	"time"
)

// CutoffMinutes is how long before departure booking closes.
const CutoffMinutes = 20

type Phase int

const (
	Scheduled Phase = iota
	Boarding
	Departed
	Arrived
	NextJourney
)

func (p Phase) String() string {
	switch p {
	case Boarding:
		return "boarding"
	case Departed:
		return "departed"
	case Arrived:
		return "arrived"
	case NextJourney:
		return "next_journey"
	default:
		return "scheduled"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Reasons reported when booking is closed.
const (
	ReasonTooClose = "too_close_to_departure"
	ReasonDeparted = "departed"
	ReasonArrived  = "arrived"
)

// State is the booking window at one instant.
type State struct {
	IsBookingOpen        bool  `json:"is_booking_open"`
	Phase                Phase `json:"bus_status"`
	CanResetSeats        bool  `json:"can_reset_seats"`
	NextJourneyAvailable bool  `json:"next_journey_available"`
	// MinutesToDeparture and MinutesToArrival are only meaningful when Timed is set.
	MinutesToDeparture int  `json:"minutes_to_departure"`
	MinutesToArrival   int  `json:"minutes_to_arrival"`
	Timed              bool `json:"timed"`
}

// ClosedReason explains a closed window; empty when booking is open.
func (s State) ClosedReason() string {
	if s.IsBookingOpen {
		return ""
	}
	switch s.Phase {
	case Boarding:
		return ReasonTooClose
	case Departed:
		return ReasonDeparted
	case Arrived, NextJourney:
		return ReasonArrived
	}
	return ""
}

// Open is the state used when the timetable is missing or unreadable.
func Open() State {
	return State{IsBookingOpen: true, Phase: Scheduled}
}

// Evaluate computes the window for now against the departure/arrival clock
// strings. Unparseable times yield Open so the page stays usable.
func Evaluate(now time.Time, departure, arrival string) State {
	dep, err := ParseClock(departure)
	if err != nil {
		return Open()
	}
	arr, err := ParseClock(arrival)
	if err != nil {
		return Open()
	}
	return EvaluateMinutes(MinuteOfDay(now), dep, arr)
}

// EvaluateMinutes is Evaluate on minutes since midnight.
func EvaluateMinutes(now, dep, arr int) State {
	if arr < dep {
		// Overnight run: move one boundary by a day so now sits in a sane window.
		switch {
		case now >= dep:
			arr += minutesPerDay
		case now < arr:
			dep -= minutesPerDay
		case dep-now <= CutoffMinutes:
			// Tonight's run is about to leave.
			arr += minutesPerDay
		default:
			// Between runs: last night's bus has arrived.
			dep -= minutesPerDay
		}
	}

	toDep := dep - now
	toArr := arr - now
	st := State{MinutesToDeparture: toDep, MinutesToArrival: toArr, Timed: true}

	switch {
	case toArr <= 0:
		st.Phase = Arrived
		st.IsBookingOpen = true
		st.CanResetSeats = true
		st.NextJourneyAvailable = true
	case toDep <= 0:
		st.Phase = Departed
	case toDep <= CutoffMinutes:
		st.Phase = Boarding
	default:
		st.Phase = Scheduled
		st.IsBookingOpen = true
	}
	return st
}

// RunDate is the calendar date of the departure a state refers to: the
// upcoming or current run, or the following one once the next journey is on
// sale. now must be the instant the state was evaluated at.
func RunDate(now time.Time, st State) time.Time {
	day := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	if !st.Timed {
		return day(now)
	}
	dep := now.Add(time.Duration(st.MinutesToDeparture) * time.Minute)
	if st.Phase == NextJourney {
		return day(dep).AddDate(0, 0, 1)
	}
	return day(dep)
}
