package window

import (
	"testing"
	"time"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 3, 14, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func TestEvaluate_Phases(t *testing.T) {
	tests := []struct {
		name      string
		now       string
		dep, arr  string
		phase     Phase
		open      bool
		canReset  bool
		closedWhy string
	}{
		{"inside cutoff", "10:00", "10:15", "14:00", Boarding, false, false, ReasonTooClose},
		{"exactly at cutoff", "09:55", "10:15", "14:00", Boarding, false, false, ReasonTooClose},
		{"well before departure", "09:30", "10:15", "14:00", Scheduled, true, false, ""},
		{"on the road", "11:00", "10:15", "14:00", Departed, false, false, ReasonDeparted},
		{"at departure", "10:15", "10:15", "14:00", Departed, false, false, ReasonDeparted},
		{"after arrival", "15:00", "10:15", "14:00", Arrived, true, true, ""},
		{"at arrival", "14:00", "10:15", "14:00", Arrived, true, true, ""},
		{"overnight before midnight", "23:50", "23:30", "01:00", Departed, false, false, ReasonDeparted},
		{"overnight after midnight", "00:30", "23:30", "01:00", Departed, false, false, ReasonDeparted},
		{"overnight arrived", "01:30", "23:30", "01:00", Arrived, true, true, ""},
		{"overnight boarding", "23:15", "23:30", "01:00", Boarding, false, false, ReasonTooClose},
		{"overnight departure minute", "23:30", "23:30", "01:00", Departed, false, false, ReasonDeparted},
		{"overnight between runs", "16:00", "23:30", "01:00", Arrived, true, true, ""},
		{"12-hour input", "10:00", "10:15 AM", "2:00 PM", Boarding, false, false, ReasonTooClose},
		{"12-hour pm departure", "21:00", "9:30 pm", "6:00 am", Arrived, true, true, ""},
		{"same day before dawn", "00:10", "10:15", "14:00", Scheduled, true, false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := Evaluate(at(tc.now), tc.dep, tc.arr)
			if st.Phase != tc.phase {
				t.Fatalf("phase = %s, want %s", st.Phase, tc.phase)
			}
			if st.IsBookingOpen != tc.open {
				t.Fatalf("open = %v, want %v", st.IsBookingOpen, tc.open)
			}
			if st.CanResetSeats != tc.canReset {
				t.Fatalf("canReset = %v, want %v", st.CanResetSeats, tc.canReset)
			}
			if st.NextJourneyAvailable != tc.canReset {
				t.Fatalf("nextJourney = %v, want %v", st.NextJourneyAvailable, tc.canReset)
			}
			if got := st.ClosedReason(); got != tc.closedWhy {
				t.Fatalf("reason = %q, want %q", got, tc.closedWhy)
			}
		})
	}
}

func TestEvaluate_OvernightDistances(t *testing.T) {
	st := Evaluate(at("23:50"), "23:30", "01:00")
	if st.MinutesToArrival != 70 || st.MinutesToDeparture != -20 {
		t.Fatalf("got toDep=%d toArr=%d, want -20/70", st.MinutesToDeparture, st.MinutesToArrival)
	}
}

func TestEvaluate_UnparseableTimesKeepBookingOpen(t *testing.T) {
	for _, pair := range [][2]string{{"", "14:00"}, {"10:15", ""}, {"soon", "later"}, {"25:00", "14:00"}} {
		st := Evaluate(at("10:00"), pair[0], pair[1])
		if !st.IsBookingOpen || st.Phase != Scheduled || st.Timed {
			t.Fatalf("%v: got %+v, want open scheduled", pair, st)
		}
	}
}

func TestRunDate(t *testing.T) {
	tests := []struct {
		name     string
		now      string
		dep, arr string
		latched  bool
		want     string
	}{
		{"before departure", "09:30", "10:15", "14:00", false, "2026-03-14"},
		{"after arrival", "15:00", "10:15", "14:00", false, "2026-03-14"},
		{"next journey tomorrow", "15:00", "10:15", "14:00", true, "2026-03-15"},
		{"overnight on the road", "00:30", "23:30", "01:00", false, "2026-03-13"},
		{"overnight boarding tonight", "23:15", "23:30", "01:00", false, "2026-03-14"},
		{"overnight next journey tonight", "16:00", "23:30", "01:00", true, "2026-03-14"},
		{"no timetable", "16:00", "", "", false, "2026-03-14"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := Evaluate(at(tc.now), tc.dep, tc.arr)
			if tc.latched {
				st.Phase = NextJourney
			}
			if got := RunDate(at(tc.now), st).Format("2006-01-02"); got != tc.want {
				t.Fatalf("RunDate = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"9:05", 545, true},
		{"14:05", 845, true},
		{"14:05:30", 845, true},
		{"12:00 AM", 0, true},
		{"12:30 PM", 750, true},
		{"1:15pm", 795, true},
		{"11:59 p.m.", 1439, true},
		{"23.10", 1390, true},
		{"13:00 PM", 0, false},
		{"24:00", 0, false},
		{"10:60", 0, false},
		{"noon", 0, false},
	}
	for _, tc := range tests {
		got, err := ParseClock(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseClock(%q) err = %v, want ok=%v", tc.in, err, tc.ok)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(1500); got != "01:00" {
		t.Fatalf("FormatClock(1500) = %s", got)
	}
	if got := FormatClock(-30); got != "23:30" {
		t.Fatalf("FormatClock(-30) = %s", got)
	}
}
