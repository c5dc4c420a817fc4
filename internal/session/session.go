// Package session owns one shopper's seat grid, selection, booking window
// and checkout flow, and keeps them fresh with a per-session refresh loop.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/seatmap"
	"busbooking/internal/selection"
	"busbooking/internal/utils"
	"busbooking/internal/window"
	"busbooking/internal/wizard"
)

// SeatSource returns the authoritative seat layout of a bus. A missing
// layout is reported as domain.NotFoundError.
type SeatSource interface {
	FetchLayout(ctx context.Context, busID string) (*seatmap.Payload, error)
}

// BookedSource lists the seat ids already booked on one run of a journey.
// They are laid over the bus layout as Sold.
type BookedSource interface {
	BookedSeats(ctx context.Context, journeyID int64, tripDate string) ([]string, error)
}

type Config struct {
	Interval         time.Duration
	PollTimeout      time.Duration
	FailureThreshold int
	Clock            func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Second
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Session serializes clicks, ticks and poll results behind one mutex so no
// click ever sees a half-updated window.
type Session struct {
	ID      string
	Journey models.Journey
	Points  models.JourneyPoints

	cfg    Config
	source SeatSource
	booked BookedSource

	mu            sync.Mutex
	grid          *seatmap.Grid
	sel           *selection.Manager
	flow          *wizard.Flow
	win           window.State
	evaluatedAt   time.Time
	autoRefresh   bool
	resetLatched  bool
	nextJourney   bool
	defaultLayout bool
	pollFailures  int
	lastActive    time.Time

	// bookedSeats were sold on bookedRun. runConfirmed is cleared by the
	// arrival reset and set again once a poll or push covers the new run.
	bookedRun    string
	bookedSeats  []selection.SeatID
	runConfirmed bool

	ticking atomic.Bool
	polling atomic.Bool
	polls   sync.WaitGroup

	stop      chan struct{}
	stopOnce  sync.Once
	loopDone  chan struct{}
	loopStart sync.Once
}

// New builds a session around an already normalized grid and evaluates the
// window once. source may be nil when no real-time feed exists.
func New(id string, journey models.Journey, points models.JourneyPoints, grid *seatmap.Grid, source SeatSource, cfg Config) *Session {
	cfg = cfg.withDefaults()
	if grid == nil {
		grid = seatmap.DefaultLayout()
	}
	s := &Session{
		ID:           id,
		Journey:      journey,
		Points:       points,
		cfg:          cfg,
		source:       source,
		grid:         grid,
		sel:          selection.New(),
		flow:         wizard.New(),
		autoRefresh:  true,
		runConfirmed: true,
		lastActive:   cfg.Clock(),
		stop:         make(chan struct{}),
		loopDone:     make(chan struct{}),
	}
	s.mu.Lock()
	s.evaluateLocked(cfg.Clock())
	s.mu.Unlock()
	return s
}

// Run drives the refresh loop until ctx is cancelled or Close is called.
func (s *Session) Run(ctx context.Context) {
	started := false
	s.loopStart.Do(func() { started = true })
	if !started {
		return
	}
	defer close(s.loopDone)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-ctx.Done():
			s.polls.Wait()
			return
		case <-s.stop:
			cancel()
			s.polls.Wait()
			return
		}
	}
}

// Close stops the loop and waits for it and any in-flight poll to finish.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	started := true
	s.loopStart.Do(func() { started = false })
	if started {
		<-s.loopDone
	}
	s.polls.Wait()
}

// Tick re-evaluates the window and starts a seat status poll. Overlapping
// ticks are dropped; a paused session does nothing.
func (s *Session) Tick(ctx context.Context) {
	if !s.ticking.CompareAndSwap(false, true) {
		return
	}
	defer s.ticking.Store(false)

	s.mu.Lock()
	if !s.autoRefresh {
		s.mu.Unlock()
		return
	}
	s.evaluateLocked(s.cfg.Clock())
	s.mu.Unlock()

	s.startPoll(ctx)
}

func (s *Session) startPoll(ctx context.Context) {
	if (s.source == nil && s.booked == nil) || !s.polling.CompareAndSwap(false, true) {
		return
	}
	s.polls.Add(1)
	go func() {
		defer s.polls.Done()
		defer s.polling.Store(false)
		s.Poll(ctx)
	}()
}

type pollResult struct {
	payload   *seatmap.Payload
	err       error
	run       string
	booked    []string
	hasBooked bool
}

// Poll fetches the authoritative layout and the seats already booked on the
// run on sale, then applies both.
func (s *Session) Poll(ctx context.Context) {
	if s.source == nil && s.booked == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, s.cfg.PollTimeout)
	defer cancel()

	var res pollResult
	if s.source != nil {
		res.payload, res.err = s.source.FetchLayout(pctx, s.Journey.BusID)
	}
	if res.err == nil || domain.IsNotFound(res.err) {
		s.fetchBooked(pctx, &res)
	}
	s.applyPoll(res)
}

// SyncBooked refreshes only the booked seats of the run on sale.
func (s *Session) SyncBooked(ctx context.Context) {
	if s.booked == nil {
		return
	}
	bctx, cancel := context.WithTimeout(ctx, s.cfg.PollTimeout)
	defer cancel()
	var res pollResult
	s.fetchBooked(bctx, &res)
	s.applyPoll(res)
}

func (s *Session) fetchBooked(ctx context.Context, res *pollResult) {
	if s.booked == nil {
		return
	}
	res.run = s.RunDate()
	ids, err := s.booked.BookedSeats(ctx, s.Journey.ID, res.run)
	if err != nil {
		res.err = err
		return
	}
	res.booked, res.hasBooked = ids, true
}

// evaluateLocked recomputes the window and fires the seat reset once per
// arrival. The latch re-arms when the evaluator leaves Arrived.
func (s *Session) evaluateLocked(now time.Time) {
	st := window.Evaluate(now, s.Journey.DepartureTime, s.Journey.ArrivalTime)
	s.evaluatedAt = now

	if st.Phase == window.Arrived {
		if !s.resetLatched {
			n := s.grid.ResetSold()
			s.sel.Clear()
			s.resetLatched = true
			s.nextJourney = true
			s.runConfirmed = false
			utils.LogEvent("", "session", "seats_reset", fmt.Sprintf("session=%s bus=%s seats=%d", s.ID, s.Journey.BusID, n))
		}
	} else if s.resetLatched {
		s.resetLatched = false
		s.nextJourney = false
	}

	if s.resetLatched {
		st.Phase = window.NextJourney
	}
	st.NextJourneyAvailable = st.NextJourneyAvailable || s.nextJourney
	s.win = st
}

func (s *Session) applyPoll(res pollResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := res.err
	if err != nil && !domain.IsNotFound(err) {
		s.pollFailures++
		switch s.pollFailures {
		case 1:
			utils.LogEvent("", "session", "poll_failed", fmt.Sprintf("session=%s bus=%s err=%v", s.ID, s.Journey.BusID, err))
		case s.cfg.FailureThreshold:
			utils.LogEvent("", "session", "poll_stale", fmt.Sprintf("session=%s bus=%s failures=%d", s.ID, s.Journey.BusID, s.pollFailures))
		}
		return
	}
	if s.pollFailures > 0 {
		utils.LogEvent("", "session", "poll_recovered", fmt.Sprintf("session=%s failures=%d", s.ID, s.pollFailures))
		s.pollFailures = 0
	}

	// A booked list for a run that is no longer on sale is dropped; the next
	// poll asks for the right one.
	bookedFresh := res.hasBooked && res.run == s.runDateLocked()
	if bookedFresh {
		s.bookedRun = res.run
		s.bookedSeats = parseSeatIDs(res.booked)
	}

	switch {
	case err == nil && !res.payload.Empty():
		s.replaceGridLocked(seatmap.Normalize(res.payload), true)
	case bookedFresh:
		s.replaceGridLocked(s.grid.Clone(), false)
	}
}

func parseSeatIDs(raw []string) []selection.SeatID {
	out := make([]selection.SeatID, 0, len(raw))
	for _, r := range raw {
		if id, err := selection.ParseSeatID(r); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// replaceGridLocked installs an authoritative grid with the run's booked
// seats marked Sold and drops selected seats it no longer allows. layout is
// false when only the booked list changed.
func (s *Session) replaceGridLocked(g *seatmap.Grid, layout bool) {
	if s.bookedRun != "" && s.bookedRun == s.runDateLocked() {
		for _, id := range s.bookedSeats {
			g.SetStatus(id.Deck, id.Row, id.Col, seatmap.Sold)
		}
	}
	s.grid = g
	if layout {
		s.defaultLayout = false
	}
	s.runConfirmed = true
	if removed := s.sel.Prune(g, s.selectionWindowLocked().NextJourneyAvailable); len(removed) > 0 {
		utils.LogEvent("", "session", "selection_pruned", fmt.Sprintf("session=%s seats=%v", s.ID, removed))
	}
}

// ApplyPush applies an externally pushed layout for this session's bus.
func (s *Session) ApplyPush(payload *seatmap.Payload) {
	if payload.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceGridLocked(seatmap.Normalize(payload), true)
}

// selectionWindowLocked is the window clicks are judged against. After the
// arrival reset Sold seats stay open for the next journey only until a poll
// or push has confirmed that run's inventory.
func (s *Session) selectionWindowLocked() window.State {
	st := s.win
	if s.runConfirmed && st.Phase == window.NextJourney {
		st.NextJourneyAvailable = false
	}
	return st
}

// runDateLocked is the YYYY-MM-DD run on sale. A journey dated in the
// future sells that date.
func (s *Session) runDateLocked() string {
	run := window.RunDate(s.evaluatedAt, s.win)
	if d, err := utils.ParseDate(s.Journey.TripDate, run.Location()); err == nil && d.After(run) {
		run = d
	}
	return run.Format("2006-01-02")
}

// RunDate returns the run currently on sale.
func (s *Session) RunDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runDateLocked()
}

func (s *Session) touchLocked() {
	s.lastActive = s.cfg.Clock()
}

// Select toggles a seat. added reports whether it joined the selection.
func (s *Session) Select(id selection.SeatID) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.sel.Select(s.grid, s.selectionWindowLocked(), id)
}

func (s *Session) Deselect(id selection.SeatID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.sel.Deselect(id)
}

// SetAutoRefresh pauses or resumes the refresh loop.
func (s *Session) SetAutoRefresh(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.autoRefresh = on
}

func (s *Session) Next() (wizard.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.flow.Next(s.sel.Len())
}

func (s *Session) GoTo(step wizard.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.flow.GoTo(step, s.sel.Len())
}

// SetPoints picks boarding and dropping points by id; zero leaves a side unchanged.
func (s *Session) SetPoints(boardingID, droppingID int64) error {
	var boarding, dropping *models.Point
	if boardingID != 0 {
		p, ok := s.Points.Find(models.PointBoarding, boardingID)
		if !ok {
			return domain.ValidationError{Field: "boarding_point_id", Msg: "unknown boarding point"}
		}
		boarding = &p
	}
	if droppingID != 0 {
		p, ok := s.Points.Find(models.PointDropping, droppingID)
		if !ok {
			return domain.ValidationError{Field: "dropping_point_id", Msg: "unknown dropping point"}
		}
		dropping = &p
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.flow.SetPoints(boarding, dropping)
	return nil
}

// Checkout validates the passenger step and returns the payment payload for
// the run on sale. The window is read from the clock, not the last tick, so
// a paused session cannot sell a departed bus.
func (s *Session) Checkout(in wizard.CheckoutInput) (models.BookingPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	st := window.Evaluate(s.cfg.Clock(), s.Journey.DepartureTime, s.Journey.ArrivalTime)
	if !st.IsBookingOpen && !st.NextJourneyAvailable {
		return models.BookingPayload{}, domain.BookingClosedError{Reason: st.ClosedReason()}
	}

	p, err := s.flow.BuildPayload(s.Journey.ID, s.bookingSeatsLocked(), in)
	if err != nil {
		return models.BookingPayload{}, err
	}
	p.TripDate = s.runDateLocked()
	return p, nil
}

func (s *Session) bookingSeatsLocked() []models.BookingSeat {
	ids := s.sel.Seats()
	out := make([]models.BookingSeat, 0, len(ids))
	for _, id := range ids {
		cell, _ := s.grid.Cell(id.Deck, id.Row, id.Col)
		l := id.Label()
		out = append(out, models.BookingSeat{
			SeatID:     l.SeatID,
			SeatCode:   l.Code,
			Deck:       l.Deck,
			Position:   l.Position,
			Price:      cell.Price,
			LadiesOnly: cell.Status == seatmap.LadiesOnly,
		})
	}
	return out
}

// Window returns the last computed booking window.
func (s *Session) Window() window.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.win
}

// IdleSince reports the last shopper interaction.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) markDefaultLayout() {
	s.mu.Lock()
	s.defaultLayout = true
	s.mu.Unlock()
}
