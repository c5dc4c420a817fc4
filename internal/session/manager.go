package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/seatmap"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

// JourneyLoader reads journey timetables and stops.
type JourneyLoader interface {
	GetByID(ctx context.Context, id int64) (models.Journey, error)
	ListPoints(ctx context.Context, journeyID int64) (models.JourneyPoints, error)
}

// Manager is the registry of live sessions. Each session's loop runs under
// the manager's context so Shutdown stops them all.
type Manager struct {
	journeys JourneyLoader
	layouts  SeatSource
	poll     SeatSource
	booked   BookedSource
	cfg      Config
	idleTTL  time.Duration
	newID    func() string

	mu       sync.RWMutex
	sessions map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type ManagerOptions struct {
	Journeys JourneyLoader
	// Layouts serves the initial seat map; Poll serves the real-time refresh.
	// Poll may be nil.
	Layouts SeatSource
	Poll    SeatSource
	// Booked lists seats already sold per journey run. May be nil.
	Booked  BookedSource
	Config  Config
	IdleTTL time.Duration
}

func NewManager(opts ManagerOptions) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		journeys: opts.Journeys,
		layouts:  opts.Layouts,
		poll:     opts.Poll,
		booked:   opts.Booked,
		cfg:      opts.Config.withDefaults(),
		idleTTL:  ttl,
		newID:    uuid.NewString,
		sessions: map[string]*Session{},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Create opens a session for a journey and starts its refresh loop. An
// unknown journey is an error; a missing seat layout is not, the default
// layout is used instead.
func (m *Manager) Create(ctx context.Context, journeyID int64) (*Session, error) {
	if journeyID <= 0 {
		return nil, domain.ValidationError{Field: "journey_id", Msg: "journey id is required"}
	}
	if m.journeys == nil {
		return nil, domain.InternalError{Msg: "journey store not configured"}
	}
	journey, err := m.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	points, err := m.journeys.ListPoints(ctx, journeyID)
	if err != nil {
		utils.LogEvent("", "session", "points_unavailable", fmt.Sprintf("journey=%d err=%v", journeyID, err))
		points = models.JourneyPoints{}
	}

	grid, fallback := m.loadGrid(ctx, journey)
	s := New(m.newID(), journey, points, grid, m.poll, m.cfg)
	if fallback {
		s.markDefaultLayout()
	}
	if m.booked != nil {
		s.booked = m.booked
		s.SyncBooked(ctx)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		s.Run(m.ctx)
	}()

	utils.LogEvent("", "session", "create", fmt.Sprintf("session=%s journey=%d bus=%s default_layout=%v", s.ID, journeyID, journey.BusID, fallback))
	return s, nil
}

func (m *Manager) loadGrid(ctx context.Context, journey models.Journey) (*seatmap.Grid, bool) {
	if m.layouts == nil {
		return seatmap.DefaultLayout(), true
	}
	lctx, cancel := context.WithTimeout(ctx, m.cfg.PollTimeout)
	defer cancel()
	payload, err := m.layouts.FetchLayout(lctx, journey.BusID)
	if err != nil || payload.Empty() {
		utils.LogEvent("", "session", "layout_fallback", fmt.Sprintf("bus=%s err=%v", journey.BusID, err))
		return seatmap.DefaultLayout(), true
	}
	return seatmap.Normalize(payload), false
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.NotFoundError{Resource: "session"}
	}
	return s, nil
}

// Close stops and forgets a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return domain.NotFoundError{Resource: "session"}
	}
	s.Close()
	return nil
}

// Push applies a layout update to every session on the bus and returns how
// many received it.
func (m *Manager) Push(busID string, payload *seatmap.Payload) int {
	m.mu.RLock()
	targets := make([]*Session, 0)
	for _, s := range m.sessions {
		if s.Journey.BusID == busID {
			targets = append(targets, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range targets {
		s.ApplyPush(payload)
	}
	return len(targets)
}

// Sweep closes sessions idle since before now-idleTTL.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.idleTTL)
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		utils.LogEvent("", "session", "sweep", fmt.Sprintf("closed=%d", len(idle)))
	}
	return len(idle)
}

// RunSweeper sweeps idle sessions every interval until ctx or the manager stops.
func (m *Manager) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep(m.cfg.Clock())
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		}
	}
}

// Len reports live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown stops every loop and waits for them.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
	m.mu.Lock()
	m.sessions = map[string]*Session{}
	m.mu.Unlock()
}
