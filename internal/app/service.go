package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound = errors.New("session not found")
)

// Session is the game owned by one browser session.
type Session struct {
	ID      string
	State   domain.State
	Created time.Time
	Updated time.Time
}

// subscriber is only touched with Service.mu held.
type subscriber struct {
	ch     chan []byte
	closed bool
}

func (s *subscriber) closeLocked() {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Service keeps sessions in memory and fans out re-rendered state to
// subscribers after every accepted transition.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	subs     map[string]map[*subscriber]struct{}
	render   func(Session) []byte
	now      func() time.Time
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the function producing broadcast payloads.
func WithRenderer(renderer func(Session) []byte) Option {
	return func(s *Service) {
		if renderer != nil {
			s.render = renderer
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger.With("component", "sessions")
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an empty service. Without WithRenderer broadcasts carry
// no payload.
func NewService(opts ...Option) *Service {
	s := &Service{
		sessions: make(map[string]*Session),
		subs:     make(map[string]map[*subscriber]struct{}),
		render:   func(Session) []byte { return nil },
		now:      time.Now,
		log:      slog.Default().With("component", "sessions"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(Session) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(Session) []byte { return nil }
		return
	}
	s.render = renderer
}

// Create registers a new session holding a fresh game.
func (s *Service) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{ID: uuid.NewString(), State: domain.New(), Created: now, Updated: now}
	s.sessions[sess.ID] = sess
	s.log.Debug("session created", "session", sess.ID)
	cp := *sess
	return &cp
}

// Get returns a copy of the session if present.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	cp := *sess
	return &cp, true
}

// Len is the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Play places the active mark at cell. Rejected moves return the unchanged
// session and false; only a missing session is an error.
func (s *Service) Play(id string, cell int) (*Session, bool, error) {
	return s.apply(id, "play", func(st domain.State) (domain.State, bool) {
		return st.Play(cell)
	})
}

// JumpTo moves the session's game to a recorded step.
func (s *Service) JumpTo(id string, step int) (*Session, error) {
	sess, _, err := s.apply(id, "jump", func(st domain.State) (domain.State, bool) {
		if step < 0 || step >= len(st.History) {
			return st, false
		}
		return st.JumpTo(step), true
	})
	return sess, err
}

// ToggleReverse flips the move list ordering of the session.
func (s *Service) ToggleReverse(id string) (*Session, error) {
	sess, _, err := s.apply(id, "reverse", func(st domain.State) (domain.State, bool) {
		return st.ToggleReverse(), true
	})
	return sess, err
}

// apply runs one transition under the lock and broadcasts when it was
// accepted.
func (s *Service) apply(id, op string, fn func(domain.State) (domain.State, bool)) (*Session, bool, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, false, fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	next, changed := fn(sess.State)
	if !changed {
		cp := *sess
		s.mu.Unlock()
		s.log.Debug("transition rejected", "session", id, "op", op)
		return &cp, false, nil
	}
	sess.State = next
	sess.Updated = s.now()

	cp := *sess
	s.broadcastLocked(id, s.render(cp))
	s.mu.Unlock()
	return &cp, true, nil
}

// broadcastLocked fans out payload without blocking; slow subscribers are
// closed and dropped. Closed subscribers still in the set are skipped.
func (s *Service) broadcastLocked(id string, payload []byte) {
	set := s.subs[id]
	dropped := 0
	for sub := range set {
		if sub.closed {
			delete(set, sub)
			continue
		}
		select {
		case sub.ch <- payload:
		default:
			sub.closeLocked()
			delete(set, sub)
			dropped++
		}
	}
	if len(set) == 0 {
		delete(s.subs, id)
	}
	if dropped > 0 {
		s.log.Debug("dropped slow subscribers", "session", id, "count", dropped)
	}
}

// Subscribe registers a subscriber for a session. Returns a channel and an
// unsubscribe func; the channel is closed on unsubscribe, on ctx done and
// when the session is evicted.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, func() {}, fmt.Errorf("subscribe %q: %w", id, ErrNotFound)
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			sub.closeLocked()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// Sweep evicts sessions idle for longer than ttl and returns how many were
// removed.
func (s *Service) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	cutoff := s.now().Add(-ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.Updated.After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		for sub := range s.subs[id] {
			sub.closeLocked()
		}
		delete(s.subs, id)
		n++
	}
	s.mu.Unlock()

	if n > 0 {
		s.log.Info("evicted idle sessions", "count", n)
	}
	return n
}

// RunJanitor sweeps every interval until ctx is done. A non-positive
// interval disables sweeping.
func (s *Service) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		s.log.Warn("janitor disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ttl)
		}
	}
}
