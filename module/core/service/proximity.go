package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jobobdev/place-reminder/module/core/domain"
	"github.com/jobobdev/place-reminder/module/core/geo"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/publisher"
)

const DefaultRadiusMeters = 100

type Evaluator struct {
	radius float64
	policy domain.AlertPolicy
}

// NewEvaluator falls back to DefaultRadiusMeters and PolicySession for
// non-positive radii and unknown policies.
func NewEvaluator(radius float64, policy domain.AlertPolicy) *Evaluator {
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	if !policy.Valid() {
		policy = domain.PolicySession
	}
	return &Evaluator{radius: radius, policy: policy}
}

func (e *Evaluator) Radius() float64            { return e.radius }
func (e *Evaluator) Policy() domain.AlertPolicy { return e.policy }

// Evaluate runs one pass of pos against places and returns the places that
// are now inside the radius and were not alerted before. Each returned place
// is marked in state before the next place is looked at, so a duplicated id
// in places yields one event. Passes sharing a state must not overlap.
func (e *Evaluator) Evaluate(pos *domain.Coordinate, places []domain.Place, state *AlertState) []domain.ProximityEvent {
	if pos == nil || len(places) == 0 {
		return nil
	}

	var events []domain.ProximityEvent
	for _, p := range places {
		d := geo.DistanceMeters(*pos, p.Position)
		if d < e.radius {
			if !state.HasAlerted(p.ID) {
				events = append(events, domain.ProximityEvent{Place: p, DistanceMeters: d})
				state.MarkAlerted(p.ID)
			}
			continue
		}
		if e.policy == domain.PolicyRearm {
			state.Unmark(p.ID)
		}
	}
	return events
}

type placeLister interface {
	ListAll(ctx context.Context) ([]domain.Place, error)
}

// ProximityService is one proximity session: the alert state, the current
// place snapshot and the last known position. Evaluation passes run under mu;
// notification delivery happens after the pass, outside the lock.
type ProximityService struct {
	evaluator *Evaluator
	notifier  publisher.Notifier
	store     placeLister
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	state  *AlertState
	places []domain.Place
	last   *domain.Coordinate

	// added through AddPlace and not yet seen in a SetPlaces snapshot
	pending map[string]domain.Place
}

func NewProximityService(evaluator *Evaluator, notifier publisher.Notifier, store placeLister, logger *slog.Logger) *ProximityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProximityService{
		evaluator: evaluator,
		notifier:  notifier,
		store:     store,
		logger:    logger,
		now:       time.Now,
		state:     NewAlertState(),
		pending:   make(map[string]domain.Place),
	}
}

// Track evaluates a new position. Out-of-range coordinates are rejected with
// domain.ErrInvalidCoordinate and leave the session untouched.
func (s *ProximityService) Track(ctx context.Context, pos domain.Coordinate) ([]domain.ProximityEvent, error) {
	if err := domain.ValidateCoordinate(pos); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = &pos
	events := s.evaluator.Evaluate(s.last, s.places, s.state)
	s.mu.Unlock()

	s.deliver(ctx, events)
	return events, nil
}

// SetPlaces replaces the place snapshot and re-checks it against the last
// known position, so a place saved while standing next to it still alerts.
// Places added through AddPlace stay tracked until a snapshot contains them,
// so a refresh that listed the store just before an insert cannot drop them.
func (s *ProximityService) SetPlaces(ctx context.Context, places []domain.Place) []domain.ProximityEvent {
	valid := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if err := domain.ValidateCoordinate(p.Position); err != nil {
			s.logger.Warn("skipping place with invalid position", slog.String("place_id", p.ID), slog.Any("error", err))
			continue
		}
		valid = append(valid, p)
	}

	s.mu.Lock()
	seen := make(map[string]struct{}, len(valid))
	for _, p := range valid {
		seen[p.ID] = struct{}{}
	}
	for _, id := range slices.Sorted(maps.Keys(s.pending)) {
		if _, ok := seen[id]; ok {
			delete(s.pending, id)
			continue
		}
		valid = append(valid, s.pending[id])
	}
	s.places = valid
	events := s.evaluator.Evaluate(s.last, s.places, s.state)
	s.mu.Unlock()

	s.deliver(ctx, events)
	return events
}

func (s *ProximityService) AddPlace(ctx context.Context, p domain.Place) ([]domain.ProximityEvent, error) {
	if err := domain.ValidateCoordinate(p.Position); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pending[p.ID] = p
	s.places = append(slices.Clip(s.places), p)
	events := s.evaluator.Evaluate(s.last, s.places, s.state)
	s.mu.Unlock()

	s.deliver(ctx, events)
	return events, nil
}

func (s *ProximityService) RefreshPlaces(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	places, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}
	s.SetPlaces(ctx, places)
	return nil
}

// Run drives the session from a position stream until ctx is done or the
// stream is closed. Stream errors and bad fixes skip a cycle and never end
// the loop.
func (s *ProximityService) Run(ctx context.Context, updates <-chan domain.PositionUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if u.Err != nil {
				s.logger.Warn("position source error", slog.Any("error", u.Err))
				continue
			}
			if u.Position == nil {
				continue
			}
			if _, err := s.Track(ctx, *u.Position); err != nil {
				s.logger.Warn("rejected position", slog.Any("error", err))
			}
		}
	}
}

func (s *ProximityService) RunRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshPlaces(ctx); err != nil {
				s.logger.Warn("refresh places failed", slog.Any("error", err))
			}
		}
	}
}

// Reset starts a new session: every place may alert again.
func (s *ProximityService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reset()
	s.last = nil
}

func (s *ProximityService) Alerted() []string {
	return s.state.IDs()
}

func (s *ProximityService) Stats() domain.SessionStats {
	s.mu.Lock()
	places := len(s.places)
	s.mu.Unlock()

	return domain.SessionStats{
		Places:       places,
		Alerted:      s.state.Len(),
		RadiusMeters: s.evaluator.Radius(),
		Policy:       s.evaluator.Policy(),
	}
}

func (s *ProximityService) Radius() float64 {
	return s.evaluator.Radius()
}

// deliver never touches the alert state: a failed notification still counts
// as alerted.
func (s *ProximityService) deliver(ctx context.Context, events []domain.ProximityEvent) {
	for _, ev := range events {
		s.logger.Info("proximity alert",
			slog.String("place_id", ev.Place.ID),
			slog.String("name", ev.Place.Name),
			slog.Float64("distance_meters", ev.DistanceMeters),
		)
		if s.notifier == nil {
			continue
		}
		n := domain.NewProximityNotification(ev, s.now())
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn("notification delivery failed", slog.String("place_id", ev.Place.ID), slog.Any("error", err))
		}
	}
}
