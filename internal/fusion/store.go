package fusion

import (
	"log/slog"
	"sync"

	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
)

// Store guards the shared state and fans out change notifications.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]chan State
	nextID      int
	logger      *slog.Logger
}

// NewStore returns a store holding InitialState.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		state:       InitialState(),
		subscribers: make(map[int]chan State),
		logger:      logging.NewComponentLogger(logger, "fusion"),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFusionMode switches the active fusion mode.
func (s *Store) SetFusionMode(mode manifest.FusionMode) {
	s.update(func(state *State) bool {
		if state.FusionMode == mode {
			return false
		}
		state.FusionMode = mode
		return true
	})
}

// SetRepresentationMode switches the representation mode. The request is
// ignored while ground truth is shown and reports whether it was applied.
func (s *Store) SetRepresentationMode(mode manifest.RepresentationMode) bool {
	applied := false
	s.update(func(state *State) bool {
		if state.FusionMode == manifest.FusionGroundTruth {
			return false
		}
		applied = true
		if state.RepresentationMode == mode {
			return false
		}
		state.RepresentationMode = mode
		return true
	})
	if !applied {
		s.logger.Debug("representation change ignored for ground truth",
			logging.String("representation_mode", string(mode)))
	}
	return applied
}

// SetLoadState replaces the scene load state.
func (s *Store) SetLoadState(load SceneLoadState) {
	if load.Error != nil {
		copied := *load.Error
		load.Error = &copied
	}
	s.update(func(state *State) bool {
		state.LoadState = load
		return true
	})
}

// Subscribe returns a channel that receives the latest state after every
// change. Slow subscribers only see the most recent snapshot. The returned
// function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) update(mutate func(*State) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !mutate(&s.state) {
		return
	}
	snapshot := s.state
	for _, ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
