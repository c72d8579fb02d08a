// Package memory contains an in-memory implementation of the persistence
// layer. It backs local development and the use case tests, and mirrors the
// concurrency contract of the document store: counter increments are atomic,
// everything else is independent last-write-wins document updates.
package memory

import (
	"slices"
	"strings"
	"sync"

	"lineless/internal/domain/entity"
)

// Store holds the in-memory document collections shared by the repositories.
type Store struct {
	mu           sync.RWMutex
	businesses   map[string]*entity.Business
	appointments map[string]*entity.Appointment

	watchMu   sync.Mutex
	watchers  map[int]*watcher
	nextWatch int
}

type watcher struct {
	businessIDs map[string]struct{}
	fn          func([]*entity.Appointment)

	// deliverMu serializes deliveries to this watcher. The active set is
	// read inside the lock, so the last callback a watcher receives always
	// reflects the newest state even when notifications race.
	deliverMu sync.Mutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		businesses:   make(map[string]*entity.Business),
		appointments: make(map[string]*entity.Appointment),
		watchers:     make(map[int]*watcher),
	}
}

// notifyAppointmentWatchers pushes the full active set to every watcher whose
// business set intersects the changed business. Callbacks run off the
// caller's goroutine, matching the separate-delivery-turn semantics of the
// document store's snapshot listeners, but deliveries to one watcher are
// serialized.
func (s *Store) notifyAppointmentWatchers(businessID string) {
	s.watchMu.Lock()
	var targets []*watcher
	for _, w := range s.watchers {
		if _, ok := w.businessIDs[businessID]; ok {
			targets = append(targets, w)
		}
	}
	s.watchMu.Unlock()

	for _, w := range targets {
		go s.deliver(w)
	}
}

// deliver invokes one watcher's callback with the active set read at
// delivery time, under the watcher's delivery lock.
func (s *Store) deliver(w *watcher) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.fn(s.activeAppointments(w.businessIDs))
}

// activeAppointments collects the active appointments of the given
// businesses, ordered by queue number.
func (s *Store) activeAppointments(businessIDs map[string]struct{}) []*entity.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Appointment, 0)
	for _, a := range s.appointments {
		if _, ok := businessIDs[a.BusinessID]; !ok {
			continue
		}
		if !a.Status.Active() {
			continue
		}
		out = append(out, cloneAppointment(a))
	}
	sortAppointments(out)

	return out
}

func (s *Store) addWatcher(businessIDs []string, fn func([]*entity.Appointment)) (int, *watcher) {
	set := make(map[string]struct{}, len(businessIDs))
	for _, id := range businessIDs {
		set[id] = struct{}{}
	}
	w := &watcher{businessIDs: set, fn: fn}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = w

	return id, w
}

func (s *Store) removeWatcher(id int) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	delete(s.watchers, id)
}

func sortAppointments(list []*entity.Appointment) {
	slices.SortFunc(list, entity.CompareByQueueNumber)
}

// sortBusinesses keeps listings deterministic across map iteration order.
func sortBusinesses(list []*entity.Business) {
	slices.SortFunc(list, func(a, b *entity.Business) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})
}

func cloneBusiness(b *entity.Business) *entity.Business {
	clone := *b

	return &clone
}

func cloneAppointment(a *entity.Appointment) *entity.Appointment {
	clone := *a

	return &clone
}
