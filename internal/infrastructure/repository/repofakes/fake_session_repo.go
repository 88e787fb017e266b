package repofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"
)

var _ ports.SessionRepository = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*domain.Session
	Err      error
	lock     sync.RWMutex
}

func NewFakeSessionRepo(sessions ...*domain.Session) *FakeSessionRepo {
	repo := &FakeSessionRepo{sessions: make(map[string]*domain.Session)}
	for _, s := range sessions {
		repo.sessions[s.Shop] = s
	}
	return repo
}

func (r *FakeSessionRepo) StoreSession(_ context.Context, session *domain.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.Err != nil {
		return r.Err
	}
	stored := *session
	now := time.Now()
	if existing, ok := r.sessions[session.Shop]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.sessions[session.Shop] = &stored
	return nil
}

func (r *FakeSessionRepo) LoadSession(_ context.Context, shop string) (*domain.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.Err != nil {
		return nil, r.Err
	}
	session, ok := r.sessions[shop]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *FakeSessionRepo) DeleteSessions(_ context.Context, shop string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.Err != nil {
		return r.Err
	}
	delete(r.sessions, shop)
	return nil
}

func (r *FakeSessionRepo) ListSessions(_ context.Context) ([]*domain.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.Err != nil {
		return nil, r.Err
	}
	list := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		copied := *s
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Shop < list[j].Shop })
	return list, nil
}

var _ ports.OAuthStateStore = (*FakeStateStore)(nil)

type FakeStateStore struct {
	states map[string]*domain.OAuthState
	lock   sync.Mutex
}

func NewFakeStateStore() *FakeStateStore {
	return &FakeStateStore{states: make(map[string]*domain.OAuthState)}
}

func (s *FakeStateStore) SaveState(_ context.Context, state *domain.OAuthState) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	copied := *state
	s.states[state.State] = &copied
	return nil
}

func (s *FakeStateStore) ConsumeState(_ context.Context, state string) (*domain.OAuthState, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stored, ok := s.states[state]
	if !ok {
		return nil, domain.ErrInvalidState
	}
	delete(s.states, state)
	if time.Now().After(stored.ExpiresAt) {
		return nil, domain.ErrInvalidState
	}
	return stored, nil
}

// Len returns the number of unconsumed states
func (s *FakeStateStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.states)
}
