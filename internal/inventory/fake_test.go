package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/joao-fontenele/motormind/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryStore struct {
	mu       sync.Mutex
	vehicles map[string]domain.Vehicle
	nextID   int
	err      error
	updates  int
}

func newMemoryStore(vehicles ...domain.Vehicle) *memoryStore {
	s := &memoryStore{vehicles: map[string]domain.Vehicle{}}
	for _, v := range vehicles {
		s.vehicles[v.ID] = v
	}
	return s
}

func (s *memoryStore) sorted() []domain.Vehicle {
	out := make([]domain.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) ListAll(_ context.Context) ([]domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.sorted(), nil
}

func (s *memoryStore) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *memoryStore) Create(_ context.Context, v *domain.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextID++
	v.ID = "generated-" + strings.Repeat("x", s.nextID)
	s.vehicles[v.ID] = *v
	return nil
}

func (s *memoryStore) Update(_ context.Context, v domain.Vehicle) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	current, ok := s.vehicles[v.ID]
	if !ok {
		return nil, nil
	}
	if v.Type == "" {
		v.Type = current.Type
	}
	s.vehicles[v.ID] = v
	return &v, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	delete(s.vehicles, id)
	return &v, nil
}

func (s *memoryStore) SearchByPatterns(_ context.Context, patterns []string) ([]domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []domain.Vehicle{}
	for _, v := range s.sorted() {
		if v.Stock < 1 {
			continue
		}
		model := strings.ToLower(v.Model)
		for _, p := range patterns {
			if strings.Contains(model, p) {
				out = append(out, v)
				break
			}
		}
	}
	return out, nil
}

func (s *memoryStore) UpdateStock(_ context.Context, id string, stock int) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	s.updates++
	v.Stock = stock
	s.vehicles[id] = v
	return &v, nil
}

type recordingPublisher struct {
	keys   []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event any) error {
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return p.err
}

type fakeKeys struct {
	claimed  map[string]bool
	released []string
	err      error
}

func (k *fakeKeys) Release(_ context.Context, key string) error {
	k.released = append(k.released, key)
	delete(k.claimed, key)
	return nil
}

func (k *fakeKeys) Claim(_ context.Context, key string) (bool, error) {
	if k.err != nil {
		return false, k.err
	}
	if k.claimed == nil {
		k.claimed = map[string]bool{}
	}
	if k.claimed[key] {
		return false, nil
	}
	k.claimed[key] = true
	return true, nil
}

var errStore = errors.New("connection refused")
