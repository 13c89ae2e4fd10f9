package storage

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/persondir/internal/models"
)

// MemoryStore is an in-process PersonStore. Each call locks the whole map, so
// single-record writes are atomic, but it offers no transactions: a friend
// edge is written as two independent calls.
type MemoryStore struct {
	mu      sync.RWMutex
	persons map[uuid.UUID]*models.Person
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		persons: make(map[uuid.UUID]*models.Person),
		now:     time.Now,
	}
}

func (s *MemoryStore) CreatePerson(_ context.Context, fields models.PersonFields) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p := &models.Person{
		ID:             uuid.New(),
		Username:       fields.Username,
		CPR:            fields.CPR,
		ProfilePicture: fields.ProfilePicture,
		StarSign:       fields.StarSign,
		FriendIDs:      []uuid.UUID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.persons[p.ID] = p
	return p.Clone(), nil
}

func (s *MemoryStore) GetPerson(_ context.Context, id uuid.UUID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// LockPerson is GetPerson; every memory store call already holds the map lock.
func (s *MemoryStore) LockPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return s.GetPerson(ctx, id)
}

func (s *MemoryStore) UpdatePerson(_ context.Context, id uuid.UUID, fields models.PersonFields) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, nil
	}
	p.Username = fields.Username
	p.CPR = fields.CPR
	p.ProfilePicture = fields.ProfilePicture
	p.StarSign = fields.StarSign
	p.UpdatedAt = s.now().UTC()
	return p.Clone(), nil
}

func (s *MemoryStore) DeletePerson(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[id]; !ok {
		return false, nil
	}
	delete(s.persons, id)
	return true, nil
}

func (s *MemoryStore) DeleteAllPersons(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.persons))
	s.persons = make(map[uuid.UUID]*models.Person)
	return n, nil
}

func (s *MemoryStore) AddFriendID(_ context.Context, id, friendID uuid.UUID) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, nil
	}
	s.addFriendLocked(p, friendID)
	return p.Clone(), nil
}

func (s *MemoryStore) LinkFriendID(_ context.Context, id, friendID uuid.UUID) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, nil
	}
	if _, ok := s.persons[friendID]; !ok {
		return nil, nil
	}
	s.addFriendLocked(p, friendID)
	return p.Clone(), nil
}

// addFriendLocked appends friendID once; s.mu must be held.
func (s *MemoryStore) addFriendLocked(p *models.Person, friendID uuid.UUID) {
	if !p.HasFriend(friendID) {
		p.FriendIDs = append(p.FriendIDs, friendID)
		p.UpdatedAt = s.now().UTC()
	}
}

func (s *MemoryStore) RemoveFriendID(_ context.Context, id, friendID uuid.UUID) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, nil
	}
	if p.HasFriend(friendID) {
		p.FriendIDs = slices.DeleteFunc(p.FriendIDs, func(f uuid.UUID) bool { return f == friendID })
		p.UpdatedAt = s.now().UTC()
	}
	return p.Clone(), nil
}

func (s *MemoryStore) RemoveFriendReferences(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	now := s.now().UTC()
	for pid, p := range s.persons {
		if pid == id || !p.HasFriend(id) {
			continue
		}
		p.FriendIDs = slices.DeleteFunc(p.FriendIDs, func(f uuid.UUID) bool { return f == id })
		p.UpdatedAt = now
		changed++
	}
	return changed, nil
}

func (s *MemoryStore) CountPersons(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.persons), nil
}

func (s *MemoryStore) ListPersons(_ context.Context, q ListQuery) ([]models.Person, error) {
	all := s.snapshot()

	col := newCollator()
	sort.SliceStable(all, func(i, j int) bool {
		c := col.CompareString(sortKey(&all[i], q.SortBy), sortKey(&all[j], q.SortBy))
		if q.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) < 0
	})

	skip := max(q.Skip, 0)
	if skip >= len(all) {
		return []models.Person{}, nil
	}
	all = all[skip:]
	if q.Limit > 0 && q.Limit < len(all) {
		all = all[:q.Limit]
	}
	return all, nil
}

func (s *MemoryStore) ForEachPerson(ctx context.Context, fn func(p *models.Person) error) error {
	all := s.snapshot()
	sort.Slice(all, func(i, j int) bool {
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) < 0
	})
	for i := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&all[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) snapshot() []models.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Person, 0, len(s.persons))
	for _, p := range s.persons {
		out = append(out, *p.Clone())
	}
	return out
}
