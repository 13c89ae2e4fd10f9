// Package friends maintains the symmetric friend relation between persons.
//
// An edge is stored as two mirrored memberships, one in each person's friend
// list. When the store implements storage.Transactor both writes commit
// together. Otherwise the write on the requesting person is primary and the
// mirror write is best effort: a failure is logged and counted, and Repair
// restores symmetry later. A failed mirror removal is remembered so Repair
// finishes the removal instead of restoring the edge.
package friends

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/persondir/internal/apperr"
	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/internal/queue"
	"github.com/your-org/persondir/internal/storage"
)

type Manager struct {
	store     storage.PersonStore
	publisher queue.Publisher
	logger    *slog.Logger

	mu sync.Mutex
	// unmirrored holds from->to edges whose removal reached only the other side.
	unmirrored map[edge]struct{}
}

type Option func(*Manager)

func WithPublisher(p queue.Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(store storage.PersonStore, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		publisher:  queue.Nop{},
		logger:     slog.Default(),
		unmirrored: make(map[edge]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ParseID parses a person id, wrapping failures in apperr.ErrInvalidID.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", apperr.ErrInvalidID, raw)
	}
	return id, nil
}

func parsePair(rawA, rawB string) (uuid.UUID, uuid.UUID, error) {
	a, err := ParseID(rawA)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	b, err := ParseID(rawB)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if a == b {
		return uuid.Nil, uuid.Nil, apperr.ErrSelfReference
	}
	return a, b, nil
}

// AddFriend makes idA and idB friends and returns A after the write. Adding
// an existing edge is a no-op. B must exist when A's list is written, so a
// missing or concurrently deleted B fails with ErrNotFound.
func (m *Manager) AddFriend(ctx context.Context, idA, idB string) (*models.Person, error) {
	a, b, err := parsePair(idA, idB)
	if err != nil {
		return nil, err
	}

	var person *models.Person
	if tx, ok := m.store.(storage.Transactor); ok {
		err = tx.WithinTx(ctx, func(s storage.PersonStore) error {
			var txErr error
			person, txErr = addBoth(ctx, s, a, b)
			return txErr
		})
	} else {
		person, err = m.addBestEffort(ctx, a, b)
	}
	observability.FriendEdgeOps.WithLabelValues("add", observability.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	m.forgetRemoval(a, b)
	m.publish(ctx, models.NewFriendEvent(models.FriendAdded, a, b))
	return person, nil
}

func addBoth(ctx context.Context, s storage.PersonStore, a, b uuid.UUID) (*models.Person, error) {
	person, err := s.LinkFriendID(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, notFoundErr(ctx, s, a, b)
	}
	mirror, err := s.AddFriendID(ctx, b, a)
	if err != nil {
		return nil, err
	}
	if mirror == nil {
		// B went away after the link; fail so the transaction rolls back.
		return nil, fmt.Errorf("friend %s: %w", b, apperr.ErrNotFound)
	}
	return person, nil
}

func (m *Manager) addBestEffort(ctx context.Context, a, b uuid.UUID) (*models.Person, error) {
	person, err := m.store.LinkFriendID(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("add friend: %w", err)
	}
	if person == nil {
		return nil, notFoundErr(ctx, m.store, a, b)
	}

	mirror, err := m.store.AddFriendID(ctx, b, a)
	if err != nil || mirror == nil {
		observability.SecondaryWriteFailures.WithLabelValues("add").Inc()
		m.logger.Warn("mirror friend write failed, edge is one-directional until repaired",
			"person_id", a, "friend_id", b, "friend_exists", mirror != nil, "error", err)
	}
	return person, nil
}

// notFoundErr names which side of a failed link was absent.
func notFoundErr(ctx context.Context, s storage.PersonStore, a, b uuid.UUID) error {
	p, err := s.GetPerson(ctx, a)
	if err != nil {
		return fmt.Errorf("load person: %w", err)
	}
	if p == nil {
		return fmt.Errorf("person %s: %w", a, apperr.ErrNotFound)
	}
	return fmt.Errorf("friend %s: %w", b, apperr.ErrNotFound)
}

// RemoveFriend removes the edge in both directions and returns A after the
// write. A missing or failing B side never fails the call.
func (m *Manager) RemoveFriend(ctx context.Context, idA, idB string) (*models.Person, error) {
	a, err := ParseID(idA)
	if err != nil {
		return nil, err
	}
	b, err := ParseID(idB)
	if err != nil {
		return nil, err
	}

	var person *models.Person
	if tx, ok := m.store.(storage.Transactor); ok {
		err = tx.WithinTx(ctx, func(s storage.PersonStore) error {
			var txErr error
			person, txErr = s.RemoveFriendID(ctx, a, b)
			if txErr != nil {
				return txErr
			}
			if person == nil {
				return fmt.Errorf("person %s: %w", a, apperr.ErrNotFound)
			}
			_, txErr = s.RemoveFriendID(ctx, b, a)
			return txErr
		})
	} else {
		person, err = m.removeBestEffort(ctx, a, b)
	}
	observability.FriendEdgeOps.WithLabelValues("remove", observability.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	m.publish(ctx, models.NewFriendEvent(models.FriendRemoved, a, b))
	return person, nil
}

func (m *Manager) removeBestEffort(ctx context.Context, a, b uuid.UUID) (*models.Person, error) {
	person, err := m.store.RemoveFriendID(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("remove friend: %w", err)
	}
	if person == nil {
		return nil, fmt.Errorf("person %s: %w", a, apperr.ErrNotFound)
	}

	if _, err := m.store.RemoveFriendID(ctx, b, a); err != nil {
		m.noteRemoval(b, a)
		observability.SecondaryWriteFailures.WithLabelValues("remove").Inc()
		m.logger.Warn("mirror friend removal failed, edge is one-directional until repaired",
			"person_id", a, "friend_id", b, "error", err)
	}
	return person, nil
}

// CascadeDeleteReferences scrubs id from every other person's friend list,
// whether or not the two were known friends.
func (m *Manager) CascadeDeleteReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.CascadeDeleteReferencesIn(ctx, m.store, id)
}

// CascadeDeleteReferencesIn is CascadeDeleteReferences against s, typically
// a store bound to the transaction that deletes id.
func (m *Manager) CascadeDeleteReferencesIn(ctx context.Context, s storage.PersonStore, id uuid.UUID) (int64, error) {
	n, err := s.RemoveFriendReferences(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("cascade friend references: %w", err)
	}
	observability.CascadeReferencesRemoved.Add(float64(n))
	if n > 0 {
		m.logger.Debug("scrubbed friend references", "person_id", id, "records", n)
	}
	return n, nil
}

func (m *Manager) noteRemoval(from, to uuid.UUID) {
	m.mu.Lock()
	m.unmirrored[edge{from, to}] = struct{}{}
	m.mu.Unlock()
}

func (m *Manager) forgetRemoval(a, b uuid.UUID) {
	m.mu.Lock()
	delete(m.unmirrored, edge{a, b})
	delete(m.unmirrored, edge{b, a})
	m.mu.Unlock()
}

func (m *Manager) pendingRemovals() map[edge]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[edge]struct{}, len(m.unmirrored))
	for e := range m.unmirrored {
		out[e] = struct{}{}
	}
	return out
}

func (m *Manager) clearRemovals(done map[edge]struct{}) {
	m.mu.Lock()
	for e := range done {
		delete(m.unmirrored, e)
	}
	m.mu.Unlock()
}

func (m *Manager) publish(ctx context.Context, evt models.PersonEvent) {
	if err := m.publisher.PublishPersonEvent(ctx, evt); err != nil {
		m.logger.Warn("publish person event", "type", evt.Type, "person_id", evt.PersonID, "error", err)
	}
}
