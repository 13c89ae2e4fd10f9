// Package storage holds the person record stores and the picture object store.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/your-org/persondir/internal/models"
)

// SortField is a sortable person column.
type SortField string

const (
	SortByUsername       SortField = "username"
	SortByCPR            SortField = "cpr"
	SortByProfilePicture SortField = "profilepicture"
	SortByStarSign       SortField = "starsign"
)

// ListQuery is a resolved page request. Limit 0 means no limit.
type ListQuery struct {
	SortBy     SortField
	Descending bool
	Skip       int
	Limit      int
}

// PersonStore is the person record collection. Every method is atomic per
// record; nothing spans two records unless run through a Transactor.
//
// Lookups return (nil, nil) when the record does not exist.
type PersonStore interface {
	CreatePerson(ctx context.Context, fields models.PersonFields) (*models.Person, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	// LockPerson loads id and holds a write lock on the record until the
	// surrounding transaction ends. Outside a transaction it is GetPerson.
	LockPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	UpdatePerson(ctx context.Context, id uuid.UUID, fields models.PersonFields) (*models.Person, error)
	DeletePerson(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAllPersons(ctx context.Context) (int64, error)

	// AddFriendID adds friendID to id's friend list if absent and returns the
	// record after the write.
	AddFriendID(ctx context.Context, id, friendID uuid.UUID) (*models.Person, error)
	// LinkFriendID is AddFriendID conditioned on friendID existing at the
	// time of the write. It returns nil when either record is missing.
	LinkFriendID(ctx context.Context, id, friendID uuid.UUID) (*models.Person, error)
	// RemoveFriendID pulls friendID from id's friend list and returns the
	// record after the write.
	RemoveFriendID(ctx context.Context, id, friendID uuid.UUID) (*models.Person, error)
	// RemoveFriendReferences pulls id from every other record's friend list
	// and reports how many records changed.
	RemoveFriendReferences(ctx context.Context, id uuid.UUID) (int64, error)

	CountPersons(ctx context.Context) (int, error)
	ListPersons(ctx context.Context, q ListQuery) ([]models.Person, error)
	// ForEachPerson visits every record in id order. fn must not call back
	// into the store.
	ForEachPerson(ctx context.Context, fn func(p *models.Person) error) error

	Ping(ctx context.Context) error
}

// Transactor is implemented by stores that can run several writes atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx PersonStore) error) error
}
