// Package persons owns the person lifecycle: validation, derived fields,
// profile picture storage and the delete cascade.
package persons

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/your-org/persondir/internal/apperr"
	"github.com/your-org/persondir/internal/cpr"
	"github.com/your-org/persondir/internal/friends"
	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/internal/queue"
	"github.com/your-org/persondir/internal/storage"
)

// Input carries the user-editable fields of create and update.
type Input struct {
	Username       string
	CPR            string
	ProfilePicture string
}

type Repository struct {
	store     storage.PersonStore
	pictures  PictureStore
	graph     *friends.Manager
	codec     *cpr.Codec
	publisher queue.Publisher
	logger    *slog.Logger
}

type Option func(*Repository)

func WithCodec(c *cpr.Codec) Option {
	return func(r *Repository) { r.codec = c }
}

func WithPublisher(p queue.Publisher) Option {
	return func(r *Repository) { r.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

func NewRepository(store storage.PersonStore, pictures PictureStore, graph *friends.Manager, opts ...Option) *Repository {
	r := &Repository{
		store:     store,
		pictures:  pictures,
		graph:     graph,
		codec:     cpr.New(),
		publisher: queue.Nop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pictures == nil {
		r.pictures = NoPictures{}
	}
	return r
}

// Create validates presence of username and cpr, stores an inline picture
// and inserts the record. The cpr format is not checked; an unparseable
// value only leaves starSign empty.
func (r *Repository) Create(ctx context.Context, in Input) (*models.Person, error) {
	username := strings.TrimSpace(in.Username)
	cprValue := strings.TrimSpace(in.CPR)
	if username == "" || cprValue == "" {
		return nil, fmt.Errorf("%w: Username and CPR are required.", apperr.ErrValidation)
	}

	picture, uploaded, err := r.storePicture(ctx, in.ProfilePicture)
	if err != nil {
		return nil, err
	}

	person, err := r.store.CreatePerson(ctx, models.PersonFields{
		Username:       username,
		CPR:            cprValue,
		ProfilePicture: picture,
		StarSign:       r.codec.StarSignOf(cprValue),
	})
	observability.PersonMutations.WithLabelValues("create", observability.Outcome(err)).Inc()
	if err != nil {
		if uploaded {
			r.deletePicture(ctx, picture)
		}
		return nil, fmt.Errorf("create person: %w", err)
	}

	r.publish(ctx, models.NewPersonEvent(models.PersonCreated, person.ID))
	return person, nil
}

func (r *Repository) Get(ctx context.Context, rawID string) (*models.Person, error) {
	id, err := friends.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, id)
}

// Update replaces username, cpr and picture, re-deriving starSign. The friend
// list is left untouched. A new inline picture replaces the previous managed
// one, which is deleted once the record points at the new key.
func (r *Repository) Update(ctx context.Context, rawID string, in Input) (*models.Person, error) {
	id, err := friends.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	existing, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	picture := in.ProfilePicture
	if refersToKey(picture, existing.ProfilePicture) {
		picture = existing.ProfilePicture
	}
	picture, uploaded, err := r.storePicture(ctx, picture)
	if err != nil {
		return nil, err
	}

	cprValue := strings.TrimSpace(in.CPR)
	person, err := r.store.UpdatePerson(ctx, id, models.PersonFields{
		Username:       strings.TrimSpace(in.Username),
		CPR:            cprValue,
		ProfilePicture: picture,
		StarSign:       r.codec.StarSignOf(cprValue),
	})
	if err == nil && person == nil {
		err = fmt.Errorf("person %s: %w", id, apperr.ErrNotFound)
	}
	observability.PersonMutations.WithLabelValues("update", observability.Outcome(err)).Inc()
	if err != nil {
		if uploaded {
			r.deletePicture(ctx, picture)
		}
		return nil, fmt.Errorf("update person: %w", err)
	}

	if uploaded && IsManagedPicture(existing.ProfilePicture) {
		r.deletePicture(ctx, existing.ProfilePicture)
	}

	r.publish(ctx, models.NewPersonEvent(models.PersonUpdated, id))
	return person, nil
}

// Delete scrubs the id from every friend list, drops the managed picture and
// then removes the record. The cascade runs first so a crash part way leaves
// at worst an unreferenced record, never a dangling reference. On a
// transactional store the record is locked for the whole sequence, so a
// concurrent AddFriend either lands before the cascade or sees the record gone.
func (r *Repository) Delete(ctx context.Context, rawID string) error {
	id, err := friends.ParseID(rawID)
	if err != nil {
		return err
	}

	err = r.withinTx(ctx, func(s storage.PersonStore) error {
		person, err := s.LockPerson(ctx, id)
		if err != nil {
			return fmt.Errorf("lock person: %w", err)
		}
		if person == nil {
			return fmt.Errorf("person %s: %w", id, apperr.ErrNotFound)
		}

		if _, err := r.graph.CascadeDeleteReferencesIn(ctx, s, id); err != nil {
			return err
		}

		if IsManagedPicture(person.ProfilePicture) {
			r.deletePicture(ctx, person.ProfilePicture)
		}

		deleted, err := s.DeletePerson(ctx, id)
		if err != nil {
			return fmt.Errorf("delete person: %w", err)
		}
		if !deleted {
			return fmt.Errorf("person %s: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
	observability.PersonMutations.WithLabelValues("delete", observability.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	r.publish(ctx, models.NewPersonEvent(models.PersonDeleted, id))
	return nil
}

// withinTx runs fn in one transaction when the store supports it, otherwise
// directly against the store.
func (r *Repository) withinTx(ctx context.Context, fn func(s storage.PersonStore) error) error {
	if tx, ok := r.store.(storage.Transactor); ok {
		return tx.WithinTx(ctx, fn)
	}
	return fn(r.store)
}

func (r *Repository) load(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	person, err := r.store.GetPerson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	if person == nil {
		return nil, fmt.Errorf("person %s: %w", id, apperr.ErrNotFound)
	}
	return person, nil
}

// storePicture uploads an inline image and returns its key; any other value
// is returned as given. uploaded reports whether a new object was written.
func (r *Repository) storePicture(ctx context.Context, value string) (stored string, uploaded bool, err error) {
	if !storage.IsInlineImage(value) {
		return value, false, nil
	}
	key, err := r.pictures.UploadDataURI(ctx, value)
	observability.PictureOps.WithLabelValues("upload", observability.Outcome(err)).Inc()
	if err != nil {
		return "", false, fmt.Errorf("%w: Error uploading profile picture: %v", apperr.ErrStorage, err)
	}
	return key, true, nil
}

func (r *Repository) deletePicture(ctx context.Context, key string) {
	err := r.pictures.DeleteObject(ctx, key)
	observability.PictureOps.WithLabelValues("delete", observability.Outcome(err)).Inc()
	if err != nil {
		r.logger.Warn("delete profile picture", "key", key, "error", err)
	}
}

func (r *Repository) publish(ctx context.Context, evt models.PersonEvent) {
	if err := r.publisher.PublishPersonEvent(ctx, evt); err != nil {
		r.logger.Warn("publish person event", "type", evt.Type, "person_id", evt.PersonID, "error", err)
	}
}
