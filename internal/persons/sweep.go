package persons

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/internal/storage"
)

// Sweeper removes picture objects no person refers to. Pictures replaced by a
// non-inline value on update, or left by a failed delete, end up here.
type Sweeper struct {
	store   storage.PersonStore
	objects ObjectLister
	minAge  time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewSweeper returns a sweeper that ignores objects younger than minAge, so
// an upload whose record insert is still in flight is never collected.
func NewSweeper(store storage.PersonStore, objects ObjectLister, minAge time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, objects: objects, minAge: minAge, now: time.Now, logger: logger}
}

// Sweep deletes orphaned objects and returns how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	objects, err := s.objects.ListObjects(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}

	referenced := make(map[string]struct{})
	err = s.store.ForEachPerson(ctx, func(p *models.Person) error {
		if IsManagedPicture(p.ProfilePicture) {
			referenced[p.ProfilePicture] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan picture references: %w", err)
	}

	cutoff := s.now().Add(-s.minAge)
	var orphans []string
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok || obj.LastModified.After(cutoff) {
			continue
		}
		orphans = append(orphans, obj.Key)
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	err = s.objects.DeleteObjects(ctx, orphans)
	observability.PictureOps.WithLabelValues("sweep", observability.Outcome(err)).Add(float64(len(orphans)))
	if err != nil {
		return 0, fmt.Errorf("delete orphaned pictures: %w", err)
	}
	s.logger.Info("swept orphaned profile pictures", "count", len(orphans))
	return len(orphans), nil
}
