package persons

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/persondir/internal/cpr"
	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/pkg/dto"
)

const presignConcurrency = 8

// Presenter maps stored records to API responses. Age and star sign are
// recomputed from the cpr on every read, and managed picture keys are
// resolved to a freshly issued URL.
type Presenter struct {
	pictures PictureStore
	codec    *cpr.Codec
	logger   *slog.Logger
}

func NewPresenter(pictures PictureStore, codec *cpr.Codec, logger *slog.Logger) *Presenter {
	if pictures == nil {
		pictures = NoPictures{}
	}
	if codec == nil {
		codec = cpr.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{pictures: pictures, codec: codec, logger: logger}
}

func (p *Presenter) ToResponse(ctx context.Context, person *models.Person) dto.PersonResponse {
	derived := p.codec.Derive(person.CPR)
	friendIDs := person.FriendIDs
	if friendIDs == nil {
		friendIDs = []uuid.UUID{}
	}
	return dto.PersonResponse{
		ID:             person.ID,
		Username:       person.Username,
		CPR:            person.CPR,
		ProfilePicture: p.pictureURL(ctx, person.ProfilePicture),
		Age:            derived.Age,
		StarSign:       derived.StarSign,
		FriendIDs:      friendIDs,
	}
}

// ToResponses maps a page of records, presigning pictures concurrently.
// Order is preserved.
func (p *Presenter) ToResponses(ctx context.Context, persons []models.Person) ([]dto.PersonResponse, error) {
	out := make([]dto.PersonResponse, len(persons))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presignConcurrency)
	for i := range persons {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = p.ToResponse(gctx, &persons[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Presenter) pictureURL(ctx context.Context, stored string) string {
	if !IsManagedPicture(stored) {
		return stored
	}
	u, err := p.pictures.PresignedURL(ctx, stored)
	observability.PictureOps.WithLabelValues("presign", observability.Outcome(err)).Inc()
	if err != nil {
		p.logger.Debug("presign profile picture", "key", stored, "error", err)
		return ""
	}
	return u
}
