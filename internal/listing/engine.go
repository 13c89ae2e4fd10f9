// Package listing serves paginated, collation-aware person listings.
package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/internal/persons"
	"github.com/your-org/persondir/internal/storage"
	"github.com/your-org/persondir/pkg/dto"
)

const (
	DefaultPageSize = 5
	orderAsc        = "asc"
	orderDesc       = "desc"
)

// Params is a raw page request. PageSize 0 means no limit.
type Params struct {
	Skip      int
	PageSize  int
	SortBy    string
	SortOrder string
}

func DefaultParams() Params {
	return Params{
		PageSize:  DefaultPageSize,
		SortBy:    string(storage.SortByUsername),
		SortOrder: orderAsc,
	}
}

// ParseSortField matches case-insensitively; anything unknown sorts by
// username.
func ParseSortField(s string) storage.SortField {
	switch f := storage.SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case storage.SortByUsername, storage.SortByCPR, storage.SortByProfilePicture, storage.SortByStarSign:
		return f
	default:
		return storage.SortByUsername
	}
}

// ParseSortOrder reports whether s asks for descending order. Anything but
// "desc" is ascending.
func ParseSortOrder(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), orderDesc)
}

// Plan resolves p into a store query. Negative skip and page size clamp to 0.
func Plan(p Params) storage.ListQuery {
	return storage.ListQuery{
		SortBy:     ParseSortField(p.SortBy),
		Descending: ParseSortOrder(p.SortOrder),
		Skip:       max(p.Skip, 0),
		Limit:      max(p.PageSize, 0),
	}
}

type Engine struct {
	store     storage.PersonStore
	presenter *persons.Presenter
}

func NewEngine(store storage.PersonStore, presenter *persons.Presenter) *Engine {
	return &Engine{store: store, presenter: presenter}
}

// List returns one page plus the unfiltered total. The echoed sortBy and
// sortOrder are the resolved values, not the raw input.
func (e *Engine) List(ctx context.Context, p Params) (*dto.PersonListResponse, error) {
	start := time.Now()
	defer func() { observability.ListDuration.Observe(time.Since(start).Seconds()) }()

	q := Plan(p)

	var (
		total int
		page  []models.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := e.store.CountPersons(gctx)
		if err != nil {
			return fmt.Errorf("count persons: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		items, err := e.store.ListPersons(gctx, q)
		if err != nil {
			return fmt.Errorf("list persons: %w", err)
		}
		page = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items, err := e.presenter.ToResponses(ctx, page)
	if err != nil {
		return nil, err
	}

	order := orderAsc
	if q.Descending {
		order = orderDesc
	}
	return &dto.PersonListResponse{
		Items:     items,
		Total:     total,
		Skip:      q.Skip,
		PageSize:  q.Limit,
		SortBy:    string(q.SortBy),
		SortOrder: order,
	}, nil
}
