// Package seed loads the fixed demo persons.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/your-org/persondir/internal/cpr"
	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/storage"
)

// Fixture is one demo person.
type Fixture struct {
	Username string
	CPR      string
}

var Fixtures = []Fixture{
	{"Alice", "100195-1234"},
	{"Bob", "150688-5678"},
	{"Charlie", "200392-9012"},
	{"Diana", "101075-3456"},
	{"Eve", "051200-7890"},
	{"Frank", "140585-2345"},
	{"Grace", "200770-6789"},
}

// Run wipes the store and inserts Fixtures. It returns the number of persons
// removed and inserted.
func Run(ctx context.Context, store storage.PersonStore, codec *cpr.Codec) (removed int64, inserted int, err error) {
	removed, err = store.DeleteAllPersons(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("clear persons: %w", err)
	}

	for _, f := range Fixtures {
		_, err := store.CreatePerson(ctx, models.PersonFields{
			Username: f.Username,
			CPR:      f.CPR,
			StarSign: codec.StarSignOf(f.CPR),
		})
		if err != nil {
			return removed, inserted, fmt.Errorf("insert %s: %w", f.Username, err)
		}
		inserted++
	}

	slog.Info("database seeded", "removed", removed, "inserted", inserted)
	return removed, inserted, nil
}
