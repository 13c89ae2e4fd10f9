package storage

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/your-org/persondir/internal/models"
)

// newCollator returns an English collator at primary strength: case, accent
// and width differences do not affect order, digits compare as text.
// A collator is not safe for concurrent use; create one per sort.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.Loose)
}

func sortKey(p *models.Person, field SortField) string {
	switch field {
	case SortByCPR:
		return p.CPR
	case SortByProfilePicture:
		return p.ProfilePicture
	case SortByStarSign:
		return p.StarSign
	default:
		return p.Username
	}
}
