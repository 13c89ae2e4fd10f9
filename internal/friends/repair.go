package friends

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/observability"
)

// RepairReport counts what a Repair pass changed.
type RepairReport struct {
	Scanned         int `json:"scanned"`
	DanglingRemoved int `json:"danglingRemoved"`
	SelfRemoved     int `json:"selfRemoved"`
	EdgesRestored   int `json:"edgesRestored"`
	// RemovalsCompleted counts one-directional edges left by a removal whose
	// mirror write failed; those are dropped rather than restored.
	RemovalsCompleted int `json:"removalsCompleted"`
}

type edge struct{ from, to uuid.UUID }

// Repair restores the graph invariants left broken by interrupted or failed
// mirror writes:
//   - ids of persons that no longer exist are pulled (no dangling references),
//   - a person's own id is pulled,
//   - a one-directional edge A->B left by a failed removal is dropped,
//   - any other one-directional edge A->B gets its B->A mirror, provided A
//     still exists when the mirror is written.
//
// Repair is idempotent.
func (m *Manager) Repair(ctx context.Context) (RepairReport, error) {
	var report RepairReport
	pending := m.pendingRemovals()

	friendsOf := make(map[uuid.UUID][]uuid.UUID)
	err := m.store.ForEachPerson(ctx, func(p *models.Person) error {
		friendsOf[p.ID] = p.FriendIDs
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scan persons: %w", err)
	}
	report.Scanned = len(friendsOf)

	var dangling, self, removals, missing []edge
	for id, friendIDs := range friendsOf {
		for _, f := range friendIDs {
			mirror, exists := friendsOf[f]
			switch {
			case f == id:
				self = append(self, edge{id, f})
			case !exists:
				dangling = append(dangling, edge{id, f})
			case slices.Contains(mirror, id):
			case hasEdge(pending, edge{id, f}):
				removals = append(removals, edge{id, f})
			default:
				missing = append(missing, edge{f, id})
			}
		}
	}

	for _, e := range append(dangling, self...) {
		p, err := m.store.RemoveFriendID(ctx, e.from, e.to)
		if err != nil {
			return report, fmt.Errorf("pull %s from %s: %w", e.to, e.from, err)
		}
		if p == nil {
			continue
		}
		if e.from == e.to {
			report.SelfRemoved++
			observability.RepairFixes.WithLabelValues("self").Inc()
		} else {
			report.DanglingRemoved++
			observability.RepairFixes.WithLabelValues("dangling").Inc()
		}
	}

	for _, e := range removals {
		p, err := m.store.RemoveFriendID(ctx, e.from, e.to)
		if err != nil {
			return report, fmt.Errorf("pull %s from %s: %w", e.to, e.from, err)
		}
		if p != nil {
			report.RemovalsCompleted++
			observability.RepairFixes.WithLabelValues("removal").Inc()
		}
	}
	// Everything pending was either finished above or is no longer
	// one-directional.
	m.clearRemovals(pending)

	for _, e := range missing {
		// Either side may have been deleted since the scan; the link only
		// lands while both records exist.
		p, err := m.store.LinkFriendID(ctx, e.from, e.to)
		if err != nil {
			return report, fmt.Errorf("mirror %s into %s: %w", e.to, e.from, err)
		}
		if p != nil {
			report.EdgesRestored++
			observability.RepairFixes.WithLabelValues("mirror").Inc()
		}
	}

	if report.DanglingRemoved+report.SelfRemoved+report.EdgesRestored+report.RemovalsCompleted > 0 {
		m.logger.Info("friend graph repaired",
			"scanned", report.Scanned,
			"dangling_removed", report.DanglingRemoved,
			"self_removed", report.SelfRemoved,
			"edges_restored", report.EdgesRestored,
			"removals_completed", report.RemovalsCompleted)
	}
	return report, nil
}

func hasEdge(set map[edge]struct{}, e edge) bool {
	_, ok := set[e]
	return ok
}
