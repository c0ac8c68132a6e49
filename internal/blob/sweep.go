package blob

import (
	"context"
	"fmt"
	"time"
)

// SweepableStore can both list and delete blobs.
type SweepableStore interface {
	Store
	Lister
}

// Sweep deletes blobs that are not in keep and were last modified before
// cutoff. The cutoff leaves room for uploads whose booking is still being
// written. With dryRun set nothing is deleted.
func Sweep(ctx context.Context, s SweepableStore, keep map[string]bool, cutoff time.Time, dryRun bool) ([]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, e := range entries {
		if keep[e.ID] || !e.ModTime.Before(cutoff) {
			continue
		}
		if !dryRun {
			if err := s.Delete(ctx, e.ID); err != nil {
				return removed, fmt.Errorf("delete %s: %w", e.ID, err)
			}
		}
		removed = append(removed, e.ID)
	}
	return removed, nil
}
