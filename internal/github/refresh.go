package github

import (
	"context"
	"fmt"
	"time"
)

// Source produces a fresh snapshot.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Snapshot, error)
}

// RefreshResult holds counters for a refresh.
type RefreshResult struct {
	Added     int
	Updated   int
	Removed   int
	Unchanged int
	Snapshot  Snapshot
}

// Refresh fetches a snapshot from src, compares it with the one stored at
// path and, unless dryRun is set, replaces it. A corrupt stored snapshot is
// treated as empty.
func Refresh(ctx context.Context, src Source, path string, dryRun bool, now time.Time) (RefreshResult, error) {
	fresh, err := src.Fetch(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("fetching from %s: %w", src.Name(), err)
	}
	fresh.UpdatedAt = now

	prev, err := LoadSnapshot(path)
	if err != nil {
		prev = NewSnapshot()
	}
	if fresh.AccountName == "" {
		fresh.AccountName = prev.AccountName
	}

	result := diff(prev, fresh)
	result.Snapshot = fresh
	if dryRun {
		return result, nil
	}
	if err := SaveSnapshot(path, fresh); err != nil {
		return result, err
	}
	return result, nil
}

func diff(prev, fresh Snapshot) RefreshResult {
	var r RefreshResult
	pc, fc := prev.categories(), fresh.categories()
	for i := range fc {
		old, cur := pc[i].m, fc[i].m
		for k, v := range cur {
			was, ok := old[k]
			switch {
			case !ok:
				r.Added++
			case was != v:
				r.Updated++
			default:
				r.Unchanged++
			}
		}
		for k := range old {
			if _, ok := cur[k]; !ok {
				r.Removed++
			}
		}
	}
	return r
}
