package main

import (
	"context"
	"testing"
)

// The memory seed must assign the same category ids as the SQL seed
// migration, run after run, so exported data and client bookmarks keep
// meaning the same thing across DSN-less restarts.
func TestSeedMemoryRepositoryAssignsStableIDs(t *testing.T) {
	wantIDs := map[string]int64{
		"IT Services": 1,
		"Maintenance": 2,
		"Consulting":  3,
		"Logistics":   4,
		"Facilities":  5,
	}

	for run := 0; run < 3; run++ {
		repo := seedMemoryRepository(context.Background())

		categories, err := repo.ListCategories(context.Background())
		if err != nil {
			t.Fatalf("run %d: ListCategories failed: %v", run, err)
		}
		if len(categories) != len(wantIDs) {
			t.Fatalf("run %d: seeded %d categories, want %d", run, len(categories), len(wantIDs))
		}
		for _, cat := range categories {
			want, ok := wantIDs[cat.Name]
			if !ok {
				t.Errorf("run %d: unexpected category %q", run, cat.Name)
				continue
			}
			if cat.ID != want {
				t.Errorf("run %d: category %q has id %d, want %d", run, cat.Name, cat.ID, want)
			}
		}
	}
}
