package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/louisbranch/camptrack/internal/services/camps/domain"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(" "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestReplaceAndListCamps(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	camps := []domain.Camp{
		{
			Name:         "Gamma",
			Location:     "Lakeside",
			Type:         domain.CampTypeMultiDay,
			StartDate:    start,
			EndDate:      start.AddDate(0, 0, 4),
			FoodStock:    110,
			PayRate:      25,
			ScoutLeaders: []string{"lee", "max"},
			Campers:      []string{"ann", "bob"},
			Activities: map[string][]domain.Activity{
				"2025-08-02": {{ID: "a1", Name: "Hike", Time: "09:00", FoodUnits: 40, Campers: []string{"ann"}}},
			},
			Incidents:      []domain.Incident{{ID: "i1", Date: "2025-08-03", Description: "Lost compass"}},
			DailyFoodUsage: map[string]int{"2025-08-02": 40},
		},
		{
			Name:      "Alpha",
			Type:      domain.CampTypeDay,
			StartDate: start.AddDate(0, -1, 0),
			EndDate:   start.AddDate(0, -1, 0),
		},
	}
	if err := store.ReplaceCamps(ctx, camps); err != nil {
		t.Fatalf("replace camps: %v", err)
	}

	got, err := store.ListCamps(ctx)
	if err != nil {
		t.Fatalf("list camps: %v", err)
	}
	if diff := cmp.Diff(camps, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("camps mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceCampsDropsMissingRows(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	first := []domain.Camp{
		{Name: "Alpha", Type: domain.CampTypeDay, StartDate: start, EndDate: start},
		{Name: "Beta", Type: domain.CampTypeOvernight, StartDate: start, EndDate: start.AddDate(0, 0, 1)},
	}
	if err := store.ReplaceCamps(ctx, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := store.ReplaceCamps(ctx, first[1:]); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := store.ListCamps(ctx)
	if err != nil {
		t.Fatalf("list camps: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Beta" {
		t.Fatalf("camps = %+v, want only Beta", got)
	}
}

func TestReplaceCampsIsAtomic(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	original := []domain.Camp{{Name: "Alpha", Type: domain.CampTypeDay, StartDate: start, EndDate: start}}
	if err := store.ReplaceCamps(ctx, original); err != nil {
		t.Fatalf("seed: %v", err)
	}

	duplicate := []domain.Camp{
		{Name: "Beta", Type: domain.CampTypeDay, StartDate: start, EndDate: start},
		{Name: "Beta", Type: domain.CampTypeDay, StartDate: start, EndDate: start},
	}
	if err := store.ReplaceCamps(ctx, duplicate); err == nil {
		t.Fatal("expected duplicate name error")
	}

	got, err := store.ListCamps(ctx)
	if err != nil {
		t.Fatalf("list camps: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Alpha" {
		t.Fatalf("camps = %+v, want original Alpha", got)
	}
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "camps.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if err := store.ReplaceCamps(context.Background(), []domain.Camp{{Name: "Alpha", Type: domain.CampTypeDay, StartDate: start, EndDate: start}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.ListCamps(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("camps = %d, want 1", len(got))
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	registry := domain.NewRegistry(store, nil)
	if err := registry.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	created, err := registry.Create(ctx, domain.CreateInput{
		Name:      "Gamma",
		Type:      domain.CampTypeMultiDay,
		StartDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Nights:    4,
		FoodStock: 100,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reloaded := domain.NewRegistry(store, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Get("Gamma")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(created, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("camp mismatch (-want +got):\n%s", diff)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListCamps(ctx); err == nil {
		t.Fatal("expected canceled list error")
	}
	if err := store.ReplaceCamps(ctx, nil); err == nil {
		t.Fatal("expected canceled replace error")
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "camps.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
