package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
)

func TestRecordActivityDebitsFood(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	ctx := context.Background()

	entry, err := registry.RecordActivity(ctx, RecordActivityInput{
		Camp:      "Gamma",
		Date:      day(t, "2025-08-02"),
		Name:      "Hike",
		Time:      "09:00",
		FoodUnits: 40,
		Campers:   []string{"ann", "ann", " bob "},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if entry.ID != "e1" {
		t.Fatalf("id = %q, want e1", entry.ID)
	}
	if diff := cmp.Diff([]string{"ann", "bob"}, entry.Campers); diff != "" {
		t.Fatalf("campers mismatch (-want +got):\n%s", diff)
	}

	camp, _ := registry.Get("Gamma")
	if camp.FoodStock != 110 {
		t.Fatalf("stock = %d, want 110", camp.FoodStock)
	}
	if camp.DailyFoodUsage["2025-08-02"] != 40 {
		t.Fatalf("usage = %d, want 40", camp.DailyFoodUsage["2025-08-02"])
	}
	if got := len(camp.Activities["2025-08-02"]); got != 1 {
		t.Fatalf("activities = %d, want 1", got)
	}
}

func TestDeleteActivityCreditsFood(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	ctx := context.Background()
	date := day(t, "2025-08-03")

	first, err := registry.RecordActivity(ctx, RecordActivityInput{Camp: "Gamma", Date: date, Name: "Lunch", FoodUnits: 30})
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	second, err := registry.RecordActivity(ctx, RecordActivityInput{Camp: "Gamma", Date: date, Notes: "Snack", FoodUnits: 5})
	if err != nil {
		t.Fatalf("record second: %v", err)
	}

	removed, err := registry.DeleteActivity(ctx, "Gamma", date, first.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.ID != first.ID {
		t.Fatalf("removed %q, want %q", removed.ID, first.ID)
	}
	camp, _ := registry.Get("Gamma")
	if camp.FoodStock != 145 {
		t.Fatalf("stock = %d, want 145", camp.FoodStock)
	}
	if camp.DailyFoodUsage["2025-08-03"] != 5 {
		t.Fatalf("usage = %d, want 5", camp.DailyFoodUsage["2025-08-03"])
	}

	if _, err := registry.DeleteActivity(ctx, "Gamma", date, second.ID); err != nil {
		t.Fatalf("delete second: %v", err)
	}
	camp, _ = registry.Get("Gamma")
	if camp.FoodStock != 150 {
		t.Fatalf("stock = %d, want 150", camp.FoodStock)
	}
	if _, ok := camp.DailyFoodUsage["2025-08-03"]; ok {
		t.Fatal("expected usage key removed at zero")
	}
	if _, ok := camp.Activities["2025-08-03"]; ok {
		t.Fatal("expected empty activity day removed")
	}

	if _, err := registry.DeleteActivity(ctx, "Gamma", date, second.ID); !apperrors.HasCode(err, apperrors.CodeEntryNotFound) {
		t.Fatalf("repeat delete: err = %v, want entry not found", err)
	}
}

func TestRecordActivityRejectsInsufficientFood(t *testing.T) {
	t.Parallel()

	registry, store := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	writes := store.writes

	_, err := registry.RecordActivity(context.Background(), RecordActivityInput{
		Camp:      "Gamma",
		Date:      day(t, "2025-08-02"),
		Name:      "Feast",
		FoodUnits: 151,
	})
	if !apperrors.HasCode(err, apperrors.CodeInsufficientFood) || apperrors.KindOf(err) != apperrors.KindState {
		t.Fatalf("err = %v, want insufficient food", err)
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Metadata["Requested"] != "151" || appErr.Metadata["Stock"] != "150" {
		t.Fatalf("metadata = %+v", appErr)
	}
	camp, _ := registry.Get("Gamma")
	if camp.FoodStock != 150 || len(camp.Activities) != 0 {
		t.Fatalf("expected unchanged camp, got %+v", camp)
	}
	if store.writes != writes {
		t.Fatal("expected no write")
	}
}

func TestRecordActivityValidation(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)

	tests := []struct {
		name  string
		input RecordActivityInput
		code  apperrors.Code
	}{
		{
			name:  "unknown camp",
			input: RecordActivityInput{Camp: "Nope", Date: day(t, "2025-08-02"), Name: "Hike"},
			code:  apperrors.CodeCampNotFound,
		},
		{
			name:  "empty entry",
			input: RecordActivityInput{Camp: "Gamma", Date: day(t, "2025-08-02"), Name: "  "},
			code:  apperrors.CodeActivityRequired,
		},
		{
			name:  "negative food",
			input: RecordActivityInput{Camp: "Gamma", Date: day(t, "2025-08-02"), Name: "Hike", FoodUnits: -1},
			code:  apperrors.CodeInvalidAmount,
		},
		{
			name:  "before camp",
			input: RecordActivityInput{Camp: "Gamma", Date: day(t, "2025-07-31"), Name: "Hike"},
			code:  apperrors.CodeDateOutsideCamp,
		},
		{
			name:  "after camp",
			input: RecordActivityInput{Camp: "Gamma", Date: day(t, "2025-08-06"), Name: "Hike"},
			code:  apperrors.CodeDateOutsideCamp,
		},
		{
			name:  "missing date",
			input: RecordActivityInput{Camp: "Gamma", Name: "Hike"},
			code:  apperrors.CodeCampInvalidDate,
		},
	}
	for _, tt := range tests {
		_, err := registry.RecordActivity(context.Background(), tt.input)
		if !apperrors.HasCode(err, tt.code) {
			t.Errorf("%s: err = %v, want %s", tt.name, err, tt.code)
		}
	}
}

func TestRecordActivityOnLastDay(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	if _, err := registry.RecordActivity(context.Background(), RecordActivityInput{
		Camp: "Gamma",
		Date: day(t, "2025-08-05"),
		Name: "Pack up",
	}); err != nil {
		t.Fatalf("record on end date: %v", err)
	}
}

func TestIncidents(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Alpha", CampTypeOvernight, "2025-07-01", 0)
	ctx := context.Background()

	if _, err := registry.RecordIncident(ctx, RecordIncidentInput{Camp: "Alpha", Date: day(t, "2025-07-01"), Description: " "}); !apperrors.HasCode(err, apperrors.CodeEmptyDescription) {
		t.Fatalf("empty description: err = %v", err)
	}
	if _, err := registry.RecordIncident(ctx, RecordIncidentInput{Camp: "Ghost", Description: "x"}); !apperrors.HasCode(err, apperrors.CodeCampNotFound) {
		t.Fatalf("unknown camp: err = %v", err)
	}
	if _, err := registry.RecordIncident(ctx, RecordIncidentInput{Camp: "Alpha", Date: day(t, "2025-07-03"), Description: "x"}); !apperrors.HasCode(err, apperrors.CodeDateOutsideCamp) {
		t.Fatalf("outside camp: err = %v", err)
	}

	incident, err := registry.RecordIncident(ctx, RecordIncidentInput{
		Camp:        "Alpha",
		Date:        day(t, "2025-07-02"),
		Time:        "21:30",
		Description: "Twisted ankle",
		Campers:     []string{"ann"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	want := Incident{ID: "e1", Date: "2025-07-02", Time: "21:30", Description: "Twisted ankle", Campers: []string{"ann"}}
	if diff := cmp.Diff(want, incident); diff != "" {
		t.Fatalf("incident mismatch (-want +got):\n%s", diff)
	}

	removed, err := registry.DeleteIncident(ctx, "Alpha", incident.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.ID != incident.ID {
		t.Fatalf("removed %q", removed.ID)
	}
	if _, err := registry.DeleteIncident(ctx, "Alpha", incident.ID); !apperrors.HasCode(err, apperrors.CodeEntryNotFound) {
		t.Fatalf("repeat delete: err = %v", err)
	}
}
