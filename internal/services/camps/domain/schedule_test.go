package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
)

func campBetween(t *testing.T, name, start, end string) Camp {
	t.Helper()
	return Camp{Name: name, StartDate: day(t, start), EndDate: day(t, end)}
}

func TestOverlapsIsSymmetricAndReflexive(t *testing.T) {
	t.Parallel()

	camps := []Camp{
		campBetween(t, "a", "2025-07-01", "2025-07-02"),
		campBetween(t, "b", "2025-07-02", "2025-07-03"),
		campBetween(t, "c", "2025-07-04", "2025-07-04"),
		campBetween(t, "d", "2025-06-01", "2025-08-01"),
		campBetween(t, "e", "2025-07-03", "2025-07-03"),
	}
	for _, a := range camps {
		if !Overlaps(a, a) {
			t.Errorf("%s should overlap itself", a.Name)
		}
		for _, b := range camps {
			if Overlaps(a, b) != Overlaps(b, a) {
				t.Errorf("overlap(%s,%s) is not symmetric", a.Name, b.Name)
			}
		}
	}
}

func TestOverlapsBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Camp
		want bool
	}{
		{
			name: "shared end day",
			a:    campBetween(t, "a", "2025-07-01", "2025-07-02"),
			b:    campBetween(t, "b", "2025-07-02", "2025-07-03"),
			want: true,
		},
		{
			name: "adjacent days",
			a:    campBetween(t, "a", "2025-07-01", "2025-07-02"),
			b:    campBetween(t, "b", "2025-07-03", "2025-07-04"),
			want: false,
		},
		{
			name: "day camp inside range",
			a:    campBetween(t, "a", "2025-07-01", "2025-07-05"),
			b:    campBetween(t, "b", "2025-07-03", "2025-07-03"),
			want: true,
		},
		{
			name: "disjoint day camps",
			a:    campBetween(t, "a", "2025-07-01", "2025-07-01"),
			b:    campBetween(t, "b", "2025-07-02", "2025-07-02"),
			want: false,
		},
	}
	for _, tt := range tests {
		if got := Overlaps(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: overlap = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAssignLeaderRejectsOverlappingBatch(t *testing.T) {
	t.Parallel()

	registry, store := newTestRegistry(t)
	mustCreate(t, registry, "Alpha", CampTypeOvernight, "2025-07-01", 0)
	mustCreate(t, registry, "Beta", CampTypeOvernight, "2025-07-02", 0)

	_, err := registry.AssignLeader(context.Background(), "lee", []int{0, 1})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want *ConflictError", err)
	}
	if !conflict.WithinBatch {
		t.Fatal("expected within-batch conflict")
	}
	if !apperrors.HasCode(err, apperrors.CodeInternalOverlap) || apperrors.KindOf(err) != apperrors.KindConflict {
		t.Fatalf("err = %v, want internal overlap conflict", err)
	}
	if diff := cmp.Diff([]ConflictPair{{Candidate: "Alpha", Existing: "Beta"}}, conflict.Pairs); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
	if len(registry.CampsForLeader("lee")) != 0 {
		t.Fatal("expected no partial assignment")
	}
	if store.writes != 2 {
		t.Fatalf("expected only the two create writes, got %d", store.writes)
	}
}

func TestAssignLeaderDisjointCampSucceeds(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	mustCreate(t, registry, "Delta", CampTypeMultiDay, "2025-08-10", 2)
	ctx := context.Background()

	if _, err := registry.AssignLeader(ctx, "lee", []int{0}); err != nil {
		t.Fatalf("assign gamma: %v", err)
	}
	result, err := registry.AssignLeader(ctx, "lee", []int{1})
	if err != nil {
		t.Fatalf("assign delta: %v", err)
	}
	if diff := cmp.Diff([]string{"Delta"}, result.Selected); diff != "" {
		t.Fatalf("selected mismatch (-want +got):\n%s", diff)
	}
	if got := len(registry.CampsForLeader("lee")); got != 2 {
		t.Fatalf("leader camps = %d, want 2", got)
	}
}

func TestAssignLeaderReportsExistingConflicts(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	mustCreate(t, registry, "Delta", CampTypeMultiDay, "2025-08-04", 2)
	mustCreate(t, registry, "Echo", CampTypeDay, "2025-08-20", 0)
	ctx := context.Background()

	if _, err := registry.AssignLeader(ctx, "lee", []int{0}); err != nil {
		t.Fatalf("assign gamma: %v", err)
	}
	_, err := registry.AssignLeader(ctx, "lee", []int{1, 2})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want *ConflictError", err)
	}
	if conflict.WithinBatch {
		t.Fatal("expected conflict against existing assignment")
	}
	if !apperrors.HasCode(err, apperrors.CodeScheduleConflict) {
		t.Fatalf("err = %v, want schedule conflict code", err)
	}
	if diff := cmp.Diff([]string{"Gamma"}, conflict.ExistingCamps()); diff != "" {
		t.Fatalf("existing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Delta"}, conflict.CandidateCamps()); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
	if camps := registry.CampsForLeader("lee"); len(camps) != 1 || camps[0].Name != "Gamma" {
		t.Fatalf("expected leader to keep only Gamma, got %+v", camps)
	}

	replaced, err := registry.ReplaceConflicting(ctx, "lee", []int{1, 2}, conflict.ExistingCamps())
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if diff := cmp.Diff(Assignment{Leader: "lee", Selected: []string{"Delta", "Echo"}, Released: []string{"Gamma"}}, replaced); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}
	assertNoLeaderOverlap(t, registry)
}

func TestSkipConflictingAssignsRemainder(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	mustCreate(t, registry, "Delta", CampTypeMultiDay, "2025-08-04", 2)
	mustCreate(t, registry, "Echo", CampTypeDay, "2025-08-20", 0)
	ctx := context.Background()

	if _, err := registry.AssignLeader(ctx, "lee", []int{0}); err != nil {
		t.Fatalf("assign gamma: %v", err)
	}
	result, err := registry.SkipConflicting(ctx, "lee", []int{1, 2}, []string{"Delta"})
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if diff := cmp.Diff([]string{"Echo"}, result.Selected); diff != "" {
		t.Fatalf("selected mismatch (-want +got):\n%s", diff)
	}
	assertNoLeaderOverlap(t, registry)

	empty, err := registry.SkipConflicting(ctx, "lee", []int{1}, []string{"Delta"})
	if err != nil || len(empty.Selected) != 0 {
		t.Fatalf("skip everything: result=%+v err=%v", empty, err)
	}
}

func TestAssignLeaderInvalidIndex(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Alpha", CampTypeDay, "2025-07-01", 0)
	ctx := context.Background()

	for _, indices := range [][]int{{1}, {-1}, {0, 5}} {
		_, err := registry.AssignLeader(ctx, "lee", indices)
		if !apperrors.HasCode(err, apperrors.CodeInvalidIndex) {
			t.Errorf("indices %v: err = %v, want invalid index", indices, err)
		}
	}
	if _, err := registry.AssignLeader(ctx, " ", []int{0}); !apperrors.HasCode(err, apperrors.CodeLeaderRequired) {
		t.Fatalf("blank leader: err = %v", err)
	}
	result, err := registry.AssignLeader(ctx, "lee", []int{0, 0})
	if err != nil {
		t.Fatalf("duplicate index: %v", err)
	}
	if len(result.Selected) != 1 {
		t.Fatalf("selected = %v, want one camp", result.Selected)
	}
}

func TestAssignLeaderNeverCreatesOverlaps(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "A", CampTypeOvernight, "2025-07-01", 0)
	mustCreate(t, registry, "B", CampTypeOvernight, "2025-07-02", 0)
	mustCreate(t, registry, "C", CampTypeDay, "2025-07-04", 0)
	mustCreate(t, registry, "D", CampTypeMultiDay, "2025-07-03", 3)
	mustCreate(t, registry, "E", CampTypeDay, "2025-07-10", 0)
	ctx := context.Background()

	batches := [][]int{{0}, {1}, {2, 4}, {3}, {1, 2}, {4}, {0, 2, 4}, {3, 4}}
	for _, leader := range []string{"lee", "max"} {
		for _, batch := range batches {
			_, _ = registry.AssignLeader(ctx, leader, batch)
			assertNoLeaderOverlap(t, registry)
		}
	}
	if conflicts := registry.LeaderDayConflicts(); len(conflicts) != 0 {
		t.Fatalf("expected no day conflicts, got %+v", conflicts)
	}
}

func TestUnassignIsIdempotent(t *testing.T) {
	t.Parallel()

	registry, store := newTestRegistry(t)
	mustCreate(t, registry, "Alpha", CampTypeDay, "2025-07-01", 0)
	mustCreate(t, registry, "Beta", CampTypeDay, "2025-07-05", 0)
	ctx := context.Background()
	if _, err := registry.AssignLeader(ctx, "lee", []int{0, 1}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	removed, err := registry.Unassign(ctx, "lee", []string{"Alpha"})
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if diff := cmp.Diff([]string{"Alpha"}, removed); diff != "" {
		t.Fatalf("removed mismatch (-want +got):\n%s", diff)
	}
	first := registry.List()
	writes := store.writes

	removed, err = registry.Unassign(ctx, "lee", []string{"Alpha"})
	if err != nil {
		t.Fatalf("second unassign: %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("second unassign removed %v", removed)
	}
	if diff := cmp.Diff(first, registry.List()); diff != "" {
		t.Fatalf("state changed on repeat (-first +second):\n%s", diff)
	}
	if store.writes != writes {
		t.Fatal("expected no write for a no-op unassign")
	}

	if _, err := registry.Unassign(ctx, "lee", []string{"Beta", "Ghost"}); !apperrors.HasCode(err, apperrors.CodeCampNotFound) {
		t.Fatalf("unknown camp: err = %v", err)
	}
	if camps := registry.CampsForLeader("lee"); len(camps) != 1 || camps[0].Name != "Beta" {
		t.Fatal("expected failed unassign to leave Beta assigned")
	}
}

func TestLeaderDayConflictsFindsDoubleBooking(t *testing.T) {
	t.Parallel()

	store := &fakeStore{camps: []Camp{
		{Name: "Alpha", Type: CampTypeOvernight, StartDate: day(t, "2025-07-01"), EndDate: day(t, "2025-07-02"), ScoutLeaders: []string{"lee"}},
		{Name: "Beta", Type: CampTypeOvernight, StartDate: day(t, "2025-07-02"), EndDate: day(t, "2025-07-03"), ScoutLeaders: []string{"lee", "max"}},
	}}
	registry := NewRegistry(store, nil)
	if err := registry.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	conflicts := registry.LeaderDayConflicts()
	want := []DayConflict{{Date: day(t, "2025-07-02"), Leader: "lee", Camps: []string{"Alpha", "Beta"}}}
	if diff := cmp.Diff(want, conflicts); diff != "" {
		t.Fatalf("conflicts mismatch (-want +got):\n%s", diff)
	}
}

func assertNoLeaderOverlap(t *testing.T, r *Registry) {
	t.Helper()
	leaders := map[string]struct{}{}
	for _, camp := range r.List() {
		for _, leader := range camp.ScoutLeaders {
			leaders[leader] = struct{}{}
		}
	}
	for leader := range leaders {
		camps := r.CampsForLeader(leader)
		for i := 0; i < len(camps); i++ {
			for j := i + 1; j < len(camps); j++ {
				if Overlaps(camps[i], camps[j]) {
					t.Fatalf("leader %s assigned to overlapping %s and %s", leader, camps[i].Name, camps[j].Name)
				}
			}
		}
	}
}

func TestReplaceConflictingKeepsSelectedExistingCamp(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	mustCreate(t, registry, "Gamma", CampTypeMultiDay, "2025-08-01", 4)
	mustCreate(t, registry, "Echo", CampTypeDay, "2025-08-20", 0)
	ctx := context.Background()

	if _, err := registry.AssignLeader(ctx, "lee", []int{0}); err != nil {
		t.Fatalf("assign gamma: %v", err)
	}
	result, err := registry.ReplaceConflicting(ctx, "lee", []int{0, 1}, []string{"Gamma"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if diff := cmp.Diff(Assignment{Leader: "lee", Selected: []string{"Gamma", "Echo"}}, result); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}
	var names []string
	for _, camp := range registry.CampsForLeader("lee") {
		names = append(names, camp.Name)
	}
	if diff := cmp.Diff([]string{"Gamma", "Echo"}, names); diff != "" {
		t.Fatalf("leader camps mismatch (-want +got):\n%s", diff)
	}
}
