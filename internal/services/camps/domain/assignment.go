package domain

import (
	"context"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
)

// Assignment is the outcome of a committed leader assignment.
type Assignment struct {
	Leader string
	// Selected lists the camps the leader now supervises from the request.
	Selected []string
	// Released lists camps the leader was removed from, if any.
	Released []string
}

// CampsForLeader returns copies of every camp the leader supervises.
func (r *Registry) CampsForLeader(leader string) []Camp {
	leader = strings.TrimSpace(leader)
	var out []Camp
	for _, camp := range r.camps {
		if camp.HasLeader(leader) {
			out = append(out, camp.Clone())
		}
	}
	return out
}

// LeaderDayConflicts lists every day on which a leader is booked on more than
// one camp. A registry only ever changed through AssignLeader reports none;
// imported data may not.
func (r *Registry) LeaderDayConflicts() []DayConflict {
	return leaderDayConflicts(r.camps)
}

// AssignLeader assigns the leader to the camps at indices. The request is
// rejected as a whole when the selected camps overlap each other or overlap a
// camp the leader already supervises; conflicts surface as *ConflictError.
func (r *Registry) AssignLeader(ctx context.Context, leader string, indices []int) (Assignment, error) {
	leader = strings.TrimSpace(leader)
	if leader == "" {
		return Assignment{}, leaderRequired()
	}
	selected, err := r.selectIndices(indices)
	if err != nil {
		return Assignment{}, err
	}

	candidates := r.campsAt(selected)
	if pairs := batchOverlaps(candidates); len(pairs) > 0 {
		return Assignment{}, newConflictError(leader, true, pairs)
	}
	if pairs := crossOverlaps(candidates, r.existingFor(leader, selected)); len(pairs) > 0 {
		return Assignment{}, newConflictError(leader, false, pairs)
	}
	return r.assign(ctx, leader, selected, nil)
}

// ReplaceConflicting removes the leader from the named existing camps and then
// assigns the camps at indices, in one commit. Existing camps that are also
// selected stay assigned. It performs no overlap checks
// of its own; callers pass the camps reported by a ConflictError.
func (r *Registry) ReplaceConflicting(ctx context.Context, leader string, indices []int, existing []string) (Assignment, error) {
	leader = strings.TrimSpace(leader)
	if leader == "" {
		return Assignment{}, leaderRequired()
	}
	selected, err := r.selectIndices(indices)
	if err != nil {
		return Assignment{}, err
	}
	release, err := r.resolveNames(existing)
	if err != nil {
		return Assignment{}, err
	}
	release = slices.DeleteFunc(release, func(i int) bool {
		return slices.Contains(selected, i)
	})
	return r.assign(ctx, leader, selected, release)
}

// SkipConflicting assigns the camps at indices except those named in skip.
// It performs no overlap checks of its own.
func (r *Registry) SkipConflicting(ctx context.Context, leader string, indices []int, skip []string) (Assignment, error) {
	leader = strings.TrimSpace(leader)
	if leader == "" {
		return Assignment{}, leaderRequired()
	}
	selected, err := r.selectIndices(indices)
	if err != nil {
		return Assignment{}, err
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipped[strings.TrimSpace(name)] = struct{}{}
	}
	kept := selected[:0]
	for _, i := range selected {
		if _, ok := skipped[r.camps[i].Name]; !ok {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return Assignment{Leader: leader}, nil
	}
	return r.assign(ctx, leader, kept, nil)
}

// Unassign removes the leader from each named camp. Camps the leader does not
// supervise are left alone, so repeating the call changes nothing. Unknown
// camp names fail before anything changes.
func (r *Registry) Unassign(ctx context.Context, leader string, names []string) ([]string, error) {
	leader = strings.TrimSpace(leader)
	if leader == "" {
		return nil, leaderRequired()
	}
	positions, err := r.resolveNames(names)
	if err != nil {
		return nil, err
	}

	next := r.snapshot()
	var removed []string
	for _, i := range positions {
		if next[i].removeLeader(leader) {
			removed = append(removed, next[i].Name)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := r.commit(ctx, next); err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *Registry) assign(ctx context.Context, leader string, selected []int, release []int) (Assignment, error) {
	next := r.snapshot()
	result := Assignment{Leader: leader}
	for _, i := range release {
		if next[i].removeLeader(leader) {
			result.Released = append(result.Released, next[i].Name)
		}
	}
	for _, i := range selected {
		next[i].addLeader(leader)
		result.Selected = append(result.Selected, next[i].Name)
	}
	if err := r.commit(ctx, next); err != nil {
		return Assignment{}, err
	}
	return result, nil
}

// selectIndices validates indices and removes duplicates, keeping first
// occurrence order.
func (r *Registry) selectIndices(indices []int) ([]int, error) {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(r.camps) {
			value := strconv.Itoa(i)
			return nil, apperrors.WithMetadata(apperrors.CodeInvalidIndex, "camp index out of range: "+value, map[string]string{"Index": value})
		}
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out, nil
}

func (r *Registry) resolveNames(names []string) ([]int, error) {
	out := make([]int, 0, len(names))
	for _, name := range cleanNames(names) {
		i := r.indexOf(name)
		if i < 0 {
			return nil, campNotFound(name)
		}
		out = append(out, i)
	}
	return out, nil
}

func (r *Registry) campsAt(positions []int) []Camp {
	out := make([]Camp, 0, len(positions))
	for _, i := range positions {
		out = append(out, r.camps[i])
	}
	return out
}

// existingFor returns the camps the leader supervises outside selected.
func (r *Registry) existingFor(leader string, selected []int) []Camp {
	excluded := make(map[int]struct{}, len(selected))
	for _, i := range selected {
		excluded[i] = struct{}{}
	}
	var out []Camp
	for i, camp := range r.camps {
		if _, ok := excluded[i]; ok {
			continue
		}
		if camp.HasLeader(leader) {
			out = append(out, camp)
		}
	}
	return out
}

func leaderRequired() error {
	return apperrors.New(apperrors.CodeLeaderRequired, "scout leader is required")
}
