package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/camptrack/internal/services/camps/app"
	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
)

// SchedulingService is the leader scheduling half of the CampTrack service.
type SchedulingService interface {
	CheckOverlap(ctx context.Context, first, second string) (app.OverlapResult, error)
	AssignLeader(ctx context.Context, leader string, indices []int) (camps.Assignment, error)
	ReplaceConflicting(ctx context.Context, leader string, indices []int, existing []string) (camps.Assignment, error)
	SkipConflicting(ctx context.Context, leader string, indices []int, skip []string) (camps.Assignment, error)
	UnassignLeader(ctx context.Context, leader string, names []string) ([]string, error)
	CampsForLeader(ctx context.Context, leader string) []camps.Camp
	LeaderDayConflicts(ctx context.Context) []camps.DayConflict
}

// OverlapInput names two camps to compare.
type OverlapInput struct {
	First  string `json:"first" jsonschema:"first camp name"`
	Second string `json:"second" jsonschema:"second camp name"`
}

// OverlapResult reports whether two camps share a date.
type OverlapResult struct {
	First    string `json:"first"`
	Second   string `json:"second"`
	Overlaps bool   `json:"overlaps" jsonschema:"true when the inclusive date ranges share a day"`
}

// LeaderAssignInput assigns a leader to camps by registry index.
type LeaderAssignInput struct {
	Leader  string `json:"leader" jsonschema:"leader identifier"`
	Indices []int  `json:"indices" jsonschema:"zero-based camp indices from camp_list"`
	// Resolve picks how existing conflicts are handled: empty rejects them,
	// "replace" releases the leader from the conflicting camps and "skip"
	// leaves out the conflicting candidates.
	Resolve string `json:"resolve,omitempty" jsonschema:"conflict resolution: empty, replace or skip"`
}

// ConflictEntry is one overlapping pair.
type ConflictEntry struct {
	Candidate string `json:"candidate" jsonschema:"requested camp"`
	Existing  string `json:"existing" jsonschema:"camp already supervised, or another requested camp"`
}

// LeaderAssignResult reports the committed assignment or the conflicts that
// prevented it.
type LeaderAssignResult struct {
	Leader      string          `json:"leader"`
	Assigned    bool            `json:"assigned" jsonschema:"false when conflicts blocked the assignment"`
	Selected    []string        `json:"selected" jsonschema:"camps the leader now supervises from the request"`
	Released    []string        `json:"released,omitempty" jsonschema:"camps the leader was released from"`
	WithinBatch bool            `json:"within_batch,omitempty" jsonschema:"true when the requested camps overlap each other"`
	Conflicts   []ConflictEntry `json:"conflicts,omitempty" jsonschema:"overlapping pairs"`
}

// LeaderUnassignInput removes a leader from named camps.
type LeaderUnassignInput struct {
	Leader string   `json:"leader" jsonschema:"leader identifier"`
	Camps  []string `json:"camps" jsonschema:"camp names"`
}

// LeaderUnassignResult lists the camps actually changed.
type LeaderUnassignResult struct {
	Leader  string   `json:"leader"`
	Removed []string `json:"removed"`
}

// LeaderInput names one leader.
type LeaderInput struct {
	Leader string `json:"leader" jsonschema:"leader identifier"`
}

// LeaderCampsResult lists the camps a leader supervises.
type LeaderCampsResult struct {
	Leader string       `json:"leader"`
	Camps  []CampResult `json:"camps"`
}

// DayConflictEntry is one day on which a leader is double-booked.
type DayConflictEntry struct {
	Date   string   `json:"date"`
	Leader string   `json:"leader"`
	Camps  []string `json:"camps"`
}

// DayConflictsResult lists double bookings.
type DayConflictsResult struct {
	Conflicts []DayConflictEntry `json:"conflicts"`
}

// OverlapCheckTool defines the MCP tool schema for overlap checks.
func OverlapCheckTool() *mcp.Tool {
	return &mcp.Tool{Name: "overlap_check", Description: "Reports whether two camps share at least one date"}
}

// LeaderAssignTool defines the MCP tool schema for leader assignment.
func LeaderAssignTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "leader_assign",
		Description: "Assigns a leader to camps by index; overlapping camps are reported and nothing changes unless resolve is replace or skip",
	}
}

// LeaderUnassignTool defines the MCP tool schema for leader removal.
func LeaderUnassignTool() *mcp.Tool {
	return &mcp.Tool{Name: "leader_unassign", Description: "Removes a leader from named camps"}
}

// LeaderCampsTool defines the MCP tool schema for listing a leader's camps.
func LeaderCampsTool() *mcp.Tool {
	return &mcp.Tool{Name: "leader_camps", Description: "Lists the camps a leader supervises"}
}

// DayConflictsTool defines the MCP tool schema for double-booking reports.
func DayConflictsTool() *mcp.Tool {
	return &mcp.Tool{Name: "leader_day_conflicts", Description: "Lists days on which a leader is booked on more than one camp"}
}

// OverlapCheckHandler compares two camps.
func OverlapCheckHandler(svc SchedulingService) mcp.ToolHandlerFor[OverlapInput, OverlapResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input OverlapInput) (*mcp.CallToolResult, OverlapResult, error) {
		check, err := svc.CheckOverlap(ctx, input.First, input.Second)
		if err != nil {
			return nil, OverlapResult{}, err
		}
		return nil, OverlapResult{First: check.First, Second: check.Second, Overlaps: check.Overlaps}, nil
	}
}

// LeaderAssignHandler assigns a leader. A first attempt that hits conflicts
// returns them as data so the caller can retry with a resolution.
func LeaderAssignHandler(svc SchedulingService) mcp.ToolHandlerFor[LeaderAssignInput, LeaderAssignResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LeaderAssignInput) (*mcp.CallToolResult, LeaderAssignResult, error) {
		assignment, err := svc.AssignLeader(ctx, input.Leader, input.Indices)
		var conflict *camps.ConflictError
		if errors.As(err, &conflict) && !conflict.WithinBatch {
			switch input.Resolve {
			case "replace":
				assignment, err = svc.ReplaceConflicting(ctx, input.Leader, input.Indices, conflict.ExistingCamps())
			case "skip":
				assignment, err = svc.SkipConflicting(ctx, input.Leader, input.Indices, conflict.CandidateCamps())
			}
		}
		if errors.As(err, &conflict) {
			return nil, conflictResult(conflict), nil
		}
		if err != nil {
			return nil, LeaderAssignResult{}, fmt.Errorf("leader assign failed: %w", err)
		}
		return nil, LeaderAssignResult{
			Leader:   assignment.Leader,
			Assigned: true,
			Selected: nonNil(assignment.Selected),
			Released: assignment.Released,
		}, nil
	}
}

func conflictResult(conflict *camps.ConflictError) LeaderAssignResult {
	result := LeaderAssignResult{
		Leader:      conflict.Leader,
		Selected:    []string{},
		WithinBatch: conflict.WithinBatch,
	}
	for _, pair := range conflict.Pairs {
		result.Conflicts = append(result.Conflicts, ConflictEntry(pair))
	}
	return result
}

// LeaderUnassignHandler removes a leader from camps.
func LeaderUnassignHandler(svc SchedulingService) mcp.ToolHandlerFor[LeaderUnassignInput, LeaderUnassignResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LeaderUnassignInput) (*mcp.CallToolResult, LeaderUnassignResult, error) {
		removed, err := svc.UnassignLeader(ctx, input.Leader, input.Camps)
		if err != nil {
			return nil, LeaderUnassignResult{}, fmt.Errorf("leader unassign failed: %w", err)
		}
		return nil, LeaderUnassignResult{Leader: input.Leader, Removed: nonNil(removed)}, nil
	}
}

// LeaderCampsHandler lists a leader's camps.
func LeaderCampsHandler(svc SchedulingService) mcp.ToolHandlerFor[LeaderInput, LeaderCampsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LeaderInput) (*mcp.CallToolResult, LeaderCampsResult, error) {
		list := svc.CampsForLeader(ctx, input.Leader)
		result := LeaderCampsResult{Leader: input.Leader, Camps: make([]CampResult, 0, len(list))}
		for _, camp := range list {
			result.Camps = append(result.Camps, campResult(camp))
		}
		return nil, result, nil
	}
}

// DayConflictsHandler lists double bookings.
func DayConflictsHandler(svc SchedulingService) mcp.ToolHandlerFor[EmptyInput, DayConflictsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, DayConflictsResult, error) {
		conflicts := svc.LeaderDayConflicts(ctx)
		result := DayConflictsResult{Conflicts: make([]DayConflictEntry, 0, len(conflicts))}
		for _, conflict := range conflicts {
			result.Conflicts = append(result.Conflicts, DayConflictEntry{
				Date:   camps.FormatDate(conflict.Date),
				Leader: conflict.Leader,
				Camps:  conflict.Camps,
			})
		}
		return nil, result, nil
	}
}
