package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
	"github.com/louisbranch/camptrack/internal/services/notifications/render"
)

// OverlapResult reports whether two camps share at least one date.
type OverlapResult struct {
	First    string
	Second   string
	Overlaps bool
}

// CheckOverlap compares the date ranges of two named camps.
func (s *Service) CheckOverlap(ctx context.Context, first, second string) (result OverlapResult, err error) {
	_, done := s.start(ctx, "CheckOverlap", attribute.String("first", first), attribute.String("second", second))
	defer done(&err)

	a, err := s.registry.Get(first)
	if err != nil {
		return OverlapResult{}, err
	}
	b, err := s.registry.Get(second)
	if err != nil {
		return OverlapResult{}, err
	}
	return OverlapResult{First: a.Name, Second: b.Name, Overlaps: camps.Overlaps(a, b)}, nil
}

// AssignLeader assigns a leader to the camps at indices. Overlaps are
// reported as *camps.ConflictError and change nothing.
func (s *Service) AssignLeader(ctx context.Context, leader string, indices []int) (result camps.Assignment, err error) {
	ctx, done := s.start(ctx, "AssignLeader", attribute.String("leader", leader), attribute.IntSlice("indices", indices))
	defer done(&err)

	result, err = s.registry.AssignLeader(ctx, leader, indices)
	if err != nil {
		return camps.Assignment{}, err
	}
	s.assigned(ctx, result)
	return result, nil
}

// ReplaceConflicting releases the leader from existing and assigns the camps
// at indices.
func (s *Service) ReplaceConflicting(ctx context.Context, leader string, indices []int, existing []string) (result camps.Assignment, err error) {
	ctx, done := s.start(ctx, "ReplaceConflicting", attribute.String("leader", leader), attribute.IntSlice("indices", indices))
	defer done(&err)

	result, err = s.registry.ReplaceConflicting(ctx, leader, indices, existing)
	if err != nil {
		return camps.Assignment{}, err
	}
	s.assigned(ctx, result)
	return result, nil
}

// SkipConflicting assigns the camps at indices except those in skip.
func (s *Service) SkipConflicting(ctx context.Context, leader string, indices []int, skip []string) (result camps.Assignment, err error) {
	ctx, done := s.start(ctx, "SkipConflicting", attribute.String("leader", leader), attribute.IntSlice("indices", indices))
	defer done(&err)

	result, err = s.registry.SkipConflicting(ctx, leader, indices, skip)
	if err != nil {
		return camps.Assignment{}, err
	}
	s.assigned(ctx, result)
	return result, nil
}

// UnassignLeader removes a leader from the named camps and returns the camps
// actually changed.
func (s *Service) UnassignLeader(ctx context.Context, leader string, names []string) (removed []string, err error) {
	ctx, done := s.start(ctx, "UnassignLeader", attribute.String("leader", leader))
	defer done(&err)

	removed, err = s.registry.Unassign(ctx, leader, names)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.unassigned(ctx, leader, removed)
	}
	return removed, nil
}

// CampsForLeader lists the camps a leader supervises.
func (s *Service) CampsForLeader(ctx context.Context, leader string) []camps.Camp {
	_, done := s.start(ctx, "CampsForLeader", attribute.String("leader", leader))
	defer done(nil)
	return s.registry.CampsForLeader(leader)
}

// LeaderDayConflicts lists days on which a leader is booked more than once.
func (s *Service) LeaderDayConflicts(ctx context.Context) []camps.DayConflict {
	_, done := s.start(ctx, "LeaderDayConflicts")
	defer done(nil)
	return s.registry.LeaderDayConflicts()
}

func (s *Service) assigned(ctx context.Context, result camps.Assignment) {
	if len(result.Released) > 0 {
		s.unassigned(ctx, result.Leader, result.Released)
	}
	if len(result.Selected) == 0 {
		return
	}
	s.logger.Info("leader assigned", zap.String("leader", result.Leader), zap.Strings("camps", result.Selected))
	s.notify(ctx, event{
		topic:    render.TopicLeaderAssigned,
		level:    notifications.LevelSuccess,
		category: CategoryAssignment,
		payload:  render.Payload{Leader: result.Leader, Camps: result.Selected},
	})
}

func (s *Service) unassigned(ctx context.Context, leader string, names []string) {
	s.logger.Info("leader unassigned", zap.String("leader", leader), zap.Strings("camps", names))
	s.notify(ctx, event{
		topic:    render.TopicLeaderUnassigned,
		level:    notifications.LevelInfo,
		category: CategoryAssignment,
		payload:  render.Payload{Leader: leader, Camps: names},
	})
}
