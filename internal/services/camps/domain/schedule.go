package domain

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
)

// Overlaps reports whether the inclusive date ranges of a and b share at
// least one calendar day.
func Overlaps(a, b Camp) bool {
	return !a.StartDate.After(b.EndDate) && !b.StartDate.After(a.EndDate)
}

// ConflictPair names two camps whose dates overlap. For batch conflicts both
// are candidates; otherwise Existing is a camp the leader already supervises.
type ConflictPair struct {
	Candidate string
	Existing  string
}

// ConflictError reports a rejected leader assignment with every overlapping
// pair, so the caller can offer replace, skip or cancel.
type ConflictError struct {
	Leader      string
	WithinBatch bool
	Pairs       []ConflictPair
	err         *apperrors.Error
}

func newConflictError(leader string, withinBatch bool, pairs []ConflictPair) *ConflictError {
	rendered := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		rendered = append(rendered, pair.Candidate+" / "+pair.Existing)
	}
	code := apperrors.CodeScheduleConflict
	message := "leader " + leader + " already supervises overlapping camps"
	if withinBatch {
		code = apperrors.CodeInternalOverlap
		message = "selected camps overlap each other"
	}
	return &ConflictError{
		Leader:      leader,
		WithinBatch: withinBatch,
		Pairs:       pairs,
		err: apperrors.WithMetadata(code, message, map[string]string{
			"Leader": leader,
			"Pairs":  strings.Join(rendered, ", "),
		}),
	}
}

// Error implements error.
func (e *ConflictError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the coded domain error.
func (e *ConflictError) Unwrap() error {
	return e.err
}

// ExistingCamps returns the distinct existing camps named in the pairs.
func (e *ConflictError) ExistingCamps() []string {
	return distinct(e.Pairs, func(p ConflictPair) string { return p.Existing })
}

// CandidateCamps returns the distinct candidate camps named in the pairs.
func (e *ConflictError) CandidateCamps() []string {
	return distinct(e.Pairs, func(p ConflictPair) string { return p.Candidate })
}

func distinct(pairs []ConflictPair, pick func(ConflictPair) string) []string {
	seen := make(map[string]struct{}, len(pairs))
	var out []string
	for _, pair := range pairs {
		name := pick(pair)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// batchOverlaps returns every overlapping pair within camps.
func batchOverlaps(camps []Camp) []ConflictPair {
	var pairs []ConflictPair
	for i := 0; i < len(camps); i++ {
		for j := i + 1; j < len(camps); j++ {
			if Overlaps(camps[i], camps[j]) {
				pairs = append(pairs, ConflictPair{Candidate: camps[i].Name, Existing: camps[j].Name})
			}
		}
	}
	return pairs
}

// crossOverlaps returns every (candidate, existing) pair that overlaps.
func crossOverlaps(candidates []Camp, existing []Camp) []ConflictPair {
	var pairs []ConflictPair
	for _, candidate := range candidates {
		for _, current := range existing {
			if Overlaps(candidate, current) {
				pairs = append(pairs, ConflictPair{Candidate: candidate.Name, Existing: current.Name})
			}
		}
	}
	return pairs
}

// DayConflict is one day on which a leader is booked on several camps.
type DayConflict struct {
	Date   time.Time
	Leader string
	Camps  []string
}

// leaderDayConflicts walks every camp day and reports leaders booked on more
// than one camp that day, ordered by date then leader.
func leaderDayConflicts(camps []Camp) []DayConflict {
	type key struct {
		day    time.Time
		leader string
	}
	booked := map[key][]string{}
	for _, camp := range camps {
		for day := camp.StartDate; !day.After(camp.EndDate); day = day.AddDate(0, 0, 1) {
			for _, leader := range camp.ScoutLeaders {
				k := key{day: day, leader: leader}
				booked[k] = append(booked[k], camp.Name)
			}
		}
	}

	var conflicts []DayConflict
	for k, names := range booked {
		if len(names) < 2 {
			continue
		}
		sort.Strings(names)
		conflicts = append(conflicts, DayConflict{Date: k.day, Leader: k.leader, Camps: names})
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if !conflicts[i].Date.Equal(conflicts[j].Date) {
			return conflicts[i].Date.Before(conflicts[j].Date)
		}
		return conflicts[i].Leader < conflicts[j].Leader
	})
	return conflicts
}
