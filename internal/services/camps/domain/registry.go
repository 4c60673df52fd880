// Package domain holds the camp registry and the scheduling rules that guard
// leader assignments.
package domain

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	"github.com/louisbranch/camptrack/internal/platform/id"
)

// Store persists the full camp collection in registry order.
type Store interface {
	ListCamps(ctx context.Context) ([]Camp, error)
	// ReplaceCamps atomically replaces every stored camp with camps.
	ReplaceCamps(ctx context.Context, camps []Camp) error
}

// Registry owns the camp collection for one session. Every mutation is
// applied to a copy, written to the store in full, and only then published.
type Registry struct {
	store Store
	newID func() (string, error)
	camps []Camp
}

// NewRegistry constructs an empty registry. Call Load to read stored camps.
func NewRegistry(store Store, newID func() (string, error)) *Registry {
	if newID == nil {
		newID = id.NewID
	}
	return &Registry{store: store, newID: newID}
}

// Load replaces the in-memory collection with the stored one.
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return apperrors.Storage("camp store is not configured", nil)
	}
	camps, err := r.store.ListCamps(ctx)
	if err != nil {
		return apperrors.Storage("load camps", err)
	}
	loaded := make([]Camp, 0, len(camps))
	for _, camp := range camps {
		loaded = append(loaded, camp.Normalize())
	}
	r.camps = loaded
	return nil
}

// List returns copies of every camp in registry order. Scheduling operations
// address camps by their index in this list.
func (r *Registry) List() []Camp {
	out := make([]Camp, len(r.camps))
	for i, camp := range r.camps {
		out[i] = camp.Clone()
	}
	return out
}

// Get returns a copy of the named camp.
func (r *Registry) Get(name string) (Camp, error) {
	i := r.indexOf(name)
	if i < 0 {
		return Camp{}, campNotFound(name)
	}
	return r.camps[i].Clone(), nil
}

// CreateInput describes a new camp.
type CreateInput struct {
	Name      string
	Location  string
	Type      CampType
	StartDate time.Time
	// Nights only matters for multi-day camps; day and overnight camps imply
	// 0 and 1.
	Nights    int
	FoodStock int
	PayRate   int
}

// NewCamp builds and validates a camp from input without adding it to any
// registry. The end date is start date plus the nights implied by the type.
func NewCamp(input CreateInput) (Camp, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Camp{}, apperrors.New(apperrors.CodeCampNameRequired, "camp name is required")
	}
	nights, err := nightsFor(input.Type, input.Nights)
	if err != nil {
		return Camp{}, err
	}
	if input.StartDate.IsZero() {
		return Camp{}, apperrors.WithMetadata(apperrors.CodeCampInvalidDate, "start date is required", map[string]string{"Date": ""})
	}
	start := truncateDate(input.StartDate)
	camp := Camp{
		Name:      name,
		Location:  strings.TrimSpace(input.Location),
		Type:      input.Type,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, nights),
		FoodStock: input.FoodStock,
		PayRate:   input.PayRate,
	}.Normalize()
	if err := camp.Validate(); err != nil {
		return Camp{}, err
	}
	return camp, nil
}

// Create adds a camp built by NewCamp.
func (r *Registry) Create(ctx context.Context, input CreateInput) (Camp, error) {
	camp, err := NewCamp(input)
	if err != nil {
		return Camp{}, err
	}
	if r.indexOf(camp.Name) >= 0 {
		return Camp{}, apperrors.WithMetadata(apperrors.CodeCampExists, "camp already exists: "+camp.Name, map[string]string{"Camp": camp.Name})
	}

	next := r.snapshot()
	next = append(next, camp)
	if err := r.commit(ctx, next); err != nil {
		return Camp{}, err
	}
	return camp.Clone(), nil
}

// Delete removes the named camp. Leader assignments disappear with it since
// the leader-to-camp relation is only ever derived from camps.
func (r *Registry) Delete(ctx context.Context, name string) error {
	i := r.indexOf(name)
	if i < 0 {
		return campNotFound(name)
	}
	next := r.snapshot()
	next = append(next[:i], next[i+1:]...)
	return r.commit(ctx, next)
}

// SetFoodStock sets the absolute food stock.
func (r *Registry) SetFoodStock(ctx context.Context, name string, value int) (Camp, error) {
	if value < 0 {
		return Camp{}, invalidAmount("Food stock", value)
	}
	return r.update(ctx, name, func(c *Camp) error {
		c.FoodStock = value
		return nil
	})
}

// TopUpFood adds delta units to the food stock.
func (r *Registry) TopUpFood(ctx context.Context, name string, delta int) (Camp, error) {
	if delta < 0 {
		return Camp{}, invalidAmount("Top-up amount", delta)
	}
	return r.update(ctx, name, func(c *Camp) error {
		c.FoodStock += delta
		return nil
	})
}

// SetPayRate sets the daily pay rate.
func (r *Registry) SetPayRate(ctx context.Context, name string, value int) (Camp, error) {
	if value < 0 {
		return Camp{}, invalidAmount("Pay rate", value)
	}
	return r.update(ctx, name, func(c *Camp) error {
		c.PayRate = value
		return nil
	})
}

// UpdateInput lists the fields to change on a camp. Nil fields keep their
// current value.
type UpdateInput struct {
	Name      *string
	Location  *string
	Type      *CampType
	StartDate *time.Time
	// Nights only matters for multi-day camps. When nil the camp keeps its
	// current length.
	Nights    *int
	FoodStock *int
	PayRate   *int
}

// Update edits a camp's details. The end date is derived again from type and
// nights. A new name must be free, logged entries must still fall inside the
// new dates, and no current leader may end up on two overlapping camps; an
// overlap surfaces as *ConflictError.
func (r *Registry) Update(ctx context.Context, name string, input UpdateInput) (Camp, error) {
	i := r.indexOf(name)
	if i < 0 {
		return Camp{}, campNotFound(name)
	}
	current := r.camps[i]
	next := r.snapshot()
	camp := &next[i]

	if input.Name != nil {
		renamed := strings.TrimSpace(*input.Name)
		if renamed == "" {
			return Camp{}, apperrors.New(apperrors.CodeCampNameRequired, "camp name is required")
		}
		if j := r.indexOf(renamed); j >= 0 && j != i {
			return Camp{}, apperrors.WithMetadata(apperrors.CodeCampExists, "camp already exists: "+renamed, map[string]string{"Camp": renamed})
		}
		camp.Name = renamed
	}
	if input.Location != nil {
		camp.Location = strings.TrimSpace(*input.Location)
	}
	if input.Type != nil {
		camp.Type = *input.Type
	}
	if input.StartDate != nil {
		if input.StartDate.IsZero() {
			return Camp{}, apperrors.WithMetadata(apperrors.CodeCampInvalidDate, "start date is required", map[string]string{"Date": ""})
		}
		camp.StartDate = truncateDate(*input.StartDate)
	}
	requested := current.Nights()
	if input.Nights != nil {
		requested = *input.Nights
	}
	nights, err := nightsFor(camp.Type, requested)
	if err != nil {
		return Camp{}, err
	}
	camp.EndDate = camp.StartDate.AddDate(0, 0, nights)
	if input.FoodStock != nil {
		camp.FoodStock = *input.FoodStock
	}
	if input.PayRate != nil {
		camp.PayRate = *input.PayRate
	}
	if err := camp.Validate(); err != nil {
		return Camp{}, err
	}
	if err := logbookInRange(*camp); err != nil {
		return Camp{}, err
	}
	if !camp.StartDate.Equal(current.StartDate) || !camp.EndDate.Equal(current.EndDate) {
		for _, leader := range camp.ScoutLeaders {
			if pairs := crossOverlaps([]Camp{*camp}, r.existingFor(leader, []int{i})); len(pairs) > 0 {
				return Camp{}, newConflictError(leader, false, pairs)
			}
		}
	}

	if err := r.commit(ctx, next); err != nil {
		return Camp{}, err
	}
	return next[i].Clone(), nil
}

// logbookInRange checks that every dated log entry still falls inside the
// camp's dates.
func logbookInRange(c Camp) error {
	var days []string
	for day := range c.Activities {
		days = append(days, day)
	}
	for day := range c.DailyFoodUsage {
		days = append(days, day)
	}
	for _, incident := range c.Incidents {
		days = append(days, incident.Date)
	}
	sort.Strings(days)
	for _, value := range days {
		parsed, err := time.Parse(DateLayout, value)
		if err != nil {
			continue
		}
		if _, err := campDay(c, parsed); err != nil {
			return err
		}
	}
	return nil
}

// FoodShortage compares a camp's stock against a required amount.
type FoodShortage struct {
	Camp     string
	Stock    int
	Required int
	Short    bool
}

// CheckFoodShortage reports whether the camp holds less food than required.
func (r *Registry) CheckFoodShortage(name string, required int) (FoodShortage, error) {
	if required < 0 {
		return FoodShortage{}, invalidAmount("Required amount", required)
	}
	camp, err := r.Get(name)
	if err != nil {
		return FoodShortage{}, err
	}
	return FoodShortage{
		Camp:     camp.Name,
		Stock:    camp.FoodStock,
		Required: required,
		Short:    camp.FoodStock < required,
	}, nil
}

// AssignCampers adds campers to the named camp, skipping any already there or
// attending another camp on overlapping dates. It returns the added names.
func (r *Registry) AssignCampers(ctx context.Context, name string, campers []string) ([]string, error) {
	requested := cleanNames(campers)
	if len(requested) == 0 {
		return nil, apperrors.New(apperrors.CodeCamperRequired, "at least one camper is required")
	}
	i := r.indexOf(name)
	if i < 0 {
		return nil, campNotFound(name)
	}

	target := r.camps[i]
	busy := map[string]struct{}{}
	for j, other := range r.camps {
		if j == i || !Overlaps(target, other) {
			continue
		}
		for _, camper := range other.Campers {
			busy[camper] = struct{}{}
		}
	}

	var added []string
	for _, camper := range requested {
		if _, ok := busy[camper]; ok || target.HasCamper(camper) {
			continue
		}
		added = append(added, camper)
	}
	if len(added) == 0 {
		return nil, nil
	}

	next := r.snapshot()
	next[i].Campers = append(next[i].Campers, added...)
	if err := r.commit(ctx, next); err != nil {
		return nil, err
	}
	return added, nil
}

// Summary is one dashboard row.
type Summary struct {
	Camp       string
	Campers    int
	Leaders    int
	FoodStock  int
	Engagement int
}

// Summaries returns one row per camp. Engagement counts logged activities and
// incidents.
func (r *Registry) Summaries() []Summary {
	out := make([]Summary, 0, len(r.camps))
	for _, camp := range r.camps {
		engagement := len(camp.Incidents)
		for _, entries := range camp.Activities {
			engagement += len(entries)
		}
		out = append(out, Summary{
			Camp:       camp.Name,
			Campers:    len(camp.Campers),
			Leaders:    len(camp.ScoutLeaders),
			FoodStock:  camp.FoodStock,
			Engagement: engagement,
		})
	}
	return out
}

// nightsFor returns the nights implied by a camp type. Only multi-day camps
// take the requested count, bounded by MaxNights.
func nightsFor(kind CampType, requested int) (int, error) {
	switch kind {
	case CampTypeDay:
		return 0, nil
	case CampTypeOvernight:
		return 1, nil
	case CampTypeMultiDay:
		if requested < 2 || requested > MaxNights {
			return 0, invalidNights(requested)
		}
		return requested, nil
	default:
		return 0, invalidCampType(strconv.Itoa(int(kind)))
	}
}

// update applies fn to a copy of the named camp and commits the result.
func (r *Registry) update(ctx context.Context, name string, fn func(*Camp) error) (Camp, error) {
	i := r.indexOf(name)
	if i < 0 {
		return Camp{}, campNotFound(name)
	}
	next := r.snapshot()
	if err := fn(&next[i]); err != nil {
		return Camp{}, err
	}
	if err := r.commit(ctx, next); err != nil {
		return Camp{}, err
	}
	return next[i].Clone(), nil
}

func (r *Registry) commit(ctx context.Context, next []Camp) error {
	if r.store == nil {
		return apperrors.Storage("camp store is not configured", nil)
	}
	if err := r.store.ReplaceCamps(ctx, next); err != nil {
		return apperrors.Storage("save camps", err)
	}
	r.camps = next
	return nil
}

func (r *Registry) snapshot() []Camp {
	out := make([]Camp, len(r.camps), len(r.camps)+1)
	for i, camp := range r.camps {
		out[i] = camp.Clone()
	}
	return out
}

func (r *Registry) indexOf(name string) int {
	name = strings.TrimSpace(name)
	for i, camp := range r.camps {
		if camp.Name == name {
			return i
		}
	}
	return -1
}

// cleanNames trims, drops blanks and removes duplicates while keeping order.
func cleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
