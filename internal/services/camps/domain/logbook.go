package domain

import (
	"context"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
)

// RecordActivityInput describes one activity log entry.
type RecordActivityInput struct {
	Camp      string
	Date      time.Time
	Name      string
	Time      string
	Notes     string
	FoodUnits int
	Campers   []string
}

// RecordActivity appends an activity to the camp day. Food units consumed by
// the activity are added to the day's usage and debited from the food stock.
func (r *Registry) RecordActivity(ctx context.Context, input RecordActivityInput) (Activity, error) {
	if r.indexOf(input.Camp) < 0 {
		return Activity{}, campNotFound(input.Camp)
	}
	name := strings.TrimSpace(input.Name)
	notes := strings.TrimSpace(input.Notes)
	if name == "" && notes == "" {
		return Activity{}, apperrors.New(apperrors.CodeActivityRequired, "activity name or notes are required")
	}
	if input.FoodUnits < 0 {
		return Activity{}, invalidAmount("Food units", input.FoodUnits)
	}
	entryID, err := r.newID()
	if err != nil {
		return Activity{}, err
	}

	entry := Activity{
		ID:        entryID,
		Name:      name,
		Time:      strings.TrimSpace(input.Time),
		Notes:     notes,
		FoodUnits: input.FoodUnits,
		Campers:   cleanNames(input.Campers),
	}
	_, err = r.update(ctx, input.Camp, func(c *Camp) error {
		day, err := campDay(*c, input.Date)
		if err != nil {
			return err
		}
		if entry.FoodUnits > c.FoodStock {
			return apperrors.WithMetadata(apperrors.CodeInsufficientFood, "not enough food in stock", map[string]string{
				"Camp":      c.Name,
				"Stock":     strconv.Itoa(c.FoodStock),
				"Requested": strconv.Itoa(entry.FoodUnits),
			})
		}
		c.Activities[day] = append(c.Activities[day], entry)
		if entry.FoodUnits > 0 {
			c.DailyFoodUsage[day] += entry.FoodUnits
			c.FoodStock -= entry.FoodUnits
		}
		return nil
	})
	if err != nil {
		return Activity{}, err
	}
	return entry, nil
}

// DeleteActivity removes one activity and reverses its food usage: the day's
// usage drops by the entry's units (clamped at zero, key removed at zero) and
// the units are credited back to the stock.
func (r *Registry) DeleteActivity(ctx context.Context, campName string, date time.Time, activityID string) (Activity, error) {
	var removed Activity
	_, err := r.update(ctx, campName, func(c *Camp) error {
		day := FormatDate(date)
		entries := c.Activities[day]
		at := -1
		for i, entry := range entries {
			if entry.ID == activityID {
				at = i
				break
			}
		}
		if at < 0 {
			return entryNotFound(c.Name)
		}
		removed = entries[at]
		entries = append(entries[:at], entries[at+1:]...)
		if len(entries) == 0 {
			delete(c.Activities, day)
		} else {
			c.Activities[day] = entries
		}
		if removed.FoodUnits > 0 {
			remaining := c.DailyFoodUsage[day] - removed.FoodUnits
			if remaining > 0 {
				c.DailyFoodUsage[day] = remaining
			} else {
				delete(c.DailyFoodUsage, day)
			}
			c.FoodStock += removed.FoodUnits
		}
		return nil
	})
	if err != nil {
		return Activity{}, err
	}
	return removed, nil
}

// RecordIncidentInput describes one incident report.
type RecordIncidentInput struct {
	Camp        string
	Date        time.Time
	Description string
	Campers     []string
	Time        string
}

// RecordIncident appends an incident to the camp.
func (r *Registry) RecordIncident(ctx context.Context, input RecordIncidentInput) (Incident, error) {
	description := strings.TrimSpace(input.Description)
	if r.indexOf(input.Camp) < 0 {
		return Incident{}, campNotFound(input.Camp)
	}
	if description == "" {
		return Incident{}, apperrors.New(apperrors.CodeEmptyDescription, "incident description is required")
	}
	entryID, err := r.newID()
	if err != nil {
		return Incident{}, err
	}

	var incident Incident
	_, err = r.update(ctx, input.Camp, func(c *Camp) error {
		day, err := campDay(*c, input.Date)
		if err != nil {
			return err
		}
		incident = Incident{
			ID:          entryID,
			Date:        day,
			Time:        strings.TrimSpace(input.Time),
			Description: description,
			Campers:     cleanNames(input.Campers),
		}
		c.Incidents = append(c.Incidents, incident)
		return nil
	})
	if err != nil {
		return Incident{}, err
	}
	return incident, nil
}

// DeleteIncident removes one incident from the camp.
func (r *Registry) DeleteIncident(ctx context.Context, campName string, incidentID string) (Incident, error) {
	var removed Incident
	_, err := r.update(ctx, campName, func(c *Camp) error {
		for i, incident := range c.Incidents {
			if incident.ID == incidentID {
				removed = incident
				c.Incidents = append(c.Incidents[:i], c.Incidents[i+1:]...)
				return nil
			}
		}
		return entryNotFound(c.Name)
	})
	if err != nil {
		return Incident{}, err
	}
	return removed, nil
}

// campDay checks that date falls within the camp and returns its log key.
func campDay(c Camp, date time.Time) (string, error) {
	if date.IsZero() {
		return "", apperrors.WithMetadata(apperrors.CodeCampInvalidDate, "date is required", map[string]string{"Date": ""})
	}
	day := FormatDate(date)
	if !c.Contains(date) {
		return "", apperrors.WithMetadata(apperrors.CodeDateOutsideCamp, day+" is outside camp "+c.Name, map[string]string{
			"Camp": c.Name,
			"Date": day,
		})
	}
	return day, nil
}

func entryNotFound(camp string) error {
	return apperrors.WithMetadata(apperrors.CodeEntryNotFound, "entry not found in camp "+camp, map[string]string{"Camp": camp})
}
