package domain

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
)

// DateLayout is the calendar date form used for camp dates and log keys.
const DateLayout = "2006-01-02"

// MaxNights bounds how long a multi-day camp may run.
const MaxNights = 365

const secondsPerDay = 24 * 60 * 60

// CampType identifies how many nights a camp lasts. The numeric values match
// the identifiers stored by earlier CampTrack data files.
type CampType int

const (
	// CampTypeUnspecified is the zero value and never valid.
	CampTypeUnspecified CampType = iota
	// CampTypeDay camps start and end on the same date.
	CampTypeDay
	// CampTypeOvernight camps last exactly one night.
	CampTypeOvernight
	// CampTypeMultiDay camps last two or more nights.
	CampTypeMultiDay
)

// String returns the display label for the camp type.
func (t CampType) String() string {
	switch t {
	case CampTypeDay:
		return "Day"
	case CampTypeOvernight:
		return "Overnight"
	case CampTypeMultiDay:
		return "Multi-day"
	default:
		return "Unspecified"
	}
}

// Valid reports whether t is one of the three known camp types.
func (t CampType) Valid() bool {
	return t >= CampTypeDay && t <= CampTypeMultiDay
}

// ParseCampType accepts a label ("day", "overnight", "multi-day") or the
// stored numeric identifier.
func ParseCampType(raw string) (CampType, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "day", "day camp":
		return CampTypeDay, nil
	case "overnight":
		return CampTypeOvernight, nil
	case "multi-day", "multiday", "multi_day", "multiple days":
		return CampTypeMultiDay, nil
	}
	if n, err := strconv.Atoi(value); err == nil && CampType(n).Valid() {
		return CampType(n), nil
	}
	return CampTypeUnspecified, invalidCampType(raw)
}

// Activity is one planned or recorded activity on a camp day.
type Activity struct {
	ID        string   `json:"id"`
	Name      string   `json:"activity"`
	Time      string   `json:"time,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	FoodUnits int      `json:"food_units,omitempty"`
	Campers   []string `json:"campers,omitempty"`
}

// Incident is one reported incident at a camp.
type Incident struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	Time        string   `json:"time,omitempty"`
	Description string   `json:"description"`
	Campers     []string `json:"campers,omitempty"`
}

// Camp is a scheduled scouting event.
type Camp struct {
	Name      string
	Location  string
	Type      CampType
	StartDate time.Time
	EndDate   time.Time
	FoodStock int
	PayRate   int

	// ScoutLeaders is kept sorted and free of duplicates.
	ScoutLeaders []string
	Campers      []string

	// Activities and DailyFoodUsage are keyed by DateLayout dates.
	Activities     map[string][]Activity
	Incidents      []Incident
	DailyFoodUsage map[string]int
}

// Nights returns the number of calendar days between start and end dates.
func (c Camp) Nights() int {
	start := truncateDate(c.StartDate).Unix()
	end := truncateDate(c.EndDate).Unix()
	return int((end - start) / secondsPerDay)
}

// Contains reports whether day falls within the camp's inclusive date range.
func (c Camp) Contains(day time.Time) bool {
	day = truncateDate(day)
	return !day.Before(c.StartDate) && !day.After(c.EndDate)
}

// HasLeader reports whether leader supervises the camp.
func (c Camp) HasLeader(leader string) bool {
	_, found := slices.BinarySearch(c.ScoutLeaders, leader)
	return found
}

// HasCamper reports whether camper attends the camp.
func (c Camp) HasCamper(camper string) bool {
	return slices.Contains(c.Campers, camper)
}

// Validate checks the date-range invariants of a camp.
func (c Camp) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.New(apperrors.CodeCampNameRequired, "camp name is required")
	}
	if !c.Type.Valid() {
		return invalidCampType(strconv.Itoa(int(c.Type)))
	}
	if c.EndDate.Before(c.StartDate) {
		return apperrors.WithMetadata(apperrors.CodeCampInvalidRange, "camp ends before it starts", map[string]string{"Camp": c.Name})
	}
	nights := c.Nights()
	switch c.Type {
	case CampTypeDay:
		if nights != 0 {
			return invalidNights(nights)
		}
	case CampTypeOvernight:
		if nights != 1 {
			return invalidNights(nights)
		}
	case CampTypeMultiDay:
		if nights < 2 || nights > MaxNights {
			return invalidNights(nights)
		}
	}
	if c.FoodStock < 0 {
		return invalidAmount("Food stock", c.FoodStock)
	}
	if c.PayRate < 0 {
		return invalidAmount("Pay rate", c.PayRate)
	}
	return nil
}

func (c *Camp) addLeader(leader string) bool {
	i, found := slices.BinarySearch(c.ScoutLeaders, leader)
	if found {
		return false
	}
	c.ScoutLeaders = slices.Insert(c.ScoutLeaders, i, leader)
	return true
}

func (c *Camp) removeLeader(leader string) bool {
	i, found := slices.BinarySearch(c.ScoutLeaders, leader)
	if !found {
		return false
	}
	c.ScoutLeaders = slices.Delete(c.ScoutLeaders, i, i+1)
	return true
}

// Clone returns a deep copy of the camp.
func (c Camp) Clone() Camp {
	out := c
	out.ScoutLeaders = slices.Clone(c.ScoutLeaders)
	out.Campers = slices.Clone(c.Campers)
	out.Incidents = make([]Incident, len(c.Incidents))
	for i, incident := range c.Incidents {
		incident.Campers = slices.Clone(incident.Campers)
		out.Incidents[i] = incident
	}
	out.Activities = make(map[string][]Activity, len(c.Activities))
	for day, entries := range c.Activities {
		copied := make([]Activity, len(entries))
		for i, entry := range entries {
			entry.Campers = slices.Clone(entry.Campers)
			copied[i] = entry
		}
		out.Activities[day] = copied
	}
	out.DailyFoodUsage = make(map[string]int, len(c.DailyFoodUsage))
	for day, units := range c.DailyFoodUsage {
		out.DailyFoodUsage[day] = units
	}
	return out
}

// Normalize sorts and de-duplicates the leader set and fills nil maps. Stores
// call it on loaded records.
func (c Camp) Normalize() Camp {
	leaders := make([]string, 0, len(c.ScoutLeaders))
	for _, leader := range c.ScoutLeaders {
		if leader = strings.TrimSpace(leader); leader != "" {
			leaders = append(leaders, leader)
		}
	}
	sort.Strings(leaders)
	c.ScoutLeaders = slices.Compact(leaders)
	if c.Activities == nil {
		c.Activities = map[string][]Activity{}
	}
	if c.DailyFoodUsage == nil {
		c.DailyFoodUsage = map[string]int{}
	}
	c.StartDate = truncateDate(c.StartDate)
	c.EndDate = truncateDate(c.EndDate)
	return c
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	day, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.WithMetadata(apperrors.CodeCampInvalidDate, "invalid date: "+value, map[string]string{"Date": value})
	}
	return day, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(day time.Time) string {
	return day.Format(DateLayout)
}

func truncateDate(value time.Time) time.Time {
	y, m, d := value.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func invalidCampType(raw string) error {
	return apperrors.WithMetadata(apperrors.CodeCampInvalidType, "invalid camp type: "+raw, map[string]string{"Type": raw})
}

func invalidNights(nights int) error {
	value := strconv.Itoa(nights)
	return apperrors.WithMetadata(apperrors.CodeCampInvalidNights, "invalid nights: "+value, map[string]string{"Nights": value})
}

func invalidAmount(field string, value int) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidAmount, field+" must be non-negative, got "+strconv.Itoa(value), map[string]string{"Field": field})
}

func campNotFound(name string) error {
	return apperrors.WithMetadata(apperrors.CodeCampNotFound, "camp not found: "+name, map[string]string{"Camp": name})
}
