package camptrack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	"github.com/louisbranch/camptrack/internal/services/camps/app"
	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
)

// Fixture is a YAML description of camps to load into an empty or existing
// registry.
type Fixture struct {
	Camps []CampFixture `yaml:"camps"`
}

// CampFixture describes one camp with its people and logbook.
type CampFixture struct {
	Name       string            `yaml:"name"`
	Location   string            `yaml:"location,omitempty"`
	Type       string            `yaml:"type"`
	Start      string            `yaml:"start"`
	Nights     int               `yaml:"nights,omitempty"`
	FoodStock  int               `yaml:"food_stock,omitempty"`
	PayRate    int               `yaml:"pay_rate,omitempty"`
	Leaders    []string          `yaml:"leaders,omitempty"`
	Campers    []string          `yaml:"campers,omitempty"`
	Activities []ActivityFixture `yaml:"activities,omitempty"`
}

// ActivityFixture describes one logged activity.
type ActivityFixture struct {
	Date      string   `yaml:"date"`
	Name      string   `yaml:"name"`
	Time      string   `yaml:"time,omitempty"`
	Notes     string   `yaml:"notes,omitempty"`
	FoodUnits int      `yaml:"food_units,omitempty"`
	Campers   []string `yaml:"campers,omitempty"`
}

// LoadFixture decodes a fixture, rejecting unknown keys.
func LoadFixture(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fixture Fixture
	if err := dec.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, errors.New("seed file is empty")
		}
		return Fixture{}, fmt.Errorf("decode seed file: %w", err)
	}
	return fixture, nil
}

// SeedReport counts what a fixture changed.
type SeedReport struct {
	Created    int
	Skipped    int
	Leaders    int
	Campers    int
	Activities int
	// Conflicts lists leader assignments left out because of overlaps.
	Conflicts []string
}

// ApplyFixture creates missing camps, then assigns leaders and campers and
// records activities. Camps that already exist are left as they are, so a
// fixture can be applied twice. The whole fixture is checked before the first
// change; a failure after that reports what was already applied.
func ApplyFixture(ctx context.Context, svc *app.Service, fixture Fixture) (SeedReport, error) {
	plans, err := fixture.plan()
	if err != nil {
		return SeedReport{}, err
	}

	var report SeedReport
	created := map[string]bool{}
	for _, p := range plans {
		if _, err := svc.CreateCamp(ctx, p.input); err != nil {
			if apperrors.HasCode(err, apperrors.CodeCampExists) {
				report.Skipped++
				continue
			}
			return report, partiallyApplied(report, fmt.Errorf("camp %q: %w", p.camp.Name, err))
		}
		created[p.camp.Name] = true
		report.Created++
	}

	index := map[string]int{}
	for i, camp := range svc.ListCamps(ctx) {
		index[camp.Name] = i
	}
	for _, p := range plans {
		name := p.camp.Name
		if !created[name] {
			continue
		}
		for _, leader := range p.entry.Leaders {
			_, err := svc.AssignLeader(ctx, leader, []int{index[name]})
			var conflict *camps.ConflictError
			if errors.As(err, &conflict) {
				report.Conflicts = append(report.Conflicts, leader+" at "+name)
				continue
			}
			if err != nil {
				return report, partiallyApplied(report, fmt.Errorf("assign %s to %q: %w", leader, name, err))
			}
			report.Leaders++
		}
		if len(p.entry.Campers) > 0 {
			added, err := svc.AssignCampers(ctx, name, p.entry.Campers)
			if err != nil {
				return report, partiallyApplied(report, fmt.Errorf("campers for %q: %w", name, err))
			}
			report.Campers += len(added)
		}
		for i, activity := range p.entry.Activities {
			if _, err := svc.RecordActivity(ctx, camps.RecordActivityInput{
				Camp:      name,
				Date:      p.dates[i],
				Name:      activity.Name,
				Time:      activity.Time,
				Notes:     activity.Notes,
				FoodUnits: activity.FoodUnits,
				Campers:   activity.Campers,
			}); err != nil {
				return report, partiallyApplied(report, fmt.Errorf("activity for %q: %w", name, err))
			}
			report.Activities++
		}
	}
	return report, nil
}

// campPlan is one fixture camp checked against the domain rules.
type campPlan struct {
	entry CampFixture
	input camps.CreateInput
	camp  camps.Camp
	// dates holds the parsed activity dates in fixture order.
	dates []time.Time
}

// plan checks every camp and activity in the fixture without touching the
// registry.
func (f Fixture) plan() ([]campPlan, error) {
	plans := make([]campPlan, 0, len(f.Camps))
	seen := map[string]bool{}
	for _, entry := range f.Camps {
		input, err := entry.createInput()
		if err != nil {
			return nil, fmt.Errorf("camp %q: %w", entry.Name, err)
		}
		camp, err := camps.NewCamp(input)
		if err != nil {
			return nil, fmt.Errorf("camp %q: %w", entry.Name, err)
		}
		if seen[camp.Name] {
			return nil, apperrors.WithMetadata(apperrors.CodeCampExists, "camp listed twice in seed file: "+camp.Name, map[string]string{"Camp": camp.Name})
		}
		seen[camp.Name] = true

		p := campPlan{entry: entry, input: input, camp: camp}
		food := 0
		for _, activity := range entry.Activities {
			date, err := camps.ParseDate(activity.Date)
			if err != nil {
				return nil, fmt.Errorf("activity for %q: %w", camp.Name, err)
			}
			if !camp.Contains(date) {
				value := camps.FormatDate(date)
				return nil, apperrors.WithMetadata(apperrors.CodeDateOutsideCamp, value+" is outside camp "+camp.Name, map[string]string{
					"Camp": camp.Name,
					"Date": value,
				})
			}
			if strings.TrimSpace(activity.Name) == "" && strings.TrimSpace(activity.Notes) == "" {
				return nil, fmt.Errorf("activity for %q: %w", camp.Name, apperrors.New(apperrors.CodeActivityRequired, "activity name or notes are required"))
			}
			if activity.FoodUnits < 0 {
				return nil, apperrors.WithMetadata(apperrors.CodeInvalidAmount, "food units must be non-negative", map[string]string{"Field": "Food units"})
			}
			food += activity.FoodUnits
			p.dates = append(p.dates, date)
		}
		if food > camp.FoodStock {
			return nil, apperrors.WithMetadata(apperrors.CodeInsufficientFood, "activities use more food than the camp stock", map[string]string{
				"Camp":      camp.Name,
				"Stock":     strconv.Itoa(camp.FoodStock),
				"Requested": strconv.Itoa(food),
			})
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func partiallyApplied(report SeedReport, err error) error {
	return fmt.Errorf("seed partially applied (%d camps created, %d leader assignments, %d campers, %d activities): %w",
		report.Created, report.Leaders, report.Campers, report.Activities, err)
}

func (f CampFixture) createInput() (camps.CreateInput, error) {
	kind, err := camps.ParseCampType(f.Type)
	if err != nil {
		return camps.CreateInput{}, err
	}
	start, err := camps.ParseDate(f.Start)
	if err != nil {
		return camps.CreateInput{}, err
	}
	return camps.CreateInput{
		Name:      f.Name,
		Location:  f.Location,
		Type:      kind,
		StartDate: start,
		Nights:    f.Nights,
		FoodStock: f.FoodStock,
		PayRate:   f.PayRate,
	}, nil
}

func (c *cli) seedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load camps from a YAML fixture",
		Long: `Load camps from a YAML fixture such as:

  camps:
    - name: Alpha
      type: overnight
      start: 2025-07-01
      food_stock: 150
      leaders: [lee]
      campers: [cam]

Existing camps are skipped.`,
		Args: cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			fixture, err := LoadFixture(f)
			if err != nil {
				return err
			}
			report, err := ApplyFixture(cmd.Context(), c.svc, fixture)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded %d camps (%d skipped), %d leader assignments, %d campers, %d activities\n",
				report.Created, report.Skipped, report.Leaders, report.Campers, report.Activities)
			if len(report.Conflicts) > 0 {
				fmt.Fprintf(out, "Left out overlapping assignments: %s\n", strings.Join(report.Conflicts, "; "))
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "camps.yaml", "fixture path")
	return cmd
}
