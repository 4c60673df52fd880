package camptrack

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
)

func (c *cli) campsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "camps",
		Short: "Create, edit, inspect and remove camps",
	}

	var create struct {
		kind, start, location string
		nights, food, pay     int
	}
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a camp",
		Long: `Create a camp. The end date follows from the type: day camps end
on the start date, overnight camps the day after, and multi-day camps
after --nights nights.`,
		Args: cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			kind, err := camps.ParseCampType(create.kind)
			if err != nil {
				return err
			}
			start, err := camps.ParseDate(create.start)
			if err != nil {
				return err
			}
			camp, err := c.svc.CreateCamp(cmd.Context(), camps.CreateInput{
				Name:      args[0],
				Location:  create.location,
				Type:      kind,
				StartDate: start,
				Nights:    create.nights,
				FoodStock: create.food,
				PayRate:   create.pay,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s camp %s (%s to %s)\n",
				camp.Type, camp.Name, camps.FormatDate(camp.StartDate), camps.FormatDate(camp.EndDate))
			return nil
		}),
	}
	createCmd.Flags().StringVar(&create.kind, "type", "day", "camp type: day, overnight or multi-day")
	createCmd.Flags().StringVar(&create.start, "start", "", "start date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&create.location, "location", "", "camp location")
	createCmd.Flags().IntVar(&create.nights, "nights", 0, "nights for multi-day camps")
	createCmd.Flags().IntVar(&create.food, "food", 0, "initial food stock")
	createCmd.Flags().IntVar(&create.pay, "pay-rate", 0, "leader pay rate")
	_ = createCmd.MarkFlagRequired("start")

	var edit struct {
		name, kind, start, location string
		nights, food, pay           int
	}
	editCmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit a camp's details",
		Long: `Edit a camp. Only the flags given change. The end date is derived
again from the type, start date and nights, and the edit is refused when
it would put a leader on two overlapping camps.`,
		Args: cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var input camps.UpdateInput
			if flags.Changed("name") {
				input.Name = &edit.name
			}
			if flags.Changed("location") {
				input.Location = &edit.location
			}
			if flags.Changed("type") {
				kind, err := camps.ParseCampType(edit.kind)
				if err != nil {
					return err
				}
				input.Type = &kind
			}
			if flags.Changed("start") {
				start, err := camps.ParseDate(edit.start)
				if err != nil {
					return err
				}
				input.StartDate = &start
			}
			if flags.Changed("nights") {
				input.Nights = &edit.nights
			}
			if flags.Changed("food") {
				input.FoodStock = &edit.food
			}
			if flags.Changed("pay-rate") {
				input.PayRate = &edit.pay
			}
			camp, err := c.svc.UpdateCamp(cmd.Context(), args[0], input)
			var conflict *camps.ConflictError
			if errors.As(err, &conflict) {
				writeConflicts(cmd.ErrOrStderr(), conflict)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s camp %s (%s to %s)\n",
				camp.Type, camp.Name, camps.FormatDate(camp.StartDate), camps.FormatDate(camp.EndDate))
			return nil
		}),
	}
	editCmd.Flags().StringVar(&edit.name, "name", "", "new camp name")
	editCmd.Flags().StringVar(&edit.location, "location", "", "new location")
	editCmd.Flags().StringVar(&edit.kind, "type", "", "new camp type: day, overnight or multi-day")
	editCmd.Flags().StringVar(&edit.start, "start", "", "new start date (YYYY-MM-DD)")
	editCmd.Flags().IntVar(&edit.nights, "nights", 0, "nights for multi-day camps")
	editCmd.Flags().IntVar(&edit.food, "food", 0, "food stock")
	editCmd.Flags().IntVar(&edit.pay, "pay-rate", 0, "leader pay rate")

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a camp and its leader assignments",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			if err := c.svc.DeleteCamp(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted camp %s\n", args[0])
			return nil
		}),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List camps with their selection index",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			writeCampTable(cmd.OutOrStdout(), c.svc.ListCamps(cmd.Context()))
			return nil
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a camp with its logbook",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			camp, err := c.svc.GetCamp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeCampDetail(cmd.OutOrStdout(), camp)
			return nil
		}),
	}

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize campers, leaders, food and engagement per camp",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CAMP\tCAMPERS\tLEADERS\tFOOD\tENGAGEMENT")
			for _, row := range c.svc.Dashboard(cmd.Context()) {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", row.Camp, row.Campers, row.Leaders, row.FoodStock, row.Engagement)
			}
			return w.Flush()
		}),
	}

	campersCmd := &cobra.Command{
		Use:   "campers CAMP CAMPER...",
		Short: "Add campers to a camp",
		Args:  cobra.MinimumNArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			added, err := c.svc.AssignCampers(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d campers to %s\n", len(added), args[0])
			return nil
		}),
	}

	cmd.AddCommand(createCmd, editCmd, deleteCmd, listCmd, showCmd, dashboardCmd, campersCmd)
	return cmd
}

func (c *cli) foodCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Manage food stock and pay rates",
	}

	setCmd := &cobra.Command{
		Use:   "set CAMP UNITS",
		Short: "Set the food stock of a camp",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			units, err := parseAmount("Food stock", args[1])
			if err != nil {
				return err
			}
			camp, err := c.svc.SetFoodStock(cmd.Context(), args[0], units)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s food stock: %d\n", camp.Name, camp.FoodStock)
			return nil
		}),
	}

	topUpCmd := &cobra.Command{
		Use:   "top-up CAMP UNITS",
		Short: "Add food units to a camp",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			units, err := parseAmount("Top-up amount", args[1])
			if err != nil {
				return err
			}
			camp, err := c.svc.TopUpFood(cmd.Context(), args[0], units)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s food stock: %d\n", camp.Name, camp.FoodStock)
			return nil
		}),
	}

	payRateCmd := &cobra.Command{
		Use:   "pay-rate CAMP AMOUNT",
		Short: "Set the leader pay rate of a camp",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			rate, err := parseAmount("Pay rate", args[1])
			if err != nil {
				return err
			}
			camp, err := c.svc.SetPayRate(cmd.Context(), args[0], rate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s pay rate: %d\n", camp.Name, camp.PayRate)
			return nil
		}),
	}

	shortageCmd := &cobra.Command{
		Use:   "shortage CAMP REQUIRED",
		Short: "Check whether a camp holds enough food",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			required, err := parseAmount("Required amount", args[1])
			if err != nil {
				return err
			}
			shortage, err := c.svc.CheckFoodShortage(cmd.Context(), args[0], required)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if shortage.Short {
				fmt.Fprintf(out, "%s is short: %d in stock, %d required\n", shortage.Camp, shortage.Stock, shortage.Required)
				return nil
			}
			fmt.Fprintf(out, "%s has enough food: %d in stock, %d required\n", shortage.Camp, shortage.Stock, shortage.Required)
			return nil
		}),
	}

	cmd.AddCommand(setCmd, topUpCmd, payRateCmd, shortageCmd)
	return cmd
}

func (c *cli) activitiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Record and remove camp activities",
	}

	var record struct {
		date, name, at, notes string
		food                  int
		campers               []string
	}
	recordCmd := &cobra.Command{
		Use:   "record CAMP",
		Short: "Record an activity on a camp day",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			date, err := camps.ParseDate(record.date)
			if err != nil {
				return err
			}
			activity, err := c.svc.RecordActivity(cmd.Context(), camps.RecordActivityInput{
				Camp:      args[0],
				Date:      date,
				Name:      record.name,
				Time:      record.at,
				Notes:     record.notes,
				FoodUnits: record.food,
				Campers:   record.campers,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded activity %s (%s)\n", activity.Name, activity.ID)
			return nil
		}),
	}
	recordCmd.Flags().StringVar(&record.date, "date", "", "camp day (YYYY-MM-DD)")
	recordCmd.Flags().StringVar(&record.name, "name", "", "activity name")
	recordCmd.Flags().StringVar(&record.at, "time", "", "time of day")
	recordCmd.Flags().StringVar(&record.notes, "notes", "", "free-form notes")
	recordCmd.Flags().IntVar(&record.food, "food", 0, "food units consumed")
	recordCmd.Flags().StringSliceVar(&record.campers, "campers", nil, "participating campers")
	_ = recordCmd.MarkFlagRequired("date")

	deleteCmd := &cobra.Command{
		Use:   "delete CAMP DATE ID",
		Short: "Delete an activity and credit back its food",
		Args:  cobra.ExactArgs(3),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			date, err := camps.ParseDate(args[1])
			if err != nil {
				return err
			}
			activity, err := c.svc.DeleteActivity(cmd.Context(), args[0], date, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted activity %s\n", activity.Name)
			return nil
		}),
	}

	cmd.AddCommand(recordCmd, deleteCmd)
	return cmd
}

func (c *cli) incidentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "Report and remove camp incidents",
	}

	var record struct {
		date, at, description string
		campers               []string
	}
	recordCmd := &cobra.Command{
		Use:   "record CAMP",
		Short: "Report an incident at a camp",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			date, err := camps.ParseDate(record.date)
			if err != nil {
				return err
			}
			incident, err := c.svc.RecordIncident(cmd.Context(), camps.RecordIncidentInput{
				Camp:        args[0],
				Date:        date,
				Time:        record.at,
				Description: record.description,
				Campers:     record.campers,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded incident %s\n", incident.ID)
			return nil
		}),
	}
	recordCmd.Flags().StringVar(&record.date, "date", "", "incident date (YYYY-MM-DD)")
	recordCmd.Flags().StringVar(&record.at, "time", "", "time of day")
	recordCmd.Flags().StringVar(&record.description, "description", "", "what happened")
	recordCmd.Flags().StringSliceVar(&record.campers, "campers", nil, "campers involved")
	_ = recordCmd.MarkFlagRequired("date")

	deleteCmd := &cobra.Command{
		Use:   "delete CAMP ID",
		Short: "Delete an incident",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			incident, err := c.svc.DeleteIncident(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted incident %s\n", incident.ID)
			return nil
		}),
	}

	cmd.AddCommand(recordCmd, deleteCmd)
	return cmd
}

// parseAmount reads a whole number argument. Sign checks stay with the
// registry so the same rules apply to every caller.
func parseAmount(field, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidAmount, field+" must be a whole number", map[string]string{"Field": field})
	}
	return value, nil
}

func writeCampTable(out io.Writer, list []camps.Camp) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tTYPE\tSTART\tEND\tLOCATION\tFOOD\tLEADERS")
	for i, camp := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i, camp.Name, camp.Type, camps.FormatDate(camp.StartDate), camps.FormatDate(camp.EndDate),
			camp.Location, camp.FoodStock, strings.Join(camp.ScoutLeaders, ","))
	}
	_ = w.Flush()
}

func writeCampDetail(out io.Writer, camp camps.Camp) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", camp.Name)
	fmt.Fprintf(w, "Type:\t%s\n", camp.Type)
	fmt.Fprintf(w, "Dates:\t%s to %s\n", camps.FormatDate(camp.StartDate), camps.FormatDate(camp.EndDate))
	fmt.Fprintf(w, "Location:\t%s\n", camp.Location)
	fmt.Fprintf(w, "Food stock:\t%d\n", camp.FoodStock)
	fmt.Fprintf(w, "Pay rate:\t%d\n", camp.PayRate)
	fmt.Fprintf(w, "Leaders:\t%s\n", strings.Join(camp.ScoutLeaders, ", "))
	fmt.Fprintf(w, "Campers:\t%s\n", strings.Join(camp.Campers, ", "))
	_ = w.Flush()

	days := make([]string, 0, len(camp.Activities))
	for day := range camp.Activities {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		fmt.Fprintf(out, "\n%s (food used: %d)\n", day, camp.DailyFoodUsage[day])
		for _, activity := range camp.Activities[day] {
			fmt.Fprintf(out, "  [%s] %s %s\n", activity.ID, activity.Time, activity.Name)
		}
	}
	if len(camp.Incidents) > 0 {
		fmt.Fprintln(out, "\nIncidents")
		for _, incident := range camp.Incidents {
			fmt.Fprintf(out, "  [%s] %s %s %s\n", incident.ID, incident.Date, incident.Time, incident.Description)
		}
	}
}
