package camptrack

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
)

const (
	resolveNone    = ""
	resolveReplace = "replace"
	resolveSkip    = "skip"
)

func (c *cli) leadersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaders",
		Short: "Assign scout leaders and inspect their schedules",
	}

	var resolve string
	assignCmd := &cobra.Command{
		Use:   "assign LEADER INDEX...",
		Short: "Assign a leader to camps by list index",
		Long: `Assign a leader to the camps at the given indices of "camps list".

When the selection overlaps camps the leader already supervises nothing
changes and the conflicts are printed. Re-run with --resolve replace to
drop the overlapping existing camps, or --resolve skip to leave the
overlapping selected camps out.`,
		Args: cobra.MinimumNArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			switch resolve {
			case resolveNone, resolveReplace, resolveSkip:
			default:
				return fmt.Errorf("unknown --resolve %q: use replace or skip", resolve)
			}
			indices, err := parseIndices(args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			leader := args[0]
			assignment, err := c.svc.AssignLeader(ctx, leader, indices)
			var conflict *camps.ConflictError
			if errors.As(err, &conflict) && !conflict.WithinBatch {
				switch resolve {
				case resolveReplace:
					assignment, err = c.svc.ReplaceConflicting(ctx, leader, indices, conflict.ExistingCamps())
				case resolveSkip:
					assignment, err = c.svc.SkipConflicting(ctx, leader, indices, conflict.CandidateCamps())
				}
			}
			if errors.As(err, &conflict) {
				writeConflicts(cmd.ErrOrStderr(), conflict)
				return err
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(assignment.Selected) == 0 {
				fmt.Fprintf(out, "%s was not assigned to any camp\n", assignment.Leader)
			} else {
				fmt.Fprintf(out, "%s assigned to %s\n", assignment.Leader, strings.Join(assignment.Selected, ", "))
			}
			if len(assignment.Released) > 0 {
				fmt.Fprintf(out, "%s released from %s\n", assignment.Leader, strings.Join(assignment.Released, ", "))
			}
			return nil
		}),
	}
	assignCmd.Flags().StringVar(&resolve, "resolve", "", "resolve conflicts with existing camps: replace or skip")

	unassignCmd := &cobra.Command{
		Use:   "unassign LEADER CAMP...",
		Short: "Remove a leader from camps",
		Args:  cobra.MinimumNArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			removed, err := c.svc.UnassignLeader(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not assigned to any of those camps\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed from %s\n", args[0], strings.Join(removed, ", "))
			return nil
		}),
	}

	campsCmd := &cobra.Command{
		Use:   "camps LEADER",
		Short: "List the camps a leader supervises",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			writeCampTable(cmd.OutOrStdout(), c.svc.CampsForLeader(cmd.Context(), args[0]))
			return nil
		}),
	}

	conflictsCmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List days on which a leader is booked at more than one camp",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			conflicts := c.svc.LeaderDayConflicts(cmd.Context())
			if len(conflicts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No leader is double-booked")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tLEADER\tCAMPS")
			for _, conflict := range conflicts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", camps.FormatDate(conflict.Date), conflict.Leader, strings.Join(conflict.Camps, ", "))
			}
			return w.Flush()
		}),
	}

	overlapCmd := &cobra.Command{
		Use:   "overlap CAMP CAMP",
		Short: "Check whether two camps share a date",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			result, err := c.svc.CheckOverlap(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			verb := "do not overlap"
			if result.Overlaps {
				verb = "overlap"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s and %s %s\n", result.First, result.Second, verb)
			return nil
		}),
	}

	cmd.AddCommand(assignCmd, unassignCmd, campsCmd, conflictsCmd, overlapCmd)
	return cmd
}

func parseIndices(args []string) ([]int, error) {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		index, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, apperrors.WithMetadata(apperrors.CodeInvalidIndex, "camp index is not a number: "+arg, map[string]string{"Index": arg})
		}
		indices = append(indices, index)
	}
	return indices, nil
}

func writeConflicts(out io.Writer, conflict *camps.ConflictError) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := "SELECTED\tEXISTING"
	if conflict.WithinBatch {
		header = "SELECTED\tSELECTED"
	}
	fmt.Fprintln(w, header)
	for _, pair := range conflict.Pairs {
		fmt.Fprintf(w, "%s\t%s\n", pair.Candidate, pair.Existing)
	}
	_ = w.Flush()
}
