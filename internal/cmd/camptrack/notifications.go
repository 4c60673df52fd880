package camptrack

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	"github.com/louisbranch/camptrack/internal/services/camps/app"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
)

func (c *cli) notificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "Read and manage the notification ledger",
	}

	var filterStr string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications visible to the operator",
		Long: `List notifications visible to the operator, newest first.

--filter takes an AIP-160 expression over level, category, message,
camp, topic and read, for example:

  camptrack notifications list --filter 'level = "ALERT" AND NOT read'`,
		Args: cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			list, err := c.svc.ListNotifications(cmd.Context(), user, filterStr)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tLEVEL\tCATEGORY\tREAD\tMESSAGE")
			for _, n := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", n.CreatedAt.Format(time.DateTime), n.Level, n.Category, n.IsReadBy(user), n.Message)
			}
			return w.Flush()
		}),
	}
	listCmd.Flags().StringVar(&filterStr, "filter", "", "AIP-160 filter expression")

	var add struct {
		level, category string
		context         map[string]string
	}
	addCmd := &cobra.Command{
		Use:   "add MESSAGE...",
		Short: "Append a notification",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			n, added, err := c.svc.AddNotification(cmd.Context(), notifications.AddInput{
				Message:  strings.Join(args, " "),
				Level:    add.level,
				Category: add.category,
				Context:  add.context,
			})
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "Category %s is muted; notification dropped\n", n.Category)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s notification %s\n", n.Level, n.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&add.level, "level", string(notifications.LevelInfo), "SUCCESS, INFO, ALERT or CRITICAL")
	addCmd.Flags().StringVar(&add.category, "category", notifications.DefaultCategory, "notification category")
	addCmd.Flags().StringToStringVar(&add.context, "context", nil, "context entries as key=value")

	readAllCmd := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every visible notification as read",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			changed, err := c.svc.MarkAllRead(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications as read\n", changed)
			return nil
		}),
	}

	deleteAllCmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Hide every notification from the operator",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			changed, err := c.svc.DeleteForUser(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d notifications\n", changed)
			return nil
		}),
	}

	var unread app.CountUnreadInput
	unreadCmd := &cobra.Command{
		Use:   "unread",
		Short: "Count unread notifications",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			input := unread
			input.User = user
			count, err := c.svc.CountUnread(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		}),
	}
	unreadCmd.Flags().StringVar(&unread.Level, "level", "", "only count this level")
	unreadCmd.Flags().StringVar(&unread.Category, "category", "", "only count this category")
	unreadCmd.Flags().StringVar(&unread.Filter, "filter", "", "AIP-160 filter expression")

	muteCmd := &cobra.Command{
		Use:   "mute CATEGORY MINUTES",
		Short: "Suppress new notifications in a category",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil {
				return apperrors.New(apperrors.CodeInvalidMuteMinutes, "mute minutes must be a number")
			}
			expiry, err := c.svc.MuteCategory(cmd.Context(), args[0], minutes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Muted %s until %s\n", strings.ToUpper(strings.TrimSpace(args[0])), expiry.Format(time.DateTime))
			return nil
		}),
	}

	unmuteCmd := &cobra.Command{
		Use:   "unmute CATEGORY",
		Short: "Lift a category mute",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			if err := c.svc.UnmuteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unmuted %s\n", strings.ToUpper(strings.TrimSpace(args[0])))
			return nil
		}),
	}

	mutesCmd := &cobra.Command{
		Use:   "mutes",
		Short: "List active category mutes",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			mutes, err := c.svc.ActiveMutes(cmd.Context())
			if err != nil {
				return err
			}
			categories := make([]string, 0, len(mutes))
			for category := range mutes {
				categories = append(categories, category)
			}
			sort.Strings(categories)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tUNTIL")
			for _, category := range categories {
				fmt.Fprintf(w, "%s\t%s\n", category, mutes[category].Format(time.DateTime))
			}
			return w.Flush()
		}),
	}

	cmd.AddCommand(listCmd, addCmd, readAllCmd, deleteAllCmd, unreadCmd, muteCmd, unmuteCmd, mutesCmd)
	return cmd
}
