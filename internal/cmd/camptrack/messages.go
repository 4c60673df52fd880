package camptrack

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/camptrack/internal/services/camps/app"
	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
)

func (c *cli) messagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Send and read leader messages",
		Long: `Send and read leader messages. The sender and reader is the
operator set with --user or CAMPTRACK_USER.`,
	}

	var send struct {
		priority, ack bool
		attachment    string
	}
	sendCmd := &cobra.Command{
		Use:   "send TO TEXT...",
		Short: "Send a direct message",
		Args:  cobra.MinimumNArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			msg, err := c.svc.SendMessage(cmd.Context(), notifications.SendInput{
				From:        user,
				To:          args[0],
				Text:        strings.Join(args[1:], " "),
				Priority:    send.priority,
				RequiresAck: send.ack,
				Attachment:  send.attachment,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %s\n", msg.ID, msg.To)
			return nil
		}),
	}
	sendCmd.Flags().BoolVar(&send.priority, "priority", false, "mark as priority; priority messages require acknowledgement")
	sendCmd.Flags().BoolVar(&send.ack, "ack", false, "require acknowledgement")
	sendCmd.Flags().StringVar(&send.attachment, "attachment", "", "attachment reference")

	var broadcast struct {
		to       []string
		priority bool
	}
	broadcastCmd := &cobra.Command{
		Use:   "broadcast TEXT...",
		Short: "Send the same message to several recipients",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			sent, err := c.svc.SendBroadcast(cmd.Context(), notifications.BroadcastInput{
				From:       user,
				Recipients: broadcast.to,
				Text:       strings.Join(args, " "),
				Priority:   broadcast.priority,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d messages\n", len(sent))
			return nil
		}),
	}
	broadcastCmd.Flags().StringSliceVar(&broadcast.to, "to", nil, "recipients")
	broadcastCmd.Flags().BoolVar(&broadcast.priority, "priority", false, "mark as priority")
	_ = broadcastCmd.MarkFlagRequired("to")

	var campPriority bool
	campCmd := &cobra.Command{
		Use:   "camp CAMP TEXT...",
		Short: "Message every leader assigned to a camp",
		Args:  cobra.MinimumNArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			sent, err := c.svc.BroadcastToCamp(cmd.Context(), app.BroadcastToCampInput{
				From:     user,
				Camp:     args[0],
				Text:     strings.Join(args[1:], " "),
				Priority: campPriority,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d messages to leaders of %s\n", len(sent), args[0])
			return nil
		}),
	}
	campCmd.Flags().BoolVar(&campPriority, "priority", false, "mark as priority")

	ackCmd := &cobra.Command{
		Use:   "ack FROM",
		Short: "Acknowledge every pending message from a sender",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			count, err := c.svc.Acknowledge(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %d messages\n", count)
			return nil
		}),
	}

	readCmd := &cobra.Command{
		Use:   "read OTHER",
		Short: "Mark a conversation as read",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			count, err := c.svc.MarkConversationRead(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d messages as read\n", count)
			return nil
		}),
	}

	inboxCmd := &cobra.Command{
		Use:   "inbox",
		Short: "List conversation partners with unread counts",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WITH\tUNREAD")
			for _, other := range c.svc.Conversations(ctx, user) {
				fmt.Fprintf(w, "%s\t%d\n", other, c.svc.CountUnreadMessages(ctx, user, other))
			}
			return w.Flush()
		}),
	}

	threadCmd := &cobra.Command{
		Use:   "thread OTHER",
		Short: "Show the conversation with another user",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			writeMessages(cmd.OutOrStdout(), c.svc.Conversation(cmd.Context(), user, args[0]))
			return nil
		}),
	}

	var unpin bool
	pinCmd := &cobra.Command{
		Use:   "pin OTHER [ID]",
		Short: "Pin a message, or the latest one, in a conversation",
		Args:  cobra.RangeArgs(1, 2),
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			var id string
			if len(args) == 2 {
				id = args[1]
			}
			msg, err := c.svc.PinMessage(cmd.Context(), user, args[0], id, !unpin)
			if err != nil {
				return err
			}
			state := "Pinned"
			if !msg.Pinned {
				state = "Unpinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, msg.ID)
			return nil
		}),
	}
	pinCmd.Flags().BoolVar(&unpin, "unpin", false, "remove the pin instead")

	var search struct {
		with, from, to string
		priority       bool
	}
	searchCmd := &cobra.Command{
		Use:   "search [TEXT...]",
		Short: "Search messages involving the operator",
		RunE: c.withService(func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			query := notifications.SearchQuery{
				Text:         strings.Join(args, " "),
				Other:        search.with,
				PriorityOnly: search.priority,
			}
			if search.from != "" {
				if query.From, err = camps.ParseDate(search.from); err != nil {
					return err
				}
			}
			if search.to != "" {
				if query.To, err = camps.ParseDate(search.to); err != nil {
					return err
				}
			}
			writeMessages(cmd.OutOrStdout(), c.svc.SearchMessages(cmd.Context(), user, query))
			return nil
		}),
	}
	searchCmd.Flags().StringVar(&search.with, "with", "", "only messages exchanged with this user")
	searchCmd.Flags().StringVar(&search.from, "from", "", "sent on or after this date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&search.to, "to", "", "sent on or before this date (YYYY-MM-DD)")
	searchCmd.Flags().BoolVar(&search.priority, "priority", false, "only priority messages")

	var unreadWith string
	unreadCmd := &cobra.Command{
		Use:   "unread",
		Short: "Count unread messages addressed to the operator",
		Args:  cobra.NoArgs,
		RunE: c.withService(func(cmd *cobra.Command, _ []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.svc.CountUnreadMessages(cmd.Context(), user, unreadWith))
			return nil
		}),
	}
	unreadCmd.Flags().StringVar(&unreadWith, "with", "", "only count messages from this user")

	cmd.AddCommand(sendCmd, broadcastCmd, campCmd, ackCmd, readCmd, inboxCmd, threadCmd, pinCmd, searchCmd, unreadCmd)
	return cmd
}

func writeMessages(out io.Writer, messages []notifications.Message) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSENT\tFROM\tTO\tFLAGS\tTEXT")
	for _, msg := range messages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", msg.ID, msg.SentAt.Format(time.DateTime), msg.From, msg.To, messageFlags(msg), msg.Text)
	}
	_ = w.Flush()
}

func messageFlags(msg notifications.Message) string {
	var flags []string
	if msg.Priority {
		flags = append(flags, "priority")
	}
	if msg.RequiresAck && !msg.Acked {
		flags = append(flags, "needs-ack")
	}
	if msg.Pinned {
		flags = append(flags, "pinned")
	}
	if !msg.Read {
		flags = append(flags, "unread")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
