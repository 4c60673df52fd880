package domain

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/camptrack/internal/services/camps/app"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
)

// LedgerService is the notification half of the CampTrack service.
type LedgerService interface {
	AddNotification(ctx context.Context, input notifications.AddInput) (notifications.Notification, bool, error)
	ListNotifications(ctx context.Context, user, filter string) ([]notifications.Notification, error)
	MarkAllRead(ctx context.Context, user string) (int, error)
	DeleteForUser(ctx context.Context, user string) (int, error)
	CountUnread(ctx context.Context, input app.CountUnreadInput) (int, error)
	MuteCategory(ctx context.Context, category string, minutes int) (time.Time, error)
	UnmuteCategory(ctx context.Context, category string) error
	ActiveMutes(ctx context.Context) (map[string]time.Time, error)
}

// NotificationEntry is the MCP view of a notification for one user.
type NotificationEntry struct {
	ID        string            `json:"id"`
	Message   string            `json:"message"`
	CreatedAt string            `json:"created_at" jsonschema:"RFC3339 timestamp"`
	Level     string            `json:"level" jsonschema:"SUCCESS, INFO, ALERT or CRITICAL"`
	Category  string            `json:"category"`
	Context   map[string]string `json:"context,omitempty"`
	Read      bool              `json:"read" jsonschema:"true when the requesting user has read it"`
}

func notificationEntry(n notifications.Notification, user string) NotificationEntry {
	return NotificationEntry{
		ID:        n.ID,
		Message:   n.Message,
		CreatedAt: formatTimestamp(n.CreatedAt),
		Level:     string(n.Level),
		Category:  n.Category,
		Context:   n.Context,
		Read:      n.IsReadBy(user),
	}
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

// NotificationAddInput represents the MCP tool input for adding a notification.
type NotificationAddInput struct {
	Message  string            `json:"message" jsonschema:"notification text"`
	Level    string            `json:"level,omitempty" jsonschema:"SUCCESS, INFO, ALERT or CRITICAL (WARNING and ERROR map to ALERT)"`
	Category string            `json:"category,omitempty" jsonschema:"category tag, defaults to GENERAL"`
	Context  map[string]string `json:"context,omitempty" jsonschema:"free form context"`
}

// NotificationAddResult reports the stored notification, if any.
type NotificationAddResult struct {
	Added        bool               `json:"added" jsonschema:"false when the category is muted"`
	Notification *NotificationEntry `json:"notification,omitempty"`
}

// NotificationListInput lists a user's notifications.
type NotificationListInput struct {
	User   string `json:"user" jsonschema:"viewing user"`
	Filter string `json:"filter,omitempty" jsonschema:"AIP-160 filter over level, category, message, camp, topic and read"`
}

// NotificationListResult lists notifications oldest first.
type NotificationListResult struct {
	Notifications []NotificationEntry `json:"notifications"`
}

// UserInput names one user.
type UserInput struct {
	User string `json:"user" jsonschema:"user identifier"`
}

// ChangedResult reports how many records changed.
type ChangedResult struct {
	Changed int `json:"changed"`
}

// UnreadCountInput counts a user's unread notifications.
type UnreadCountInput struct {
	User     string `json:"user" jsonschema:"viewing user"`
	Level    string `json:"level,omitempty" jsonschema:"only this level"`
	Category string `json:"category,omitempty" jsonschema:"only this category"`
	Filter   string `json:"filter,omitempty" jsonschema:"AIP-160 filter over level, category, message, camp, topic and read"`
}

// CountResult reports a count.
type CountResult struct {
	Count int `json:"count"`
}

// MuteInput mutes a category.
type MuteInput struct {
	Category string `json:"category" jsonschema:"category tag"`
	Minutes  int    `json:"minutes" jsonschema:"positive number of minutes"`
}

// CategoryInput names a category.
type CategoryInput struct {
	Category string `json:"category" jsonschema:"category tag"`
}

// MuteEntry is one active mute.
type MuteEntry struct {
	Category string `json:"category"`
	Until    string `json:"until" jsonschema:"RFC3339 expiry"`
}

// MutesResult lists active mutes.
type MutesResult struct {
	Mutes []MuteEntry `json:"mutes"`
}

// NotificationAddTool defines the MCP tool schema for adding notifications.
func NotificationAddTool() *mcp.Tool {
	return &mcp.Tool{Name: "notification_add", Description: "Adds a notification unless its category is muted"}
}

// NotificationListTool defines the MCP tool schema for listing notifications.
func NotificationListTool() *mcp.Tool {
	return &mcp.Tool{Name: "notification_list", Description: "Lists notifications a user has not deleted, oldest first"}
}

// NotificationMarkAllReadTool defines the MCP tool schema for marking all read.
func NotificationMarkAllReadTool() *mcp.Tool {
	return &mcp.Tool{Name: "notification_mark_all_read", Description: "Marks every notification read for a user"}
}

// NotificationDeleteTool defines the MCP tool schema for hiding notifications.
func NotificationDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "notification_delete_all", Description: "Hides every notification from a user"}
}

// NotificationUnreadTool defines the MCP tool schema for unread counts.
func NotificationUnreadTool() *mcp.Tool {
	return &mcp.Tool{Name: "notification_unread_count", Description: "Counts a user's unread notifications"}
}

// CategoryMuteTool defines the MCP tool schema for muting categories.
func CategoryMuteTool() *mcp.Tool {
	return &mcp.Tool{Name: "category_mute", Description: "Suppresses new notifications in a category for a number of minutes"}
}

// CategoryUnmuteTool defines the MCP tool schema for unmuting categories.
func CategoryUnmuteTool() *mcp.Tool {
	return &mcp.Tool{Name: "category_unmute", Description: "Clears a category mute"}
}

// CategoryMutesTool defines the MCP tool schema for listing mutes.
func CategoryMutesTool() *mcp.Tool {
	return &mcp.Tool{Name: "category_mutes", Description: "Lists active category mutes"}
}

// NotificationAddHandler adds a notification.
func NotificationAddHandler(svc LedgerService) mcp.ToolHandlerFor[NotificationAddInput, NotificationAddResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NotificationAddInput) (*mcp.CallToolResult, NotificationAddResult, error) {
		n, added, err := svc.AddNotification(ctx, notifications.AddInput{
			Message:  input.Message,
			Level:    input.Level,
			Category: input.Category,
			Context:  input.Context,
		})
		if err != nil {
			return nil, NotificationAddResult{}, fmt.Errorf("notification add failed: %w", err)
		}
		if !added {
			return nil, NotificationAddResult{}, nil
		}
		entry := notificationEntry(n, "")
		return nil, NotificationAddResult{Added: true, Notification: &entry}, nil
	}
}

// NotificationListHandler lists notifications.
func NotificationListHandler(svc LedgerService) mcp.ToolHandlerFor[NotificationListInput, NotificationListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NotificationListInput) (*mcp.CallToolResult, NotificationListResult, error) {
		list, err := svc.ListNotifications(ctx, input.User, input.Filter)
		if err != nil {
			return nil, NotificationListResult{}, err
		}
		result := NotificationListResult{Notifications: make([]NotificationEntry, 0, len(list))}
		for _, n := range list {
			result.Notifications = append(result.Notifications, notificationEntry(n, input.User))
		}
		return nil, result, nil
	}
}

// NotificationMarkAllReadHandler marks every notification read.
func NotificationMarkAllReadHandler(svc LedgerService) mcp.ToolHandlerFor[UserInput, ChangedResult] {
	return changedHandler("mark all read", svc.MarkAllRead)
}

// NotificationDeleteHandler hides every notification from a user.
func NotificationDeleteHandler(svc LedgerService) mcp.ToolHandlerFor[UserInput, ChangedResult] {
	return changedHandler("notification delete", svc.DeleteForUser)
}

func changedHandler(label string, apply func(context.Context, string) (int, error)) mcp.ToolHandlerFor[UserInput, ChangedResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, ChangedResult, error) {
		changed, err := apply(ctx, input.User)
		if err != nil {
			return nil, ChangedResult{}, fmt.Errorf("%s failed: %w", label, err)
		}
		return nil, ChangedResult{Changed: changed}, nil
	}
}

// NotificationUnreadHandler counts unread notifications.
func NotificationUnreadHandler(svc LedgerService) mcp.ToolHandlerFor[UnreadCountInput, CountResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UnreadCountInput) (*mcp.CallToolResult, CountResult, error) {
		count, err := svc.CountUnread(ctx, app.CountUnreadInput{
			User:     input.User,
			Level:    input.Level,
			Category: input.Category,
			Filter:   input.Filter,
		})
		if err != nil {
			return nil, CountResult{}, err
		}
		return nil, CountResult{Count: count}, nil
	}
}

// CategoryMuteHandler mutes a category.
func CategoryMuteHandler(svc LedgerService) mcp.ToolHandlerFor[MuteInput, MuteEntry] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MuteInput) (*mcp.CallToolResult, MuteEntry, error) {
		until, err := svc.MuteCategory(ctx, input.Category, input.Minutes)
		if err != nil {
			return nil, MuteEntry{}, fmt.Errorf("category mute failed: %w", err)
		}
		return nil, MuteEntry{Category: input.Category, Until: formatTimestamp(until)}, nil
	}
}

// CategoryUnmuteHandler clears a mute.
func CategoryUnmuteHandler(svc LedgerService) mcp.ToolHandlerFor[CategoryInput, MutesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CategoryInput) (*mcp.CallToolResult, MutesResult, error) {
		if err := svc.UnmuteCategory(ctx, input.Category); err != nil {
			return nil, MutesResult{}, fmt.Errorf("category unmute failed: %w", err)
		}
		return mutesResult(ctx, svc)
	}
}

// CategoryMutesHandler lists active mutes.
func CategoryMutesHandler(svc LedgerService) mcp.ToolHandlerFor[EmptyInput, MutesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, MutesResult, error) {
		return mutesResult(ctx, svc)
	}
}

func mutesResult(ctx context.Context, svc LedgerService) (*mcp.CallToolResult, MutesResult, error) {
	mutes, err := svc.ActiveMutes(ctx)
	if err != nil {
		return nil, MutesResult{}, err
	}
	result := MutesResult{Mutes: make([]MuteEntry, 0, len(mutes))}
	for category, until := range mutes {
		result.Mutes = append(result.Mutes, MuteEntry{Category: category, Until: formatTimestamp(until)})
	}
	sort.Slice(result.Mutes, func(i, j int) bool { return result.Mutes[i].Category < result.Mutes[j].Category })
	return nil, result, nil
}
