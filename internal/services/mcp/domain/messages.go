package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/camptrack/internal/services/camps/app"
	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
)

// MessagingService is the mailbox half of the CampTrack service.
type MessagingService interface {
	SendMessage(ctx context.Context, input notifications.SendInput) (notifications.Message, error)
	SendBroadcast(ctx context.Context, input notifications.BroadcastInput) ([]notifications.Message, error)
	BroadcastToCamp(ctx context.Context, input app.BroadcastToCampInput) ([]notifications.Message, error)
	Acknowledge(ctx context.Context, user, other string) (int, error)
	SearchMessages(ctx context.Context, user string, query notifications.SearchQuery) []notifications.Message
	MarkConversationRead(ctx context.Context, user, other string) (int, error)
	Conversations(ctx context.Context, user string) []string
	Conversation(ctx context.Context, user, other string) []notifications.Message
	PinMessage(ctx context.Context, user, other, messageID string, pinned bool) (notifications.Message, error)
	CountUnreadMessages(ctx context.Context, user, other string) int
}

// MessageEntry is the MCP view of a message.
type MessageEntry struct {
	ID          string            `json:"id"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Text        string            `json:"text"`
	SentAt      string            `json:"sent_at" jsonschema:"RFC3339 timestamp"`
	Read        bool              `json:"read"`
	Priority    bool              `json:"priority"`
	RequiresAck bool              `json:"requires_ack"`
	Acked       bool              `json:"acked"`
	AckedAt     string            `json:"acked_at,omitempty"`
	Pinned      bool              `json:"pinned"`
	PinnedBy    string            `json:"pinned_by,omitempty"`
	Attachment  string            `json:"attachment,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func messageEntry(m notifications.Message) MessageEntry {
	return MessageEntry{
		ID:          m.ID,
		From:        m.From,
		To:          m.To,
		Text:        m.Text,
		SentAt:      formatTimestamp(m.SentAt),
		Read:        m.Read,
		Priority:    m.Priority,
		RequiresAck: m.RequiresAck,
		Acked:       m.Acked,
		AckedAt:     formatTimestamp(m.AckedAt),
		Pinned:      m.Pinned,
		PinnedBy:    m.PinnedBy,
		Attachment:  m.Attachment,
		Metadata:    m.Metadata,
	}
}

func messageEntries(messages []notifications.Message) []MessageEntry {
	out := make([]MessageEntry, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageEntry(m))
	}
	return out
}

// MessageSendInput represents the MCP tool input for a direct message.
type MessageSendInput struct {
	From        string            `json:"from" jsonschema:"sender"`
	To          string            `json:"to" jsonschema:"recipient"`
	Text        string            `json:"text" jsonschema:"message text"`
	Priority    bool              `json:"priority,omitempty" jsonschema:"priority messages always require acknowledgement"`
	RequiresAck bool              `json:"requires_ack,omitempty"`
	Attachment  string            `json:"attachment,omitempty" jsonschema:"attachment reference"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// MessageBroadcastInput sends one message per recipient.
type MessageBroadcastInput struct {
	From        string   `json:"from" jsonschema:"sender"`
	Recipients  []string `json:"recipients" jsonschema:"recipients; duplicates and the sender are skipped"`
	Text        string   `json:"text" jsonschema:"message text"`
	Priority    bool     `json:"priority,omitempty"`
	RequiresAck bool     `json:"requires_ack,omitempty"`
	Attachment  string   `json:"attachment,omitempty"`
}

// CampBroadcastInput sends a message to every leader of a camp.
type CampBroadcastInput struct {
	From     string `json:"from" jsonschema:"sender"`
	Camp     string `json:"camp" jsonschema:"camp name"`
	Text     string `json:"text" jsonschema:"message text"`
	Priority bool   `json:"priority,omitempty"`
}

// MessagesResult lists messages.
type MessagesResult struct {
	Messages []MessageEntry `json:"messages"`
}

// ConversationInput names the two sides of a thread.
type ConversationInput struct {
	User  string `json:"user" jsonschema:"requesting user"`
	Other string `json:"other" jsonschema:"other participant"`
}

// UnreadMessagesInput counts unread messages.
type UnreadMessagesInput struct {
	User  string `json:"user" jsonschema:"recipient"`
	Other string `json:"other,omitempty" jsonschema:"only messages from this sender"`
}

// ConversationsResult lists conversation partners.
type ConversationsResult struct {
	Users []string `json:"users"`
}

// MessagePinInput pins or unpins a message.
type MessagePinInput struct {
	User      string `json:"user" jsonschema:"requesting user"`
	Other     string `json:"other" jsonschema:"other participant"`
	MessageID string `json:"message_id,omitempty" jsonschema:"message identifier; empty targets the latest message"`
	Pinned    bool   `json:"pinned" jsonschema:"true to pin, false to unpin"`
}

// MessageSearchInput searches a user's messages.
type MessageSearchInput struct {
	User         string `json:"user" jsonschema:"requesting user"`
	Text         string `json:"text,omitempty" jsonschema:"case-insensitive substring"`
	Other        string `json:"other,omitempty" jsonschema:"only messages with this participant"`
	From         string `json:"from,omitempty" jsonschema:"first day (YYYY-MM-DD)"`
	To           string `json:"to,omitempty" jsonschema:"last day (YYYY-MM-DD)"`
	PriorityOnly bool   `json:"priority_only,omitempty"`
}

// MessageSendTool defines the MCP tool schema for direct messages.
func MessageSendTool() *mcp.Tool {
	return &mcp.Tool{Name: "message_send", Description: "Sends a direct message"}
}

// MessageBroadcastTool defines the MCP tool schema for broadcasts.
func MessageBroadcastTool() *mcp.Tool {
	return &mcp.Tool{Name: "message_broadcast", Description: "Sends one message to each distinct recipient other than the sender"}
}

// CampBroadcastTool defines the MCP tool schema for camp broadcasts.
func CampBroadcastTool() *mcp.Tool {
	return &mcp.Tool{Name: "message_camp_broadcast", Description: "Sends a message to every leader assigned to a camp"}
}

// MessageAcknowledgeTool defines the MCP tool schema for acknowledgements.
func MessageAcknowledgeTool() *mcp.Tool {
	return &mcp.Tool{Name: "message_acknowledge", Description: "Acknowledges every pending message from the other participant"}
}

// MessageSearchTool defines the MCP tool schema for message search.
func MessageSearchTool() *mcp.Tool {
	return &mcp.Tool{Name: "message_search", Description: "Searches a user's messages"}
}

// ConversationReadTool defines the MCP tool schema for marking a thread read.
func ConversationReadTool() *mcp.Tool {
	return &mcp.Tool{Name: "conversation_mark_read", Description: "Marks every message from the other participant as read"}
}

// ConversationsTool defines the MCP tool schema for listing conversations.
func ConversationsTool() *mcp.Tool {
	return &mcp.Tool{Name: "conversation_list", Description: "Lists the users a user has exchanged messages with"}
}

// ConversationTool defines the MCP tool schema for reading a thread.
func ConversationTool() *mcp.Tool {
	return &mcp.Tool{Name: "conversation_get", Description: "Returns the messages between two users in send order"}
}

// MessagePinTool defines the MCP tool schema for pinning.
func MessagePinTool() *mcp.Tool {
	return &mcp.Tool{Name: "message_pin", Description: "Pins or unpins a message in a conversation"}
}

// MessageUnreadTool defines the MCP tool schema for unread message counts.
func MessageUnreadTool() *mcp.Tool {
	return &mcp.Tool{Name: "message_unread_count", Description: "Counts unread messages sent to a user"}
}

// MessageSendHandler sends a direct message.
func MessageSendHandler(svc MessagingService) mcp.ToolHandlerFor[MessageSendInput, MessageEntry] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MessageSendInput) (*mcp.CallToolResult, MessageEntry, error) {
		msg, err := svc.SendMessage(ctx, notifications.SendInput{
			From:        input.From,
			To:          input.To,
			Text:        input.Text,
			Priority:    input.Priority,
			RequiresAck: input.RequiresAck,
			Attachment:  input.Attachment,
			Metadata:    input.Metadata,
		})
		if err != nil {
			return nil, MessageEntry{}, fmt.Errorf("message send failed: %w", err)
		}
		return nil, messageEntry(msg), nil
	}
}

// MessageBroadcastHandler broadcasts a message.
func MessageBroadcastHandler(svc MessagingService) mcp.ToolHandlerFor[MessageBroadcastInput, MessagesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MessageBroadcastInput) (*mcp.CallToolResult, MessagesResult, error) {
		sent, err := svc.SendBroadcast(ctx, notifications.BroadcastInput{
			From:        input.From,
			Recipients:  input.Recipients,
			Text:        input.Text,
			Priority:    input.Priority,
			RequiresAck: input.RequiresAck,
			Attachment:  input.Attachment,
		})
		if err != nil {
			return nil, MessagesResult{}, fmt.Errorf("message broadcast failed: %w", err)
		}
		return nil, MessagesResult{Messages: messageEntries(sent)}, nil
	}
}

// CampBroadcastHandler messages every leader of a camp.
func CampBroadcastHandler(svc MessagingService) mcp.ToolHandlerFor[CampBroadcastInput, MessagesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampBroadcastInput) (*mcp.CallToolResult, MessagesResult, error) {
		sent, err := svc.BroadcastToCamp(ctx, app.BroadcastToCampInput{
			From:     input.From,
			Camp:     input.Camp,
			Text:     input.Text,
			Priority: input.Priority,
		})
		if err != nil {
			return nil, MessagesResult{}, fmt.Errorf("camp broadcast failed: %w", err)
		}
		return nil, MessagesResult{Messages: messageEntries(sent)}, nil
	}
}

// MessageAcknowledgeHandler acknowledges pending messages.
func MessageAcknowledgeHandler(svc MessagingService) mcp.ToolHandlerFor[ConversationInput, ChangedResult] {
	return conversationChangeHandler("message acknowledge", svc.Acknowledge)
}

// ConversationReadHandler marks a conversation read.
func ConversationReadHandler(svc MessagingService) mcp.ToolHandlerFor[ConversationInput, ChangedResult] {
	return conversationChangeHandler("conversation mark read", svc.MarkConversationRead)
}

func conversationChangeHandler(label string, apply func(context.Context, string, string) (int, error)) mcp.ToolHandlerFor[ConversationInput, ChangedResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ConversationInput) (*mcp.CallToolResult, ChangedResult, error) {
		changed, err := apply(ctx, input.User, input.Other)
		if err != nil {
			return nil, ChangedResult{}, fmt.Errorf("%s failed: %w", label, err)
		}
		return nil, ChangedResult{Changed: changed}, nil
	}
}

// MessageSearchHandler searches messages.
func MessageSearchHandler(svc MessagingService) mcp.ToolHandlerFor[MessageSearchInput, MessagesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MessageSearchInput) (*mcp.CallToolResult, MessagesResult, error) {
		query := notifications.SearchQuery{
			Text:         input.Text,
			Other:        input.Other,
			PriorityOnly: input.PriorityOnly,
		}
		var err error
		if query.From, err = optionalDate(input.From); err != nil {
			return nil, MessagesResult{}, err
		}
		if query.To, err = optionalDate(input.To); err != nil {
			return nil, MessagesResult{}, err
		}
		return nil, MessagesResult{Messages: messageEntries(svc.SearchMessages(ctx, input.User, query))}, nil
	}
}

func optionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return camps.ParseDate(raw)
}

// ConversationsHandler lists conversation partners.
func ConversationsHandler(svc MessagingService) mcp.ToolHandlerFor[UserInput, ConversationsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, ConversationsResult, error) {
		return nil, ConversationsResult{Users: nonNil(svc.Conversations(ctx, input.User))}, nil
	}
}

// ConversationHandler returns one thread.
func ConversationHandler(svc MessagingService) mcp.ToolHandlerFor[ConversationInput, MessagesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ConversationInput) (*mcp.CallToolResult, MessagesResult, error) {
		return nil, MessagesResult{Messages: messageEntries(svc.Conversation(ctx, input.User, input.Other))}, nil
	}
}

// MessagePinHandler pins or unpins a message.
func MessagePinHandler(svc MessagingService) mcp.ToolHandlerFor[MessagePinInput, MessageEntry] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MessagePinInput) (*mcp.CallToolResult, MessageEntry, error) {
		msg, err := svc.PinMessage(ctx, input.User, input.Other, input.MessageID, input.Pinned)
		if err != nil {
			return nil, MessageEntry{}, fmt.Errorf("message pin failed: %w", err)
		}
		return nil, messageEntry(msg), nil
	}
}

// MessageUnreadHandler counts unread messages.
func MessageUnreadHandler(svc MessagingService) mcp.ToolHandlerFor[UnreadMessagesInput, CountResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UnreadMessagesInput) (*mcp.CallToolResult, CountResult, error) {
		return nil, CountResult{Count: svc.CountUnreadMessages(ctx, input.User, input.Other)}, nil
	}
}
