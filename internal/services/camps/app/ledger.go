package app

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	"github.com/louisbranch/camptrack/internal/platform/filter"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
	"github.com/louisbranch/camptrack/internal/services/notifications/render"
)

// notificationFields are the identifiers notification filters may use, e.g.
// `level = "ALERT" AND camp = "Alpha"`.
var notificationFields = []filter.Field{
	{Name: "level", Type: filter.String},
	{Name: "category", Type: filter.String},
	{Name: "message", Type: filter.String},
	{Name: "camp", Type: filter.String},
	{Name: "topic", Type: filter.String},
	{Name: "read", Type: filter.Bool},
}

// compileNotificationFilter turns a filter string into a predicate over
// notifications as seen by user.
func compileNotificationFilter(raw, user string) (func(notifications.Notification) bool, error) {
	predicate, err := filter.Compile(raw, notificationFields...)
	if err != nil {
		return nil, apperrors.WithMetadata(apperrors.CodeInvalidFilter, err.Error(), map[string]string{"Filter": raw, "Reason": err.Error()})
	}
	return func(n notifications.Notification) bool {
		return predicate(func(field string) (any, bool) {
			switch field {
			case "level":
				return string(n.Level), true
			case "category":
				return n.Category, true
			case "message":
				return n.Message, true
			case "camp", "topic":
				value, ok := n.Context[field]
				return value, ok
			case "read":
				return n.IsReadBy(user), true
			default:
				return nil, false
			}
		})
	}, nil
}

// AddNotification appends a notification directly. added is false when the
// category is muted.
func (s *Service) AddNotification(ctx context.Context, input notifications.AddInput) (n notifications.Notification, added bool, err error) {
	ctx, done := s.start(ctx, "AddNotification", attribute.String("category", input.Category))
	defer done(&err)
	return s.ledger.Add(ctx, input)
}

// ListNotifications returns the notifications user has not hidden that match
// filterStr, oldest first.
func (s *Service) ListNotifications(ctx context.Context, user, filterStr string) (list []notifications.Notification, err error) {
	_, done := s.start(ctx, "ListNotifications", attribute.String("user", user))
	defer done(&err)

	match, err := compileNotificationFilter(filterStr, strings.TrimSpace(user))
	if err != nil {
		return nil, err
	}
	for _, n := range s.ledger.List(user) {
		if match(n) {
			list = append(list, n)
		}
	}
	return list, nil
}

// MarkAllRead marks every notification read for user.
func (s *Service) MarkAllRead(ctx context.Context, user string) (changed int, err error) {
	ctx, done := s.start(ctx, "MarkAllRead", attribute.String("user", user))
	defer done(&err)
	return s.ledger.MarkAllRead(ctx, user)
}

// DeleteForUser hides every notification from user.
func (s *Service) DeleteForUser(ctx context.Context, user string) (changed int, err error) {
	ctx, done := s.start(ctx, "DeleteForUser", attribute.String("user", user))
	defer done(&err)
	return s.ledger.DeleteForUser(ctx, user)
}

// CountUnreadInput narrows CountUnread. Every set field must match.
type CountUnreadInput struct {
	User     string
	Level    string
	Category string
	// Filter is an AIP-160 expression over level, category, message, camp,
	// topic and read.
	Filter string
}

// CountUnread counts notifications the user has not read.
func (s *Service) CountUnread(ctx context.Context, input CountUnreadInput) (count int, err error) {
	_, done := s.start(ctx, "CountUnread", attribute.String("user", input.User))
	defer done(&err)

	unread := notifications.UnreadFilter{
		Level:    notifications.Level(strings.TrimSpace(input.Level)),
		Category: input.Category,
	}
	if strings.TrimSpace(input.Filter) != "" {
		match, err := compileNotificationFilter(input.Filter, strings.TrimSpace(input.User))
		if err != nil {
			return 0, err
		}
		unread.Match = match
	}
	return s.ledger.CountUnread(input.User, unread), nil
}

// MuteCategory suppresses new notifications in category for minutes.
func (s *Service) MuteCategory(ctx context.Context, category string, minutes int) (expiry time.Time, err error) {
	ctx, done := s.start(ctx, "MuteCategory", attribute.String("category", category), attribute.Int("minutes", minutes))
	defer done(&err)

	expiry, err = s.ledger.Mute(ctx, category, minutes)
	if err != nil {
		return time.Time{}, err
	}
	s.logger.Info("category muted", zap.String("category", category), zap.Time("until", expiry))
	return expiry, nil
}

// UnmuteCategory clears a category mute.
func (s *Service) UnmuteCategory(ctx context.Context, category string) (err error) {
	ctx, done := s.start(ctx, "UnmuteCategory", attribute.String("category", category))
	defer done(&err)
	return s.ledger.Unmute(ctx, category)
}

// ActiveMutes lists current category mutes.
func (s *Service) ActiveMutes(ctx context.Context) (mutes map[string]time.Time, err error) {
	ctx, done := s.start(ctx, "ActiveMutes")
	defer done(&err)
	return s.ledger.Mutes(ctx)
}

// SendMessage sends one direct message.
func (s *Service) SendMessage(ctx context.Context, input notifications.SendInput) (msg notifications.Message, err error) {
	ctx, done := s.start(ctx, "SendMessage", attribute.String("from", input.From), attribute.String("to", input.To))
	defer done(&err)

	msg, err = s.mailbox.Send(ctx, input)
	if err != nil {
		return notifications.Message{}, err
	}
	s.logger.Info("message sent", zap.String("id", msg.ID), zap.String("from", msg.From), zap.String("to", msg.To), zap.Bool("priority", msg.Priority))
	return msg, nil
}

// SendBroadcast sends one message per distinct recipient other than the sender.
func (s *Service) SendBroadcast(ctx context.Context, input notifications.BroadcastInput) (sent []notifications.Message, err error) {
	ctx, done := s.start(ctx, "SendBroadcast", attribute.String("from", input.From), attribute.Int("recipients", len(input.Recipients)))
	defer done(&err)

	sent, err = s.mailbox.Broadcast(ctx, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("broadcast sent", zap.String("from", input.From), zap.Int("messages", len(sent)))
	return sent, nil
}

// BroadcastToCampInput describes a message to every leader of a camp.
type BroadcastToCampInput struct {
	From     string
	Camp     string
	Text     string
	Priority bool
}

// BroadcastToCamp sends a message to every leader assigned to the camp.
func (s *Service) BroadcastToCamp(ctx context.Context, input BroadcastToCampInput) (sent []notifications.Message, err error) {
	ctx, done := s.start(ctx, "BroadcastToCamp", attribute.String("from", input.From), attribute.String("camp", input.Camp))
	defer done(&err)

	camp, err := s.registry.Get(input.Camp)
	if err != nil {
		return nil, err
	}
	sent, err = s.mailbox.Broadcast(ctx, notifications.BroadcastInput{
		From:       input.From,
		Recipients: camp.ScoutLeaders,
		Text:       input.Text,
		Priority:   input.Priority,
		Metadata:   map[string]string{"camp": camp.Name},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("camp broadcast sent", zap.String("camp", camp.Name), zap.Int("messages", len(sent)))
	s.notify(ctx, event{
		topic:    render.TopicBroadcastToCamp,
		level:    notifications.LevelInfo,
		category: CategoryMessaging,
		payload:  render.Payload{Camp: camp.Name, Recipients: len(sent)},
	})
	return sent, nil
}

// Acknowledge acks every pending priority message sent to user by other.
func (s *Service) Acknowledge(ctx context.Context, user, other string) (count int, err error) {
	ctx, done := s.start(ctx, "Acknowledge", attribute.String("user", user), attribute.String("other", other))
	defer done(&err)
	return s.mailbox.Acknowledge(ctx, user, other)
}

// SearchMessages finds messages involving user.
func (s *Service) SearchMessages(ctx context.Context, user string, query notifications.SearchQuery) []notifications.Message {
	_, done := s.start(ctx, "SearchMessages", attribute.String("user", user))
	defer done(nil)
	return s.mailbox.Search(user, query)
}

// MarkConversationRead marks every message from other to user as read.
func (s *Service) MarkConversationRead(ctx context.Context, user, other string) (count int, err error) {
	ctx, done := s.start(ctx, "MarkConversationRead", attribute.String("user", user), attribute.String("other", other))
	defer done(&err)
	return s.mailbox.MarkConversationRead(ctx, user, other)
}

// Conversations lists the users user has exchanged messages with.
func (s *Service) Conversations(ctx context.Context, user string) []string {
	_, done := s.start(ctx, "Conversations", attribute.String("user", user))
	defer done(nil)
	return s.mailbox.Conversations(user)
}

// Conversation returns the thread between user and other.
func (s *Service) Conversation(ctx context.Context, user, other string) []notifications.Message {
	_, done := s.start(ctx, "Conversation", attribute.String("user", user), attribute.String("other", other))
	defer done(nil)
	return s.mailbox.Conversation(user, other)
}

// PinMessage pins or unpins a message; an empty id targets the latest one.
func (s *Service) PinMessage(ctx context.Context, user, other, messageID string, pinned bool) (msg notifications.Message, err error) {
	ctx, done := s.start(ctx, "PinMessage", attribute.String("user", user), attribute.String("other", other))
	defer done(&err)
	return s.mailbox.Pin(ctx, user, other, messageID, pinned)
}

// CountUnreadMessages counts unread messages to user, optionally only from other.
func (s *Service) CountUnreadMessages(ctx context.Context, user, other string) int {
	_, done := s.start(ctx, "CountUnreadMessages", attribute.String("user", user))
	defer done(nil)
	return s.mailbox.CountUnreadMessages(user, other)
}
