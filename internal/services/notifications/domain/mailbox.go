package domain

import (
	"context"
	"sort"
	"strings"
	"time"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	"github.com/louisbranch/camptrack/internal/platform/id"
)

// MetadataBroadcast tags messages created by a broadcast.
const MetadataBroadcast = "broadcast"

// Message is one direct message between two staff users. AckedAt is zero
// until the message is acknowledged.
type Message struct {
	ID          string
	From        string
	To          string
	Text        string
	SentAt      time.Time
	Read        bool
	Priority    bool
	RequiresAck bool
	Acked       bool
	AckedAt     time.Time
	Pinned      bool
	PinnedBy    string
	Attachment  string
	Metadata    map[string]string
}

// Clone returns a deep copy.
func (m Message) Clone() Message {
	out := m
	if m.Metadata != nil {
		out.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Between reports whether the message belongs to the conversation of a and b.
func (m Message) Between(a, b string) bool {
	return (m.From == a && m.To == b) || (m.From == b && m.To == a)
}

// MailboxStore persists messages.
type MailboxStore interface {
	ListMessages(ctx context.Context) ([]Message, error)
	// PutMessages upserts messages by ID in one transaction.
	PutMessages(ctx context.Context, messages []Message) error
}

// Mailbox holds direct and broadcast messages between staff users.
type Mailbox struct {
	store    MailboxStore
	clock    func() time.Time
	newID    func() (string, error)
	messages []Message
}

// NewMailbox constructs an empty mailbox. Call Load to read stored messages.
func NewMailbox(store MailboxStore, clock func() time.Time, newID func() (string, error)) *Mailbox {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Mailbox{store: store, clock: clock, newID: newID}
}

// Load replaces in-memory messages with the stored ones, ordered by send time.
func (m *Mailbox) Load(ctx context.Context) error {
	if m == nil || m.store == nil {
		return storeNotConfigured("message")
	}
	messages, err := m.store.ListMessages(ctx)
	if err != nil {
		return apperrors.Storage("load messages", err)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SentAt.Before(messages[j].SentAt)
	})
	m.messages = messages
	return nil
}

// SendInput describes one direct message.
type SendInput struct {
	From        string
	To          string
	Text        string
	Priority    bool
	RequiresAck bool
	Attachment  string
	Metadata    map[string]string
}

// Send stores one message. Priority messages always require acknowledgement.
func (m *Mailbox) Send(ctx context.Context, input SendInput) (Message, error) {
	if m == nil || m.store == nil {
		return Message{}, storeNotConfigured("message")
	}
	if strings.TrimSpace(input.To) == "" {
		return Message{}, apperrors.New(apperrors.CodeRecipientRequired, "recipient is required")
	}
	msg, err := m.compose(input)
	if err != nil {
		return Message{}, err
	}
	if err := m.commit(ctx, []Message{msg}); err != nil {
		return Message{}, err
	}
	return msg.Clone(), nil
}

// BroadcastInput describes a message sent to several recipients.
type BroadcastInput struct {
	From        string
	Recipients  []string
	Text        string
	Priority    bool
	RequiresAck bool
	Attachment  string
	Metadata    map[string]string
}

// Broadcast sends one independent message per distinct recipient, skipping
// the sender. Every message is tagged broadcast=true.
func (m *Mailbox) Broadcast(ctx context.Context, input BroadcastInput) ([]Message, error) {
	if m == nil || m.store == nil {
		return nil, storeNotConfigured("message")
	}
	sender := strings.TrimSpace(input.From)
	seen := map[string]struct{}{}
	var recipients []string
	for _, recipient := range input.Recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" || recipient == sender {
			continue
		}
		if _, ok := seen[recipient]; ok {
			continue
		}
		seen[recipient] = struct{}{}
		recipients = append(recipients, recipient)
	}
	if len(recipients) == 0 {
		return nil, apperrors.New(apperrors.CodeRecipientRequired, "broadcast needs at least one recipient other than the sender")
	}

	metadata := make(map[string]string, len(input.Metadata)+1)
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	metadata[MetadataBroadcast] = "true"

	batch := make([]Message, 0, len(recipients))
	for _, recipient := range recipients {
		msg, err := m.compose(SendInput{
			From:        sender,
			To:          recipient,
			Text:        input.Text,
			Priority:    input.Priority,
			RequiresAck: input.RequiresAck,
			Attachment:  input.Attachment,
			Metadata:    metadata,
		})
		if err != nil {
			return nil, err
		}
		batch = append(batch, msg)
	}
	if err := m.commit(ctx, batch); err != nil {
		return nil, err
	}
	out := make([]Message, len(batch))
	for i, msg := range batch {
		out[i] = msg.Clone()
	}
	return out, nil
}

// Acknowledge acks every pending priority message sent to user by other and
// returns how many changed.
func (m *Mailbox) Acknowledge(ctx context.Context, user, other string) (int, error) {
	if m == nil || m.store == nil {
		return 0, storeNotConfigured("message")
	}
	user = strings.TrimSpace(user)
	other = strings.TrimSpace(other)
	now := m.nowUTC()
	return m.updateWhere(ctx, user, other, func(msg *Message) bool {
		if msg.To != user || msg.From != other || !msg.RequiresAck || msg.Acked {
			return false
		}
		msg.Acked = true
		msg.AckedAt = now
		return true
	})
}

// MarkConversationRead marks every unread message sent to user by other as
// read and returns how many changed.
func (m *Mailbox) MarkConversationRead(ctx context.Context, user, other string) (int, error) {
	user = strings.TrimSpace(user)
	other = strings.TrimSpace(other)
	return m.updateWhere(ctx, user, other, func(msg *Message) bool {
		if msg.To != user || msg.From != other || msg.Read {
			return false
		}
		msg.Read = true
		return true
	})
}

// CountUnreadMessages counts unread messages sent to user, only those from
// other when other is set.
func (m *Mailbox) CountUnreadMessages(user, other string) int {
	user = strings.TrimSpace(user)
	other = strings.TrimSpace(other)
	count := 0
	for _, msg := range m.messages {
		if msg.To != user || msg.Read {
			continue
		}
		if other != "" && msg.From != other {
			continue
		}
		count++
	}
	return count
}

// Conversations lists, sorted, every user that has exchanged messages with user.
func (m *Mailbox) Conversations(user string) []string {
	user = strings.TrimSpace(user)
	others := map[string]struct{}{}
	for _, msg := range m.messages {
		switch user {
		case msg.From:
			others[msg.To] = struct{}{}
		case msg.To:
			others[msg.From] = struct{}{}
		}
	}
	out := make([]string, 0, len(others))
	for other := range others {
		out = append(out, other)
	}
	sort.Strings(out)
	return out
}

// Conversation returns the messages between user and other in send order.
func (m *Mailbox) Conversation(user, other string) []Message {
	user = strings.TrimSpace(user)
	other = strings.TrimSpace(other)
	var out []Message
	for _, msg := range m.messages {
		if msg.Between(user, other) {
			out = append(out, msg.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out
}

// Pin sets the pinned flag on one message of the conversation between user
// and other. An empty messageID targets the latest message.
func (m *Mailbox) Pin(ctx context.Context, user, other, messageID string, pinned bool) (Message, error) {
	if m == nil || m.store == nil {
		return Message{}, storeNotConfigured("message")
	}
	user = strings.TrimSpace(user)
	other = strings.TrimSpace(other)
	messageID = strings.TrimSpace(messageID)
	if user == "" || other == "" {
		return Message{}, userRequired()
	}

	target := -1
	for i, msg := range m.messages {
		if !msg.Between(user, other) {
			continue
		}
		if messageID == "" {
			if target < 0 || !msg.SentAt.Before(m.messages[target].SentAt) {
				target = i
			}
			continue
		}
		if msg.ID == messageID {
			target = i
			break
		}
	}
	if target < 0 {
		return Message{}, apperrors.WithMetadata(apperrors.CodeMessageNotFound, "message not found", map[string]string{"Message": messageID})
	}

	msg := m.messages[target].Clone()
	msg.Pinned = pinned
	msg.PinnedBy = user
	if err := m.commit(ctx, []Message{msg}); err != nil {
		return Message{}, err
	}
	return msg.Clone(), nil
}

// SearchQuery filters Search. Zero fields match everything; From and To are
// inclusive calendar days.
type SearchQuery struct {
	Text         string
	Other        string
	From         time.Time
	To           time.Time
	PriorityOnly bool
}

// Search returns messages involving user that satisfy every set filter, in
// send order.
func (m *Mailbox) Search(user string, query SearchQuery) []Message {
	user = strings.TrimSpace(user)
	other := strings.TrimSpace(query.Other)
	text := strings.ToLower(strings.TrimSpace(query.Text))
	var from, until time.Time
	if !query.From.IsZero() {
		from = startOfDay(query.From)
	}
	if !query.To.IsZero() {
		until = startOfDay(query.To).AddDate(0, 0, 1)
	}

	var out []Message
	for _, msg := range m.messages {
		if msg.From != user && msg.To != user {
			continue
		}
		if other != "" && !msg.Between(user, other) {
			continue
		}
		if query.PriorityOnly && !msg.Priority {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(msg.Text), text) {
			continue
		}
		if !from.IsZero() && msg.SentAt.Before(from) {
			continue
		}
		if !until.IsZero() && !msg.SentAt.Before(until) {
			continue
		}
		out = append(out, msg.Clone())
	}
	return out
}

func (m *Mailbox) compose(input SendInput) (Message, error) {
	sender := strings.TrimSpace(input.From)
	if sender == "" {
		return Message{}, userRequired()
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return Message{}, apperrors.New(apperrors.CodeMessageRequired, "message text is required")
	}
	messageID, err := m.newID()
	if err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:          messageID,
		From:        sender,
		To:          strings.TrimSpace(input.To),
		Text:        text,
		SentAt:      m.nowUTC(),
		Priority:    input.Priority,
		RequiresAck: input.RequiresAck || input.Priority,
		Attachment:  strings.TrimSpace(input.Attachment),
	}
	if len(input.Metadata) > 0 {
		msg.Metadata = make(map[string]string, len(input.Metadata))
		for k, v := range input.Metadata {
			msg.Metadata[k] = v
		}
	}
	return msg, nil
}

func (m *Mailbox) updateWhere(ctx context.Context, user, other string, apply func(*Message) bool) (int, error) {
	if m == nil || m.store == nil {
		return 0, storeNotConfigured("message")
	}
	if user == "" || other == "" {
		return 0, userRequired()
	}
	var changed []Message
	for _, msg := range m.messages {
		msg = msg.Clone()
		if apply(&msg) {
			changed = append(changed, msg)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if err := m.commit(ctx, changed); err != nil {
		return 0, err
	}
	return len(changed), nil
}

// commit upserts changed and then merges it into memory.
func (m *Mailbox) commit(ctx context.Context, changed []Message) error {
	if err := m.store.PutMessages(ctx, changed); err != nil {
		return apperrors.Storage("save messages", err)
	}
	byID := make(map[string]Message, len(changed))
	for _, msg := range changed {
		byID[msg.ID] = msg
	}
	next := make([]Message, 0, len(m.messages)+len(changed))
	for _, msg := range m.messages {
		if updated, ok := byID[msg.ID]; ok {
			msg = updated
			delete(byID, msg.ID)
		}
		next = append(next, msg)
	}
	for _, msg := range changed {
		if _, ok := byID[msg.ID]; ok {
			next = append(next, msg)
		}
	}
	m.messages = next
	return nil
}

func (m *Mailbox) nowUTC() time.Time {
	if m.clock == nil {
		return time.Now().UTC()
	}
	return m.clock().UTC()
}

func startOfDay(value time.Time) time.Time {
	y, mo, d := value.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
