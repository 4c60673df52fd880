package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
)

func newTestMailbox(t *testing.T) (*Mailbox, *fakeStore, *testClock) {
	t.Helper()
	store := newFakeStore()
	clock := &testClock{now: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
	mailbox := NewMailbox(store, clock.Now, sequentialIDs("m"))
	if err := mailbox.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return mailbox, store, clock
}

func mustSend(t *testing.T, m *Mailbox, input SendInput) Message {
	t.Helper()
	msg, err := m.Send(context.Background(), input)
	if err != nil {
		t.Fatalf("send %q: %v", input.Text, err)
	}
	return msg
}

func TestSendPriorityImpliesAck(t *testing.T) {
	t.Parallel()

	mailbox, store, _ := newTestMailbox(t)
	msg := mustSend(t, mailbox, SendInput{From: "lee", To: "max", Text: "Bring tents", Priority: true, Attachment: " plan.pdf "})
	if !msg.RequiresAck {
		t.Fatal("expected priority message to require ack")
	}
	if msg.Attachment != "plan.pdf" {
		t.Fatalf("attachment = %q", msg.Attachment)
	}
	if _, ok := store.messages[msg.ID]; !ok {
		t.Fatal("expected stored message")
	}

	plain := mustSend(t, mailbox, SendInput{From: "lee", To: "max", Text: "hi"})
	if plain.RequiresAck || plain.Priority {
		t.Fatalf("plain message flags = %+v", plain)
	}
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	mailbox, _, _ := newTestMailbox(t)
	tests := []struct {
		name  string
		input SendInput
		code  apperrors.Code
	}{
		{name: "no sender", input: SendInput{To: "max", Text: "x"}, code: apperrors.CodeUserRequired},
		{name: "no recipient", input: SendInput{From: "lee", Text: "x"}, code: apperrors.CodeRecipientRequired},
		{name: "no text", input: SendInput{From: "lee", To: "max", Text: " "}, code: apperrors.CodeMessageRequired},
	}
	for _, tt := range tests {
		if _, err := mailbox.Send(context.Background(), tt.input); !apperrors.HasCode(err, tt.code) {
			t.Errorf("%s: err = %v, want %s", tt.name, err, tt.code)
		}
	}
}

func TestBroadcastExcludesSenderAndDuplicates(t *testing.T) {
	t.Parallel()

	mailbox, store, _ := newTestMailbox(t)
	sent, err := mailbox.Broadcast(context.Background(), BroadcastInput{
		From:       "lee",
		Recipients: []string{"max", "lee", "ann", "max", " "},
		Text:       "Camp starts at nine",
		Metadata:   map[string]string{"camp": "Alpha", MetadataBroadcast: "false"},
	})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	var recipients []string
	for _, msg := range sent {
		recipients = append(recipients, msg.To)
		if msg.Metadata[MetadataBroadcast] != "true" || msg.Metadata["camp"] != "Alpha" {
			t.Fatalf("metadata = %v", msg.Metadata)
		}
	}
	if diff := cmp.Diff([]string{"max", "ann"}, recipients); diff != "" {
		t.Fatalf("recipients mismatch (-want +got):\n%s", diff)
	}
	if store.puts != 1 {
		t.Fatalf("puts = %d, want one batch", store.puts)
	}

	if _, err := mailbox.Broadcast(context.Background(), BroadcastInput{From: "lee", Recipients: []string{"lee"}, Text: "x"}); !apperrors.HasCode(err, apperrors.CodeRecipientRequired) {
		t.Fatalf("self broadcast: err = %v", err)
	}
}

func TestAcknowledge(t *testing.T) {
	t.Parallel()

	mailbox, _, clock := newTestMailbox(t)
	ctx := context.Background()
	mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "urgent", Priority: true})
	mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "confirm", RequiresAck: true})
	mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "fyi"})
	mustSend(t, mailbox, SendInput{From: "ann", To: "lee", Text: "other", Priority: true})
	mustSend(t, mailbox, SendInput{From: "lee", To: "max", Text: "reverse", Priority: true})

	clock.Advance(time.Hour)
	count, err := mailbox.Acknowledge(ctx, "lee", "max")
	if err != nil {
		t.Fatalf("ack: %v", err)
	}
	if count != 2 {
		t.Fatalf("acked = %d, want 2", count)
	}
	for _, msg := range mailbox.Conversation("lee", "max") {
		if msg.To == "lee" && msg.RequiresAck && (!msg.Acked || !msg.AckedAt.Equal(clock.now)) {
			t.Fatalf("message %s not acked at %v: %+v", msg.ID, clock.now, msg)
		}
		if msg.To == "max" && msg.Acked {
			t.Fatal("expected reverse message left pending")
		}
	}
	if count, _ := mailbox.Acknowledge(ctx, "lee", "max"); count != 0 {
		t.Fatalf("repeat ack = %d, want 0", count)
	}
}

func TestReadStateAndConversations(t *testing.T) {
	t.Parallel()

	mailbox, _, clock := newTestMailbox(t)
	ctx := context.Background()
	mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "one"})
	clock.Advance(time.Minute)
	mustSend(t, mailbox, SendInput{From: "ann", To: "lee", Text: "two"})
	clock.Advance(time.Minute)
	mustSend(t, mailbox, SendInput{From: "lee", To: "zoe", Text: "three"})
	clock.Advance(time.Minute)
	mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "four"})

	if got := mailbox.CountUnreadMessages("lee", ""); got != 3 {
		t.Fatalf("unread = %d, want 3", got)
	}
	if got := mailbox.CountUnreadMessages("lee", "max"); got != 2 {
		t.Fatalf("unread from max = %d, want 2", got)
	}
	if diff := cmp.Diff([]string{"ann", "max", "zoe"}, mailbox.Conversations("lee")); diff != "" {
		t.Fatalf("conversations mismatch (-want +got):\n%s", diff)
	}

	changed, err := mailbox.MarkConversationRead(ctx, "lee", "max")
	if err != nil || changed != 2 {
		t.Fatalf("mark read: changed=%d err=%v", changed, err)
	}
	if got := mailbox.CountUnreadMessages("lee", ""); got != 1 {
		t.Fatalf("unread after mark = %d, want 1", got)
	}

	thread := mailbox.Conversation("max", "lee")
	var texts []string
	for _, msg := range thread {
		texts = append(texts, msg.Text)
	}
	if diff := cmp.Diff([]string{"one", "four"}, texts); diff != "" {
		t.Fatalf("thread mismatch (-want +got):\n%s", diff)
	}
}

func TestPin(t *testing.T) {
	t.Parallel()

	mailbox, _, clock := newTestMailbox(t)
	ctx := context.Background()
	first := mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "one"})
	clock.Advance(time.Minute)
	latest := mustSend(t, mailbox, SendInput{From: "lee", To: "max", Text: "two"})

	pinned, err := mailbox.Pin(ctx, "lee", "max", "", true)
	if err != nil {
		t.Fatalf("pin latest: %v", err)
	}
	if pinned.ID != latest.ID || !pinned.Pinned || pinned.PinnedBy != "lee" {
		t.Fatalf("pinned = %+v, want latest pinned by lee", pinned)
	}

	if _, err := mailbox.Pin(ctx, "max", "lee", first.ID, true); err != nil {
		t.Fatalf("pin by id: %v", err)
	}
	unpinned, err := mailbox.Pin(ctx, "lee", "max", latest.ID, false)
	if err != nil || unpinned.Pinned {
		t.Fatalf("unpin: %+v err=%v", unpinned, err)
	}

	if _, err := mailbox.Pin(ctx, "lee", "ann", "", true); !apperrors.HasCode(err, apperrors.CodeMessageNotFound) {
		t.Fatalf("empty thread: err = %v", err)
	}
	if _, err := mailbox.Pin(ctx, "lee", "max", "missing", true); !apperrors.HasCode(err, apperrors.CodeMessageNotFound) {
		t.Fatalf("unknown id: err = %v", err)
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	mailbox, _, clock := newTestMailbox(t)
	mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "Food delivery Monday", Priority: true})
	clock.Advance(24 * time.Hour)
	mustSend(t, mailbox, SendInput{From: "lee", To: "ann", Text: "food list attached"})
	clock.Advance(24 * time.Hour)
	mustSend(t, mailbox, SendInput{From: "ann", To: "max", Text: "food for others"})
	mustSend(t, mailbox, SendInput{From: "lee", To: "max", Text: "tents"})

	texts := func(messages []Message) []string {
		var out []string
		for _, msg := range messages {
			out = append(out, msg.Text)
		}
		return out
	}
	day := func(d int) time.Time { return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		query SearchQuery
		want  []string
	}{
		{name: "all involving lee", want: []string{"Food delivery Monday", "food list attached", "tents"}},
		{name: "text", query: SearchQuery{Text: "FOOD"}, want: []string{"Food delivery Monday", "food list attached"}},
		{name: "other", query: SearchQuery{Other: "max"}, want: []string{"Food delivery Monday", "tents"}},
		{name: "priority", query: SearchQuery{PriorityOnly: true}, want: []string{"Food delivery Monday"}},
		{name: "from day", query: SearchQuery{From: day(2)}, want: []string{"food list attached", "tents"}},
		{name: "to day", query: SearchQuery{To: day(2)}, want: []string{"Food delivery Monday", "food list attached"}},
		{name: "single day", query: SearchQuery{From: day(2), To: day(2)}, want: []string{"food list attached"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, texts(mailbox.Search("lee", tt.query))); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestMailboxStorageFailure(t *testing.T) {
	t.Parallel()

	mailbox, store, _ := newTestMailbox(t)
	mustSend(t, mailbox, SendInput{From: "max", To: "lee", Text: "one"})
	store.putErr = errors.New("disk full")

	if _, err := mailbox.Send(context.Background(), SendInput{From: "max", To: "lee", Text: "two"}); apperrors.KindOf(err) != apperrors.KindStorage {
		t.Fatalf("send: err = %v", err)
	}
	if _, err := mailbox.MarkConversationRead(context.Background(), "lee", "max"); apperrors.KindOf(err) != apperrors.KindStorage {
		t.Fatalf("mark read: err = %v", err)
	}
	if got := mailbox.CountUnreadMessages("lee", ""); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}
}
