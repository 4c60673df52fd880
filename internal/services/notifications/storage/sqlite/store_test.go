package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/louisbranch/camptrack/internal/services/notifications/domain"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutAndListNotifications(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	inputs := []domain.Notification{
		{
			ID:        "n-2",
			Message:   "Still low",
			CreatedAt: now.Add(time.Minute),
			Level:     domain.LevelInfo,
			Category:  "GENERAL",
		},
		{
			ID:        "n-1",
			Message:   "Low food",
			CreatedAt: now,
			Level:     domain.LevelAlert,
			Category:  "FOOD",
			Context:   map[string]string{"camp": "Alpha"},
			ReadBy:    []string{"ann"},
		},
	}
	if err := store.PutNotifications(ctx, inputs); err != nil {
		t.Fatalf("put notifications: %v", err)
	}

	got, err := store.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	want := []domain.Notification{inputs[1], inputs[0]}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestPutNotificationsUpdatesOnlyUserSets(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	original := domain.Notification{ID: "n-1", Message: "Low food", CreatedAt: now, Level: domain.LevelAlert, Category: "FOOD"}
	if err := store.PutNotifications(ctx, []domain.Notification{original}); err != nil {
		t.Fatalf("put: %v", err)
	}

	changed := original
	changed.Message = "rewritten"
	changed.ReadBy = []string{"ann"}
	changed.DeletedBy = []string{"bob"}
	if err := store.PutNotifications(ctx, []domain.Notification{changed}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	if got[0].Message != "Low food" {
		t.Fatalf("message = %q, want original text", got[0].Message)
	}
	if diff := cmp.Diff([]string{"ann"}, got[0].ReadBy); diff != "" {
		t.Fatalf("read by mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bob"}, got[0].DeletedBy); diff != "" {
		t.Fatalf("deleted by mismatch (-want +got):\n%s", diff)
	}
}

func TestMutes(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	expiry := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	if err := store.PutMute(ctx, "FOOD", expiry); err != nil {
		t.Fatalf("put mute: %v", err)
	}
	if err := store.PutMute(ctx, "FOOD", expiry.Add(time.Hour)); err != nil {
		t.Fatalf("reset mute: %v", err)
	}
	if err := store.PutMute(ctx, "WEATHER", expiry); err != nil {
		t.Fatalf("put weather mute: %v", err)
	}

	mutes, err := store.ListMutes(ctx)
	if err != nil {
		t.Fatalf("list mutes: %v", err)
	}
	want := map[string]time.Time{"FOOD": expiry.Add(time.Hour), "WEATHER": expiry}
	if diff := cmp.Diff(want, mutes); diff != "" {
		t.Fatalf("mutes mismatch (-want +got):\n%s", diff)
	}

	if err := store.DeleteMutes(ctx, []string{"FOOD", "MISSING"}); err != nil {
		t.Fatalf("delete mutes: %v", err)
	}
	mutes, err = store.ListMutes(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if _, ok := mutes["FOOD"]; ok || len(mutes) != 1 {
		t.Fatalf("mutes = %v, want only WEATHER", mutes)
	}
}

func TestPutAndListMessages(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	messages := []domain.Message{
		{
			ID:          "m-1",
			From:        "max",
			To:          "lee",
			Text:        "Bring tents",
			SentAt:      now,
			Priority:    true,
			RequiresAck: true,
			Attachment:  "plan.pdf",
			Metadata:    map[string]string{"broadcast": "true"},
		},
		{ID: "m-2", From: "lee", To: "max", Text: "ok", SentAt: now.Add(time.Minute)},
	}
	if err := store.PutMessages(ctx, messages); err != nil {
		t.Fatalf("put messages: %v", err)
	}

	acked := messages[0]
	acked.Read = true
	acked.Acked = true
	acked.AckedAt = now.Add(time.Hour)
	acked.Pinned = true
	acked.PinnedBy = "lee"
	if err := store.PutMessages(ctx, []domain.Message{acked}); err != nil {
		t.Fatalf("update message: %v", err)
	}

	got, err := store.ListMessages(ctx)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	want := []domain.Message{acked, messages[1]}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestMailboxAndLedgerRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notifications.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	ledger := domain.NewLedger(store, clock, nil)
	if err := ledger.Load(ctx); err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if _, _, err := ledger.Add(ctx, domain.AddInput{Message: "Low food", Category: "FOOD"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ledger.Mute(ctx, "FOOD", 30); err != nil {
		t.Fatalf("mute: %v", err)
	}
	mailbox := domain.NewMailbox(store, clock, nil)
	if err := mailbox.Load(ctx); err != nil {
		t.Fatalf("load mailbox: %v", err)
	}
	if _, err := mailbox.Send(ctx, domain.SendInput{From: "max", To: "lee", Text: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	ledger = domain.NewLedger(reopened, clock, nil)
	if err := ledger.Load(ctx); err != nil {
		t.Fatalf("reload ledger: %v", err)
	}
	if got := ledger.CountUnread("lee", domain.UnreadFilter{}); got != 1 {
		t.Fatalf("unread notifications = %d, want 1", got)
	}
	if muted, _ := ledger.Muted(ctx, "FOOD"); !muted {
		t.Fatal("expected mute to survive reopen")
	}
	mailbox = domain.NewMailbox(reopened, clock, nil)
	if err := mailbox.Load(ctx); err != nil {
		t.Fatalf("reload mailbox: %v", err)
	}
	if got := mailbox.CountUnreadMessages("lee", ""); got != 1 {
		t.Fatalf("unread messages = %d, want 1", got)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "notifications.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
