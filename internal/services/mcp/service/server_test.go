package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/camptrack/internal/services/camps/app"
	"github.com/louisbranch/camptrack/internal/services/mcp/domain"
)

func newTestSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	dir := t.TempDir()
	svc, closeStores, err := app.Open(context.Background(), app.Config{
		CampsDB:         filepath.Join(dir, "camps.db"),
		NotificationsDB: filepath.Join(dir, "notifications.db"),
		Locale:          "en",
	}, app.Options{})
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	t.Cleanup(func() { _ = closeStores() })

	server, err := New(svc, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
	})
	return session
}

func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args map[string]any) T {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if result.IsError {
		t.Fatalf("call %s returned tool error: %+v", name, result.Content)
	}
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal %s result: %v", name, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s result: %v", name, err)
	}
	return out
}

func TestNewRequiresBackend(t *testing.T) {
	t.Parallel()
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error for nil backend")
	}
}

func TestServeRejectsUnconfiguredServer(t *testing.T) {
	t.Parallel()
	var server *Server
	if err := server.Serve(context.Background(), &mcp.StdioTransport{}); err == nil {
		t.Fatal("expected error for nil server")
	}
}

func TestValidateTransport(t *testing.T) {
	t.Parallel()
	if err := ValidateTransport("stdio"); err != nil {
		t.Fatalf("stdio: %v", err)
	}
	if err := ValidateTransport("websocket"); err == nil {
		t.Fatal("expected websocket to be rejected")
	}
}

func TestToolsAreListed(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)

	listed, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range listed.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"camp_create", "camp_update", "leader_assign", "notification_unread_count", "message_camp_broadcast"} {
		if !names[want] {
			t.Errorf("tool %s not listed", want)
		}
	}
}

func TestCampLifecycleOverMCP(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)

	camp := callTool[domain.CampResult](t, session, "camp_create", map[string]any{
		"name":       "Alpha",
		"type":       "overnight",
		"start_date": "2025-07-01",
		"food_stock": 150,
	})
	if camp.EndDate != "2025-07-02" || camp.FoodStock != 150 {
		t.Fatalf("created camp = %+v", camp)
	}

	camp = callTool[domain.CampResult](t, session, "food_top_up", map[string]any{"name": "Alpha", "amount": 20})
	if camp.FoodStock != 170 {
		t.Fatalf("food stock = %d, want 170", camp.FoodStock)
	}

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "food_stock_set",
		Arguments: map[string]any{"name": "Alpha", "amount": -5},
	})
	if err == nil && !result.IsError {
		t.Fatal("expected negative stock to fail")
	}
	camp = callTool[domain.CampResult](t, session, "camp_get", map[string]any{"name": "Alpha"})
	if camp.FoodStock != 170 {
		t.Fatalf("food stock after failure = %d, want 170", camp.FoodStock)
	}

	unread := callTool[domain.CountResult](t, session, "notification_unread_count", map[string]any{
		"user":   "ana",
		"filter": `category = "FOOD"`,
	})
	if unread.Count != 1 {
		t.Fatalf("unread food notifications = %d, want 1", unread.Count)
	}
}

func TestLeaderAssignReportsConflictsOverMCP(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)
	for _, camp := range []map[string]any{
		{"name": "Alpha", "type": "overnight", "start_date": "2025-07-01"},
		{"name": "Beta", "type": "overnight", "start_date": "2025-07-02"},
	} {
		callTool[domain.CampResult](t, session, "camp_create", camp)
	}

	batch := callTool[domain.LeaderAssignResult](t, session, "leader_assign", map[string]any{
		"leader":  "lee",
		"indices": []int{0, 1},
	})
	if batch.Assigned || !batch.WithinBatch {
		t.Fatalf("batch result = %+v, want within-batch conflict", batch)
	}
	if diff := cmp.Diff([]domain.ConflictEntry{{Candidate: "Alpha", Existing: "Beta"}}, batch.Conflicts); diff != "" {
		t.Fatalf("conflicts mismatch (-want +got):\n%s", diff)
	}

	first := callTool[domain.LeaderAssignResult](t, session, "leader_assign", map[string]any{"leader": "lee", "indices": []int{0}})
	if !first.Assigned {
		t.Fatalf("first assignment = %+v", first)
	}
	blocked := callTool[domain.LeaderAssignResult](t, session, "leader_assign", map[string]any{"leader": "lee", "indices": []int{1}})
	if blocked.Assigned || len(blocked.Conflicts) != 1 {
		t.Fatalf("blocked assignment = %+v", blocked)
	}
	replaced := callTool[domain.LeaderAssignResult](t, session, "leader_assign", map[string]any{
		"leader":  "lee",
		"indices": []int{1},
		"resolve": "replace",
	})
	if diff := cmp.Diff(domain.LeaderAssignResult{
		Leader:   "lee",
		Assigned: true,
		Selected: []string{"Beta"},
		Released: []string{"Alpha"},
	}, replaced); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}
}

func TestCampUpdateOverMCP(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)
	for _, camp := range []map[string]any{
		{"name": "Alpha", "type": "overnight", "start_date": "2025-07-01"},
		{"name": "Beta", "type": "multi-day", "start_date": "2025-07-10", "nights": 3},
	} {
		callTool[domain.CampResult](t, session, "camp_create", camp)
	}
	callTool[domain.LeaderAssignResult](t, session, "leader_assign", map[string]any{"leader": "lee", "indices": []int{0, 1}})

	updated := callTool[domain.CampResult](t, session, "camp_update", map[string]any{
		"name":     "Beta",
		"new_name": "Bravo",
		"type":     "day",
	})
	if updated.Name != "Bravo" || updated.StartDate != updated.EndDate || updated.Nights != 0 {
		t.Fatalf("updated camp = %+v", updated)
	}

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "camp_update",
		Arguments: map[string]any{"name": "Bravo", "start_date": "2025-07-02"},
	})
	if err != nil {
		t.Fatalf("call camp_update: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected overlapping date shift to fail")
	}
	days := callTool[domain.DayConflictsResult](t, session, "leader_day_conflicts", map[string]any{})
	if len(days.Conflicts) != 0 {
		t.Fatalf("day conflicts = %+v, want none", days.Conflicts)
	}
}

func TestMessagingOverMCP(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)

	sent := callTool[domain.MessageEntry](t, session, "message_send", map[string]any{
		"from":     "ana",
		"to":       "ben",
		"text":     "Tents packed",
		"priority": true,
	})
	if !sent.RequiresAck {
		t.Fatalf("priority message = %+v, want requires_ack", sent)
	}
	unread := callTool[domain.CountResult](t, session, "message_unread_count", map[string]any{"user": "ben"})
	if unread.Count != 1 {
		t.Fatalf("unread = %d, want 1", unread.Count)
	}
	acked := callTool[domain.ChangedResult](t, session, "message_acknowledge", map[string]any{"user": "ben", "other": "ana"})
	if acked.Changed != 1 {
		t.Fatalf("acked = %d, want 1", acked.Changed)
	}
	found := callTool[domain.MessagesResult](t, session, "message_search", map[string]any{"user": "ben", "text": "TENTS"})
	if len(found.Messages) != 1 || !found.Messages[0].Acked {
		t.Fatalf("search = %+v", found)
	}
}
