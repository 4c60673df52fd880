package domain

import (
	"context"
	"sort"
	"time"
)

type fakeStore struct {
	notifications map[string]Notification
	mutes         map[string]time.Time
	messages      map[string]Message
	putErr        error
	puts          int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notifications: map[string]Notification{},
		mutes:         map[string]time.Time{},
		messages:      map[string]Message{},
	}
}

func (s *fakeStore) ListNotifications(context.Context) ([]Notification, error) {
	out := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) PutNotifications(_ context.Context, notifications []Notification) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	for _, n := range notifications {
		s.notifications[n.ID] = n.Clone()
	}
	return nil
}

func (s *fakeStore) ListMutes(context.Context) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(s.mutes))
	for k, v := range s.mutes {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) PutMute(_ context.Context, category string, expiresAt time.Time) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mutes[category] = expiresAt
	return nil
}

func (s *fakeStore) DeleteMutes(_ context.Context, categories []string) error {
	for _, category := range categories {
		delete(s.mutes, category)
	}
	return nil
}

func (s *fakeStore) ListMessages(context.Context) ([]Message, error) {
	out := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) PutMessages(_ context.Context, messages []Message) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	for _, m := range messages {
		s.messages[m.ID] = m.Clone()
	}
	return nil
}

// testClock is a settable clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sequentialIDs(prefix string) func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return prefix + "-" + string(rune('a'+n-1)), nil
	}
}
