// Package domain holds the notification ledger and the staff mailbox.
package domain

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	"github.com/louisbranch/camptrack/internal/platform/id"
)

// Notification is one ledger entry. Only ReadBy and DeletedBy change after
// creation.
type Notification struct {
	ID        string
	Message   string
	CreatedAt time.Time
	Level     Level
	Category  string
	Context   map[string]string
	// ReadBy and DeletedBy are sorted user sets.
	ReadBy    []string
	DeletedBy []string
}

// IsReadBy reports whether user has read the notification.
func (n Notification) IsReadBy(user string) bool {
	_, found := slices.BinarySearch(n.ReadBy, user)
	return found
}

// IsDeletedBy reports whether user has hidden the notification.
func (n Notification) IsDeletedBy(user string) bool {
	_, found := slices.BinarySearch(n.DeletedBy, user)
	return found
}

// Clone returns a deep copy.
func (n Notification) Clone() Notification {
	out := n
	out.ReadBy = slices.Clone(n.ReadBy)
	out.DeletedBy = slices.Clone(n.DeletedBy)
	if n.Context != nil {
		out.Context = make(map[string]string, len(n.Context))
		for k, v := range n.Context {
			out.Context[k] = v
		}
	}
	return out
}

// LedgerStore persists notifications and category mutes.
type LedgerStore interface {
	ListNotifications(ctx context.Context) ([]Notification, error)
	// PutNotifications upserts notifications by ID in one transaction.
	PutNotifications(ctx context.Context, notifications []Notification) error
	ListMutes(ctx context.Context) (map[string]time.Time, error)
	PutMute(ctx context.Context, category string, expiresAt time.Time) error
	DeleteMutes(ctx context.Context, categories []string) error
}

// Ledger is the append-only notification feed with per-user read and hide
// state and time-bounded category mutes.
type Ledger struct {
	store         LedgerStore
	clock         func() time.Time
	newID         func() (string, error)
	notifications []Notification
	mutes         map[string]time.Time
}

// NewLedger constructs an empty ledger. Call Load to read stored state.
func NewLedger(store LedgerStore, clock func() time.Time, newID func() (string, error)) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Ledger{store: store, clock: clock, newID: newID, mutes: map[string]time.Time{}}
}

// Load replaces in-memory state with the stored notifications and mutes.
func (l *Ledger) Load(ctx context.Context) error {
	if l == nil || l.store == nil {
		return storeNotConfigured("notification")
	}
	notifications, err := l.store.ListNotifications(ctx)
	if err != nil {
		return apperrors.Storage("load notifications", err)
	}
	mutes, err := l.store.ListMutes(ctx)
	if err != nil {
		return apperrors.Storage("load mutes", err)
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})
	loaded := make([]Notification, 0, len(notifications))
	for _, n := range notifications {
		n.ReadBy = normalizeUsers(n.ReadBy)
		n.DeletedBy = normalizeUsers(n.DeletedBy)
		loaded = append(loaded, n)
	}
	l.notifications = loaded
	l.mutes = make(map[string]time.Time, len(mutes))
	for category, expiry := range mutes {
		l.mutes[NormalizeCategory(category)] = expiry.UTC()
	}
	return nil
}

// AddInput describes one notification.
type AddInput struct {
	Message  string
	Level    string
	Category string
	Context  map[string]string
}

// Add appends a notification. When the category is muted nothing is stored,
// added is false and the returned notification has no ID.
func (l *Ledger) Add(ctx context.Context, input AddInput) (notification Notification, added bool, err error) {
	if l == nil || l.store == nil {
		return Notification{}, false, storeNotConfigured("notification")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return Notification{}, false, apperrors.New(apperrors.CodeMessageRequired, "notification message is required")
	}
	notification = Notification{
		Message:  message,
		Level:    NormalizeLevel(input.Level),
		Category: NormalizeCategory(input.Category),
	}
	if len(input.Context) > 0 {
		notification.Context = make(map[string]string, len(input.Context))
		for k, v := range input.Context {
			notification.Context[k] = v
		}
	}
	muted, err := l.Muted(ctx, notification.Category)
	if err != nil {
		return Notification{}, false, err
	}
	if muted {
		return notification, false, nil
	}

	notificationID, err := l.newID()
	if err != nil {
		return Notification{}, false, err
	}
	notification.ID = notificationID
	notification.CreatedAt = l.nowUTC()
	if err := l.store.PutNotifications(ctx, []Notification{notification}); err != nil {
		return Notification{}, false, apperrors.Storage("save notification", err)
	}
	l.notifications = append(l.notifications, notification)
	return notification.Clone(), true, nil
}

// List returns the notifications user has not hidden, oldest first.
func (l *Ledger) List(user string) []Notification {
	user = strings.TrimSpace(user)
	var out []Notification
	for _, n := range l.notifications {
		if n.IsDeletedBy(user) {
			continue
		}
		out = append(out, n.Clone())
	}
	return out
}

// MarkAllRead records user as a reader of every notification and returns how
// many changed. Repeating it changes nothing.
func (l *Ledger) MarkAllRead(ctx context.Context, user string) (int, error) {
	return l.addUser(ctx, user, func(n *Notification) *[]string { return &n.ReadBy })
}

// DeleteForUser hides every notification from user and returns how many
// changed. Other users keep seeing them.
func (l *Ledger) DeleteForUser(ctx context.Context, user string) (int, error) {
	return l.addUser(ctx, user, func(n *Notification) *[]string { return &n.DeletedBy })
}

// UnreadFilter narrows CountUnread. Zero fields match everything.
type UnreadFilter struct {
	Level    Level
	Category string
	Match    func(Notification) bool
}

// CountUnread counts notifications user has not read that satisfy every
// supplied filter.
func (l *Ledger) CountUnread(user string, filter UnreadFilter) int {
	user = strings.TrimSpace(user)
	level := Level("")
	if filter.Level != "" {
		level = NormalizeLevel(string(filter.Level))
	}
	category := strings.ToUpper(strings.TrimSpace(filter.Category))

	count := 0
	for _, n := range l.notifications {
		if n.IsReadBy(user) {
			continue
		}
		if level != "" && n.Level != level {
			continue
		}
		if category != "" && n.Category != category {
			continue
		}
		if filter.Match != nil && !filter.Match(n) {
			continue
		}
		count++
	}
	return count
}

// Mute suppresses new notifications in category for minutes from now.
// Muting again resets the expiry.
func (l *Ledger) Mute(ctx context.Context, category string, minutes int) (time.Time, error) {
	if l == nil || l.store == nil {
		return time.Time{}, storeNotConfigured("notification")
	}
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" {
		return time.Time{}, apperrors.New(apperrors.CodeCategoryRequired, "category is required")
	}
	if minutes <= 0 {
		value := strconv.Itoa(minutes)
		return time.Time{}, apperrors.WithMetadata(apperrors.CodeInvalidMuteMinutes, "mute minutes must be positive: "+value, map[string]string{"Minutes": value})
	}
	expiry := l.nowUTC().Add(time.Duration(minutes) * time.Minute)
	if err := l.store.PutMute(ctx, category, expiry); err != nil {
		return time.Time{}, apperrors.Storage("save mute", err)
	}
	l.mutes[category] = expiry
	return expiry, nil
}

// Unmute clears any mute on category.
func (l *Ledger) Unmute(ctx context.Context, category string) error {
	if l == nil || l.store == nil {
		return storeNotConfigured("notification")
	}
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" {
		return apperrors.New(apperrors.CodeCategoryRequired, "category is required")
	}
	if _, ok := l.mutes[category]; !ok {
		return nil
	}
	if err := l.store.DeleteMutes(ctx, []string{category}); err != nil {
		return apperrors.Storage("delete mute", err)
	}
	delete(l.mutes, category)
	return nil
}

// Muted reports whether category is muted now. Expired mutes are evicted.
func (l *Ledger) Muted(ctx context.Context, category string) (bool, error) {
	if err := l.evictExpired(ctx); err != nil {
		return false, err
	}
	_, ok := l.mutes[NormalizeCategory(category)]
	return ok, nil
}

// Mutes returns the active mutes keyed by category.
func (l *Ledger) Mutes(ctx context.Context) (map[string]time.Time, error) {
	if err := l.evictExpired(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(l.mutes))
	for category, expiry := range l.mutes {
		out[category] = expiry
	}
	return out, nil
}

func (l *Ledger) evictExpired(ctx context.Context) error {
	if l == nil || l.store == nil {
		return storeNotConfigured("notification")
	}
	now := l.nowUTC()
	var expired []string
	for category, expiry := range l.mutes {
		if !now.Before(expiry) {
			expired = append(expired, category)
		}
	}
	if len(expired) == 0 {
		return nil
	}
	sort.Strings(expired)
	if err := l.store.DeleteMutes(ctx, expired); err != nil {
		return apperrors.Storage("evict mutes", err)
	}
	for _, category := range expired {
		delete(l.mutes, category)
	}
	return nil
}

func (l *Ledger) addUser(ctx context.Context, user string, set func(*Notification) *[]string) (int, error) {
	if l == nil || l.store == nil {
		return 0, storeNotConfigured("notification")
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return 0, userRequired()
	}

	next := make([]Notification, len(l.notifications))
	var changed []Notification
	for i, n := range l.notifications {
		n = n.Clone()
		users := set(&n)
		if at, found := slices.BinarySearch(*users, user); !found {
			*users = slices.Insert(*users, at, user)
			changed = append(changed, n)
		}
		next[i] = n
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if err := l.store.PutNotifications(ctx, changed); err != nil {
		return 0, apperrors.Storage("save notifications", err)
	}
	l.notifications = next
	return len(changed), nil
}

func (l *Ledger) nowUTC() time.Time {
	if l.clock == nil {
		return time.Now().UTC()
	}
	return l.clock().UTC()
}

func normalizeUsers(users []string) []string {
	out := make([]string, 0, len(users))
	for _, user := range users {
		if user = strings.TrimSpace(user); user != "" {
			out = append(out, user)
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}

func storeNotConfigured(kind string) error {
	return apperrors.Storage(kind+" store is not configured", nil)
}

func userRequired() error {
	return apperrors.New(apperrors.CodeUserRequired, "user is required")
}
