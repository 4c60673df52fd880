package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
	campsqlite "github.com/louisbranch/camptrack/internal/services/camps/storage/sqlite"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
	notificationsqlite "github.com/louisbranch/camptrack/internal/services/notifications/storage/sqlite"
)

// Config locates the stores and selects the notification locale.
type Config struct {
	CampsDB         string `env:"CAMPTRACK_CAMPS_DB"         envDefault:"data/camps.db"`
	NotificationsDB string `env:"CAMPTRACK_NOTIFICATIONS_DB" envDefault:"data/notifications.db"`
	Locale          string `env:"CAMPTRACK_LOCALE"           envDefault:"en-US"`
}

// Open opens both SQLite stores, loads every component and returns a ready
// service. The returned close function releases the stores.
func Open(ctx context.Context, cfg Config, opts Options) (*Service, func() error, error) {
	campStore, err := campsqlite.Open(cfg.CampsDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open camps store: %w", err)
	}
	notificationStore, err := notificationsqlite.Open(cfg.NotificationsDB)
	if err != nil {
		_ = campStore.Close()
		return nil, nil, fmt.Errorf("open notifications store: %w", err)
	}
	closeStores := func() error {
		return errors.Join(campStore.Close(), notificationStore.Close())
	}

	registry := camps.NewRegistry(campStore, nil)
	ledger := notifications.NewLedger(notificationStore, nil, nil)
	mailbox := notifications.NewMailbox(notificationStore, nil, nil)
	if err := registry.Load(ctx); err != nil {
		_ = closeStores()
		return nil, nil, fmt.Errorf("load camps: %w", err)
	}
	if err := ledger.Load(ctx); err != nil {
		_ = closeStores()
		return nil, nil, fmt.Errorf("load notifications: %w", err)
	}
	if err := mailbox.Load(ctx); err != nil {
		_ = closeStores()
		return nil, nil, fmt.Errorf("load messages: %w", err)
	}

	if opts.Localizer == nil {
		opts.Localizer = message.NewPrinter(LocaleTag(cfg.Locale))
	}
	return NewService(registry, ledger, mailbox, opts), closeStores, nil
}

// LocaleTag parses a locale name, falling back to English.
func LocaleTag(raw string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return language.English
	}
	return tag
}
