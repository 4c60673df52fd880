// Package sqlite persists the camp collection in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	sqlitemigrate "github.com/louisbranch/camptrack/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/camptrack/internal/services/camps/domain"
	"github.com/louisbranch/camptrack/internal/services/camps/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for camps.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a camp SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListCamps returns every stored camp in registry order.
func (s *Store) ListCamps(ctx context.Context) ([]domain.Camp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, location, camp_type, start_date, end_date, food_stock, pay_rate,
       leaders_json, campers_json, activities_json, incidents_json, food_usage_json
FROM camps
ORDER BY position ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list camps: %w", err)
	}
	defer rows.Close()

	var camps []domain.Camp
	for rows.Next() {
		camp, err := scanCamp(rows.Scan)
		if err != nil {
			return nil, err
		}
		camps = append(camps, camp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate camps: %w", err)
	}
	return camps, nil
}

// ReplaceCamps swaps the stored collection for camps in one transaction.
func (s *Store) ReplaceCamps(ctx context.Context, camps []domain.Camp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin camp write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback camp write: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM camps`); err != nil {
		return rollbackWith(fmt.Errorf("clear camps: %w", err))
	}
	for position, camp := range camps {
		if err := insertCamp(ctx, tx, position, camp); err != nil {
			return rollbackWith(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit camp write: %w", err)
	}
	return nil
}

func insertCamp(ctx context.Context, tx *sql.Tx, position int, camp domain.Camp) error {
	leaders, err := encodeJSON(camp.ScoutLeaders, "[]")
	if err != nil {
		return fmt.Errorf("encode leaders for %s: %w", camp.Name, err)
	}
	campers, err := encodeJSON(camp.Campers, "[]")
	if err != nil {
		return fmt.Errorf("encode campers for %s: %w", camp.Name, err)
	}
	activities, err := encodeJSON(camp.Activities, "{}")
	if err != nil {
		return fmt.Errorf("encode activities for %s: %w", camp.Name, err)
	}
	incidents, err := encodeJSON(camp.Incidents, "[]")
	if err != nil {
		return fmt.Errorf("encode incidents for %s: %w", camp.Name, err)
	}
	usage, err := encodeJSON(camp.DailyFoodUsage, "{}")
	if err != nil {
		return fmt.Errorf("encode food usage for %s: %w", camp.Name, err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO camps (
    name, position, location, camp_type, start_date, end_date, food_stock, pay_rate,
    leaders_json, campers_json, activities_json, incidents_json, food_usage_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		camp.Name,
		position,
		camp.Location,
		int(camp.Type),
		domain.FormatDate(camp.StartDate),
		domain.FormatDate(camp.EndDate),
		camp.FoodStock,
		camp.PayRate,
		leaders,
		campers,
		activities,
		incidents,
		usage,
	)
	if err != nil {
		return fmt.Errorf("insert camp %s: %w", camp.Name, err)
	}
	return nil
}

func scanCamp(scan func(dest ...any) error) (domain.Camp, error) {
	var (
		camp                                           domain.Camp
		campType                                       int
		startDate, endDate                             string
		leaders, campers, activities, incidents, usage string
	)
	if err := scan(
		&camp.Name,
		&camp.Location,
		&campType,
		&startDate,
		&endDate,
		&camp.FoodStock,
		&camp.PayRate,
		&leaders,
		&campers,
		&activities,
		&incidents,
		&usage,
	); err != nil {
		return domain.Camp{}, fmt.Errorf("scan camp: %w", err)
	}

	camp.Type = domain.CampType(campType)
	var err error
	if camp.StartDate, err = domain.ParseDate(startDate); err != nil {
		return domain.Camp{}, fmt.Errorf("camp %s start date: %w", camp.Name, err)
	}
	if camp.EndDate, err = domain.ParseDate(endDate); err != nil {
		return domain.Camp{}, fmt.Errorf("camp %s end date: %w", camp.Name, err)
	}

	decoders := []struct {
		field string
		raw   string
		dest  any
	}{
		{"leaders", leaders, &camp.ScoutLeaders},
		{"campers", campers, &camp.Campers},
		{"activities", activities, &camp.Activities},
		{"incidents", incidents, &camp.Incidents},
		{"food usage", usage, &camp.DailyFoodUsage},
	}
	for _, d := range decoders {
		if err := json.Unmarshal([]byte(d.raw), d.dest); err != nil {
			return domain.Camp{}, fmt.Errorf("decode %s for camp %s: %w", d.field, camp.Name, err)
		}
	}
	return camp, nil
}

func encodeJSON(value any, empty string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}
