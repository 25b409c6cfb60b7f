// Package remote implements the remote settings store over database/sql.
package remote

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
)

// Store bundles the repositories sharing one connection.
type Store struct {
	Thumbnails *ThumbnailRepository
	Settings   *SettingRepository
	Schedule   *ScheduleRepository
	Photos     *PhotoRepository
	Videos     *VideoRepository
	Events     *EventRepository
	AITokens   *TokenUsageRepository
}

func NewStore(db *sql.DB, logger *logging.ChanneledLogger) *Store {
	b := base{db: db, logger: logger}
	return &Store{
		Thumbnails: &ThumbnailRepository{base: b},
		Settings:   &SettingRepository{base: b},
		Schedule:   &ScheduleRepository{base: b},
		Photos:     &PhotoRepository{base: b},
		Videos:     &VideoRepository{base: b},
		Events:     &EventRepository{base: b},
		AITokens:   &TokenUsageRepository{base: b},
	}
}

type base struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func (b base) track(query string, start time.Time) {
	if b.logger != nil {
		database.CheckAndLogSlowQuery(b.logger, query, time.Since(start))
	}
}

// wrap classifies a driver error. Missing tables become configuration errors.
func wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if database.IsMissingTable(err) {
		return &errs.ConfigurationError{
			Problem: fmt.Sprintf("Table %q does not exist", table),
			Hint:    "Run the schema setup (AUTO_MIGRATE=true) before using the admin panel",
			Err:     err,
		}
	}
	return errs.Remote(op, err)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// storedTimeLayout is fixed-width so stored values sort lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(storedTimeLayout)
}
