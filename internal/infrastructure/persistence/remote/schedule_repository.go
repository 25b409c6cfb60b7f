package remote

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/security"
)

type ScheduleRepository struct {
	base
}

const scheduleColumns = `id, title, description, event_date, start_time, end_time, timezone, category, status,
	is_recurring, recurring_pattern, location, video_url, created_at, updated_at`

// FindAll returns events ordered by date ascending, then start time.
func (r *ScheduleRepository) FindAll(ctx context.Context, filters schedule.Filters) ([]schedule.Event, error) {
	var where []string
	var args []any
	if filters.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filters.Status))
	}
	if filters.IsRecurring != nil {
		where = append(where, "is_recurring = ?")
		args = append(args, *filters.IsRecurring)
	}
	if filters.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *filters.Category)
	}

	query := `SELECT ` + scheduleColumns + ` FROM schedule_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_date ASC, start_time ASC"
	defer r.track(query, time.Now())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list schedule events", "schedule_events", err)
	}
	defer rows.Close()

	var events []schedule.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*schedule.Event, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_events WHERE id = ?`
	defer r.track(query, time.Now())

	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get schedule event", "schedule_events", err)
	}
	return ev, nil
}

// Upsert updates in place when the id exists, otherwise inserts. A blank id
// gets a new ULID.
func (r *ScheduleRepository) Upsert(ctx context.Context, ev *schedule.Event) error {
	const query = `INSERT INTO schedule_events (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, description = excluded.description, event_date = excluded.event_date,
			start_time = excluded.start_time, end_time = excluded.end_time, timezone = excluded.timezone,
			category = excluded.category, status = excluded.status, is_recurring = excluded.is_recurring,
			recurring_pattern = excluded.recurring_pattern, location = excluded.location,
			video_url = excluded.video_url, updated_at = excluded.updated_at`
	defer r.track(query, time.Now())

	now := time.Now().UTC()
	if ev.ID == "" {
		ev.ID = security.GenerateULID()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	ev.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.Title, database.NullString(ev.Description), ev.Date, ev.StartTime, ev.EndTime,
		ev.Timezone, ev.Category, string(ev.Status), ev.IsRecurring, database.NullString(ev.RecurringPattern),
		database.NullString(ev.Location), database.NullString(ev.VideoURL), formatTime(ev.CreatedAt), formatTime(ev.UpdatedAt))
	return wrap("save schedule event", "schedule_events", err)
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_events WHERE id = ?`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, id)
	return wrap("delete schedule event", "schedule_events", err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*schedule.Event, error) {
	var ev schedule.Event
	var status, created, updated string
	var description, pattern, location, videoURL sql.NullString
	err := row.Scan(&ev.ID, &ev.Title, &description, &ev.Date, &ev.StartTime, &ev.EndTime,
		&ev.Timezone, &ev.Category, &status, &ev.IsRecurring, &pattern, &location, &videoURL, &created, &updated)
	if err != nil {
		return nil, err
	}
	ev.Status = schedule.Status(status)
	ev.Description = description.String
	ev.RecurringPattern = pattern.String
	ev.Location = location.String
	ev.VideoURL = videoURL.String
	ev.CreatedAt = parseTime(created)
	ev.UpdatedAt = parseTime(updated)
	return &ev, nil
}
