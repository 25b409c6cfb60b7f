package remote

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/security"
)

type PhotoRepository struct {
	base
}

// FindAll returns photos newest first.
func (r *PhotoRepository) FindAll(ctx context.Context) ([]media.Photo, error) {
	const query = `SELECT id, file_name, url, description, created_at FROM photos ORDER BY created_at DESC`
	defer r.track(query, time.Now())

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap("list photos", "photos", err)
	}
	defer rows.Close()

	var photos []media.Photo
	for rows.Next() {
		var p media.Photo
		var description sql.NullString
		var created string
		if err := rows.Scan(&p.ID, &p.FileName, &p.URL, &description, &created); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		p.Description = description.String
		p.CreatedAt = parseTime(created)
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *PhotoRepository) Store(ctx context.Context, p *media.Photo) error {
	const query = `INSERT INTO photos (id, file_name, url, description, created_at) VALUES (?, ?, ?, ?, ?)`
	defer r.track(query, time.Now())

	if p.ID == "" {
		p.ID = security.GenerateULID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, p.ID, p.FileName, p.URL, database.NullString(p.Description), formatTime(p.CreatedAt))
	return wrap("save photo", "photos", err)
}

func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM photos WHERE id = ?`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, id)
	return wrap("delete photo", "photos", err)
}

type VideoRepository struct {
	base
}

// FindAll orders by display_order ascending, then newest first.
func (r *VideoRepository) FindAll(ctx context.Context) ([]media.Video, error) {
	const query = `SELECT id, title, thumbnail_url, duration, video_date, views, embed_link, display_order, created_at, updated_at
		FROM videos ORDER BY display_order ASC, created_at DESC`
	defer r.track(query, time.Now())

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap("list videos", "videos", err)
	}
	defer rows.Close()

	var videos []media.Video
	for rows.Next() {
		var v media.Video
		var thumb, duration, date, views, embed sql.NullString
		var created, updated string
		if err := rows.Scan(&v.ID, &v.Title, &thumb, &duration, &date, &views, &embed, &v.DisplayOrder, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		v.ThumbnailURL, v.Duration, v.Date, v.Views, v.EmbedLink = thumb.String, duration.String, date.String, views.String, embed.String
		v.CreatedAt = parseTime(created)
		v.UpdatedAt = parseTime(updated)
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) Upsert(ctx context.Context, v *media.Video) error {
	const query = `INSERT INTO videos (id, title, thumbnail_url, duration, video_date, views, embed_link, display_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, thumbnail_url = excluded.thumbnail_url,
			duration = excluded.duration, video_date = excluded.video_date, views = excluded.views,
			embed_link = excluded.embed_link, display_order = excluded.display_order, updated_at = excluded.updated_at`
	defer r.track(query, time.Now())

	now := time.Now().UTC()
	if v.ID == "" {
		v.ID = security.GenerateULID()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query, v.ID, v.Title, database.NullString(v.ThumbnailURL), database.NullString(v.Duration),
		database.NullString(v.Date), database.NullString(v.Views), database.NullString(v.EmbedLink), v.DisplayOrder,
		formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
	return wrap("save video", "videos", err)
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM videos WHERE id = ?`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, id)
	return wrap("delete video", "videos", err)
}

type EventRepository struct {
	base
}

func (r *EventRepository) FindAll(ctx context.Context) ([]media.Event, error) {
	const query = `SELECT id, title, description, event_date, event_time, thumbnail_url, embed_code, is_live, updated_at
		FROM events ORDER BY event_date DESC, updated_at DESC`
	defer r.track(query, time.Now())

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap("list events", "events", err)
	}
	defer rows.Close()

	var events []media.Event
	for rows.Next() {
		var e media.Event
		var description, date, clock, thumb, embed sql.NullString
		var updated string
		if err := rows.Scan(&e.ID, &e.Title, &description, &date, &clock, &thumb, &embed, &e.IsLive, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Description, e.Date, e.Time, e.ThumbnailURL, e.EmbedCode = description.String, date.String, clock.String, thumb.String, embed.String
		e.UpdatedAt = parseTime(updated)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *EventRepository) Upsert(ctx context.Context, e *media.Event) error {
	const query = `INSERT INTO events (id, title, description, event_date, event_time, thumbnail_url, embed_code, is_live, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, description = excluded.description,
			event_date = excluded.event_date, event_time = excluded.event_time, thumbnail_url = excluded.thumbnail_url,
			embed_code = excluded.embed_code, is_live = excluded.is_live, updated_at = excluded.updated_at`
	defer r.track(query, time.Now())

	if e.ID == "" {
		e.ID = security.GenerateULID()
	}
	e.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Title, database.NullString(e.Description), database.NullString(e.Date),
		database.NullString(e.Time), database.NullString(e.ThumbnailURL), database.NullString(e.EmbedCode), e.IsLive, formatTime(e.UpdatedAt))
	return wrap("save event", "events", err)
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM events WHERE id = ?`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, id)
	return wrap("delete event", "events", err)
}

// TokenUsageRepository records AssemblyAI token spend.
type TokenUsageRepository struct {
	base
}

func (r *TokenUsageRepository) Record(ctx context.Context, tokens int) error {
	const query = `INSERT INTO aai_tokens_used (timestamp, tokens_used) VALUES (?, ?)`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, formatTime(time.Now()), tokens)
	return wrap("record token usage", "aai_tokens_used", err)
}

// UsedSince sums tokens recorded at or after since.
func (r *TokenUsageRepository) UsedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(tokens_used), 0) FROM aai_tokens_used WHERE timestamp >= ?`
	defer r.track(query, time.Now())

	var total int
	if err := r.db.QueryRowContext(ctx, query, formatTime(since)).Scan(&total); err != nil {
		return 0, wrap("sum token usage", "aai_tokens_used", err)
	}
	return total, nil
}
