package remote

import (
	"context"
	"database/sql"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/infrastructure/security"
)

type ThumbnailRepository struct {
	base
}

func (r *ThumbnailRepository) FindByType(ctx context.Context, thumbType string) (*media.Thumbnail, error) {
	const query = `SELECT type, file_name, image_url, updated_at FROM thumbnails WHERE type = ?`
	defer r.track(query, time.Now())

	var thumb media.Thumbnail
	var updated string
	err := r.db.QueryRowContext(ctx, query, thumbType).Scan(&thumb.Type, &thumb.FileName, &thumb.ImageURL, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get thumbnail", "thumbnails", err)
	}
	thumb.UpdatedAt = parseTime(updated)
	return &thumb, nil
}

// Upsert keeps at most one row per type.
func (r *ThumbnailRepository) Upsert(ctx context.Context, thumb *media.Thumbnail) error {
	const query = `INSERT INTO thumbnails (id, type, file_name, image_url, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(type) DO UPDATE SET file_name = excluded.file_name, image_url = excluded.image_url, updated_at = excluded.updated_at`
	defer r.track(query, time.Now())

	if thumb.UpdatedAt.IsZero() {
		thumb.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, security.GenerateULID(), thumb.Type, thumb.FileName, thumb.ImageURL, formatTime(thumb.UpdatedAt))
	return wrap("save thumbnail", "thumbnails", err)
}

func (r *ThumbnailRepository) DeleteByType(ctx context.Context, thumbType string) error {
	const query = `DELETE FROM thumbnails WHERE type = ?`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, thumbType)
	return wrap("delete thumbnail", "thumbnails", err)
}
