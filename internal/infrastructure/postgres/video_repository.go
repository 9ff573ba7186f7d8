package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamhive/streamhive/internal/domain/entity"
	"github.com/streamhive/streamhive/internal/domain/repository"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func (r *VideoRepository) Create(ctx context.Context, v *entity.Video) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, views, created_at, updated_at
	`, v.OwnerID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.Duration)
	return row.Scan(&v.ID, &v.Views, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*entity.Video, error) {
	v := &entity.Video{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, title, description, video_url, thumbnail_url, duration, views, created_at, updated_at
		FROM videos
		WHERE id = $1
	`, id).Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
		&v.Duration, &v.Views, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (r *VideoRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Video, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, title, description, video_url, thumbnail_url, duration, views, created_at, updated_at
		FROM videos
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Video
	for rows.Next() {
		var v entity.Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
			&v.Duration, &v.Views, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

var _ repository.VideoRepository = (*VideoRepository)(nil)
