package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamhive/streamhive/internal/domain/entity"
	"github.com/streamhive/streamhive/internal/domain/repository"
)

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url, password_hash, refresh_token, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var cover *string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &cover,
		&u.PasswordHash, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if cover != nil {
		u.CoverImageURL = *cover
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	var cover *string
	if u.CoverImageURL != "" {
		cover = &u.CoverImageURL
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, full_name, avatar_url, cover_image_url, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.FullName, u.AvatarURL, cover, u.PasswordHash)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = lower($1)
	`, username))
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE (username <> '' AND username = lower($1))
		   OR (email <> '' AND email = lower($2))
		LIMIT 1
	`, username, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	var cover *string
	if u.CoverImageURL != "" {
		cover = &u.CoverImageURL
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, full_name = $2, avatar_url = $3, cover_image_url = $4, updated_at = $5
		WHERE id = $6
	`, u.Email, u.FullName, u.AvatarURL, cover, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2
	`, token, id)
	return err
}

// RotateRefreshToken is the single conditional write that makes reuse
// detection reliable under concurrent refreshes: only the caller whose
// old token still matches gets to install the new one.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id string, oldToken, newToken string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_token = $1, updated_at = now()
		WHERE id = $2 AND refresh_token = $3
	`, newToken, id, oldToken)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *UserRepository) AppendWatchHistory(ctx context.Context, userID, videoID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)
	`, userID, videoID)
	return err
}

// WatchHistory joins the ordered reference list against videos and
// their owners. Order follows the append position; no re-sorting.
func (r *UserRepository) WatchHistory(ctx context.Context, userID string) ([]entity.VideoView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration, v.views, v.created_at,
		       o.id, o.username, o.full_name, o.avatar_url
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.position
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.VideoView
	for rows.Next() {
		var vv entity.VideoView
		if err := rows.Scan(&vv.ID, &vv.Title, &vv.Description, &vv.VideoURL, &vv.ThumbnailURL,
			&vv.Duration, &vv.Views, &vv.CreatedAt,
			&vv.Owner.ID, &vv.Owner.Username, &vv.Owner.FullName, &vv.Owner.AvatarURL); err != nil {
			return nil, err
		}
		out = append(out, vv)
	}
	return out, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
