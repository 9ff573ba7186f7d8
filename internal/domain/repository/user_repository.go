package repository

import (
	"context"

	"github.com/streamhive/streamhive/internal/domain/entity"
)

// UserRepository defines persistence for the User aggregate.
// Lookups return (nil, nil) when no row matches; errors are reserved
// for store failures.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// FindByUsernameOrEmail matches either key; both are compared on
	// the lower-cased form.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// SetRefreshToken unconditionally stores token (nil clears it).
	SetRefreshToken(ctx context.Context, id string, token *string) error
	// RotateRefreshToken replaces the stored refresh token only if it
	// still equals old. Returns false when another rotation won the
	// race, which the caller must surface as token reuse.
	RotateRefreshToken(ctx context.Context, id string, oldToken, newToken string) (bool, error)
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
	// WatchHistory resolves the user's watched-video references, in
	// the stored order, into denormalized views.
	WatchHistory(ctx context.Context, userID string) ([]entity.VideoView, error)
}
