package repository

import (
	"context"

	"github.com/streamhive/streamhive/internal/domain/entity"
)

// VideoRepository defines persistence for videos.
type VideoRepository interface {
	Create(ctx context.Context, v *entity.Video) error
	FindByID(ctx context.Context, id string) (*entity.Video, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Video, error)
}
