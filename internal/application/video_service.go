package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/streamhive/streamhive/internal/domain/entity"
	repo "github.com/streamhive/streamhive/internal/domain/repository"
	"github.com/streamhive/streamhive/pkg/apperr"
)

// VideoService covers the small slice of video behavior the identity
// core depends on: recording a watch appends to the viewer's ordered
// history.
type VideoService struct {
	Videos repo.VideoRepository
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewVideoService(videos repo.VideoRepository, users repo.UserRepository, logger *logrus.Logger) *VideoService {
	return &VideoService{Videos: videos, Users: users, Logger: logger}
}

// Watch records that userID watched videoID and returns the video.
// The append keeps insertion order; history is returned oldest-first
// exactly as stored.
func (s *VideoService) Watch(ctx context.Context, userID, videoID string) (*entity.Video, error) {
	v, err := s.Videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, apperr.Internal("video lookup failed", err)
	}
	if v == nil {
		return nil, apperr.NotFound("video not found")
	}
	if err := s.Users.AppendWatchHistory(ctx, userID, videoID); err != nil {
		return nil, apperr.Internal("recording watch failed", err)
	}
	return v, nil
}

// ListByOwner returns a channel's uploads, newest first.
func (s *VideoService) ListByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Video, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	vs, err := s.Videos.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, apperr.Internal("video listing failed", err)
	}
	return vs, nil
}
