package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/streamhive/streamhive/internal/domain/entity"
	repo "github.com/streamhive/streamhive/internal/domain/repository"
	"github.com/streamhive/streamhive/pkg/apperr"
	"github.com/streamhive/streamhive/pkg/helpers"
)

// ChannelService computes the relational aggregation views: channel
// profiles with subscriber counts and denormalized watch history. All
// operations are pure reads over users and subscription edges.
type ChannelService struct {
	Users          repo.UserRepository
	Subs           repo.SubscriptionRepository
	Redis          *redis.Client
	Logger         *logrus.Logger
	ES             *elasticsearch.Client
	ESChannelIndex string
	CacheTTL       time.Duration
}

func NewChannelService(users repo.UserRepository, subs repo.SubscriptionRepository, logger *logrus.Logger) *ChannelService {
	return &ChannelService{Users: users, Subs: subs, Logger: logger}
}

func channelProfileKey(username string) string {
	return "channel:profile:" + username
}

// ChannelProfile resolves a channel page: display fields plus raw
// subscriber/subscribed-to edge counts and, when a viewer is known,
// whether the viewer subscribes to the channel. Duplicate edges are
// counted as-is. Anonymous lookups are cached briefly in Redis.
func (s *ChannelService) ChannelProfile(ctx context.Context, username, viewerID string) (*entity.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.Validation("username is required")
	}

	// viewer context makes is_subscribed caller-specific, so only the
	// anonymous view is cacheable
	cacheable := viewerID == "" && s.Redis != nil
	if cacheable {
		var cached entity.ChannelProfile
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, channelProfileKey(username), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	u, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Internal("user lookup failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("channel not found")
	}

	subscribers, err := s.Subs.CountSubscribers(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal("subscriber count failed", err)
	}
	subscribedTo, err := s.Subs.CountSubscribedTo(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal("subscribed-to count failed", err)
	}
	isSubscribed := false
	if viewerID != "" {
		isSubscribed, err = s.Subs.IsSubscribed(ctx, viewerID, u.ID)
		if err != nil {
			return nil, apperr.Internal("subscription lookup failed", err)
		}
	}

	profile := &entity.ChannelProfile{
		ID:                        u.ID,
		Username:                  u.Username,
		FullName:                  u.FullName,
		AvatarURL:                 u.AvatarURL,
		CoverImageURL:             u.CoverImageURL,
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
		CreatedAt:                 u.CreatedAt,
	}

	if cacheable {
		ttl := s.CacheTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		if err := helpers.RedisSetJSON(ctx, s.Redis, channelProfileKey(username), profile, ttl); err != nil {
			s.Logger.WithError(err).WithField("username", username).Warn("profile cache write failed")
		}
	}
	return profile, nil
}

// WatchHistory resolves the user's watched-video references, in stored
// order, into video records with reduced owner projections. An empty
// history is an empty slice, not an error.
func (s *ChannelService) WatchHistory(ctx context.Context, userID string) ([]entity.VideoView, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("missing user context")
	}
	views, err := s.Users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("watch history lookup failed", err)
	}
	if views == nil {
		views = []entity.VideoView{}
	}
	return views, nil
}

// Search performs a multi_match query over indexed channels.
func (s *ChannelService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESChannelIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "full_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESChannelIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, apperr.Internal("channel search failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Internal("decoding search response failed", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
