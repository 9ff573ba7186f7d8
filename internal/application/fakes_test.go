package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/streamhive/streamhive/internal/domain/entity"
)

// In-memory repository fakes. They mirror the conditional-update
// semantics of the postgres implementations so the rotation invariants
// can be exercised without a database.

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*entity.User
	history map[string][]string
	videos  *fakeVideoRepo

	// afterFind mutates stored state after FindByID has taken its
	// snapshot; used to simulate a concurrent rotation.
	afterFind func(stored *entity.User)
}

func newFakeUserRepo(videos *fakeVideoRepo) *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*entity.User),
		history: make(map[string][]string),
		videos:  videos,
	}
}

func copyUser(u *entity.User) *entity.User {
	cp := *u
	if u.RefreshToken != nil {
		tok := *u.RefreshToken
		cp.RefreshToken = &tok
	}
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := copyUser(stored)
	if r.afterFind != nil {
		r.afterFind(stored)
	}
	return cp, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username = strings.ToLower(username)
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username = strings.ToLower(username)
	email = strings.ToLower(email)
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return nil
	}
	stored.Email = u.Email
	stored.FullName = u.FullName
	stored.AvatarURL = u.AvatarURL
	stored.CoverImageURL = u.CoverImageURL
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.users[id]; ok {
		stored.PasswordHash = hash
	}
	return nil
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil
	}
	if token == nil {
		stored.RefreshToken = nil
		return nil
	}
	tok := *token
	stored.RefreshToken = &tok
	return nil
}

func (r *fakeUserRepo) RotateRefreshToken(_ context.Context, id string, oldToken, newToken string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok || stored.RefreshToken == nil || *stored.RefreshToken != oldToken {
		return false, nil
	}
	tok := newToken
	stored.RefreshToken = &tok
	return true, nil
}

func (r *fakeUserRepo) AppendWatchHistory(_ context.Context, userID, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[userID] = append(r.history[userID], videoID)
	return nil
}

func (r *fakeUserRepo) WatchHistory(_ context.Context, userID string) ([]entity.VideoView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.VideoView
	for _, vid := range r.history[userID] {
		v, ok := r.videos.videos[vid]
		if !ok {
			continue
		}
		owner := r.users[v.OwnerID]
		vv := entity.VideoView{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			VideoURL:     v.VideoURL,
			ThumbnailURL: v.ThumbnailURL,
			Duration:     v.Duration,
			Views:        v.Views,
			CreatedAt:    v.CreatedAt,
		}
		if owner != nil {
			vv.Owner = entity.ChannelOwner{
				ID:        owner.ID,
				Username:  owner.Username,
				FullName:  owner.FullName,
				AvatarURL: owner.AvatarURL,
			}
		}
		out = append(out, vv)
	}
	return out, nil
}

type fakeSubRepo struct {
	mu    sync.Mutex
	edges []entity.Subscription
}

func (r *fakeSubRepo) add(subscriberID, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges = append(r.edges, entity.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    time.Now(),
	})
}

func (r *fakeSubRepo) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.ChannelID == channelID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubRepo) CountSubscribedTo(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.SubscriberID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubRepo) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.SubscriberID == subscriberID && e.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*entity.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]*entity.Video)}
}

func (r *fakeVideoRepo) Create(_ context.Context, v *entity.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) FindByID(_ context.Context, id string) (*entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) ListByOwner(_ context.Context, ownerID string, limit int) ([]entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Video
	for _, v := range r.videos {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
