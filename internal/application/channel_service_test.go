package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamhive/streamhive/internal/domain/entity"
	"github.com/streamhive/streamhive/pkg/apperr"
	"github.com/streamhive/streamhive/pkg/helpers"
)

type channelFixture struct {
	svc    *ChannelService
	videos *VideoService
	users  *fakeUserRepo
	subs   *fakeSubRepo
	vids   *fakeVideoRepo
}

func newChannelFixture(t *testing.T) *channelFixture {
	t.Helper()
	vids := newFakeVideoRepo()
	users := newFakeUserRepo(vids)
	subs := &fakeSubRepo{}
	logger := testLogger()
	return &channelFixture{
		svc:    NewChannelService(users, subs, logger),
		videos: NewVideoService(vids, users, logger),
		users:  users,
		subs:   subs,
		vids:   vids,
	}
}

func (f *channelFixture) addUser(t *testing.T, username string) *entity.User {
	t.Helper()
	hasher := helpers.BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	u := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "User " + username,
		AvatarURL:    "https://cdn.example.com/" + username + ".png",
		PasswordHash: hash,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestChannelProfileAggregation(t *testing.T) {
	f := newChannelFixture(t)
	ctx := context.Background()

	channel := f.addUser(t, "channel")
	s1 := f.addUser(t, "fanone")
	s2 := f.addUser(t, "fantwo")
	s3 := f.addUser(t, "fanthree")
	other := f.addUser(t, "other")

	f.subs.add(s1.ID, channel.ID)
	f.subs.add(s2.ID, channel.ID)
	f.subs.add(s3.ID, channel.ID)
	f.subs.add(channel.ID, other.ID)

	p, err := f.svc.ChannelProfile(ctx, "channel", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.SubscribersCount)
	assert.Equal(t, int64(1), p.ChannelsSubscribedToCount)
	assert.False(t, p.IsSubscribed)
	assert.Equal(t, "channel", p.Username)
	assert.Equal(t, channel.AvatarURL, p.AvatarURL)

	p, err = f.svc.ChannelProfile(ctx, "channel", s1.ID)
	require.NoError(t, err)
	assert.True(t, p.IsSubscribed)

	p, err = f.svc.ChannelProfile(ctx, "channel", other.ID)
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)
}

func TestChannelProfileCountsDuplicateEdges(t *testing.T) {
	f := newChannelFixture(t)
	channel := f.addUser(t, "channel")
	fan := f.addUser(t, "fan")

	// edges are not deduplicated; a double subscribe counts twice
	f.subs.add(fan.ID, channel.ID)
	f.subs.add(fan.ID, channel.ID)

	p, err := f.svc.ChannelProfile(context.Background(), "channel", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.SubscribersCount)
}

func TestChannelProfileErrors(t *testing.T) {
	f := newChannelFixture(t)

	_, err := f.svc.ChannelProfile(context.Background(), "  ", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.ChannelProfile(context.Background(), "ghost", "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestChannelProfileFoldsUsername(t *testing.T) {
	f := newChannelFixture(t)
	f.addUser(t, "channel")

	p, err := f.svc.ChannelProfile(context.Background(), "  ChAnNeL ", "")
	require.NoError(t, err)
	assert.Equal(t, "channel", p.Username)
}

func TestWatchHistoryEmptyIsNotAnError(t *testing.T) {
	f := newChannelFixture(t)
	u := f.addUser(t, "viewer")

	views, err := f.svc.WatchHistory(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, views)
	assert.Empty(t, views)

	_, err = f.svc.WatchHistory(context.Background(), "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestWatchHistoryKeepsStoredOrder(t *testing.T) {
	f := newChannelFixture(t)
	ctx := context.Background()

	owner := f.addUser(t, "creator")
	viewer := f.addUser(t, "viewer")

	titles := []string{"first", "second", "third"}
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		v := &entity.Video{OwnerID: owner.ID, Title: title, VideoURL: "https://cdn.example.com/" + title + ".mp4"}
		require.NoError(t, f.vids.Create(ctx, v))
		ids = append(ids, v.ID)
	}

	for _, id := range ids {
		_, err := f.videos.Watch(ctx, viewer.ID, id)
		require.NoError(t, err)
	}

	views, err := f.svc.WatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	for i, title := range titles {
		assert.Equal(t, title, views[i].Title)
		assert.Equal(t, ids[i], views[i].ID)
	}
}

func TestWatchHistoryOwnerProjection(t *testing.T) {
	f := newChannelFixture(t)
	ctx := context.Background()

	owner := f.addUser(t, "creator")
	viewer := f.addUser(t, "viewer")

	v := &entity.Video{OwnerID: owner.ID, Title: "clip", VideoURL: "https://cdn.example.com/clip.mp4"}
	require.NoError(t, f.vids.Create(ctx, v))
	_, err := f.videos.Watch(ctx, viewer.ID, v.ID)
	require.NoError(t, err)

	views, err := f.svc.WatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)

	got := views[0].Owner
	assert.Equal(t, owner.ID, got.ID)
	assert.Equal(t, "creator", got.Username)
	assert.Equal(t, owner.FullName, got.FullName)
	assert.Equal(t, owner.AvatarURL, got.AvatarURL)
}

func TestWatchUnknownVideo(t *testing.T) {
	f := newChannelFixture(t)
	viewer := f.addUser(t, "viewer")

	_, err := f.videos.Watch(context.Background(), viewer.ID, "no-such-video")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRewatchAppendsAgain(t *testing.T) {
	f := newChannelFixture(t)
	ctx := context.Background()

	owner := f.addUser(t, "creator")
	viewer := f.addUser(t, "viewer")
	v := &entity.Video{OwnerID: owner.ID, Title: "clip", VideoURL: "https://cdn.example.com/clip.mp4"}
	require.NoError(t, f.vids.Create(ctx, v))

	for i := 0; i < 2; i++ {
		_, err := f.videos.Watch(ctx, viewer.ID, v.ID)
		require.NoError(t, err)
	}

	views, err := f.svc.WatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
