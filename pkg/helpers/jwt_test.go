package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhive/streamhive/internal/domain/entity"
	"github.com/streamhive/streamhive/pkg/apperr"
)

func testUser() *entity.User {
	return &entity.User{
		ID:       "11111111-2222-3333-4444-555555555555",
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Liddell",
	}
}

func newManager() *TokenManager {
	return NewTokenManager(TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newManager()
	u := testUser()

	tok, exp, err := m.IssueAccessToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := m.Parse(tok, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Liddell", claims.FullName)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokenCarriesOnlyUserID(t *testing.T) {
	m := newManager()

	tok, _, err := m.IssueRefreshToken(testUser())
	require.NoError(t, err)

	claims, err := m.Parse(tok, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, testUser().ID, claims.UserID)
	assert.Empty(t, claims.Username)
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.FullName)
}

func TestTokensAreDistinctAcrossIssues(t *testing.T) {
	m := newManager()
	u := testUser()

	// same user, same instant: jti keeps the tokens apart
	t1, _, err := m.IssueRefreshToken(u)
	require.NoError(t, err)
	t2, _, err := m.IssueRefreshToken(u)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestParseRejectsWrongKind(t *testing.T) {
	m := newManager()

	access, _, err := m.IssueAccessToken(testUser())
	require.NoError(t, err)
	refresh, _, err := m.IssueRefreshToken(testUser())
	require.NoError(t, err)

	_, err = m.Parse(access, RefreshToken)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidToken, apperr.KindOf(err))

	_, err = m.Parse(refresh, AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidToken, apperr.KindOf(err))
}

func TestParseRejectsForeignSecret(t *testing.T) {
	m := newManager()
	other := NewTokenManager(TokenConfig{
		AccessSecret:  "different",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "different",
		RefreshTTL:    time.Hour,
	})

	tok, _, err := other.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = m.Parse(tok, AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidToken, apperr.KindOf(err))
}

func TestParseReportsExpiryDistinctly(t *testing.T) {
	m := NewTokenManager(TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     -time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    -time.Minute,
	})

	tok, _, err := m.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = m.Parse(tok, AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperr.KindExpiredToken, apperr.KindOf(err))
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newManager()
	for _, tok := range []string{"", "x", "a.b.c"} {
		_, err := m.Parse(tok, AccessToken)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidToken, apperr.KindOf(err))
	}
}
