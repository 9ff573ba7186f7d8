package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhive/streamhive/internal/domain/entity"
	"github.com/streamhive/streamhive/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestManager() *helpers.TokenManager {
	return helpers.NewTokenManager(helpers.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
}

func authTestRouter(tokens *helpers.TokenManager, optional bool) *gin.Engine {
	r := gin.New()
	mw := Auth(tokens)
	if optional {
		mw = OptionalAuth(tokens)
	}
	r.GET("/probe", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString(CtxUserIDKey),
			"username": c.GetString(CtxUsernameKey),
		})
	})
	return r
}

func issueAccess(t *testing.T, tokens *helpers.TokenManager) string {
	t.Helper()
	tok, _, err := tokens.IssueAccessToken(&entity.User{ID: "u-1", Username: "alice", Email: "a@example.com", FullName: "Alice"})
	require.NoError(t, err)
	return tok
}

func TestAuthRejectsMissingToken(t *testing.T) {
	r := authTestRouter(authTestManager(), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	tokens := authTestManager()
	r := authTestRouter(tokens, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccess(t, tokens))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u-1"`)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestAuthAcceptsCookie(t *testing.T) {
	tokens := authTestManager()
	r := authTestRouter(tokens, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: issueAccess(t, tokens)})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u-1"`)
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	tokens := authTestManager()
	r := authTestRouter(tokens, false)

	refresh, _, err := tokens.IssueRefreshToken(&entity.User{ID: "u-1"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	r := authTestRouter(authTestManager(), true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)
}

func TestOptionalAuthInjectsIdentityWhenPresent(t *testing.T) {
	tokens := authTestManager()
	r := authTestRouter(tokens, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccess(t, tokens))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u-1"`)
}

func TestOptionalAuthIgnoresGarbageToken(t *testing.T) {
	r := authTestRouter(authTestManager(), true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)
}
