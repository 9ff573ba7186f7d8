package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/streamhive/streamhive/internal/domain/entity"
	repo "github.com/streamhive/streamhive/internal/domain/repository"
	"github.com/streamhive/streamhive/pkg/apperr"
	"github.com/streamhive/streamhive/pkg/helpers"
	"github.com/streamhive/streamhive/pkg/mailer"
)

// SessionService orchestrates register/login/logout/refresh as a
// request-scoped state machine over the user repository, the token
// manager and the credential hasher. It is the only caller of the
// repository's session mutations.
type SessionService struct {
	Repo           repo.UserRepository
	Tokens         *helpers.TokenManager
	Hasher         helpers.Hasher
	Logger         *logrus.Logger
	Pub            *helpers.RabbitPublisher
	Redis          *redis.Client
	ES             *elasticsearch.Client
	ESChannelIndex string
	MailEnabled    bool
}

func NewSessionService(r repo.UserRepository, tokens *helpers.TokenManager, hasher helpers.Hasher, logger *logrus.Logger) *SessionService {
	return &SessionService{Repo: r, Tokens: tokens, Hasher: hasher, Logger: logger}
}

// TokenPair is the session artifact handed back to the client on login
// and refresh.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// RegisterInput is the validated-at-boundary input for Register.
// CoverImageURL is optional; everything else is required.
type RegisterInput struct {
	Username      string
	Email         string
	FullName      string
	Password      string
	AvatarURL     string
	CoverImageURL *string
}

// LoginInput identifies the user by username or email; at least one
// must be present.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user with a hashed credential and returns the
// sanitized record. Welcome email and search indexing are best-effort.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*entity.PublicUser, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperr.Validation("username, email, full name and password are required")
	}
	if strings.TrimSpace(in.AvatarURL) == "" {
		return nil, apperr.Validation("avatar is required")
	}

	existing, err := s.Repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperr.Internal("user lookup failed", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("user with that username or email already exists")
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("password hashing failed", err)
	}

	u := &entity.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
		PasswordHash: hash,
	}
	if in.CoverImageURL != nil {
		u.CoverImageURL = strings.TrimSpace(*in.CoverImageURL)
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, apperr.Internal("user creation failed", err)
	}

	s.sendWelcomeEmail(ctx, u)
	s.indexChannel(ctx, u)

	return u.Sanitized(), nil
}

// Login verifies credentials, issues a fresh token pair and persists
// the new refresh token, rotating away any previous one.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*entity.PublicUser, TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" && email == "" {
		return nil, TokenPair{}, apperr.Validation("username or email is required")
	}

	u, err := s.Repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, TokenPair{}, apperr.Internal("user lookup failed", err)
	}
	if u == nil {
		return nil, TokenPair{}, apperr.NotFound("user not found")
	}
	if !s.Hasher.Verify(in.Password, u.PasswordHash) {
		return nil, TokenPair{}, apperr.InvalidCredentials()
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.Repo.SetRefreshToken(ctx, u.ID, &pair.RefreshToken); err != nil {
		return nil, TokenPair{}, apperr.Internal("persisting refresh token failed", err)
	}
	return u.Sanitized(), pair, nil
}

// Logout clears the stored refresh token unconditionally.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.Repo.SetRefreshToken(ctx, userID, nil); err != nil {
		return apperr.Internal("clearing refresh token failed", err)
	}
	return nil
}

// Refresh rotates the session. The presented token must carry a valid
// signature, resolve to a user, and match the token currently stored on
// that user; any mismatch means the token was already rotated away and
// is treated as reuse. Exactly one of two racing refreshes can win the
// conditional rotation; the loser fails the same way.
func (s *SessionService) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	if strings.TrimSpace(presented) == "" {
		return TokenPair{}, apperr.Unauthorized("missing refresh token")
	}
	claims, err := s.Tokens.Parse(presented, helpers.RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	u, err := s.Repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, apperr.Internal("user lookup failed", err)
	}
	if u == nil {
		return TokenPair{}, apperr.InvalidToken("refresh token does not match a known user")
	}
	if u.RefreshToken == nil || *u.RefreshToken != presented {
		s.Logger.WithField("user_id", u.ID).Warn("stale refresh token presented")
		return TokenPair{}, apperr.TokenReuse()
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return TokenPair{}, err
	}
	ok, err := s.Repo.RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, apperr.Internal("rotating refresh token failed", err)
	}
	if !ok {
		// A concurrent refresh rotated first; this caller holds a stale token now.
		s.Logger.WithField("user_id", u.ID).Warn("lost refresh rotation race")
		return TokenPair{}, apperr.TokenReuse()
	}
	return pair, nil
}

// ChangePassword verifies the old password before recomputing and
// storing the hash for the new one.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("new password is required")
	}
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return apperr.Internal("user lookup failed", err)
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	if !s.Hasher.Verify(oldPassword, u.PasswordHash) {
		return apperr.InvalidCredentials()
	}
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal("password hashing failed", err)
	}
	if err := s.Repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return apperr.Internal("storing password hash failed", err)
	}
	return nil
}

// CurrentUser returns the sanitized record for an authenticated user.
func (s *SessionService) CurrentUser(ctx context.Context, userID string) (*entity.PublicUser, error) {
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("user lookup failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u.Sanitized(), nil
}

// UpdateAccountInput carries the optional profile fields for UpdateAccount.
type UpdateAccountInput struct {
	FullName *string
	Email    *string
}

// UpdateAccount updates display fields. Email moves are re-checked for
// uniqueness against the folded form.
func (s *SessionService) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (*entity.PublicUser, error) {
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("user lookup failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, apperr.Validation("full name cannot be blank")
		}
		u.FullName = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, apperr.Validation("email cannot be blank")
		}
		if email != u.Email {
			other, err := s.Repo.FindByUsernameOrEmail(ctx, "", email)
			if err != nil {
				return nil, apperr.Internal("user lookup failed", err)
			}
			if other != nil && other.ID != u.ID {
				return nil, apperr.Conflict("email already in use")
			}
			u.Email = email
		}
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("account update failed", err)
	}
	s.invalidateProfileCache(ctx, u.Username)
	s.indexChannel(ctx, u)
	return u.Sanitized(), nil
}

// UpdateAvatar stores a new avatar URL; the upload itself happens at
// the HTTP boundary.
func (s *SessionService) UpdateAvatar(ctx context.Context, userID, url string) (*entity.PublicUser, error) {
	return s.updateImage(ctx, userID, url, true)
}

// UpdateCover stores a new cover image URL.
func (s *SessionService) UpdateCover(ctx context.Context, userID, url string) (*entity.PublicUser, error) {
	return s.updateImage(ctx, userID, url, false)
}

func (s *SessionService) updateImage(ctx context.Context, userID, url string, avatar bool) (*entity.PublicUser, error) {
	if strings.TrimSpace(url) == "" {
		return nil, apperr.Validation("image url is required")
	}
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("user lookup failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	if avatar {
		u.AvatarURL = url
	} else {
		u.CoverImageURL = url
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("image update failed", err)
	}
	s.invalidateProfileCache(ctx, u.Username)
	s.indexChannel(ctx, u)
	return u.Sanitized(), nil
}

func (s *SessionService) issuePair(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.Tokens.IssueAccessToken(u)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue access token failed")
		return TokenPair{}, apperr.Internal("issuing access token failed", err)
	}
	refresh, rexp, err := s.Tokens.IssueRefreshToken(u)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue refresh token failed")
		return TokenPair{}, apperr.Internal("issuing refresh token failed", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *SessionService) sendWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"FullName": u.FullName, "Username": u.Username},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}

func (s *SessionService) invalidateProfileCache(ctx context.Context, username string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, channelProfileKey(username)); err != nil {
		s.Logger.WithError(err).WithField("username", username).Warn("profile cache invalidation failed")
	}
}

func (s *SessionService) indexChannel(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESChannelIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"full_name":  u.FullName,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESChannelIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}
