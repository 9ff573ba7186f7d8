package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Username and Email are stored lower-cased; uniqueness is enforced on
// the folded form. PasswordHash and RefreshToken never leave the
// application layer unsanitized.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string
	PasswordHash  string
	// RefreshToken is the single live refresh token for the user, nil
	// when logged out. Rotation overwrites it; the old value becomes
	// unusable at that moment.
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a projection safe to hand outside the trust
// boundary: the credential hash and refresh token are stripped.
func (u *User) Sanitized() *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// PublicUser is the outward-facing user projection.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChannelOwner is the reduced owner projection embedded in watch
// history entries: display fields only.
type ChannelOwner struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}
