package entity

import "time"

// Video is a published media record owned by a channel (a User).
type Video struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     float64
	Views        int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VideoView is a watch-history entry: the video denormalized together
// with its owner's display projection.
type VideoView struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"video_url"`
	ThumbnailURL string       `json:"thumbnail_url"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	Owner        ChannelOwner `json:"owner"`
	CreatedAt    time.Time    `json:"created_at"`
}
