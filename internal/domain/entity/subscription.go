package entity

import "time"

// Subscription is a directed edge meaning "subscriber follows channel".
// Edges are not deduplicated; counts are raw edge counts.
type Subscription struct {
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// ChannelProfile is the aggregation result for a channel page:
// display fields plus the three graph-derived values.
type ChannelProfile struct {
	ID                        string    `json:"id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"full_name"`
	AvatarURL                 string    `json:"avatar_url"`
	CoverImageURL             string    `json:"cover_image_url,omitempty"`
	SubscribersCount          int64     `json:"subscribers_count"`
	ChannelsSubscribedToCount int64     `json:"channels_subscribed_to_count"`
	IsSubscribed              bool      `json:"is_subscribed"`
	CreatedAt                 time.Time `json:"created_at"`
}
