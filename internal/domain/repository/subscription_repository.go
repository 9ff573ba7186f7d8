package repository

import "context"

// SubscriptionRepository reads the user-subscription edge set. Edges
// are created elsewhere; this core only aggregates them.
type SubscriptionRepository interface {
	// CountSubscribers counts edges whose channel is channelID.
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	// CountSubscribedTo counts edges whose subscriber is userID.
	CountSubscribedTo(ctx context.Context, userID string) (int64, error)
	// IsSubscribed reports whether at least one edge subscriber->channel exists.
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
}
