package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamhive/streamhive/internal/domain/repository"
)

// SubscriptionRepository aggregates the subscription edge set. Counts
// are raw edge counts; duplicate edges are not collapsed.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM subscriptions WHERE channel_id = $1
	`, channelID).Scan(&n)
	return n, err
}

func (r *SubscriptionRepository) CountSubscribedTo(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM subscriptions WHERE subscriber_id = $1
	`, userID).Scan(&n)
	return n, err
}

func (r *SubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
		)
	`, subscriberID, channelID).Scan(&exists)
	return exists, err
}

var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
