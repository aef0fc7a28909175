package donations

import "context"

// Store is the persistence surface for donation tracking. Implemented
// alongside billing.Store by store/sqlite and store/memory.
type Store interface {
	SaveScheduledActivity(ctx context.Context, a ScheduledActivity) error
	GetScheduledActivity(ctx context.Context, tenantID, id string) (*ScheduledActivity, error)
	ListScheduledActivities(ctx context.Context, tenantID string) ([]ScheduledActivity, error)

	SaveItem(ctx context.Context, item Item) error
	ListItemsByActivity(ctx context.Context, tenantID, scheduledActivityID string) ([]Item, error)

	SaveCommitment(ctx context.Context, c Commitment) error
	UpdateCommitmentFulfilled(ctx context.Context, tenantID, id string, fulfilled bool) error
	ListCommitmentsByActivity(ctx context.Context, tenantID, scheduledActivityID string) ([]Commitment, error)
}
