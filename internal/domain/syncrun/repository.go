package syncrun

import "context"

// Repository persists sync run records. FindLastSuccessful returns
// (nil, nil) when no completed run exists yet.
type Repository interface {
	Save(ctx context.Context, run *SyncRun) error
	Update(ctx context.Context, run *SyncRun) error
	FindLastSuccessful(ctx context.Context) (*SyncRun, error)
	List(ctx context.Context, limit int) ([]*SyncRun, error)
}
