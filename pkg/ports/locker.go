package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes journey updates for one session key
// (wizard:cookie) across server replicas. A lock left behind by a crashed
// replica lapses after ttl.
type DistributedLocker interface {
	// Lock waits until key is free or ctx is done. The caller must call the
	// returned UnlockFunc once the session has been saved.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
