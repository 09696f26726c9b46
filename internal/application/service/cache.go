package service

import (
	"context"

	"github.com/khoahotran/user-management/internal/domain/user"
)

// UserCache stores active user snapshots (user row plus settings).
// Get reports a miss with ok == false and a nil error.
//
// Every Delete bumps the user's version. Readers take Version before loading
// from the store and pass it to Set, which stores nothing once a mutation has
// evicted the user in between.
type UserCache interface {
	Get(ctx context.Context, id int64) (u *user.User, ok bool, err error)
	Version(ctx context.Context, id int64) (int64, error)
	Set(ctx context.Context, u *user.User, version int64) (stored bool, err error)
	Delete(ctx context.Context, id int64) error
}

type noopUserCache struct{}

// NewNoopUserCache is used when no cache backend is configured.
func NewNoopUserCache() UserCache {
	return noopUserCache{}
}

func (noopUserCache) Get(context.Context, int64) (*user.User, bool, error) { return nil, false, nil }
func (noopUserCache) Version(context.Context, int64) (int64, error)        { return 0, nil }
func (noopUserCache) Set(context.Context, *user.User, int64) (bool, error) { return false, nil }
func (noopUserCache) Delete(context.Context, int64) error                  { return nil }
