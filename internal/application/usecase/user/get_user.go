package user

import (
	"context"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
)

// GetUser returns the active snapshot, reading through the cache. The cache
// version is taken before the store read so a snapshot overtaken by a
// committed mutation is never written back.
func (uc *UserUseCase) GetUser(ctx context.Context, id int64) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "GetUser")
	defer span.End()
	span.SetAttributes(userIDAttr(id))

	cached, ok, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.logger.Warn("Failed to read user snapshot from cache", zap.Int64("user_id", id), zap.Error(err))
	}
	if ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, nil
	}

	cacheable := true
	version, err := uc.cache.Version(ctx, id)
	if err != nil {
		cacheable = false
		uc.logger.Warn("Failed to read user snapshot version", zap.Int64("user_id", id), zap.Error(err))
	}

	var snapshot *user.User
	err = uc.uow.ReadOnly(ctx, func(ctx context.Context, repo user.Repository) error {
		var err error
		snapshot, err = activeSnapshot(ctx, repo, id)
		return err
	})
	if err != nil {
		err = toAppError(id, err)
		span.RecordError(err)
		return nil, err
	}

	if cacheable {
		stored, err := uc.cache.Set(ctx, snapshot, version)
		switch {
		case err != nil:
			uc.logger.Warn("Failed to cache user snapshot", zap.Int64("user_id", id), zap.Error(err))
		case !stored:
			uc.logger.Debug("User changed while loading, snapshot not cached", zap.Int64("user_id", id))
		}
	}
	return snapshot, nil
}

type ListUsersInput struct {
	// MaxRecords falls back to the configured default page size when nil.
	MaxRecords *int
	// Offset is a zero-based page index; the first row returned is Offset*MaxRecords.
	Offset int
}

type ListUsersOutput struct {
	Users      []*user.User
	MaxRecords int
	Offset     int
	// Total counts all active users, independent of paging.
	Total int64
}

// ListUsers returns a page of active users ordered by id. Settings are not
// attached to list entries.
func (uc *UserUseCase) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersOutput, error) {
	ctx, span := tracer.Start(ctx, "ListUsers")
	defer span.End()

	limit := uc.opts.DefaultPageSize
	if in.MaxRecords != nil {
		limit = *in.MaxRecords
	}
	if limit < 1 || limit > uc.opts.MaxPageSize {
		return nil, apperror.NewInvalidField("max_records", limit)
	}
	if in.Offset < 0 || in.Offset > math.MaxInt/limit {
		return nil, apperror.NewInvalidField("offset", in.Offset)
	}
	span.SetAttributes(attribute.Int("max_records", limit), attribute.Int("offset", in.Offset))

	var (
		users []*user.User
		total int64
	)
	err := uc.uow.ReadOnly(ctx, func(ctx context.Context, repo user.Repository) error {
		var err error
		if users, err = repo.ListActive(ctx, limit, in.Offset*limit); err != nil {
			return err
		}
		total, err = repo.CountActive(ctx)
		return err
	})
	if err != nil {
		err = toAppError(0, err)
		span.RecordError(err)
		return nil, err
	}

	return &ListUsersOutput{Users: users, MaxRecords: limit, Offset: in.Offset, Total: total}, nil
}
