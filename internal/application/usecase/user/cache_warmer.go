package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/application/service"
	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/logger"
)

// CacheWarmer keeps the snapshot cache in step with lifecycle events.
type CacheWarmer struct {
	uow    user.UnitOfWork
	cache  service.UserCache
	logger logger.Logger
}

func NewCacheWarmer(uow user.UnitOfWork, cache service.UserCache, log logger.Logger) *CacheWarmer {
	return &CacheWarmer{uow: uow, cache: cache, logger: log}
}

// HandleEvent evicts the snapshot named by ev and, unless the user was
// deleted, reloads it from the store.
func (w *CacheWarmer) HandleEvent(ctx context.Context, ev user.Event) error {
	ctx, span := tracer.Start(ctx, "HandleEvent")
	defer span.End()
	span.SetAttributes(userIDAttr(ev.UserID))

	if err := w.cache.Delete(ctx, ev.UserID); err != nil {
		span.RecordError(err)
		return err
	}
	if ev.Type == user.EventTypeDeleted {
		w.logger.Debug("Evicted deleted user snapshot", zap.Int64("user_id", ev.UserID))
		return nil
	}

	version, err := w.cache.Version(ctx, ev.UserID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	var snapshot *user.User
	err = w.uow.ReadOnly(ctx, func(ctx context.Context, repo user.Repository) error {
		var err error
		snapshot, err = activeSnapshot(ctx, repo, ev.UserID)
		return err
	})
	if errors.Is(err, user.ErrUserNotFound) {
		w.logger.Debug("User no longer active, nothing to warm", zap.Int64("user_id", ev.UserID))
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return err
	}

	stored, err := w.cache.Set(ctx, snapshot, version)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !stored {
		w.logger.Debug("User changed while warming, left for the next event", zap.Int64("user_id", ev.UserID))
		return nil
	}
	w.logger.Debug("Warmed user snapshot", zap.Int64("user_id", ev.UserID), zap.String("event_type", string(ev.Type)))
	return nil
}
