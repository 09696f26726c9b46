package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/application/service"
	settinguc "github.com/khoahotran/user-management/internal/application/usecase/setting"
	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
	"github.com/khoahotran/user-management/pkg/logger"
)

var tracer = otel.Tracer("user_usecase")

const msgAlreadyActive = "User is already active"

type Options struct {
	MaxAgeYears     int
	DefaultPageSize int
	MaxPageSize     int
	Clock           func() time.Time
}

func (o *Options) applyDefaults() {
	if o.MaxAgeYears <= 0 {
		o.MaxAgeYears = user.DefaultMaxAgeYears
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 5
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 100
	}
	if o.Clock == nil {
		o.Clock = func() time.Time { return time.Now().UTC() }
	}
}

// UserUseCase drives the user lifecycle. Every operation runs inside one unit
// of work; cache eviction and event publishing happen only after it commits.
type UserUseCase struct {
	uow        user.UnitOfWork
	reconciler *settinguc.Reconciler
	cache      service.UserCache
	publisher  service.EventPublisher
	logger     logger.Logger
	opts       Options
}

func NewUserUseCase(uow user.UnitOfWork, reconciler *settinguc.Reconciler, cache service.UserCache, publisher service.EventPublisher, log logger.Logger, opts Options) *UserUseCase {
	opts.applyDefaults()
	if cache == nil {
		cache = service.NewNoopUserCache()
	}
	if publisher == nil {
		publisher = service.NewNoopEventPublisher()
	}
	return &UserUseCase{
		uow:        uow,
		reconciler: reconciler,
		cache:      cache,
		publisher:  publisher,
		logger:     log,
		opts:       opts,
	}
}

func (uc *UserUseCase) now() time.Time {
	return uc.opts.Clock().UTC()
}

// withSettings attaches the stored settings to u.
func withSettings(ctx context.Context, repo user.Repository, u *user.User) (*user.User, error) {
	settings, err := repo.ListSettings(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Settings = settings
	return u, nil
}

// activeSnapshot reads the active user together with its settings.
func activeSnapshot(ctx context.Context, repo user.Repository, id int64) (*user.User, error) {
	u, err := repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return withSettings(ctx, repo, u)
}

// toAppError classifies store errors; errors already classified pass through.
func toAppError(id int64, err error) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, user.ErrUserNotFound):
		return apperror.NewNotFound(id)
	case errors.Is(err, user.ErrDuplicateSetting):
		return apperror.NewConflict(fmt.Sprintf("setting for user %d", id))
	default:
		return apperror.NewInternal("user store failure", err)
	}
}

// afterCommit evicts the cached snapshot and publishes the lifecycle event.
func (uc *UserUseCase) afterCommit(ctx context.Context, userID int64, eventType user.EventType) {
	if err := uc.cache.Delete(ctx, userID); err != nil {
		uc.logger.Warn("Failed to evict user snapshot", zap.Int64("user_id", userID), zap.Error(err))
	}

	ev := user.NewEvent(eventType, userID, uc.now())
	go func() {
		if err := uc.publisher.PublishUserEvent(context.Background(), ev); err != nil {
			uc.logger.Error("Failed to publish user event", err,
				zap.Int64("user_id", userID), zap.String("event_type", string(eventType)))
		}
	}()
}

func userIDAttr(id int64) attribute.KeyValue {
	return attribute.Int64("user_id", id)
}
