package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
)

type UpdateUserInput struct {
	ID         int64
	FirstName  string
	MiddleName *string
	LastName   string
	BirthDate  time.Time
}

// UpdateUser overwrites the names and birth date of an active user.
func (uc *UserUseCase) UpdateUser(ctx context.Context, in UpdateUserInput) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "UpdateUser")
	defer span.End()
	span.SetAttributes(userIDAttr(in.ID))

	now := uc.now()
	var snapshot *user.User
	err := uc.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		u, err := repo.FindActiveByID(ctx, in.ID)
		if err != nil {
			return err
		}

		if err := user.ValidateBirthDate(in.BirthDate, now, uc.opts.MaxAgeYears); err != nil {
			return apperror.NewInvalidInput(err.Error())
		}

		u.Rename(in.FirstName, in.MiddleName, in.LastName, in.BirthDate, now)
		if err := repo.Update(ctx, u); err != nil {
			return err
		}

		snapshot, err = activeSnapshot(ctx, repo, u.ID)
		return err
	})
	if err != nil {
		err = toAppError(in.ID, err)
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("User updated", zap.Int64("user_id", in.ID))
	uc.afterCommit(ctx, in.ID, user.EventTypeUpdated)
	return snapshot, nil
}

// settingsAttempts bounds retries of a settings update that lost an insert
// race on a missing key.
const settingsAttempts = 2

// UpdateUserSettings reconciles a batch of single-pair settings updates against
// the user's stored settings. A concurrent insert of the same missing key rolls
// the unit of work back; the retry then finds the row and updates it in place.
func (uc *UserUseCase) UpdateUserSettings(ctx context.Context, id int64, entries []map[string]string) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "UpdateUserSettings")
	defer span.End()
	span.SetAttributes(userIDAttr(id))

	var (
		snapshot *user.User
		err      error
	)
	for attempt := 1; attempt <= settingsAttempts; attempt++ {
		err = uc.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
			if err := uc.reconciler.Reconcile(ctx, repo, id, entries); err != nil {
				return err
			}
			var err error
			snapshot, err = activeSnapshot(ctx, repo, id)
			return err
		})
		if !errors.Is(err, user.ErrDuplicateSetting) {
			break
		}
		uc.logger.Warn("Concurrent settings insert, retrying", zap.Int64("user_id", id), zap.Int("attempt", attempt))
	}
	if err != nil {
		err = toAppError(id, err)
		span.RecordError(err)
		return nil, err
	}

	uc.afterCommit(ctx, id, user.EventTypeSettingsUpdated)
	return snapshot, nil
}
