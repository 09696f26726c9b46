package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
)

// DeleteUser soft-deletes an active user.
func (uc *UserUseCase) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "DeleteUser")
	defer span.End()
	span.SetAttributes(userIDAttr(id))

	err := uc.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		u, err := repo.FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		u.SoftDelete(uc.now())
		return repo.Update(ctx, u)
	})
	if err != nil {
		err = toAppError(id, err)
		span.RecordError(err)
		return err
	}

	uc.logger.Info("User deleted", zap.Int64("user_id", id))
	uc.afterCommit(ctx, id, user.EventTypeDeleted)
	return nil
}

// RestoreUser reactivates a soft-deleted user. The lookup ignores the active
// filter; a user that is already active is rejected without mutation.
func (uc *UserUseCase) RestoreUser(ctx context.Context, id int64) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "RestoreUser")
	defer span.End()
	span.SetAttributes(userIDAttr(id))

	var snapshot *user.User
	err := uc.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		u, err := repo.FindAnyByID(ctx, id)
		if err != nil {
			return err
		}
		if err := u.Restore(uc.now()); err != nil {
			if errors.Is(err, user.ErrUserAlreadyActive) {
				return apperror.NewInvalidInput(msgAlreadyActive)
			}
			return err
		}
		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		snapshot, err = activeSnapshot(ctx, repo, id)
		return err
	})
	if err != nil {
		err = toAppError(id, err)
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("User restored", zap.Int64("user_id", id))
	uc.afterCommit(ctx, id, user.EventTypeRestored)
	return snapshot, nil
}
