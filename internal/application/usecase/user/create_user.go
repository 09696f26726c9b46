package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
)

type CreateUserInput struct {
	SSN        string
	FirstName  string
	MiddleName *string
	LastName   string
	BirthDate  time.Time
}

// CreateUser persists a new active user with the default settings and returns
// the committed snapshot.
func (uc *UserUseCase) CreateUser(ctx context.Context, in CreateUserInput) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "CreateUser")
	defer span.End()

	ssn, err := user.NormalizeIdentifier(in.SSN)
	if err != nil || !user.IsCanonicalSSN(ssn) {
		appErr := apperror.NewInvalidField("ssn", in.SSN)
		span.RecordError(appErr)
		return nil, appErr
	}

	now := uc.now()
	var snapshot *user.User
	err = uc.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		exists, err := repo.ExistsBySSN(ctx, ssn)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict(ssn)
		}

		if err := user.ValidateBirthDate(in.BirthDate, now, uc.opts.MaxAgeYears); err != nil {
			return apperror.NewInvalidInput(err.Error())
		}

		u := &user.User{
			SSN:        ssn,
			FirstName:  in.FirstName,
			MiddleName: in.MiddleName,
			FamilyName: in.LastName,
			BirthDate:  user.DateOf(in.BirthDate),
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
			CreatedBy:  user.SystemActor,
			UpdatedBy:  user.SystemActor,
		}
		if err := repo.Create(ctx, u); err != nil {
			if errors.Is(err, user.ErrDuplicateSSN) {
				return apperror.NewConflict(ssn)
			}
			return err
		}

		if err := uc.reconciler.SeedDefaults(ctx, repo, u); err != nil {
			return err
		}

		snapshot, err = activeSnapshot(ctx, repo, u.ID)
		return err
	})
	if err != nil {
		err = toAppError(0, err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(userIDAttr(snapshot.ID))
	uc.logger.Info("User created", zap.Int64("user_id", snapshot.ID))
	uc.afterCommit(ctx, snapshot.ID, user.EventTypeCreated)
	return snapshot, nil
}
