package setting

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/domain/setting"
	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
	"github.com/khoahotran/user-management/pkg/logger"
)

// Reconciler merges settings updates into a user's stored settings. It never
// opens its own transaction: callers pass the Repository of their unit of work.
type Reconciler struct {
	logger logger.Logger
}

func NewReconciler(log logger.Logger) *Reconciler {
	return &Reconciler{logger: log}
}

// Collapse folds single-entry update requests into one mapping; a later entry
// for the same key overwrites an earlier one.
func Collapse(entries []map[string]string) map[string]string {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		for k, v := range entry {
			out[k] = v
		}
	}
	return out
}

// SeedDefaults attaches one row per schema key, holding its default value.
func (r *Reconciler) SeedDefaults(ctx context.Context, repo user.Repository, u *user.User) error {
	for _, key := range setting.Keys() {
		def, _ := setting.Lookup(key)
		s := &user.Setting{UserID: u.ID, Key: def.Key, Value: def.DefaultValue}
		if err := repo.CreateSetting(ctx, s); err != nil {
			return err
		}
		u.Settings = append(u.Settings, *s)
	}
	r.logger.Info("Created default settings", zap.Int64("user_id", u.ID), zap.Int("count", len(u.Settings)))
	return nil
}

// Reconcile validates the whole batch before writing anything, then updates
// existing (user, key) rows in place and creates the missing ones.
func (r *Reconciler) Reconcile(ctx context.Context, repo user.Repository, userID int64, entries []map[string]string) error {
	if _, err := repo.FindActiveByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return apperror.NewNotFound(userID)
		}
		return err
	}

	collapsed := Collapse(entries)
	if errs := setting.ValidateBatch(collapsed); len(errs) > 0 {
		r.logger.Warn("Rejected settings update", zap.Int64("user_id", userID), zap.Strings("errors", errs))
		return apperror.NewInvalidInput(errs...)
	}

	keys := make([]string, 0, len(collapsed))
	for k := range collapsed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := collapsed[key]
		existing, err := repo.FindSettingByUserAndKey(ctx, userID, key)
		switch {
		case err == nil:
			existing.Value = value
			if err := repo.UpdateSetting(ctx, existing); err != nil {
				return err
			}
			r.logger.Debug("Updated setting", zap.Int64("user_id", userID), zap.String("key", key))
		case errors.Is(err, user.ErrSettingNotFound):
			if err := repo.CreateSetting(ctx, &user.Setting{UserID: userID, Key: key, Value: value}); err != nil {
				return err
			}
			r.logger.Debug("Created setting", zap.Int64("user_id", userID), zap.String("key", key))
		default:
			return err
		}
	}

	r.logger.Info("Updated settings", zap.Int64("user_id", userID), zap.Int("count", len(keys)))
	return nil
}
