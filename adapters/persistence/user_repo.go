package persistence

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/khoahotran/user-management/internal/domain/user"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{
	"id", "ssn", "first_name", "middle_name", "family_name", "birth_date",
	"is_active", "deleted_time", "created_time", "updated_time", "created_by", "updated_by",
}

var settingColumns = []string{"id", "user_id", "setting_key", "setting_value"}

type postgresUserRepo struct {
	db DBTX
}

func NewPostgresUserRepo(db DBTX) user.Repository {
	return &postgresUserRepo{db: db}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.SSN,
		&u.FirstName,
		&u.MiddleName,
		&u.FamilyName,
		&u.BirthDate,
		&u.IsActive,
		&u.DeletedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.CreatedBy,
		&u.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return u, nil
}

func scanSetting(row pgx.Row) (*user.Setting, error) {
	s := &user.Setting{}
	if err := row.Scan(&s.ID, &s.UserID, &s.Key, &s.Value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to scan setting row: %w", err)
	}
	return s, nil
}

func (r *postgresUserRepo) findOne(ctx context.Context, where sq.Sqlizer) (*user.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find user query: %w", err)
	}
	return scanUser(r.db.QueryRow(ctx, query, args...))
}

func (r *postgresUserRepo) FindActiveByID(ctx context.Context, id int64) (*user.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id, "is_active": true})
}

func (r *postgresUserRepo) FindAnyByID(ctx context.Context, id int64) (*user.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *postgresUserRepo) ExistsBySSN(ctx context.Context, ssn string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE ssn = $1)`, ssn).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ssn: %w", err)
	}
	return exists, nil
}

func (r *postgresUserRepo) ListActive(ctx context.Context, limit, offset int) ([]*user.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *postgresUserRepo) CountActive(ctx context.Context) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From("users").Where(sq.Eq{"is_active": true}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *postgresUserRepo) Create(ctx context.Context, u *user.User) error {
	query, args, err := psql.Insert("users").
		Columns(userColumns[1:]...).
		Values(u.SSN, u.FirstName, u.MiddleName, u.FamilyName, u.BirthDate,
			u.IsActive, u.DeletedAt, u.CreatedAt, u.UpdatedAt, u.CreatedBy, u.UpdatedBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&u.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicateSSN
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *postgresUserRepo) Update(ctx context.Context, u *user.User) error {
	query, args, err := psql.Update("users").
		SetMap(map[string]any{
			"first_name":   u.FirstName,
			"middle_name":  u.MiddleName,
			"family_name":  u.FamilyName,
			"birth_date":   u.BirthDate,
			"is_active":    u.IsActive,
			"deleted_time": u.DeletedAt,
			"updated_time": u.UpdatedAt,
			"updated_by":   u.UpdatedBy,
		}).
		Where(sq.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepo) ListSettings(ctx context.Context, userID int64) ([]user.Setting, error) {
	query, args, err := psql.Select(settingColumns...).
		From("user_settings").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list settings query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := make([]user.Setting, 0)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setting rows: %w", err)
	}
	return settings, nil
}

func (r *postgresUserRepo) FindSettingByUserAndKey(ctx context.Context, userID int64, key string) (*user.Setting, error) {
	query, args, err := psql.Select(settingColumns...).
		From("user_settings").
		Where(sq.Eq{"user_id": userID, "setting_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find setting query: %w", err)
	}
	return scanSetting(r.db.QueryRow(ctx, query, args...))
}

func (r *postgresUserRepo) CreateSetting(ctx context.Context, s *user.Setting) error {
	query, args, err := psql.Insert("user_settings").
		Columns("user_id", "setting_key", "setting_value").
		Values(s.UserID, s.Key, s.Value).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert setting query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicateSetting
		}
		return fmt.Errorf("failed to insert setting %s: %w", s.Key, err)
	}
	return nil
}

func (r *postgresUserRepo) UpdateSetting(ctx context.Context, s *user.Setting) error {
	query, args, err := psql.Update("user_settings").
		Set("setting_value", s.Value).
		Where(sq.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update setting query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update setting %s: %w", s.Key, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrSettingNotFound
	}
	return nil
}
