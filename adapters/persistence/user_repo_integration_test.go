package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/logger"
)

type UserRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger
	uow         user.UnitOfWork
}

func TestUserRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(UserRepoIntegrationTestSuite))
}

func (s *UserRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNopLogger()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	if err := RunMigrations(ctx, pool, s.testLogger); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	s.uow = NewPostgresUnitOfWork(pool)
}

func (s *UserRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *UserRepoIntegrationTestSuite) SetupTest() {
	_, err := s.dbPool.Exec(context.Background(), `TRUNCATE users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func newTestUser(ssn string) *user.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &user.User{
		SSN:        ssn,
		FirstName:  "Jane",
		FamilyName: "Doe",
		BirthDate:  time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  user.SystemActor,
		UpdatedBy:  user.SystemActor,
	}
}

func (s *UserRepoIntegrationTestSuite) Test_Create_And_Find() {
	ctx := context.Background()
	middle := "Ann"
	u := newTestUser("0000000000000001")
	u.MiddleName = &middle

	s.Require().NoError(s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		return repo.Create(ctx, u)
	}))
	s.NotZero(u.ID)

	s.Require().NoError(s.uow.ReadOnly(ctx, func(ctx context.Context, repo user.Repository) error {
		found, err := repo.FindActiveByID(ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.SSN, found.SSN)
		s.Equal("Ann", *found.MiddleName)
		s.True(found.BirthDate.Equal(u.BirthDate))
		s.Nil(found.DeletedAt)

		exists, err := repo.ExistsBySSN(ctx, u.SSN)
		s.Require().NoError(err)
		s.True(exists)
		return nil
	}))
}

func (s *UserRepoIntegrationTestSuite) Test_DuplicateSSN() {
	ctx := context.Background()
	s.Require().NoError(s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		return repo.Create(ctx, newTestUser("0000000000002945"))
	}))

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		return repo.Create(ctx, newTestUser("0000000000002945"))
	})
	s.ErrorIs(err, user.ErrDuplicateSSN)
}

func (s *UserRepoIntegrationTestSuite) Test_SoftDelete_Filters() {
	ctx := context.Background()
	var ids []int64
	s.Require().NoError(s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		for _, ssn := range []string{"0000000000000011", "0000000000000012", "0000000000000013"} {
			u := newTestUser(ssn)
			if err := repo.Create(ctx, u); err != nil {
				return err
			}
			ids = append(ids, u.ID)
		}
		victim, err := repo.FindActiveByID(ctx, ids[1])
		if err != nil {
			return err
		}
		victim.SoftDelete(time.Now().UTC())
		return repo.Update(ctx, victim)
	}))

	s.Require().NoError(s.uow.ReadOnly(ctx, func(ctx context.Context, repo user.Repository) error {
		_, err := repo.FindActiveByID(ctx, ids[1])
		s.ErrorIs(err, user.ErrUserNotFound)

		deleted, err := repo.FindAnyByID(ctx, ids[1])
		s.Require().NoError(err)
		s.NotNil(deleted.DeletedAt)
		s.False(deleted.IsActive)

		page, err := repo.ListActive(ctx, 5, 0)
		s.Require().NoError(err)
		s.Require().Len(page, 2)
		s.Equal(ids[0], page[0].ID)
		s.Equal(ids[2], page[1].ID)

		page, err = repo.ListActive(ctx, 1, 1)
		s.Require().NoError(err)
		s.Require().Len(page, 1)
		s.Equal(ids[2], page[0].ID)

		n, err := repo.CountActive(ctx)
		s.Require().NoError(err)
		s.Equal(int64(2), n)
		return nil
	}))
}

func (s *UserRepoIntegrationTestSuite) Test_Settings_UpdateInPlace() {
	ctx := context.Background()
	u := newTestUser("0000000000000021")

	s.Require().NoError(s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		if err := repo.Create(ctx, u); err != nil {
			return err
		}
		return repo.CreateSetting(ctx, &user.Setting{UserID: u.ID, Key: "biometric_login", Value: "false"})
	}))

	s.Require().NoError(s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		found, err := repo.FindSettingByUserAndKey(ctx, u.ID, "biometric_login")
		if err != nil {
			return err
		}
		found.Value = "true"
		return repo.UpdateSetting(ctx, found)
	}))

	s.Require().NoError(s.uow.ReadOnly(ctx, func(ctx context.Context, repo user.Repository) error {
		settings, err := repo.ListSettings(ctx, u.ID)
		s.Require().NoError(err)
		s.Require().Len(settings, 1)
		s.Equal("true", settings[0].Value)

		_, err = repo.FindSettingByUserAndKey(ctx, u.ID, "widget_order")
		s.ErrorIs(err, user.ErrSettingNotFound)
		return nil
	}))

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		return repo.CreateSetting(ctx, &user.Setting{UserID: u.ID, Key: "biometric_login", Value: "true"})
	})
	s.ErrorIs(err, user.ErrDuplicateSetting, "unique (user_id, setting_key) index rejects a second row")
}

func (s *UserRepoIntegrationTestSuite) Test_RollbackOnError() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repo user.Repository) error {
		if err := repo.Create(ctx, newTestUser("0000000000000031")); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	s.Require().NoError(s.uow.ReadOnly(ctx, func(ctx context.Context, repo user.Repository) error {
		exists, err := repo.ExistsBySSN(ctx, "0000000000000031")
		s.Require().NoError(err)
		s.False(exists)
		return nil
	}))
}
