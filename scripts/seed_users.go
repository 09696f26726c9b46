package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/user-management/adapters/persistence"
	settingUC "github.com/khoahotran/user-management/internal/application/usecase/setting"
	userUC "github.com/khoahotran/user-management/internal/application/usecase/user"
	"github.com/khoahotran/user-management/internal/config"
	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
	"github.com/khoahotran/user-management/pkg/logger"
)

type seedUser struct {
	SSN        string  `json:"ssn"`
	FirstName  string  `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   string  `json:"last_name"`
	BirthDate  string  `json:"birth_date"`
}

func main() {
	fmt.Println("adding seed users into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)

	path := os.Getenv("SEED_FILE")
	if path == "" {
		path = "scripts/seed_users.json"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("cannot read seed file: %v", err)
	}
	var seeds []seedUser
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatalf("cannot parse seed file: %v", err)
	}

	ctx := context.Background()
	pool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	if err := persistence.RunMigrations(ctx, pool, appLogger); err != nil {
		log.Fatalf("cannot run migrations: %v", err)
	}

	uc := userUC.NewUserUseCase(
		persistence.NewPostgresUnitOfWork(pool),
		settingUC.NewReconciler(appLogger),
		nil,
		nil,
		appLogger,
		userUC.Options{MaxAgeYears: cfg.Users.MaxAgeYears},
	)

	created := 0
	for _, s := range seeds {
		birth, err := time.Parse(user.BirthDateLayout, s.BirthDate)
		if err != nil {
			log.Fatalf("bad birth date %q for %s: %v", s.BirthDate, s.SSN, err)
		}
		u, err := uc.CreateUser(ctx, userUC.CreateUserInput{
			SSN:        s.SSN,
			FirstName:  s.FirstName,
			MiddleName: s.MiddleName,
			LastName:   s.LastName,
			BirthDate:  birth,
		})
		if errors.Is(err, apperror.ErrConflict) {
			appLogger.Info("seed user already exists, skipping", zap.String("ssn", s.SSN))
			continue
		}
		if err != nil {
			log.Fatalf("cannot add user %s: %v", s.SSN, err)
		}
		created++
		appLogger.Info("seed user created", zap.Int64("user_id", u.ID), zap.String("ssn", u.SSN))
	}

	fmt.Printf("added %d of %d seed users successfully!\n", created, len(seeds))
}
