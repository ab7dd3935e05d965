package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Jidetireni/firstcare-registration/factory"
	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/helpers"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	database "github.com/Jidetireni/firstcare-registration/pkg/database"
)

type Seed struct {
	Config         *config.Config
	DB             *database.PostgresDB
	SubmissionRepo *repository.SubmissionRepository
	PaymentRepo    *repository.PaymentRepository
}

func NewSeeder(cfg *config.Config) (*Seed, func(), error) {
	if !cfg.IsDev {
		return nil, nil, fmt.Errorf("seeding is only allowed in development environment")
	}

	factory, cleanup, err := factory.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize factory: %w", err)
	}

	return &Seed{
		Config:         cfg,
		DB:             factory.DB,
		SubmissionRepo: factory.Repositories.Submission,
		PaymentRepo:    factory.Repositories.Payment,
	}, cleanup, nil
}

func (s *Seed) ResetDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("Resetting database...")
	_, err := s.DB.DB.ExecContext(ctx, `
		TRUNCATE TABLE
			payments,
			submissions
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("Failed to reset database: %v", err)
	}

	fmt.Println("Database reset completed.")
}

func (s *Seed) SeedSubmissions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("Seeding submissions...")
	for _, seedSubmission := range Submissions {
		if err := s.createSubmission(ctx, seedSubmission); err != nil {
			log.Fatalf("Failed to seed %s: %v", seedSubmission.RegistrationID, err)
		}
	}

	fmt.Printf("Seeded %d submissions.\n", len(Submissions))
}

func (s *Seed) createSubmission(ctx context.Context, seedSubmission SeedSubmission) error {
	exists, err := s.SubmissionRepo.Exists(ctx, repository.SubmissionRepositoryFilter{RegistrationID: &seedSubmission.RegistrationID})
	if err != nil {
		return fmt.Errorf("check submission existence: %w", err)
	}
	if exists {
		fmt.Printf("Submission %s already exists. Skipping creation.\n", seedSubmission.RegistrationID)
		return nil
	}

	tx, err := s.DB.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = s.SubmissionRepo.Create(ctx, &repository.Submission{
		RegistrationID: seedSubmission.RegistrationID,
		FirstName:      seedSubmission.FirstName,
		LastName:       seedSubmission.LastName,
		PhoneNumber:    seedSubmission.PhoneNumber,
		NINHash:        helpers.HashValue(seedSubmission.NIN),
		Zone:           seedSubmission.Zone,
		LGA:            seedSubmission.LGA,
		Unit:           seedSubmission.Unit,
		AgentCode:      sql.NullString{String: seedSubmission.AgentCode, Valid: seedSubmission.AgentCode != ""},
		PhotoUploaded:  seedSubmission.PhotoUploaded,
	}, tx)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	for _, p := range seedSubmission.Payments {
		_, err := s.PaymentRepo.Create(ctx, &repository.Payment{
			RegistrationID: seedSubmission.RegistrationID,
			PaymentType:    p.Type,
			Amount:         p.Amount,
			Reference:      helpers.PaymentReference(string(p.Type)),
		}, tx)
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	fmt.Printf("Submission %s created.\n", seedSubmission.RegistrationID)
	return nil
}
