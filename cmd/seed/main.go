// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"kamesan/internal/core/apperror"
	"kamesan/internal/domain/auth"
	"kamesan/internal/domain/numbering"
	"kamesan/internal/infrastructure/storage/postgres"
	"kamesan/internal/infrastructure/storage/postgres/auth_repo"
	"kamesan/internal/infrastructure/storage/postgres/numbering_repo"
	"kamesan/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedNumberingRules(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed numbering rules", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@kamesan.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	users := auth_repo.NewUserRepo(txManager)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existing.ID)
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	admin, err := auth.NewUser(adminEmail, "Administrator", adminPassword, auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", admin.ID)
	return nil
}

func seedNumberingRules(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	service := numbering.NewService(
		numbering_repo.NewRuleRepo(txManager),
		numbering_repo.NewSequenceRepo(txManager),
		nil,
		nil,
	)

	created, err := service.InitDefaults(ctx)
	if err != nil {
		return err
	}

	log.Infow("default numbering rules installed", "created", created)
	return nil
}
