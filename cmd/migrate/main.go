package main

import (
	"context"
	"time"

	mongoMigration "resort/internal/migrations/mongo"
	usersRepository "resort/internal/users/repository"
	usersService "resort/internal/users/service"
	usersValidator "resort/internal/users/validator"
	"resort/pkg/auth"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job")
	defer cfg.GracefulShutdown()

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	seedAdmin(ctx, cfg)
	cfg.Log.Info("Migration completed successfully")
}

// seedAdmin creates or promotes the bootstrap admin when ADMIN_EMAIL is set.
func seedAdmin(ctx context.Context, cfg *config.Config) {
	if cfg.AdminEmail == "" {
		cfg.Log.Info("ADMIN_EMAIL not set, skipping admin seed")
		return
	}

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	users := usersService.NewUserService(
		usersRepository.NewMongoUserRepository(cfg, db, mongotx.NewSequence(db)),
		auth.NewPasswordHasher(cfg.BcryptCost),
		auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL),
		nil, // seeding never deletes users
		mongotx.NewTransactionManager(cfg.Client.Mongo),
		usersValidator.NewUserValidator(cfg.Log),
		cfg,
	)

	if err := users.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		cfg.Log.Fatal("Admin seed failed", "email", cfg.AdminEmail, "error", err)
	}
	cfg.Log.Info("Admin account ready", "email", cfg.AdminEmail)
}
