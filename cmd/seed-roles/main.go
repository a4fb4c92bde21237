package main

import (
	"context"

	"github.com/materiku/materiku-backend/internal/config"
	"github.com/materiku/materiku-backend/internal/database"
	"github.com/materiku/materiku-backend/internal/logger"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/repository"
)

// Seeds the capability catalog and the three archetype roles. Safe to run
// repeatedly: existing capabilities are left alone and existing roles keep
// whatever capability edits an administrator has made since.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	roleRepo := repository.NewRoleRepository(pool)

	if err := roleRepo.SyncCapabilityCatalog(ctx); err != nil {
		log.Fatal().Err(err).Msg("Capability catalog sync failed")
	}
	log.Info().Int("capabilities", len(model.AllCapabilities)).Msg("Capability catalog synced")

	for _, name := range []string{model.RoleAdministrator, model.RoleTeacher, model.RoleStudent} {
		existing, err := roleRepo.GetRoleByName(ctx, name)
		if err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("Role lookup failed")
		}
		if existing != nil {
			log.Info().Str("role", name).Msg("Role already exists, skipping")
			continue
		}

		id, err := roleRepo.CreateRole(ctx, name)
		if err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("Role creation failed")
		}

		caps := model.ArchetypeCapabilities(name)
		if err := roleRepo.AssignCapabilitiesToRole(ctx, id, caps); err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("Capability assignment failed")
		}

		log.Info().Str("role", name).Int("capabilities", len(caps)).Msg("Role seeded")
	}

	log.Info().Msg("Seeding complete")
}
