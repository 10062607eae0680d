package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/user-profile-service/config"
	"github.com/oksasatya/user-profile-service/internal/domain/entity"
	pginfra "github.com/oksasatya/user-profile-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-profile-service/pkg/helpers"
)

// Development seeder: a few profiles with a symmetric friendship
// between the first two, so the removal flow has something to remove.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)

	hash, err := helpers.HashPassword("password123")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	alice := &entity.UserProfile{ID: uuid.NewString(), Username: "alice_wonder", Email: "alice@example.com", Password: hash, Bio: "down the rabbit hole"}
	bob := &entity.UserProfile{ID: uuid.NewString(), Username: "bob_builder", Email: "bob@example.com", Password: hash, Bio: "can we fix it"}
	carol := &entity.UserProfile{ID: uuid.NewString(), Username: "carol_singer", Email: "carol@example.com", Password: hash, Bio: ""}

	alice.Friends = []string{bob.ID}
	bob.Friends = []string{alice.ID}
	carol.Friends = []string{}

	for _, u := range []*entity.UserProfile{alice, bob, carol} {
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("seed %s: %v", u.Username, err)
		}
		log.Printf("seeded %s (%s)", u.Username, u.ID)
	}
}
