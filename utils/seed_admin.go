package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tasknest/backend/database"
	"github.com/tasknest/backend/models"
)

// SeedAdminUser upserts the bootstrap admin account. Safe to run on every
// boot: only inserts when the email is not taken yet.
func SeedAdminUser(ctx context.Context, store database.Store, email, password string) error {
	if password == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set when ADMIN_EMAIL is")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UnixMilli()
	filter := bson.M{"email": email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":        email,
			"name":         "Administrator",
			"passwordHash": hash,
			"role":         models.RoleAdmin,
			"createdAt":    now,
			"updatedAt":    now,
		},
	}

	inserted, err := store.Upsert(ctx, database.UsersCollection, filter, update)
	if err != nil {
		return fmt.Errorf("seed admin upsert failed: %w", err)
	}

	if inserted {
		log.Info().Str("email", email).Msg("admin user seeded")
	} else {
		log.Debug().Str("email", email).Msg("admin user already exists")
	}
	return nil
}
