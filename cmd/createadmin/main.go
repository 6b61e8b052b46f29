// Command createadmin creates an admin account, or promotes an existing one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/deskspace/deskspace/internal/config"
	"github.com/deskspace/deskspace/internal/db"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/deskspace/deskspace/internal/store"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "password for a new account")
	username := flag.String("username", "", "username for a new account (defaults to the email name)")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}
	if err := run(*email, *username, *password); err != nil {
		log.Fatal(err)
	}
}

func run(email, username, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongo := db.NewMongo(cfg.Mongo.URI, cfg.Mongo.Database)
	defer mongo.Disconnect(context.Background())

	users := store.NewMongoStore(mongo)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("MongoDB setup failed: %w", err)
	}

	svc := services.NewUserService(users, services.NewSessionService(cfg.JWT.Secret, cfg.JWT.TTL))
	u, created, err := svc.EnsureAdmin(ctx, services.RegisterInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure admin: %w", err)
	}
	if created {
		log.Printf("✅ Created admin %s (%s)", u.Email, u.ID.Hex())
		return nil
	}
	log.Printf("✅ %s (%s) is an admin", u.Email, u.ID.Hex())
	return nil
}
