package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deskspace/deskspace/internal/config"
	"github.com/deskspace/deskspace/internal/db"
	"github.com/deskspace/deskspace/internal/events"
	"github.com/deskspace/deskspace/internal/handlers"
	"github.com/deskspace/deskspace/internal/middleware"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/deskspace/deskspace/internal/storage"
	"github.com/deskspace/deskspace/internal/store"
)

// backend is the persistence the services run against.
type backend interface {
	store.PropertyStore
	store.UserStore
	store.MessageStore
}

func openBackend(ctx context.Context, cfg config.MongoConfig) (backend, func(), error) {
	if cfg.Backend == "memory" {
		log.Println("⚠️ Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	mongo := db.NewMongo(cfg.URI, cfg.Database)
	closeMongo := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongo.Disconnect(ctx); err != nil {
			log.Printf("Warning: Failed to disconnect MongoDB: %v", err)
		}
	}
	s := store.NewMongoStore(mongo)
	if err := s.EnsureIndexes(ctx); err != nil {
		closeMongo()
		return nil, nil, fmt.Errorf("MongoDB setup failed: %w", err)
	}
	return s, closeMongo, nil
}

func openPublisher(cfg config.RabbitMQConfig) events.Publisher {
	if cfg.URL == "" {
		return events.Nop{}
	}
	pub, err := events.NewRabbitPublisher(cfg.URL, cfg.Queue)
	if err != nil {
		log.Printf("Warning: RabbitMQ unavailable, events disabled: %v", err)
		return events.Nop{}
	}
	log.Println("✅ Connected to RabbitMQ")
	return pub
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so deferred cleanup always runs.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	ctx := context.Background()

	data, closeData, err := openBackend(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer closeData()

	// Initialize MinIO
	objects, err := storage.NewMinio(cfg.Minio)
	if err != nil {
		return fmt.Errorf("MinIO setup failed: %w", err)
	}
	objects.EnsureBucket(ctx)

	pub := openPublisher(cfg.RabbitMQ)
	defer pub.Close()

	sessions := services.NewSessionService(cfg.JWT.Secret, cfg.JWT.TTL)
	uploader := services.NewUploader(objects, cfg.Upload)
	properties := services.NewPropertyService(data, uploader, pub)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	app := handlers.NewApp(cfg.Server.BodyLimit, handlers.Routes{
		Sessions:   sessions,
		Limiter:    limiter,
		Auth:       handlers.NewAuthHandler(services.NewUserService(data, sessions)),
		Properties: handlers.NewPropertyHandler(properties, cfg.Server.BaseURL),
		Admin:      handlers.NewAdminHandler(properties),
		Uploads:    handlers.NewUploadHandler(uploader),
		Bookmarks:  handlers.NewBookmarkHandler(services.NewBookmarkService(data, data)),
		Messages:   handlers.NewMessageHandler(services.NewMessageService(data, data, data, pub)),
	})

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Warning: Failed to shut down cleanly: %v", err)
		}
	}()

	// Start server
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
