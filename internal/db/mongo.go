package db

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Mongo is a process-wide, lazily connected database handle.
// The first successful Database call connects and pings; later calls reuse the
// same client. A failed connect is not cached, so the next call retries.
type Mongo struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
}

func NewMongo(uri, dbName string) *Mongo {
	return &Mongo{uri: uri, dbName: dbName}
}

// Database returns the configured database, connecting on first use.
func (m *Mongo) Database(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client.Database(m.dbName), nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Println("✅ Connected to MongoDB")
	m.client = client
	return client.Database(m.dbName), nil
}

// Collection is a shortcut for Database(ctx).Collection(name).
func (m *Mongo) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	database, err := m.Database(ctx)
	if err != nil {
		return nil, err
	}
	return database.Collection(name), nil
}

// Disconnect closes the client if one was opened.
func (m *Mongo) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}
