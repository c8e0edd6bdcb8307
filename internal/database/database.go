package database

import (
	"context"
	"errors"
	"time"

	"broker-crm/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
)

// MongodbDB wraps the database handle shared by every repository
type MongodbDB struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect opens a client and verifies it with a ping
func Connect(ctx context.Context, uri, dbName string) (*MongodbDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &MongodbDB{Client: client, DB: client.Database(dbName)}, nil
}

// NewDatabase creates a new MongoDB database connection with lifecycle management
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Client.Disconnect(ctx)
		},
	})

	return db, nil
}

// IsNotFound reports whether err is the driver's "no documents" error
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// Ping checks the connection against the primary
func (m *MongodbDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}
