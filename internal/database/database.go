// Package database provides MongoDB connection management.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used by the service.
const (
	EventsCollection        = "events"
	RegistrationsCollection = "event_registrations"
)

// Connect creates and validates a MongoDB client. It retries up to 5
// times to accommodate containers starting up.
func Connect(ctx context.Context, uri string, log *slog.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetMaxPoolSize(20).
		SetMinPoolSize(2)

	var client *mongo.Client
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := client.Ping(pingCtx, readpref.Primary())
			cancel()
			if pingErr == nil {
				return client, nil
			}
			err = pingErr
			_ = client.Disconnect(ctx)
		}
		log.Warn("mongo connect attempt failed", "attempt", attempt, "error", err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect to mongodb: %w", err)
}
