// Package mongostore persists events and users in MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	eventsCollection = "events"
	usersCollection  = "users"
)

// Store wraps a database handle and exposes the repository views.
type Store struct {
	db     *mongo.Database
	events *EventRepository
	users  *UserRepository
}

// Connect dials uri, pings the server and returns the client.
func Connect(ctx context.Context, uri string, log *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Info("mongo connected")
	return client, nil
}

func New(db *mongo.Database) *Store {
	return &Store{
		db:     db,
		events: &EventRepository{c: db.Collection(eventsCollection)},
		users:  &UserRepository{c: db.Collection(usersCollection)},
	}
}

func (s *Store) Events() *EventRepository { return s.events }

func (s *Store) Users() *UserRepository { return s.users }

// EnsureIndexes creates the indexes both collections rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("idx_users_email").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	_, err = s.events.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "dateTime", Value: 1}},
		Options: options.Index().SetName("idx_events_date"),
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}
	return nil
}
