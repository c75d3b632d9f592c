package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cryptopulse/backend/internal/models"
)

// TriggerLogStore is the append-only history of fired alerts.
type TriggerLogStore interface {
	Append(ctx context.Context, event *models.TriggerEvent) error
	Recent(ctx context.Context, limit int) ([]*models.TriggerEvent, error)
}

type MongoTriggerLogStore struct {
	collection *mongo.Collection
}

func NewMongoTriggerLogStore(client *mongo.Client, dbName, collectionName string) *MongoTriggerLogStore {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoTriggerLogStore{collection: collection}
}

func (s *MongoTriggerLogStore) Append(ctx context.Context, event *models.TriggerEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, event)
	return err
}

func (s *MongoTriggerLogStore) Recent(ctx context.Context, limit int) ([]*models.TriggerEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"triggered_at": -1}).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.TriggerEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

type MemoryTriggerLogStore struct {
	mu     sync.Mutex
	events []*models.TriggerEvent
}

func NewMemoryTriggerLogStore() *MemoryTriggerLogStore {
	return &MemoryTriggerLogStore{}
}

func (s *MemoryTriggerLogStore) Append(ctx context.Context, event *models.TriggerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryTriggerLogStore) Recent(ctx context.Context, limit int) ([]*models.TriggerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]*models.TriggerEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(events) < limit; i-- {
		events = append(events, s.events[i])
	}
	return events, nil
}
