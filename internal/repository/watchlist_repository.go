package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WatchlistStore persists one asset id list per user, whole-list replace
// like the rule store.
type WatchlistStore interface {
	Load(ctx context.Context, userID string) ([]string, error)
	Save(ctx context.Context, userID string, assetIDs []string) error
}

type watchlistDoc struct {
	ID     string   `bson:"_id"`
	Assets []string `bson:"assets"`
}

type MongoWatchlistStore struct {
	collection *mongo.Collection
}

func NewMongoWatchlistStore(client *mongo.Client, dbName, collectionName string) *MongoWatchlistStore {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoWatchlistStore{collection: collection}
}

func (s *MongoWatchlistStore) Load(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc watchlistDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Assets, nil
}

func (s *MongoWatchlistStore) Save(ctx context.Context, userID string, assetIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := watchlistDoc{ID: userID, Assets: assetIDs}
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": userID}, doc, opts)
	return err
}

type MemoryWatchlistStore struct {
	mu    sync.Mutex
	lists map[string][]string
}

func NewMemoryWatchlistStore() *MemoryWatchlistStore {
	return &MemoryWatchlistStore{lists: make(map[string][]string)}
}

func (s *MemoryWatchlistStore) Load(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assets := make([]string, len(s.lists[userID]))
	copy(assets, s.lists[userID])
	return assets, nil
}

func (s *MemoryWatchlistStore) Save(ctx context.Context, userID string, assetIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]string, len(assetIDs))
	copy(list, assetIDs)
	s.lists[userID] = list
	return nil
}
