package repository

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cryptopulse/backend/internal/models"
)

// RuleStore persists the alert rule list as a whole. Every write replaces
// the entire list; callers are expected to re-read before mutating.
// Subscribers receive a signal after each successful Save.
type RuleStore interface {
	Load(ctx context.Context) ([]models.AlertRule, error)
	Save(ctx context.Context, rules []models.AlertRule) error
	Subscribe() <-chan struct{}
}

// changeNotifier fans a change signal out to subscribers. Sends never
// block: a subscriber that has not drained its channel keeps the single
// pending signal.
type changeNotifier struct {
	mu   sync.Mutex
	subs []chan struct{}
}

func (n *changeNotifier) Subscribe() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan struct{}, 1)
	n.subs = append(n.subs, ch)
	return ch
}

func (n *changeNotifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

const ruleListKey = "alerts"

type ruleListDoc struct {
	ID    string             `bson:"_id"`
	Rules []models.AlertRule `bson:"rules"`
}

// MongoRuleStore keeps the rule list in a single document, mirroring the
// dashboard's single localStorage key.
type MongoRuleStore struct {
	collection *mongo.Collection
	changeNotifier
}

func NewMongoRuleStore(client *mongo.Client, dbName, collectionName string) *MongoRuleStore {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoRuleStore{collection: collection}
}

func (s *MongoRuleStore) Load(ctx context.Context) ([]models.AlertRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := s.collection.FindOne(ctx, bson.M{"_id": ruleListKey}).Raw()
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRuleList(raw), nil
}

// decodeRuleList treats an undecodable document as an empty rule list:
// corrupt data means "no rules", never an error surfaced to the caller.
func decodeRuleList(raw []byte) []models.AlertRule {
	var doc ruleListDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		log.Warnf("rule store: discarding undecodable rule list: %v", err)
		return nil
	}
	return doc.Rules
}

func (s *MongoRuleStore) Save(ctx context.Context, rules []models.AlertRule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := ruleListDoc{ID: ruleListKey, Rules: rules}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": ruleListKey}, doc, opts); err != nil {
		return err
	}
	s.notify()
	return nil
}

// MemoryRuleStore is the store-less counterpart used by tests and local
// runs without Mongo.
type MemoryRuleStore struct {
	mu    sync.Mutex
	rules []models.AlertRule
	changeNotifier
}

func NewMemoryRuleStore() *MemoryRuleStore {
	return &MemoryRuleStore{}
}

func (s *MemoryRuleStore) Load(ctx context.Context) ([]models.AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rules := make([]models.AlertRule, len(s.rules))
	copy(rules, s.rules)
	return rules, nil
}

func (s *MemoryRuleStore) Save(ctx context.Context, rules []models.AlertRule) error {
	s.mu.Lock()
	s.rules = make([]models.AlertRule, len(rules))
	copy(s.rules, rules)
	s.mu.Unlock()
	s.notify()
	return nil
}
