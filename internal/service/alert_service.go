package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cryptopulse/backend/internal/models"
	"github.com/cryptopulse/backend/internal/repository"
)

// ErrInvalidRule marks rule-creation input rejected before persistence.
// It is the only alert error surfaced to callers; everything else is
// absorbed and logged.
var ErrInvalidRule = errors.New("invalid alert rule")

// PriceLookup resolves the current spot price for an asset in a currency.
// Implementations may be slow or fail; the engine tolerates both.
type PriceLookup interface {
	LookupSpot(ctx context.Context, assetID, currency string) (float64, error)
}

// Broadcaster pushes engine events to connected dashboard clients.
type Broadcaster interface {
	BroadcastTrigger(event *models.TriggerEvent)
	BroadcastSpot(update models.SpotUpdate)
}

type AlertService interface {
	Add(ctx context.Context, assetID string, direction models.AlertDirection, targetPrice float64, currency string) (string, error)
	Remove(ctx context.Context, id string)
	Toggle(ctx context.Context, id string)
	MarkTriggered(ctx context.Context, id string)
	Rules(ctx context.Context) []models.AlertRule
	ActiveCount(ctx context.Context) int
	Start()
	Stop()
}

type alertService struct {
	store    repository.RuleStore
	prices   PriceLookup
	triggers TriggerLogService
	hub      Broadcaster
	interval time.Duration

	mu       sync.Mutex
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	closed   atomic.Bool
}

func NewAlertService(store repository.RuleStore, prices PriceLookup, triggers TriggerLogService, hub Broadcaster, interval time.Duration) AlertService {
	if interval < time.Second {
		interval = time.Minute
	}
	if hub == nil {
		hub = noopBroadcaster{}
	}
	return &alertService{
		store:    store,
		prices:   prices,
		triggers: triggers,
		hub:      hub,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the recurring evaluation loop. The first cycle runs
// immediately; afterwards the interval is measured from the completion of
// each cycle. Store change notifications schedule an extra immediate
// cycle so a freshly created or re-enabled rule does not wait a full
// interval.
func (s *alertService) Start() {
	changes := s.store.Subscribe()
	s.wg.Add(1)
	go s.run(changes)
}

// Stop halts the loop and waits for any in-flight cycle. No store
// mutation is issued after Stop returns.
func (s *alertService) Stop() {
	s.stopOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
	})
	s.wg.Wait()
}

func (s *alertService) run(changes <-chan struct{}) {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-timer.C:
		case <-changes:
			drainTimer(timer)
		}
		s.runCycle(context.Background())
		timer.Reset(s.interval)
	}
}

func drainTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func (s *alertService) Add(ctx context.Context, assetID string, direction models.AlertDirection, targetPrice float64, currency string) (string, error) {
	assetID = strings.TrimSpace(assetID)
	currency = strings.ToLower(strings.TrimSpace(currency))

	if assetID == "" {
		return "", fmt.Errorf("%w: asset id is required", ErrInvalidRule)
	}
	if currency == "" {
		return "", fmt.Errorf("%w: currency is required", ErrInvalidRule)
	}
	if direction != models.DirectionAbove && direction != models.DirectionBelow {
		return "", fmt.Errorf("%w: direction must be %q or %q", ErrInvalidRule, models.DirectionAbove, models.DirectionBelow)
	}
	if targetPrice <= 0 || math.IsNaN(targetPrice) || math.IsInf(targetPrice, 0) {
		return "", fmt.Errorf("%w: target price must be a positive finite number", ErrInvalidRule)
	}

	rule := models.AlertRule{
		ID:          uuid.New().String(),
		AssetID:     assetID,
		Direction:   direction,
		TargetPrice: targetPrice,
		Currency:    currency,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}

	s.mutate(ctx, func(rules []models.AlertRule) []models.AlertRule {
		return append(rules, rule)
	})

	return rule.ID, nil
}

// Remove deletes the rule. An absent id is a no-op, not an error.
func (s *alertService) Remove(ctx context.Context, id string) {
	s.mutate(ctx, func(rules []models.AlertRule) []models.AlertRule {
		kept := rules[:0]
		for _, r := range rules {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		return kept
	})
}

// Toggle flips Active. Re-activating an already-triggered rule re-arms it
// without clearing its last trigger time; a later trigger overwrites it.
func (s *alertService) Toggle(ctx context.Context, id string) {
	s.mutate(ctx, func(rules []models.AlertRule) []models.AlertRule {
		for i := range rules {
			if rules[i].ID == id {
				rules[i].Active = !rules[i].Active
			}
		}
		return rules
	})
}

func (s *alertService) MarkTriggered(ctx context.Context, id string) {
	s.trigger(ctx, id, math.NaN())
}

// trigger flips the rule to triggered state if and only if it is still
// present and active on a fresh read. The Active precondition makes the
// transition at-most-once under overlapping cycles: whichever write lands
// first deactivates the rule and the other sees a no-op.
func (s *alertService) trigger(ctx context.Context, id string, price float64) {
	var fired *models.AlertRule
	s.mutate(ctx, func(rules []models.AlertRule) []models.AlertRule {
		for i := range rules {
			if rules[i].ID == id && rules[i].Active {
				now := time.Now().UTC()
				rules[i].Active = false
				rules[i].TriggeredAt = &now
				r := rules[i]
				fired = &r
			}
		}
		return rules
	})
	if fired == nil {
		return
	}

	event := &models.TriggerEvent{
		RuleID:      fired.ID,
		AssetID:     fired.AssetID,
		Direction:   fired.Direction,
		TargetPrice: fired.TargetPrice,
		Currency:    fired.Currency,
		Price:       price,
		TriggeredAt: *fired.TriggeredAt,
	}
	log.WithFields(log.Fields{
		"rule_id": event.RuleID,
		"asset":   event.AssetID,
		"target":  event.TargetPrice,
		"price":   event.Price,
	}).Info("alert triggered")

	if s.triggers != nil {
		s.triggers.Record(ctx, event)
	}
	s.hub.BroadcastTrigger(event)
}

func (s *alertService) Rules(ctx context.Context) []models.AlertRule {
	rules, err := s.store.Load(ctx)
	if err != nil {
		log.Warnf("alert store read failed: %v", err)
		return nil
	}
	return rules
}

func (s *alertService) ActiveCount(ctx context.Context) int {
	count := 0
	for _, r := range s.Rules(ctx) {
		if r.Active {
			count++
		}
	}
	return count
}

// mutate applies a read-modify-write over the whole rule list. The list
// is re-read immediately before every mutation so concurrent writers
// never work from a stale snapshot; the engine mutex serializes writers
// within the process. Store failures are absorbed here.
func (s *alertService) mutate(ctx context.Context, apply func([]models.AlertRule) []models.AlertRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return
	}

	rules, err := s.store.Load(ctx)
	if err != nil {
		log.Warnf("alert store read failed, treating as empty list: %v", err)
		rules = nil
	}
	rules = apply(rules)
	if err := s.store.Save(ctx, rules); err != nil {
		log.Errorf("alert store write failed: %v", err)
	}
}

type spotKey struct {
	assetID  string
	currency string
}

// runCycle is one full evaluation pass: load, dedupe, look up every
// distinct asset concurrently, then compare. All lookups complete before
// any comparison so every rule sharing an asset sees the same snapshot.
func (s *alertService) runCycle(ctx context.Context) {
	rules, err := s.store.Load(ctx)
	if err != nil {
		log.Warnf("alert cycle: store read failed: %v", err)
		return
	}

	var active []models.AlertRule
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return
	}

	keys := make(map[spotKey]struct{}, len(active))
	for _, r := range active {
		keys[spotKey{r.AssetID, r.Currency}] = struct{}{}
	}

	prices := make(map[spotKey]float64, len(keys))
	var (
		pricesMu sync.Mutex
		wg       sync.WaitGroup
	)
	for key := range keys {
		wg.Add(1)
		go func(key spotKey) {
			defer wg.Done()
			price, err := s.prices.LookupSpot(ctx, key.assetID, key.currency)
			if err != nil {
				log.Debugf("alert cycle: lookup %s/%s failed: %v", key.assetID, key.currency, err)
				return
			}
			if math.IsNaN(price) || math.IsInf(price, 0) {
				return
			}
			pricesMu.Lock()
			prices[key] = price
			pricesMu.Unlock()
		}(key)
	}
	wg.Wait()

	for _, r := range active {
		price, ok := prices[spotKey{r.AssetID, r.Currency}]
		if !ok {
			// Lookup failed this cycle; the rule stays eligible and the
			// next cycle is the retry.
			continue
		}
		if r.Hit(price) {
			s.trigger(ctx, r.ID, price)
		}
	}

	if s.closed.Load() {
		return
	}
	for key, price := range prices {
		s.hub.BroadcastSpot(models.NewSpotUpdate(key.assetID, key.currency, price))
	}
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastTrigger(*models.TriggerEvent) {}
func (noopBroadcaster) BroadcastSpot(models.SpotUpdate)       {}
