// Package store holds the facade's in-memory registry of analyzed deals
// and the go-redis response cache in front of it, grounded on the
// teacher's pattern of keeping repo/service state behind a small manager
// type rather than global package state.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"performa/analysis"
	"performa/internal/apperrors"
	"performa/internal/logger"
	"performa/internal/validate"
	"performa/model"

	"github.com/go-redis/redis/v8"
)

// DealStore holds every analyzed deal's results, keyed by deal ID, plus
// the Deal/Settings pair api/cron needs to re-run Analyze on a schedule.
type DealStore struct {
	mu       sync.RWMutex
	results  map[string]*analysis.DealResults
	deals    map[string]model.Deal
	settings map[string]model.Settings

	rdb *redis.Client
	ttl time.Duration
}

// New builds a DealStore. rdb may be nil, in which case the cache is
// skipped and every read recomputes from the in-memory DealResults.
func New(rdb *redis.Client, ttl time.Duration) *DealStore {
	return &DealStore{
		results:  make(map[string]*analysis.DealResults),
		deals:    make(map[string]model.Deal),
		settings: make(map[string]model.Settings),
		rdb:      rdb,
		ttl:      ttl,
	}
}

// LoadDeal validates deal/settings, runs Analyze, and registers the
// result under deal.ID for the facade to serve.
func (s *DealStore) LoadDeal(deal model.Deal, settings model.Settings) (*analysis.DealResults, error) {
	if err := validate.Deal(deal); err != nil {
		return nil, err
	}
	if err := validate.Settings(settings); err != nil {
		return nil, err
	}
	timeline, err := settings.Timeline()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindConfiguration, "failed to derive timeline from settings")
	}

	results, err := analysis.Analyze(deal, timeline, settings)
	if err != nil {
		return nil, err
	}

	id := deal.ID.String()
	s.mu.Lock()
	s.results[id] = results
	s.deals[id] = deal
	s.settings[id] = settings
	s.mu.Unlock()

	if s.rdb != nil {
		s.invalidate(id)
	}
	return results, nil
}

// Get returns the cached DealResults for dealID, if loaded.
func (s *DealStore) Get(dealID string) (*analysis.DealResults, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[dealID]
	return r, ok
}

// Reload re-runs Analyze against the dealID's last-loaded Deal/Settings
// pair; api/cron calls this on its schedule to pick up an externally
// updated Deal without restarting the process.
func (s *DealStore) Reload(dealID string) error {
	s.mu.RLock()
	deal, ok := s.deals[dealID]
	settings := s.settings[dealID]
	s.mu.RUnlock()
	if !ok {
		return apperrors.Newf(apperrors.KindQuery, "unknown deal %q", dealID)
	}
	_, err := s.LoadDeal(deal, settings)
	return err
}

// DealIDs returns every currently loaded deal ID, for api/cron to iterate.
func (s *DealStore) DealIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.deals))
	for id := range s.deals {
		ids = append(ids, id)
	}
	return ids
}

// CachedJSON fetches key from the redis cache, populating it from compute
// on a miss. Falls back to calling compute directly when no redis client
// is configured.
func (s *DealStore) CachedJSON(ctx context.Context, dealID, kind, key string, compute func() (interface{}, error)) (interface{}, error) {
	if s.rdb == nil {
		return compute()
	}

	cacheKey := fmt.Sprintf("performa:%s:%s:%s", dealID, kind, key)
	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var out interface{}
		if jsonErr := json.Unmarshal([]byte(cached), &out); jsonErr == nil {
			return out, nil
		}
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		if setErr := s.rdb.Set(ctx, cacheKey, encoded, s.ttl).Err(); setErr != nil {
			logger.WithField("cache_key", cacheKey).Warn("failed to populate query cache")
		}
	}
	return value, nil
}

func (s *DealStore) invalidate(dealID string) {
	ctx := context.Background()
	pattern := fmt.Sprintf("performa:%s:*", dealID)
	iter := s.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		s.rdb.Del(ctx, iter.Val())
	}
}
