package dashboard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const msgMissingAPIKey = "configure a valid API key in settings to receive tips"

// Client is the slice of the herd service the dashboard needs.
type Client interface {
	ListSheep(ctx context.Context) ([]models.AnimalRecord, error)
	DashboardData(ctx context.Context) (models.DashboardMetrics, error)
	AgentTip(ctx context.Context, apiKey string) (models.AgentTip, error)
}

// APIKeyProvider exposes the advisory key as it is right now.
type APIKeyProvider interface {
	APIKey() string
}

// Store caches the aggregate metrics and the advisory tip for one session.
type Store struct {
	client Client
	keys   APIKeyProvider
	logger *zap.Logger

	flight singleflight.Group

	mu         sync.RWMutex
	state      models.DashboardSnapshot
	tipLoaded  bool
	generation uint64
}

// NewStore wires a dashboard cache. keys is consulted on every tip fetch.
func NewStore(client Client, keys APIKeyProvider, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, keys: keys, logger: logger}
}

// Snapshot returns a copy of the cache state.
func (s *Store) Snapshot() models.DashboardSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	if s.state.Metrics != nil {
		metrics := *s.state.Metrics
		out.Metrics = &metrics
	}
	return out
}

// FetchDashboardDataIfNeeded loads the roster size and aggregate metrics once
// per session. A failed attempt still counts as loaded; retrying takes a Reset.
func (s *Store) FetchDashboardDataIfNeeded(ctx context.Context) {
	s.mu.RLock()
	loaded, gen := s.state.HasLoadedOnce, s.generation
	s.mu.RUnlock()
	if loaded {
		return
	}

	_, _, _ = s.flight.Do(fmt.Sprintf("dashboard:%d", gen), func() (any, error) {
		s.loadDashboard(ctx, gen)
		return nil, nil
	})
}

func (s *Store) loadDashboard(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if s.generation != gen || s.state.HasLoadedOnce {
		s.mu.Unlock()
		return
	}
	s.state.IsLoading = true
	s.state.Error = ""
	s.state.Err = nil
	s.mu.Unlock()

	var (
		sheep   []models.AnimalRecord
		metrics models.DashboardMetrics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if sheep, err = s.client.ListSheep(gctx); err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if metrics, err = s.client.DashboardData(gctx); err != nil {
			return fmt.Errorf("load metrics: %w", err)
		}
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding dashboard data fetched before reset")
		return
	}

	s.state.IsLoading = false
	s.state.HasLoadedOnce = true
	if err != nil {
		s.logger.Warn("dashboard fetch failed", zap.Error(err))
		s.state.Error = fmt.Sprintf("failed to load dashboard data: %v", err)
		s.state.Err = err
		s.state.HasSheep = false
		s.state.Metrics = nil
		return
	}

	s.state.HasSheep = len(sheep) > 0
	if s.state.HasSheep {
		s.state.Metrics = &metrics
	}
}

// FetchAgentTipIfNeeded fetches one advisory tip unless a tip or a tip error
// is already cached. Without an API key it records an error and stays offline.
func (s *Store) FetchAgentTipIfNeeded(ctx context.Context) {
	s.mu.RLock()
	cached := s.tipLoaded
	gen := s.generation
	s.mu.RUnlock()
	if cached {
		return
	}

	_, _, _ = s.flight.Do(fmt.Sprintf("tip:%d", gen), func() (any, error) {
		s.loadTip(ctx, gen)
		return nil, nil
	})
}

func (s *Store) loadTip(ctx context.Context, gen uint64) {
	apiKey := ""
	if s.keys != nil {
		apiKey = s.keys.APIKey()
	}

	s.mu.Lock()
	if s.generation != gen || s.tipLoaded {
		s.mu.Unlock()
		return
	}
	if apiKey == "" {
		s.state.TipError = msgMissingAPIKey
		s.state.IsTipLoading = false
		s.tipLoaded = true
		s.mu.Unlock()
		return
	}
	s.state.IsTipLoading = true
	s.mu.Unlock()

	tip, err := s.client.AgentTip(ctx, apiKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.state.IsTipLoading = false
	s.tipLoaded = true
	if err != nil {
		s.logger.Info("agent tip fetch failed", zap.Error(err))
		s.state.TipError = "unable to fetch tip: " + err.Error()
		return
	}
	s.state.TipHTML = tip.HTML
}

// Reset restores the initial empty state. Results of fetches still in flight
// are discarded when they settle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.DashboardSnapshot{}
	s.tipLoaded = false
	s.generation++
}
