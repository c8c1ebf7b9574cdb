package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// ErrMissingEarNum rejects mutations that do not name an animal.
var ErrMissingEarNum = errors.New("ear number is required")

// Client is the slice of the herd service the roster needs.
type Client interface {
	ListSheep(ctx context.Context) ([]models.AnimalRecord, error)
	CreateSheep(ctx context.Context, rec models.AnimalRecord) (models.AnimalRecord, error)
	UpdateSheep(ctx context.Context, earNum string, rec models.AnimalRecord) (models.AnimalRecord, error)
	DeleteSheep(ctx context.Context, earNum string) error
}

// Store caches the full roster plus the query parameters of the listing view.
type Store struct {
	client Client
	logger *zap.Logger

	mu        sync.RWMutex
	records   []models.AnimalRecord
	index     map[string]int
	filters   models.FilterSpec
	sort      models.SortSpec
	isLoading bool
	errMsg    string
	err       error

	// seq numbers every fetch; applied is the newest one whose result landed.
	seq     uint64
	applied uint64
}

// NewStore builds an empty roster cache sorted by ear number.
func NewStore(client Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{client: client, logger: logger}
	s.resetLocked()
	return s
}

func defaultSort() models.SortSpec {
	return models.SortSpec{Key: models.FieldEarNum, Direction: models.SortAsc}
}

func (s *Store) resetLocked() {
	s.records = nil
	s.index = map[string]int{}
	s.filters = models.FilterSpec{}
	s.sort = defaultSort()
	s.isLoading = true
	s.errMsg = ""
	s.err = nil
}

// FetchSheep replaces the cached roster with a fresh copy. On failure the
// previous records stay in place and the error is recorded.
func (s *Store) FetchSheep(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	mine := s.seq
	s.isLoading = true
	s.mu.Unlock()

	records, err := s.client.ListSheep(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if mine == s.seq {
		s.isLoading = false
	}
	if mine <= s.applied {
		s.logger.Debug("discarding superseded roster fetch", zap.Uint64("fetch", mine))
		return err
	}
	s.applied = mine

	if err != nil {
		s.logger.Warn("roster fetch failed", zap.Error(err))
		s.errMsg = fmt.Sprintf("failed to load sheep: %v", err)
		s.err = err
		return fmt.Errorf("list sheep: %w", err)
	}

	s.replaceLocked(records)
	s.errMsg = ""
	s.err = nil
	s.logger.Debug("roster refreshed", zap.Int("records", len(records)))
	return nil
}

func (s *Store) replaceLocked(records []models.AnimalRecord) {
	s.records = make([]models.AnimalRecord, len(records))
	s.index = make(map[string]int, len(records))
	for i, rec := range records {
		s.records[i] = rec.Clone()
		s.index[rec.EarNum] = i
	}
}

// FilteredAndSorted returns the listing view for the current filters and sort.
func (s *Store) FilteredAndSorted() []models.AnimalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(s.records, s.filters, s.sort)
}

// FilterOptions returns the selector values present in the cached roster.
func (s *Store) FilterOptions() models.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BuildFilterOptions(s.records)
}

// GetSheepByEarNum looks up one cached record.
func (s *Store) GetSheepByEarNum(earNum string) (models.AnimalRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[earNum]
	if !ok {
		return models.AnimalRecord{}, false
	}
	return s.records[i].Clone(), true
}

// SetSort flips the direction when key is already the sort key and otherwise
// sorts ascending by key.
func (s *Store) SetSort(key string) models.SortSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sort.Key == key {
		if s.sort.Direction == models.SortAsc {
			s.sort.Direction = models.SortDesc
		} else {
			s.sort.Direction = models.SortAsc
		}
	} else {
		s.sort = models.SortSpec{Key: key, Direction: models.SortAsc}
	}
	return s.sort
}

// SetFilters replaces the active filters.
func (s *Store) SetFilters(filters models.FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
}

// ResetFilters clears every filter and keeps the sort.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = models.FilterSpec{}
}

// Reset restores the initial empty cache. Fetches still in flight are ignored
// when they settle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.applied = s.seq
	s.resetLocked()
}

// Snapshot returns a copy of the raw cache state.
func (s *Store) Snapshot() models.RosterSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]models.AnimalRecord, len(s.records))
	for i, rec := range s.records {
		records[i] = rec.Clone()
	}
	return models.RosterSnapshot{
		Records:   records,
		Filters:   s.filters,
		Sort:      s.sort,
		IsLoading: s.isLoading,
		Error:     s.errMsg,
		Err:       s.err,
	}
}

// CreateSheep stores a new animal and refreshes the roster.
func (s *Store) CreateSheep(ctx context.Context, rec models.AnimalRecord) (models.AnimalRecord, error) {
	rec.EarNum = strings.TrimSpace(rec.EarNum)
	if rec.EarNum == "" {
		return models.AnimalRecord{}, ErrMissingEarNum
	}
	created, err := s.client.CreateSheep(ctx, rec)
	if err != nil {
		return models.AnimalRecord{}, fmt.Errorf("create sheep %s: %w", rec.EarNum, err)
	}
	s.refreshAfterWrite(ctx)
	return created, nil
}

// UpdateSheep overwrites an animal's attributes and refreshes the roster.
func (s *Store) UpdateSheep(ctx context.Context, earNum string, rec models.AnimalRecord) (models.AnimalRecord, error) {
	if strings.TrimSpace(earNum) == "" {
		return models.AnimalRecord{}, ErrMissingEarNum
	}
	updated, err := s.client.UpdateSheep(ctx, earNum, rec)
	if err != nil {
		return models.AnimalRecord{}, fmt.Errorf("update sheep %s: %w", earNum, err)
	}
	s.refreshAfterWrite(ctx)
	return updated, nil
}

// DeleteSheep removes an animal and refreshes the roster.
func (s *Store) DeleteSheep(ctx context.Context, earNum string) error {
	if strings.TrimSpace(earNum) == "" {
		return ErrMissingEarNum
	}
	if err := s.client.DeleteSheep(ctx, earNum); err != nil {
		return fmt.Errorf("delete sheep %s: %w", earNum, err)
	}
	s.refreshAfterWrite(ctx)
	return nil
}

// The write already succeeded; a failed refresh only leaves the cache stale.
func (s *Store) refreshAfterWrite(ctx context.Context) {
	if err := s.FetchSheep(ctx); err != nil {
		s.logger.Info("roster refresh after write failed", zap.Error(err))
	}
}
