package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

var (
	// ErrMissingEarNum rejects a log or history lookup without an animal.
	ErrMissingEarNum = errors.New("ear number is required")
	// ErrMissingEventFields rejects an event without a date or a type.
	ErrMissingEventFields = errors.New("event date and type are required")
	// ErrMissingOptionFields rejects an option without a name, a parent type or a description.
	ErrMissingOptionFields = errors.New("option name or description is missing")
	// ErrDefaultOption rejects deleting a built-in event type or description.
	ErrDefaultOption = errors.New("default options cannot be deleted")
)

// Client is the slice of the herd service backing event logs, measurement
// history and the event option presets.
type Client interface {
	ListEvents(ctx context.Context, earNum string) ([]models.SheepEvent, error)
	AddEvent(ctx context.Context, earNum string, ev models.SheepEvent) (models.SheepEvent, error)
	UpdateEvent(ctx context.Context, id int64, ev models.SheepEvent) (models.SheepEvent, error)
	DeleteEvent(ctx context.Context, id int64) error
	ListHistory(ctx context.Context, earNum string) ([]models.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id int64) error
	EventOptions(ctx context.Context) ([]models.EventTypeOption, error)
	AddEventType(ctx context.Context, name string) (models.EventTypeOption, error)
	DeleteEventType(ctx context.Context, id int64) error
	AddEventDescription(ctx context.Context, typeID int64, description string) (models.EventDescriptionOption, error)
	DeleteEventDescription(ctx context.Context, id int64) error
}

// Service proxies per-animal events and history, and caches the option presets
// for the session.
type Service struct {
	client Client
	logger *zap.Logger

	flight singleflight.Group

	mu         sync.RWMutex
	options    []models.EventTypeOption
	loaded     bool
	generation uint64
}

// NewService wires the events service.
func NewService(client Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Events returns the event log of one animal, newest first as the service orders it.
func (s *Service) Events(ctx context.Context, earNum string) ([]models.SheepEvent, error) {
	earNum = strings.TrimSpace(earNum)
	if earNum == "" {
		return nil, ErrMissingEarNum
	}
	list, err := s.client.ListEvents(ctx, earNum)
	if err != nil {
		return nil, fmt.Errorf("list events of %s: %w", earNum, err)
	}
	return list, nil
}

// AddEvent records an event for an animal.
func (s *Service) AddEvent(ctx context.Context, earNum string, ev models.SheepEvent) (models.SheepEvent, error) {
	earNum = strings.TrimSpace(earNum)
	if earNum == "" {
		return models.SheepEvent{}, ErrMissingEarNum
	}
	if err := validateEvent(&ev); err != nil {
		return models.SheepEvent{}, err
	}
	out, err := s.client.AddEvent(ctx, earNum, ev)
	if err != nil {
		return models.SheepEvent{}, fmt.Errorf("add event to %s: %w", earNum, err)
	}
	s.logger.Info("event recorded", zap.String("ear_num", earNum), zap.String("event_type", ev.EventType))
	return out, nil
}

// UpdateEvent rewrites an event. Date and type stay mandatory.
func (s *Service) UpdateEvent(ctx context.Context, id int64, ev models.SheepEvent) (models.SheepEvent, error) {
	if err := validateEvent(&ev); err != nil {
		return models.SheepEvent{}, err
	}
	out, err := s.client.UpdateEvent(ctx, id, ev)
	if err != nil {
		return models.SheepEvent{}, fmt.Errorf("update event %d: %w", id, err)
	}
	return out, nil
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.client.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	return nil
}

// History returns the measurement history of one animal, oldest first.
func (s *Service) History(ctx context.Context, earNum string) ([]models.HistoryRecord, error) {
	earNum = strings.TrimSpace(earNum)
	if earNum == "" {
		return nil, ErrMissingEarNum
	}
	list, err := s.client.ListHistory(ctx, earNum)
	if err != nil {
		return nil, fmt.Errorf("list history of %s: %w", earNum, err)
	}
	return list, nil
}

// DeleteHistory removes one measurement.
func (s *Service) DeleteHistory(ctx context.Context, id int64) error {
	if err := s.client.DeleteHistory(ctx, id); err != nil {
		return fmt.Errorf("delete history record %d: %w", id, err)
	}
	return nil
}

// Options returns the event type presets, fetching them once per session.
// Concurrent first calls share one request.
func (s *Service) Options(ctx context.Context) ([]models.EventTypeOption, error) {
	s.mu.RLock()
	if s.loaded {
		out := cloneOptions(s.options)
		s.mu.RUnlock()
		return out, nil
	}
	gen := s.generation
	s.mu.RUnlock()

	v, err, _ := s.flight.Do(fmt.Sprintf("options:%d", gen), func() (any, error) {
		s.mu.RLock()
		if s.loaded && s.generation == gen {
			list := cloneOptions(s.options)
			s.mu.RUnlock()
			return list, nil
		}
		s.mu.RUnlock()

		list, err := s.client.EventOptions(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.generation == gen {
			s.options = cloneOptions(list)
			s.loaded = true
		}
		s.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load event options: %w", err)
	}
	return cloneOptions(v.([]models.EventTypeOption)), nil
}

// AddEventType creates a user-defined event type.
func (s *Service) AddEventType(ctx context.Context, name string) (models.EventTypeOption, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.EventTypeOption{}, ErrMissingOptionFields
	}
	out, err := s.client.AddEventType(ctx, name)
	if err != nil {
		return models.EventTypeOption{}, fmt.Errorf("add event type: %w", err)
	}
	s.Reset()
	return out, nil
}

// DeleteEventType removes a user-defined event type. Built-in types known from
// the cached presets are refused without a request.
func (s *Service) DeleteEventType(ctx context.Context, id int64) error {
	if s.isDefault(func(opt models.EventTypeOption) bool { return opt.ID == id && opt.IsDefault }) {
		return ErrDefaultOption
	}
	if err := s.client.DeleteEventType(ctx, id); err != nil {
		return fmt.Errorf("delete event type %d: %w", id, err)
	}
	s.Reset()
	return nil
}

// AddEventDescription adds a description preset under an event type.
func (s *Service) AddEventDescription(ctx context.Context, typeID int64, description string) (models.EventDescriptionOption, error) {
	description = strings.TrimSpace(description)
	if typeID <= 0 || description == "" {
		return models.EventDescriptionOption{}, ErrMissingOptionFields
	}
	out, err := s.client.AddEventDescription(ctx, typeID, description)
	if err != nil {
		return models.EventDescriptionOption{}, fmt.Errorf("add event description: %w", err)
	}
	s.Reset()
	return out, nil
}

// DeleteEventDescription removes a user-defined description preset.
func (s *Service) DeleteEventDescription(ctx context.Context, id int64) error {
	builtin := s.isDefault(func(opt models.EventTypeOption) bool {
		for _, d := range opt.Descriptions {
			if d.ID == id && d.IsDefault {
				return true
			}
		}
		return false
	})
	if builtin {
		return ErrDefaultOption
	}
	if err := s.client.DeleteEventDescription(ctx, id); err != nil {
		return fmt.Errorf("delete event description %d: %w", id, err)
	}
	s.Reset()
	return nil
}

// Reset drops the cached presets. A load still in flight is not kept.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = nil
	s.loaded = false
	s.generation++
}

func (s *Service) isDefault(match func(models.EventTypeOption) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, opt := range s.options {
		if match(opt) {
			return true
		}
	}
	return false
}

func validateEvent(ev *models.SheepEvent) error {
	ev.EventDate = strings.TrimSpace(ev.EventDate)
	ev.EventType = strings.TrimSpace(ev.EventType)
	if ev.EventDate == "" || ev.EventType == "" {
		return ErrMissingEventFields
	}
	return nil
}

func cloneOptions(in []models.EventTypeOption) []models.EventTypeOption {
	if in == nil {
		return nil
	}
	out := make([]models.EventTypeOption, len(in))
	for i, opt := range in {
		out[i] = opt
		out[i].Descriptions = append([]models.EventDescriptionOption(nil), opt.Descriptions...)
	}
	return out
}
