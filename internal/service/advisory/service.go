package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

var (
	// ErrMissingAPIKey is returned before any request when no advisory key is set.
	ErrMissingAPIKey = errors.New("configure a valid API key in settings to use the advisor")
	// ErrEmptyMessage rejects a blank chat turn.
	ErrEmptyMessage = errors.New("message must not be empty")
)

// Client is the slice of the herd service used by the advisor.
type Client interface {
	Chat(ctx context.Context, req models.ChatRequest) (models.ChatReply, error)
	Recommendation(ctx context.Context, apiKey string, data map[string]any) (models.Recommendation, error)
}

// APIKeyProvider exposes the advisory key as it is right now.
type APIKeyProvider interface {
	APIKey() string
}

// Service holds one advisory conversation per login session.
type Service struct {
	client Client
	keys   APIKeyProvider
	logger *zap.Logger
	newID  func() string

	mu        sync.Mutex
	sessionID string
}

// NewService wires the advisor. keys is read on every call.
func NewService(client Client, keys APIKeyProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, keys: keys, logger: logger, newID: uuid.NewString}
}

// SessionID returns the conversation id, creating it on first use.
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == "" {
		s.sessionID = s.newID()
	}
	return s.sessionID
}

// Chat sends one turn of the conversation, optionally about a specific animal.
func (s *Service) Chat(ctx context.Context, message, earNum string) (models.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.ChatReply{}, ErrEmptyMessage
	}
	apiKey, err := s.apiKey()
	if err != nil {
		return models.ChatReply{}, err
	}

	req := models.ChatRequest{
		APIKey:        apiKey,
		Message:       message,
		SessionID:     s.SessionID(),
		EarNumContext: strings.TrimSpace(earNum),
	}
	reply, err := s.client.Chat(ctx, req)
	if err != nil {
		s.logger.Info("advisory chat failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return models.ChatReply{}, fmt.Errorf("chat with advisor: %w", err)
	}
	return reply, nil
}

// Recommend asks for a recommendation for the submitted animal profile.
func (s *Service) Recommend(ctx context.Context, data map[string]any) (models.Recommendation, error) {
	apiKey, err := s.apiKey()
	if err != nil {
		return models.Recommendation{}, err
	}
	rec, err := s.client.Recommendation(ctx, apiKey, data)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("request recommendation: %w", err)
	}
	return rec, nil
}

// Reset forgets the conversation so the next turn starts a new one.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = ""
}

func (s *Service) apiKey() (string, error) {
	if s.keys == nil {
		return "", ErrMissingAPIKey
	}
	key := s.keys.APIKey()
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}
