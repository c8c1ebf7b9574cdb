package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// Routes the manager navigates to.
const (
	RouteRoot  = "/"
	RouteLogin = "/login"
)

const (
	msgAPIKeyRequired = "please enter an API key"
	msgAPIKeyTesting  = "testing API key..."
	msgAPIKeySaved    = "API key verified and saved"
	msgCredentials    = "username and password are required"
	msgNoSession      = "login succeeded but no session was established"
)

// AuthClient is the slice of the herd service the session manager needs.
type AuthClient interface {
	Status(ctx context.Context) (models.AuthStatus, error)
	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	AgentTip(ctx context.Context, apiKey string) (models.AgentTip, error)
}

// KeyStore is the durable single-slot store backing the advisory API key.
type KeyStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, key string) error
	Erase(ctx context.Context) error
}

// Resetter is a cache that must be emptied on logout.
type Resetter interface {
	Reset()
}

// Navigator moves the caller to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Manager owns the authentication state and the advisory API key.
type Manager struct {
	client    AuthClient
	keys      KeyStore
	nav       Navigator
	logger    *zap.Logger
	resetters []Resetter

	verify singleflight.Group

	mu    sync.RWMutex
	state models.Session
	// epoch advances on every successful login, registration or logout;
	// verifications started under an older epoch do not write their outcome.
	epoch uint64
}

// NewManager builds a manager and restores the API key from the durable slot.
// The manager starts in the loading state until the first VerifyAuth settles.
func NewManager(ctx context.Context, client AuthClient, keys KeyStore, nav Navigator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}

	m := &Manager{
		client: client,
		keys:   keys,
		nav:    nav,
		logger: logger,
		state:  models.Session{IsLoading: true},
	}
	if key, err := m.loadAPIKey(ctx); err == nil {
		m.state.APIKey = key
	}
	return m
}

// OnLogout registers caches to reset, in order, at the start of Logout.
func (m *Manager) OnLogout(resetters ...Resetter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetters = append(m.resetters, resetters...)
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// APIKey returns the currently configured advisory key, read at call time.
func (m *Manager) APIKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.APIKey
}

// IsAuthenticated reports whether the user may enter protected views.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsAuthenticated
}

// IsLoading reports whether a verification is pending or has never run.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsLoading
}

// VerifyAuth asks the service whether the session is still valid. Concurrent
// callers share a single in-flight request.
func (m *Manager) VerifyAuth(ctx context.Context) {
	_, _, _ = m.verify.Do("verify", func() (any, error) {
		m.verifyAuth(ctx)
		return nil, nil
	})
}

func (m *Manager) verifyAuth(ctx context.Context) {
	m.mu.Lock()
	m.state.IsLoading = true
	epoch := m.epoch
	m.mu.Unlock()

	status, err := m.client.Status(ctx)
	if err != nil {
		m.logger.Warn("session verification failed", zap.Error(err))
		m.clearUser(epoch)
		return
	}

	if !status.LoggedIn || status.Username == "" {
		m.clearUser(epoch)
		return
	}

	// The slot is the source of the reloaded key, so nothing is written back.
	// An unreadable slot keeps the key already in memory.
	key, loadErr := m.loadAPIKey(ctx)

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	if loadErr == nil {
		m.state.APIKey = key
	}
	m.state.IsAuthenticated = true
	m.state.Username = status.Username
	m.state.IsLoading = false
	configured := m.state.APIKey != ""
	m.mu.Unlock()

	m.logger.Debug("session verified", zap.String("username", status.Username), zap.Bool("api_key_configured", configured))
}

func (m *Manager) clearUser(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return
	}
	m.state.IsAuthenticated = false
	m.state.Username = ""
	m.state.IsLoading = false
}

// Login submits credentials and, on success, rehydrates the session and
// navigates to the protected root. On failure LastError is set and the
// authentication state is left untouched.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) bool {
	return m.authenticate(ctx, "login", m.client.Login, creds)
}

// Register creates an account, then behaves like Login.
func (m *Manager) Register(ctx context.Context, creds models.Credentials) bool {
	return m.authenticate(ctx, "register", m.client.Register, creds)
}

func (m *Manager) authenticate(ctx context.Context, op string, submit func(context.Context, models.Credentials) error, creds models.Credentials) bool {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		m.setLastError(msgCredentials)
		return false
	}

	m.mu.Lock()
	m.state.IsLoading = true
	m.state.LastError = ""
	m.mu.Unlock()

	if err := submit(ctx, creds); err != nil {
		m.logger.Info("authentication rejected", zap.String("op", op), zap.String("username", creds.Username), zap.Error(err))
		m.mu.Lock()
		m.state.LastError = err.Error()
		m.state.IsLoading = false
		m.mu.Unlock()
		return false
	}

	// A verification already in flight was sent without the new session
	// cookie; start a fresh one instead of joining it.
	m.mu.Lock()
	m.epoch++
	m.mu.Unlock()
	m.verify.Forget("verify")
	m.VerifyAuth(ctx)

	m.mu.Lock()
	m.state.IsLoading = false
	ok := m.state.IsAuthenticated
	if !ok {
		m.state.LastError = msgNoSession
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.logger.Info("user authenticated", zap.String("op", op), zap.String("username", creds.Username))
	m.nav.Navigate(RouteRoot)
	return true
}

// Logout tears the session down. Dependent caches are reset first so they
// never hold domain data for a cleared session; a failed remote logout is
// logged and local state is cleared regardless.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	resetters := append([]Resetter(nil), m.resetters...)
	m.mu.RUnlock()

	for _, r := range resetters {
		r.Reset()
	}

	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn("remote logout failed", zap.Error(err))
	}

	m.setAPIKey(ctx, "", func(s *models.Session) {
		m.epoch++
		s.IsAuthenticated = false
		s.Username = ""
	})

	m.logger.Info("user logged out")
	m.nav.Navigate(RouteLogin)
}

// TestAndSaveAPIKey checks candidate against the advisory service. A working key
// is adopted; a failing key is cleared so no invalid key stays configured.
func (m *Manager) TestAndSaveAPIKey(ctx context.Context, candidate string) models.APIKeyStatus {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		status := models.APIKeyStatus{Valid: false, Message: msgAPIKeyRequired}
		m.setAPIKeyStatus(status)
		return status
	}

	m.setAPIKeyStatus(models.APIKeyStatus{Valid: false, Message: msgAPIKeyTesting})

	if _, err := m.client.AgentTip(ctx, candidate); err != nil {
		status := models.APIKeyStatus{Valid: false, Message: "API key validation failed: " + err.Error()}
		m.setAPIKey(ctx, "", func(s *models.Session) { s.APIKeyStatus = status })
		m.logger.Info("api key rejected", zap.Error(err))
		return status
	}

	status := models.APIKeyStatus{Valid: true, Message: msgAPIKeySaved}
	m.setAPIKey(ctx, candidate, func(s *models.Session) { s.APIKeyStatus = status })
	m.logger.Info("api key saved")
	return status
}

// setAPIKey is the only writer of the key. The durable slot follows every
// transition: non-empty keys are written through, empty keys erase the slot.
func (m *Manager) setAPIKey(ctx context.Context, key string, update func(*models.Session)) {
	m.mu.Lock()
	m.state.APIKey = key
	if update != nil {
		update(&m.state)
	}
	m.mu.Unlock()

	if m.keys == nil {
		return
	}

	var err error
	if key != "" {
		err = m.keys.Save(ctx, key)
	} else {
		err = m.keys.Erase(ctx)
	}
	if err != nil {
		m.logger.Error("failed to persist api key", zap.Bool("erase", key == ""), zap.Error(err))
	}
}

func (m *Manager) loadAPIKey(ctx context.Context) (string, error) {
	if m.keys == nil {
		return "", nil
	}
	key, err := m.keys.Load(ctx)
	if err != nil {
		m.logger.Warn("failed to read persisted api key", zap.Error(err))
		return "", err
	}
	return key, nil
}

func (m *Manager) setAPIKeyStatus(status models.APIKeyStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.APIKeyStatus = status
}

func (m *Manager) setLastError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastError = msg
}
