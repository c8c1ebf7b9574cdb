package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/mocks"
	"github.com/mamadbah2/herdbook/internal/service/session"
	"github.com/mamadbah2/herdbook/pkg/clients/herd"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type resetterFunc func()

func (f resetterFunc) Reset() { f() }

func newManager(t *testing.T, client *mocks.HerdClient, keys *mocks.KeyStore, rec *recorder) *session.Manager {
	t.Helper()
	nav := session.NavigatorFunc(func(path string) { rec.add("navigate " + path) })
	return session.NewManager(context.Background(), client, keys, nav, nil)
}

func TestNewManager_RestoresPersistedKey(t *testing.T) {
	ctx := context.Background()
	keys := &mocks.KeyStore{}
	keys.On("Load", ctx).Return("persisted-key", nil)

	m := newManager(t, &mocks.HerdClient{}, keys, &recorder{})
	snap := m.Snapshot()
	require.True(t, snap.IsLoading)
	require.False(t, snap.IsAuthenticated)
	require.Equal(t, "persisted-key", m.APIKey())
}

func TestVerifyAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("active session resyncs key", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil).Once()
		keys.On("Load", ctx).Return("stored-later", nil).Once()
		client.On("Status", ctx).Return(models.AuthStatus{LoggedIn: true, Username: "amina"}, nil)

		m := newManager(t, client, keys, &recorder{})
		m.VerifyAuth(ctx)

		snap := m.Snapshot()
		require.True(t, snap.IsAuthenticated)
		require.Equal(t, "amina", snap.Username)
		require.False(t, snap.IsLoading)
		require.Equal(t, "stored-later", snap.APIKey)
		keys.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unreadable slot keeps the key", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("persisted-key", nil).Once()
		keys.On("Load", ctx).Return("", errors.New("database is locked")).Once()
		client.On("Status", ctx).Return(models.AuthStatus{LoggedIn: true, Username: "amina"}, nil)

		m := newManager(t, client, keys, &recorder{})
		m.VerifyAuth(ctx)

		require.True(t, m.IsAuthenticated())
		require.Equal(t, "persisted-key", m.APIKey())
		keys.AssertNotCalled(t, "Erase", mock.Anything)
		keys.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("no session", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)
		client.On("Status", ctx).Return(models.AuthStatus{LoggedIn: false}, nil)

		m := newManager(t, client, keys, &recorder{})
		m.VerifyAuth(ctx)

		snap := m.Snapshot()
		require.False(t, snap.IsAuthenticated)
		require.Empty(t, snap.Username)
		require.False(t, snap.IsLoading)
	})

	t.Run("failure clears loading and fails closed", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)
		client.On("Status", ctx).Return(models.AuthStatus{}, errors.New("connection refused"))

		m := newManager(t, client, keys, &recorder{})
		m.VerifyAuth(ctx)

		snap := m.Snapshot()
		require.False(t, snap.IsAuthenticated)
		require.False(t, snap.IsLoading)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	creds := models.Credentials{Username: "amina", Password: "pw"}

	t.Run("success verifies and navigates to root", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)
		keys.On("Erase", ctx).Return(nil)
		client.On("Login", ctx, creds).Return(nil)
		client.On("Status", ctx).Return(models.AuthStatus{LoggedIn: true, Username: "amina"}, nil)

		rec := &recorder{}
		m := newManager(t, client, keys, rec)
		require.True(t, m.Login(ctx, creds))

		snap := m.Snapshot()
		require.True(t, snap.IsAuthenticated)
		require.Empty(t, snap.LastError)
		require.Equal(t, []string{"navigate /"}, rec.list())
	})

	t.Run("rejection keeps state and records message", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)
		client.On("Login", ctx, creds).Return(&herd.APIError{StatusCode: 401, Message: "invalid username or password"})

		rec := &recorder{}
		m := newManager(t, client, keys, rec)
		require.False(t, m.Login(ctx, creds))

		snap := m.Snapshot()
		require.False(t, snap.IsAuthenticated)
		require.Equal(t, "invalid username or password", snap.LastError)
		require.Empty(t, rec.list())
		client.AssertNotCalled(t, "Status", mock.Anything)
	})

	t.Run("verification in flight before login does not decide it", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)

		started := make(chan struct{})
		release := make(chan struct{})
		client.On("Status", ctx).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return(models.AuthStatus{LoggedIn: false}, nil).Once()
		client.On("Status", ctx).Return(models.AuthStatus{LoggedIn: true, Username: "amina"}, nil)
		client.On("Login", ctx, creds).Return(nil)

		m := newManager(t, client, keys, &recorder{})

		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Gate(ctx, session.AccessProtected)
		}()
		<-started

		require.True(t, m.Login(ctx, creds))
		close(release)
		<-done

		snap := m.Snapshot()
		require.True(t, snap.IsAuthenticated)
		require.Equal(t, "amina", snap.Username)
		require.Empty(t, snap.LastError)
		client.AssertNumberOfCalls(t, "Status", 2)
	})

	t.Run("empty credentials never reach the network", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)

		m := newManager(t, client, keys, &recorder{})
		require.False(t, m.Register(ctx, models.Credentials{Username: " "}))
		require.NotEmpty(t, m.Snapshot().LastError)
		client.AssertExpectations(t)
	})
}

func TestTestAndSaveAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("empty key is rejected without a request", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)

		m := newManager(t, client, keys, &recorder{})
		status := m.TestAndSaveAPIKey(ctx, "")
		require.False(t, status.Valid)
		require.NotEmpty(t, status.Message)
		client.AssertNotCalled(t, "AgentTip", mock.Anything, mock.Anything)
	})

	t.Run("working key is adopted and written through", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.KeyStore{}
		keys.On("Load", ctx).Return("", nil)
		keys.On("Save", ctx, "good-key").Return(nil).Once()
		client.On("AgentTip", ctx, "good-key").Return(models.AgentTip{HTML: "<p>tip</p>"}, nil)

		m := newManager(t, client, keys, &recorder{})
		status := m.TestAndSaveAPIKey(ctx, "good-key")
		require.True(t, status.Valid)
		require.Equal(t, "good-key", m.APIKey())
		require.Equal(t, status, m.Snapshot().APIKeyStatus)
		keys.AssertExpectations(t)
	})

	t.Run("failing key check clears key and erases slot", func(t *testing.T) {
		for _, checkErr := range []error{
			&herd.APIError{StatusCode: 500, Message: "API key not valid"},
			errors.New("network unreachable"),
		} {
			client := &mocks.HerdClient{}
			keys := &mocks.KeyStore{}
			keys.On("Load", ctx).Return("previous-key", nil)
			keys.On("Erase", ctx).Return(nil).Once()
			client.On("AgentTip", ctx, "bad-key").Return(models.AgentTip{}, checkErr)

			m := newManager(t, client, keys, &recorder{})
			require.Equal(t, "previous-key", m.APIKey())

			status := m.TestAndSaveAPIKey(ctx, "bad-key")
			require.False(t, status.Valid)
			require.Contains(t, status.Message, checkErr.Error())
			require.Empty(t, m.APIKey())
			require.False(t, m.Snapshot().APIKeyStatus.Valid)
			keys.AssertExpectations(t)
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	for name, remoteErr := range map[string]error{
		"remote ok":     nil,
		"remote failed": errors.New("503 service unavailable"),
	} {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			client := &mocks.HerdClient{}
			keys := &mocks.KeyStore{}
			keys.On("Load", ctx).Return("saved-key", nil)
			keys.On("Erase", ctx).Run(func(mock.Arguments) { rec.add("erase key") }).Return(nil).Once()
			client.On("Status", ctx).Return(models.AuthStatus{LoggedIn: true, Username: "amina"}, nil)
			client.On("Logout", ctx).Run(func(mock.Arguments) { rec.add("remote logout") }).Return(remoteErr)

			m := newManager(t, client, keys, rec)
			m.OnLogout(
				resetterFunc(func() { rec.add("reset dashboard") }),
				resetterFunc(func() { rec.add("reset roster") }),
			)
			m.VerifyAuth(ctx)
			require.True(t, m.IsAuthenticated())

			m.Logout(ctx)

			snap := m.Snapshot()
			assert.False(t, snap.IsAuthenticated)
			assert.Empty(t, snap.Username)
			assert.Empty(t, snap.APIKey)
			assert.Equal(t, []string{
				"reset dashboard",
				"reset roster",
				"remote logout",
				"erase key",
				"navigate /login",
			}, rec.list())
			keys.AssertExpectations(t)
		})
	}
}

func TestGate(t *testing.T) {
	ctx := context.Background()

	client := &mocks.HerdClient{}
	keys := &mocks.KeyStore{}
	keys.On("Load", ctx).Return("", nil)
	keys.On("Erase", ctx).Return(nil)
	client.On("Status", ctx).Return(models.AuthStatus{LoggedIn: true, Username: "amina"}, nil).Once()

	m := newManager(t, client, keys, &recorder{})

	redirect, ok := m.Gate(ctx, session.AccessProtected)
	require.True(t, ok)
	require.Empty(t, redirect)

	redirect, ok = m.Gate(ctx, session.AccessGuest)
	require.False(t, ok)
	require.Equal(t, session.RouteRoot, redirect)

	// Verification only happens while loading.
	client.AssertNumberOfCalls(t, "Status", 1)

	client.On("Logout", ctx).Return(nil)
	m.Logout(ctx)

	redirect, ok = m.Gate(ctx, session.AccessProtected)
	require.False(t, ok)
	require.Equal(t, session.RouteLogin, redirect)

	_, ok = m.Gate(ctx, session.AccessPublic)
	require.True(t, ok)
}
