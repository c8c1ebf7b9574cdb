package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/mocks"
	"github.com/mamadbah2/herdbook/internal/service/dashboard"
)

var twoSheep = []models.AnimalRecord{{EarNum: "A1"}, {EarNum: "A2"}}

func sampleMetrics() models.DashboardMetrics {
	return models.DashboardMetrics{
		Reminders:          []models.Reminder{{EarNum: "A1", Type: "vaccination", DueDate: "2026-10-20", Status: "upcoming"}},
		FlockStatusSummary: []models.StatusCount{{Status: "maintenance", Count: 2}},
	}
}

func TestFetchDashboardDataIfNeeded_LoadsOnce(t *testing.T) {
	ctx := context.Background()
	client := &mocks.HerdClient{}
	client.On("ListSheep", mock.Anything).Return(twoSheep, nil).Once()
	client.On("DashboardData", mock.Anything).Return(sampleMetrics(), nil).Once()

	store := dashboard.NewStore(client, &mocks.APIKeyProvider{}, nil)
	store.FetchDashboardDataIfNeeded(ctx)
	store.FetchDashboardDataIfNeeded(ctx)

	snap := store.Snapshot()
	require.True(t, snap.HasLoadedOnce)
	require.True(t, snap.HasSheep)
	require.False(t, snap.IsLoading)
	require.NotNil(t, snap.Metrics)
	require.Len(t, snap.Metrics.Reminders, 1)
	client.AssertExpectations(t)
}

func TestFetchDashboardDataIfNeeded_EmptyRosterLeavesMetricsUnset(t *testing.T) {
	client := &mocks.HerdClient{}
	client.On("ListSheep", mock.Anything).Return([]models.AnimalRecord{}, nil)
	client.On("DashboardData", mock.Anything).Return(sampleMetrics(), nil)

	store := dashboard.NewStore(client, &mocks.APIKeyProvider{}, nil)
	store.FetchDashboardDataIfNeeded(context.Background())

	snap := store.Snapshot()
	require.True(t, snap.HasLoadedOnce)
	require.False(t, snap.HasSheep)
	require.Nil(t, snap.Metrics)
}

func TestFetchDashboardDataIfNeeded_FailureStillMarksLoaded(t *testing.T) {
	ctx := context.Background()
	client := &mocks.HerdClient{}
	client.On("ListSheep", mock.Anything).Return(twoSheep, nil)
	client.On("DashboardData", mock.Anything).Return(models.DashboardMetrics{}, errors.New("internal server error")).Once()

	store := dashboard.NewStore(client, &mocks.APIKeyProvider{}, nil)
	store.FetchDashboardDataIfNeeded(ctx)
	store.FetchDashboardDataIfNeeded(ctx)

	snap := store.Snapshot()
	require.True(t, snap.HasLoadedOnce)
	require.False(t, snap.HasSheep)
	require.Nil(t, snap.Metrics)
	require.Contains(t, snap.Error, "internal server error")
	require.Error(t, snap.Err)
	client.AssertNumberOfCalls(t, "DashboardData", 1)

	// Retry is a user-initiated reset.
	client.On("DashboardData", mock.Anything).Return(sampleMetrics(), nil).Once()
	store.Reset()
	store.FetchDashboardDataIfNeeded(ctx)
	snap = store.Snapshot()
	require.Empty(t, snap.Error)
	require.True(t, snap.HasSheep)
}

func TestFetchDashboardDataIfNeeded_ConcurrentCallsShareOneRequest(t *testing.T) {
	release := make(chan time.Time)
	client := &mocks.HerdClient{}
	client.On("ListSheep", mock.Anything).WaitUntil(release).Return(twoSheep, nil)
	client.On("DashboardData", mock.Anything).Return(sampleMetrics(), nil)

	store := dashboard.NewStore(client, &mocks.APIKeyProvider{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.FetchDashboardDataIfNeeded(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	client.AssertNumberOfCalls(t, "ListSheep", 1)
	client.AssertNumberOfCalls(t, "DashboardData", 1)
}

func TestFetchAgentTipIfNeeded(t *testing.T) {
	ctx := context.Background()

	t.Run("cached tip means one network call", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.APIKeyProvider{}
		keys.On("APIKey").Return("key-1")
		client.On("AgentTip", ctx, "key-1").Return(models.AgentTip{HTML: "<p>Rotate pastures.</p>"}, nil)

		store := dashboard.NewStore(client, keys, nil)
		store.FetchAgentTipIfNeeded(ctx)
		store.FetchAgentTipIfNeeded(ctx)

		require.Equal(t, "<p>Rotate pastures.</p>", store.Snapshot().TipHTML)
		client.AssertNumberOfCalls(t, "AgentTip", 1)
	})

	t.Run("empty tip is still cached", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.APIKeyProvider{}
		keys.On("APIKey").Return("key-1")
		client.On("AgentTip", ctx, "key-1").Return(models.AgentTip{}, nil)

		store := dashboard.NewStore(client, keys, nil)
		store.FetchAgentTipIfNeeded(ctx)
		store.FetchAgentTipIfNeeded(ctx)

		snap := store.Snapshot()
		require.Empty(t, snap.TipHTML)
		require.Empty(t, snap.TipError)
		client.AssertNumberOfCalls(t, "AgentTip", 1)

		store.Reset()
		store.FetchAgentTipIfNeeded(ctx)
		client.AssertNumberOfCalls(t, "AgentTip", 2)
	})

	t.Run("missing key records error without a request", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.APIKeyProvider{}
		keys.On("APIKey").Return("")

		store := dashboard.NewStore(client, keys, nil)
		store.FetchAgentTipIfNeeded(ctx)

		snap := store.Snapshot()
		require.NotEmpty(t, snap.TipError)
		require.False(t, snap.IsTipLoading)
		client.AssertNotCalled(t, "AgentTip", mock.Anything, mock.Anything)
	})

	t.Run("key is read at call time", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.APIKeyProvider{}
		keys.On("APIKey").Return("").Once()
		keys.On("APIKey").Return("late-key")
		client.On("AgentTip", ctx, "late-key").Return(models.AgentTip{HTML: "<p>ok</p>"}, nil)

		store := dashboard.NewStore(client, keys, nil)
		store.FetchAgentTipIfNeeded(ctx)
		require.NotEmpty(t, store.Snapshot().TipError)

		store.Reset()
		store.FetchAgentTipIfNeeded(ctx)
		require.Equal(t, "<p>ok</p>", store.Snapshot().TipHTML)
	})

	t.Run("failure is cached", func(t *testing.T) {
		client := &mocks.HerdClient{}
		keys := &mocks.APIKeyProvider{}
		keys.On("APIKey").Return("key-1")
		client.On("AgentTip", ctx, "key-1").Return(models.AgentTip{}, errors.New("quota exceeded"))

		store := dashboard.NewStore(client, keys, nil)
		store.FetchAgentTipIfNeeded(ctx)
		store.FetchAgentTipIfNeeded(ctx)

		require.Contains(t, store.Snapshot().TipError, "quota exceeded")
		client.AssertNumberOfCalls(t, "AgentTip", 1)
	})
}

func TestReset_DiscardsInFlightResults(t *testing.T) {
	release := make(chan time.Time)
	client := &mocks.HerdClient{}
	client.On("ListSheep", mock.Anything).WaitUntil(release).Return(twoSheep, nil)
	client.On("DashboardData", mock.Anything).Return(sampleMetrics(), nil)

	store := dashboard.NewStore(client, &mocks.APIKeyProvider{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.FetchDashboardDataIfNeeded(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	store.Reset()
	close(release)
	<-done

	require.Equal(t, models.DashboardSnapshot{}, store.Snapshot())
}
