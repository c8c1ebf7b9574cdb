package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/pkg/clients/herd"
)

// HerdClient is a mock for the herd service boundary. It satisfies the
// consumer interfaces declared by the session, dashboard, roster, events,
// imports and advisory services.
type HerdClient struct {
	mock.Mock
}

func (m *HerdClient) Status(ctx context.Context) (models.AuthStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AuthStatus), args.Error(1)
}

func (m *HerdClient) Login(ctx context.Context, creds models.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *HerdClient) Register(ctx context.Context, creds models.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *HerdClient) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *HerdClient) DashboardData(ctx context.Context) (models.DashboardMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.DashboardMetrics), args.Error(1)
}

func (m *HerdClient) AgentTip(ctx context.Context, apiKey string) (models.AgentTip, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(models.AgentTip), args.Error(1)
}

func (m *HerdClient) Recommendation(ctx context.Context, apiKey string, data map[string]any) (models.Recommendation, error) {
	args := m.Called(ctx, apiKey, data)
	return args.Get(0).(models.Recommendation), args.Error(1)
}

func (m *HerdClient) Chat(ctx context.Context, req models.ChatRequest) (models.ChatReply, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.ChatReply), args.Error(1)
}

func (m *HerdClient) ListSheep(ctx context.Context) ([]models.AnimalRecord, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]models.AnimalRecord); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HerdClient) CreateSheep(ctx context.Context, rec models.AnimalRecord) (models.AnimalRecord, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(models.AnimalRecord), args.Error(1)
}

func (m *HerdClient) UpdateSheep(ctx context.Context, earNum string, rec models.AnimalRecord) (models.AnimalRecord, error) {
	args := m.Called(ctx, earNum, rec)
	return args.Get(0).(models.AnimalRecord), args.Error(1)
}

func (m *HerdClient) DeleteSheep(ctx context.Context, earNum string) error {
	args := m.Called(ctx, earNum)
	return args.Error(0)
}

func (m *HerdClient) AnalyzeWorkbook(ctx context.Context, upload herd.Upload) (models.WorkbookAnalysis, error) {
	args := m.Called(ctx, upload)
	return args.Get(0).(models.WorkbookAnalysis), args.Error(1)
}

func (m *HerdClient) ProcessImport(ctx context.Context, upload herd.Upload, defaultMode bool, mapping any) (models.ImportReport, error) {
	args := m.Called(ctx, upload, defaultMode, mapping)
	return args.Get(0).(models.ImportReport), args.Error(1)
}

func (m *HerdClient) ListEvents(ctx context.Context, earNum string) ([]models.SheepEvent, error) {
	args := m.Called(ctx, earNum)
	if list, ok := args.Get(0).([]models.SheepEvent); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HerdClient) AddEvent(ctx context.Context, earNum string, ev models.SheepEvent) (models.SheepEvent, error) {
	args := m.Called(ctx, earNum, ev)
	return args.Get(0).(models.SheepEvent), args.Error(1)
}

func (m *HerdClient) UpdateEvent(ctx context.Context, id int64, ev models.SheepEvent) (models.SheepEvent, error) {
	args := m.Called(ctx, id, ev)
	return args.Get(0).(models.SheepEvent), args.Error(1)
}

func (m *HerdClient) DeleteEvent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *HerdClient) ListHistory(ctx context.Context, earNum string) ([]models.HistoryRecord, error) {
	args := m.Called(ctx, earNum)
	if list, ok := args.Get(0).([]models.HistoryRecord); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HerdClient) DeleteHistory(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *HerdClient) EventOptions(ctx context.Context) ([]models.EventTypeOption, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]models.EventTypeOption); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HerdClient) AddEventType(ctx context.Context, name string) (models.EventTypeOption, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.EventTypeOption), args.Error(1)
}

func (m *HerdClient) DeleteEventType(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *HerdClient) AddEventDescription(ctx context.Context, typeID int64, description string) (models.EventDescriptionOption, error) {
	args := m.Called(ctx, typeID, description)
	return args.Get(0).(models.EventDescriptionOption), args.Error(1)
}

func (m *HerdClient) DeleteEventDescription(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// KeyStore is a mock for the durable API-key slot.
type KeyStore struct {
	mock.Mock
}

func (m *KeyStore) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *KeyStore) Save(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *KeyStore) Erase(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// APIKeyProvider is a mock for the late-bound API key accessor.
type APIKeyProvider struct {
	mock.Mock
}

func (m *APIKeyProvider) APIKey() string {
	args := m.Called()
	return args.String(0)
}
