package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/advisory"
	"github.com/mamadbah2/herdbook/internal/service/events"
	"github.com/mamadbah2/herdbook/internal/service/imports"
	"github.com/mamadbah2/herdbook/internal/service/roster"
	"github.com/mamadbah2/herdbook/internal/service/session"
	"github.com/mamadbah2/herdbook/pkg/clients/herd"
)

// SessionService is the session surface exposed over HTTP.
type SessionService interface {
	Snapshot() models.Session
	VerifyAuth(ctx context.Context)
	Login(ctx context.Context, creds models.Credentials) bool
	Register(ctx context.Context, creds models.Credentials) bool
	Logout(ctx context.Context)
	TestAndSaveAPIKey(ctx context.Context, candidate string) models.APIKeyStatus
}

// DashboardService is the dashboard cache surface exposed over HTTP.
type DashboardService interface {
	FetchDashboardDataIfNeeded(ctx context.Context)
	FetchAgentTipIfNeeded(ctx context.Context)
	Snapshot() models.DashboardSnapshot
	Reset()
}

// RosterService is the roster cache surface exposed over HTTP.
type RosterService interface {
	FetchSheep(ctx context.Context) error
	FilteredAndSorted() []models.AnimalRecord
	FilterOptions() models.FilterOptions
	GetSheepByEarNum(earNum string) (models.AnimalRecord, bool)
	SetSort(key string) models.SortSpec
	SetFilters(filters models.FilterSpec)
	ResetFilters()
	Snapshot() models.RosterSnapshot
	CreateSheep(ctx context.Context, rec models.AnimalRecord) (models.AnimalRecord, error)
	UpdateSheep(ctx context.Context, earNum string, rec models.AnimalRecord) (models.AnimalRecord, error)
	DeleteSheep(ctx context.Context, earNum string) error
}

// EventsService is the event log, history and preset surface exposed over HTTP.
type EventsService interface {
	Events(ctx context.Context, earNum string) ([]models.SheepEvent, error)
	AddEvent(ctx context.Context, earNum string, ev models.SheepEvent) (models.SheepEvent, error)
	UpdateEvent(ctx context.Context, id int64, ev models.SheepEvent) (models.SheepEvent, error)
	DeleteEvent(ctx context.Context, id int64) error
	History(ctx context.Context, earNum string) ([]models.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id int64) error
	Options(ctx context.Context) ([]models.EventTypeOption, error)
	AddEventType(ctx context.Context, name string) (models.EventTypeOption, error)
	DeleteEventType(ctx context.Context, id int64) error
	AddEventDescription(ctx context.Context, typeID int64, description string) (models.EventDescriptionOption, error)
	DeleteEventDescription(ctx context.Context, id int64) error
}

// ImportService is the import workflow surface exposed over HTTP.
type ImportService interface {
	Analyze(ctx context.Context, filename string, data []byte) (models.WorkbookAnalysis, error)
	Suggest(data []byte) (imports.MappingConfig, error)
	Submit(ctx context.Context, req imports.Request) (models.ImportReport, error)
	SubmitSpreadsheet(ctx context.Context, spreadsheetID string, defaultMode bool, mapping *imports.MappingConfig) (models.ImportReport, error)
}

// AdvisoryService is the advisor surface exposed over HTTP.
type AdvisoryService interface {
	Chat(ctx context.Context, message, earNum string) (models.ChatReply, error)
	Recommend(ctx context.Context, data map[string]any) (models.Recommendation, error)
}

// Handler adapts the client state services to HTTP.
type Handler struct {
	session   SessionService
	dashboard DashboardService
	roster    RosterService
	events    EventsService
	imports   ImportService
	advisory  AdvisoryService
	logger    *zap.Logger
}

// NewHandler constructs the HTTP handler adapter.
func NewHandler(sess SessionService, dash DashboardService, rost RosterService, ev EventsService, imp ImportService, adv AdvisoryService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		session:   sess,
		dashboard: dash,
		roster:    rost,
		events:    ev,
		imports:   imp,
		advisory:  adv,
		logger:    logger,
	}
}

var validationErrors = []error{
	roster.ErrMissingEarNum,
	events.ErrMissingEarNum,
	events.ErrMissingEventFields,
	events.ErrMissingOptionFields,
	events.ErrDefaultOption,
	imports.ErrEmptyWorkbook,
	imports.ErrEmptyMapping,
	imports.ErrUnknownPurpose,
	imports.ErrMissingRequiredField,
	imports.ErrNoWorkbookSource,
	advisory.ErrMissingAPIKey,
	advisory.ErrEmptyMessage,
}

// fail maps a service error onto a response. An expired remote session sends
// the caller back to the login view.
func (h *Handler) fail(c *gin.Context, err error) {
	if herd.IsUnauthorized(err) {
		h.session.VerifyAuth(c.Request.Context())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": session.RouteLogin})
		return
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.logger.Warn("herd service call failed", zap.String("path", c.FullPath()), zap.Error(err))
	var apiErr *herd.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "the herd service is unreachable"})
}
