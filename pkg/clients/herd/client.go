package herd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const apiKeyHeader = "X-Api-Key"

// Client is a resty-backed client for the herd record service. The underlying
// cookie jar carries the authenticated session between calls.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a herd service client using the provided configuration values.
func NewClient(cfg config.HerdAPIConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{httpClient: restyClient}
}

// Upload is a workbook carried as raw bytes; parsing happens server side.
type Upload struct {
	Filename string
	Data     []byte
}

// Status queries whether the current cookie session is logged in.
func (c *Client) Status(ctx context.Context) (models.AuthStatus, error) {
	var out models.AuthStatus
	err := c.do(ctx, http.MethodGet, "/api/auth/status", nil, &out, nil)
	return out, err
}

// Login opens a session for the given credentials.
func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/auth/login", creds, nil, nil)
}

// Register creates an account and opens a session for it.
func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", creds, nil, nil)
}

// Logout closes the remote session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// DashboardData fetches reminders, health alerts and the status summary.
func (c *Client) DashboardData(ctx context.Context) (models.DashboardMetrics, error) {
	var out models.DashboardMetrics
	err := c.do(ctx, http.MethodGet, "/api/dashboard_data", nil, &out, nil)
	return out, err
}

// AgentTip fetches one advisory tip using apiKey. It doubles as the key check.
func (c *Client) AgentTip(ctx context.Context, apiKey string) (models.AgentTip, error) {
	var out models.AgentTip
	err := c.do(ctx, http.MethodGet, "/api/agent_tip", nil, &out, func(r *resty.Request) {
		r.SetHeader(apiKeyHeader, apiKey)
	})
	return out, err
}

// Recommendation asks for a feeding recommendation for the submitted animal profile.
func (c *Client) Recommendation(ctx context.Context, apiKey string, data map[string]any) (models.Recommendation, error) {
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["api_key"] = apiKey

	var out models.Recommendation
	err := c.do(ctx, http.MethodPost, "/api/recommendation", payload, &out, nil)
	return out, err
}

// Chat sends one advisory chat turn.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (models.ChatReply, error) {
	var out models.ChatReply
	err := c.do(ctx, http.MethodPost, "/api/chat_with_agent", req, &out, nil)
	return out, err
}

// ListSheep returns the full roster in service order.
func (c *Client) ListSheep(ctx context.Context) ([]models.AnimalRecord, error) {
	var out []models.AnimalRecord
	err := c.do(ctx, http.MethodGet, "/api/sheep", nil, &out, nil)
	return out, err
}

// GetSheep returns one animal by ear number.
func (c *Client) GetSheep(ctx context.Context, earNum string) (models.AnimalRecord, error) {
	var out models.AnimalRecord
	err := c.do(ctx, http.MethodGet, "/api/sheep/{earNum}", nil, &out, earNumParam(earNum))
	return out, err
}

type sheepEnvelope struct {
	Sheep models.AnimalRecord `json:"sheep"`
}

// CreateSheep adds an animal and returns the stored record.
func (c *Client) CreateSheep(ctx context.Context, rec models.AnimalRecord) (models.AnimalRecord, error) {
	var out sheepEnvelope
	err := c.do(ctx, http.MethodPost, "/api/sheep", rec, &out, nil)
	return out.Sheep, err
}

// UpdateSheep replaces the attributes of an animal. Last writer wins.
func (c *Client) UpdateSheep(ctx context.Context, earNum string, rec models.AnimalRecord) (models.AnimalRecord, error) {
	var out sheepEnvelope
	err := c.do(ctx, http.MethodPut, "/api/sheep/{earNum}", rec, &out, earNumParam(earNum))
	return out.Sheep, err
}

// DeleteSheep removes an animal with its events and history.
func (c *Client) DeleteSheep(ctx context.Context, earNum string) error {
	return c.do(ctx, http.MethodDelete, "/api/sheep/{earNum}", nil, nil, earNumParam(earNum))
}

// ListEvents returns the event log of one animal.
func (c *Client) ListEvents(ctx context.Context, earNum string) ([]models.SheepEvent, error) {
	var out []models.SheepEvent
	err := c.do(ctx, http.MethodGet, "/api/sheep/{earNum}/events", nil, &out, earNumParam(earNum))
	return out, err
}

// AddEvent appends an event to an animal's log.
func (c *Client) AddEvent(ctx context.Context, earNum string, ev models.SheepEvent) (models.SheepEvent, error) {
	var out struct {
		Event models.SheepEvent `json:"event"`
	}
	err := c.do(ctx, http.MethodPost, "/api/sheep/{earNum}/events", ev, &out, earNumParam(earNum))
	return out.Event, err
}

// UpdateEvent rewrites an existing event.
func (c *Client) UpdateEvent(ctx context.Context, id int64, ev models.SheepEvent) (models.SheepEvent, error) {
	var out models.SheepEvent
	err := c.do(ctx, http.MethodPut, "/api/events/{id}", ev, &out, idParam(id))
	return out, err
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/events/{id}", nil, nil, idParam(id))
}

// ListHistory returns the numeric measurement history of one animal.
func (c *Client) ListHistory(ctx context.Context, earNum string) ([]models.HistoryRecord, error) {
	var out []models.HistoryRecord
	err := c.do(ctx, http.MethodGet, "/api/sheep/{earNum}/history", nil, &out, earNumParam(earNum))
	return out, err
}

// DeleteHistory removes one measurement.
func (c *Client) DeleteHistory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/history/{id}", nil, nil, idParam(id))
}

// EventOptions returns event types with their description presets.
func (c *Client) EventOptions(ctx context.Context) ([]models.EventTypeOption, error) {
	var out []models.EventTypeOption
	err := c.do(ctx, http.MethodGet, "/api/event_options", nil, &out, nil)
	return out, err
}

// AddEventType creates a user-defined event type.
func (c *Client) AddEventType(ctx context.Context, name string) (models.EventTypeOption, error) {
	var out models.EventTypeOption
	err := c.do(ctx, http.MethodPost, "/api/event_types", map[string]string{"name": name}, &out, nil)
	return out, err
}

// DeleteEventType removes an event type and its description presets.
func (c *Client) DeleteEventType(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/event_types/{id}", nil, nil, idParam(id))
}

// AddEventDescription adds a description preset to an event type.
func (c *Client) AddEventDescription(ctx context.Context, typeID int64, description string) (models.EventDescriptionOption, error) {
	payload := map[string]any{"event_type_option_id": typeID, "description": description}
	var out models.EventDescriptionOption
	err := c.do(ctx, http.MethodPost, "/api/event_descriptions", payload, &out, nil)
	return out, err
}

// DeleteEventDescription removes a description preset.
func (c *Client) DeleteEventDescription(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/event_descriptions/{id}", nil, nil, idParam(id))
}

// AnalyzeWorkbook uploads a workbook and returns its sheet structure.
func (c *Client) AnalyzeWorkbook(ctx context.Context, upload Upload) (models.WorkbookAnalysis, error) {
	var out models.WorkbookAnalysis
	err := c.do(ctx, http.MethodPost, "/api/data/analyze_excel", nil, &out, func(r *resty.Request) {
		r.SetFileReader("file", upload.Filename, bytes.NewReader(upload.Data))
	})
	return out, err
}

// ProcessImport submits a workbook for import. In default mode the service
// applies its built-in mapping and mapping is not sent.
func (c *Client) ProcessImport(ctx context.Context, upload Upload, defaultMode bool, mapping any) (models.ImportReport, error) {
	form := map[string]string{"is_default_mode": strconv.FormatBool(defaultMode)}
	if !defaultMode {
		doc, err := json.Marshal(mapping)
		if err != nil {
			return models.ImportReport{}, fmt.Errorf("encode mapping config: %w", err)
		}
		form["mapping_config"] = string(doc)
	}

	var out models.ImportReport
	err := c.do(ctx, http.MethodPost, "/api/data/process_import", nil, &out, func(r *resty.Request) {
		r.SetFileReader("file", upload.Filename, bytes.NewReader(upload.Data)).
			SetFormData(form)
	})
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, result any, prepare func(*resty.Request)) error {
	apiErr := new(errorBody)
	req := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if prepare != nil {
		prepare(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("herd api %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return newAPIError(resp, apiErr)
	}
	return nil
}

func earNumParam(earNum string) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetPathParam("earNum", earNum)
	}
}

func idParam(id int64) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
	}
}
