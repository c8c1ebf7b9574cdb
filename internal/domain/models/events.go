package models

// SheepEvent is one entry of an animal's event log.
type SheepEvent struct {
	ID          int64  `json:"id,omitempty"`
	SheepID     int64  `json:"sheep_id,omitempty"`
	EventDate   string `json:"event_date"`
	EventType   string `json:"event_type"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	RecordedAt  string `json:"recorded_at,omitempty"`
}

// HistoryRecord is a dated numeric measurement (weight, milk yield, ...).
type HistoryRecord struct {
	ID         int64   `json:"id"`
	SheepID    int64   `json:"sheep_id,omitempty"`
	RecordDate string  `json:"record_date"`
	RecordType string  `json:"record_type"`
	Value      float64 `json:"value"`
	Notes      string  `json:"notes,omitempty"`
	RecordedAt string  `json:"recorded_at,omitempty"`
}

// EventTypeOption is a user-defined event category with its description presets.
type EventTypeOption struct {
	ID           int64                    `json:"id"`
	Name         string                   `json:"name"`
	IsDefault    bool                     `json:"is_default"`
	Descriptions []EventDescriptionOption `json:"descriptions,omitempty"`
}

// EventDescriptionOption is a preset short description for an event type.
type EventDescriptionOption struct {
	ID                int64  `json:"id"`
	EventTypeOptionID int64  `json:"event_type_option_id"`
	Description       string `json:"description"`
	IsDefault         bool   `json:"is_default"`
}

// MutationResult is the acknowledgement returned by write endpoints.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
