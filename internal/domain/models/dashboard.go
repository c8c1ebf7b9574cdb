package models

// Reminder flags an upcoming or overdue care task for one animal.
type Reminder struct {
	EarNum  string `json:"ear_num"`
	Type    string `json:"type"`
	DueDate string `json:"due_date"`
	Status  string `json:"status"`
}

// HealthAlert flags a production drop worth investigating.
type HealthAlert struct {
	EarNum  string `json:"ear_num"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StatusCount is one bucket of the flock status summary.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DashboardMetrics is the aggregate payload of the dashboard endpoint.
type DashboardMetrics struct {
	Reminders          []Reminder    `json:"reminders"`
	HealthAlerts       []HealthAlert `json:"health_alerts"`
	FlockStatusSummary []StatusCount `json:"flock_status_summary"`
}

// AgentTip is a rendered advisory tip.
type AgentTip struct {
	HTML string `json:"tip_html"`
}

// DashboardSnapshot is a consistent copy of the dashboard cache. Metrics is
// only set when HasSheep is true.
type DashboardSnapshot struct {
	HasLoadedOnce bool              `json:"hasLoadedOnce"`
	IsLoading     bool              `json:"isLoading"`
	Error         string            `json:"error,omitempty"`
	Err           error             `json:"-"`
	HasSheep      bool              `json:"hasSheep"`
	Metrics       *DashboardMetrics `json:"metrics,omitempty"`
	IsTipLoading  bool              `json:"isTipLoading"`
	TipHTML       string            `json:"tipHtml,omitempty"`
	TipError      string            `json:"tipError,omitempty"`
}
