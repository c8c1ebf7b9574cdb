package models

// APIKeyStatus describes the outcome of the last advisory key check.
type APIKeyStatus struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Session is the authentication state of the client. IsAuthenticated implies
// a non-empty Username. APIKey is a secret and never serialized.
type Session struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	Username        string       `json:"username,omitempty"`
	APIKey          string       `json:"-"`
	APIKeyStatus    APIKeyStatus `json:"apiKeyStatus"`
	IsLoading       bool         `json:"isLoading"`
	LastError       string       `json:"lastError,omitempty"`
}

// HasAPIKey reports whether an advisory key is configured.
func (s Session) HasAPIKey() bool {
	return s.APIKey != ""
}

// AuthStatus is the remote answer to a session status query.
type AuthStatus struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// Credentials are submitted on login and registration.
type Credentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}
