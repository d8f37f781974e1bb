package responses

import (
	"waves-server/internal/domain/ask"
	"waves-server/internal/domain/user"
)

// MessageResponse is the body of the informational endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token string       `json:"token"`
	User  user.Profile `json:"user"`
}

// NewSessionResponse builds the response for an opened session.
func NewSessionResponse(session *user.Session) SessionResponse {
	return SessionResponse{
		Token: session.Token,
		User:  session.User.Profile(),
	}
}

// StatusResponse acknowledges an action without payload.
type StatusResponse struct {
	Status string `json:"status"`
}

// AskResponse is the body of POST /api/ask.
type AskResponse = ask.Answer

// DiagnosticsResponse reports the document store state for GET /test.
type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}
