package domain

import (
	"encoding/json"
	"time"
)

// Draft is the locally edited state of one period: incomes, expenses and
// investments, kept as opaque JSON.
type Draft struct {
	Period string          `json:"periodo"`
	Data   json.RawMessage `json:"data"`
}

// Document is the backend row for one period.
type Document struct {
	ID        string          `json:"id"`
	Period    string          `json:"periodo"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewDocument builds the row written for d.
func NewDocument(id string, d Draft, at time.Time) Document {
	if id == "" {
		id = d.Period
	}
	return Document{
		ID:        id,
		Period:    d.Period,
		Data:      d.Data,
		UpdatedAt: at.UTC(),
	}
}

// Event kinds published for connectivity changes.
const (
	EventStatus    = "connection.status"
	EventLost      = "connection.lost"
	EventRestored  = "connection.restored"
	EventRecovered = "backup.restored"
)

// Event is a connectivity notification.
type Event struct {
	Kind               string     `json:"kind"`
	At                 time.Time  `json:"at"`
	Online             bool       `json:"online"`
	BackendConnected   bool       `json:"backendConnected"`
	ReconnectAttempts  int        `json:"reconnectAttempts"`
	LastSuccessfulSync *time.Time `json:"lastSuccessfulSync,omitempty"`
	Error              string     `json:"error,omitempty"`
}
