package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bft-labs/connguard/internal/domain"
	"github.com/bft-labs/connguard/internal/ports"
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
)

const (
	userEndpoint = "/auth/v1/user"
	restPrefix   = "/rest/v1/"

	// maxErrorBody caps how much of an error response is kept in messages.
	maxErrorBody = 512
)

// Config addresses a Supabase-style backend.
type Config struct {
	BaseURL     string
	AnonKey     string
	AccessToken string
	Table       string
}

// Backend implements connguard.SessionChecker and ports.DocumentStore over
// the backend's auth and REST endpoints.
type Backend struct {
	client  ports.HTTPClient
	logger  log.Logger
	baseURL string
	anonKey string
	table   string

	mu    sync.RWMutex
	token string
}

// NewBackend creates a backend client. logger may be nil.
func NewBackend(cfg Config, client ports.HTTPClient, logger log.Logger) *Backend {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Backend{
		client:  client,
		logger:  logger.With(log.Component("backend")),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		anonKey: cfg.AnonKey,
		table:   cfg.Table,
		token:   cfg.AccessToken,
	}
}

// SetAccessToken replaces the user token, e.g. after a refresh.
func (b *Backend) SetAccessToken(token string) {
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
}

func (b *Backend) accessToken() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CheckSession asks the auth endpoint who the token belongs to.
// A missing token or a 401/403 answer means there is no session; transport
// failures and unexpected statuses wrap connguard.ErrNetwork.
func (b *Backend) CheckSession(ctx context.Context) (*connguard.Session, error) {
	token := b.accessToken()
	if token == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+userEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", b.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", connguard.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, nil
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("%w: auth returned %d: %s", connguard.ErrNetwork, resp.StatusCode, readSnippet(resp.Body))
	}

	var u userResponse
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: decode user: %w", connguard.ErrNetwork, err)
	}
	if u.ID == "" {
		return nil, nil
	}
	return &connguard.Session{UserID: u.ID}, nil
}

// Upsert writes doc to the configured table, merging on id.
func (b *Backend) Upsert(ctx context.Context, doc domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	endpoint := b.baseURL + restPrefix + url.PathEscape(b.table) + "?on_conflict=id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	bearer := b.accessToken()
	if bearer == "" {
		bearer = b.anonKey
	}
	req.Header.Set("apikey", b.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: upsert returned %d: %s", domain.ErrBackendRejected, resp.StatusCode, readSnippet(resp.Body))
	}

	b.logger.Debug("document upserted",
		log.String("id", doc.ID),
		log.String("period", doc.Period))
	return nil
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
