package ports

import (
	"context"

	"github.com/bft-labs/connguard/internal/domain"
)

// DocumentStore writes period documents to the backend.
type DocumentStore interface {
	// Upsert creates or replaces the row identified by doc.ID.
	Upsert(ctx context.Context, doc domain.Document) error
}

// DraftStore reads and writes the locally edited draft.
type DraftStore interface {
	// Load returns the current draft, or domain.ErrDraftNotFound.
	Load(ctx context.Context) (domain.Draft, error)

	// Store replaces the draft atomically.
	Store(ctx context.Context, d domain.Draft) error
}

// Publisher sends an encoded message under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}
