package backup

import (
	"context"
	"sync"
)

// Repository persists the single pending-save record.
type Repository interface {
	// Load returns the stored record, ErrNotFound when there is none, or an
	// error wrapping ErrCorrupt when the stored bytes cannot be decoded.
	Load(ctx context.Context) (Record, error)

	// Save replaces the stored record. It must be durable when it returns.
	Save(ctx context.Context, rec Record) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context) error

	// Exists reports whether a record is stored, without decoding it.
	Exists(ctx context.Context) (bool, error)
}

// MemoryRepository keeps the record in process memory. It is intended for
// embedding in short-lived tools and tests.
type MemoryRepository struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Load(ctx context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return Record{}, ErrNotFound
	}
	return Decode(m.raw)
}

func (m *MemoryRepository) Save(ctx context.Context, rec Record) error {
	raw, err := rec.Encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.raw = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context) error {
	m.mu.Lock()
	m.raw = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Exists(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw != nil, nil
}

// SetRaw stores raw bytes as-is, bypassing encoding.
func (m *MemoryRepository) SetRaw(raw []byte) {
	m.mu.Lock()
	m.raw = append([]byte(nil), raw...)
	m.mu.Unlock()
}
