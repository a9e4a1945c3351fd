package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bft-labs/connguard/internal/domain"
)

// DraftFile implements ports.DraftStore using a JSON file the client
// application edits.
type DraftFile struct {
	path string
	mu   sync.Mutex
}

// NewDraftFile creates a DraftFile for path.
func NewDraftFile(path string) *DraftFile {
	return &DraftFile{path: path}
}

// Load reads the draft. Returns domain.ErrDraftNotFound if the file does not
// exist and an error wrapping domain.ErrInvalidDraft if it cannot be parsed.
func (f *DraftFile) Load(ctx context.Context) (domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Draft{}, domain.ErrDraftNotFound
		}
		return domain.Draft{}, err
	}

	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Draft{}, fmt.Errorf("%w: %v", domain.ErrInvalidDraft, err)
	}
	if len(d.Data) == 0 {
		return domain.Draft{}, fmt.Errorf("%w: missing data", domain.ErrInvalidDraft)
	}
	return d, nil
}

// Store replaces the draft atomically.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (f *DraftFile) Store(ctx context.Context, d domain.Draft) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Path returns the full path to the draft file.
func (f *DraftFile) Path() string {
	return f.path
}
