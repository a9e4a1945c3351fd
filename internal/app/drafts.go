package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/connguard/internal/domain"
	"github.com/bft-labs/connguard/internal/ports"
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
)

// Drafts connects a local draft to the backend document it mirrors.
type Drafts struct {
	store   ports.DraftStore
	docs    ports.DocumentStore
	changes *connguard.ChangeTracker
	logger  log.Logger

	rowID  string
	period string
	now    func() time.Time
}

// DraftsConfig configures a Drafts.
type DraftsConfig struct {
	// RowID is the backend row id; defaults to the draft period.
	RowID string

	// Period overrides the period recorded in the draft.
	Period string
}

// NewDrafts creates a Drafts. changes is shared with the Manager.
func NewDrafts(cfg DraftsConfig, store ports.DraftStore, docs ports.DocumentStore, changes *connguard.ChangeTracker, logger log.Logger) *Drafts {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Drafts{
		store:   store,
		docs:    docs,
		changes: changes,
		logger:  logger.With(log.Component("drafts")),
		rowID:   cfg.RowID,
		period:  cfg.Period,
		now:     time.Now,
	}
}

// Collaborators returns the hooks for connguard.New.
func (d *Drafts) Collaborators(session connguard.SessionChecker) connguard.Collaborators {
	return connguard.Collaborators{
		Session:  session,
		Saver:    d,
		Snapshot: d.Snapshot,
		Apply:    d.Apply,
		Period:   d.Period,
	}
}

// Snapshot returns the current draft encoded as the pending-save payload.
// It only touches the local file.
func (d *Drafts) Snapshot() (json.RawMessage, error) {
	draft, err := d.store.Load(context.Background())
	if err != nil {
		return nil, err
	}
	return json.Marshal(draft)
}

// Apply writes a snapshot produced by Snapshot back into the draft file.
func (d *Drafts) Apply(ctx context.Context, data json.RawMessage) error {
	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDraft, err)
	}
	if len(draft.Data) == 0 {
		return fmt.Errorf("%w: snapshot has no data", domain.ErrInvalidDraft)
	}
	if err := d.store.Store(ctx, draft); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	d.logger.Info("draft restored from backup", log.String("period", draft.Period))
	return nil
}

// Period returns the configured period, else the one recorded in the draft.
func (d *Drafts) Period() string {
	if d.period != "" {
		return d.period
	}
	draft, err := d.store.Load(context.Background())
	if err != nil {
		return ""
	}
	return draft.Period
}

// Save upserts the draft. Without force it does nothing while the change
// tracker reports no unsaved edits. A successful save clears the tracker
// unless the draft was edited while the save was running.
func (d *Drafts) Save(ctx context.Context, force bool) error {
	if !force && !d.changes.Unsaved() {
		return nil
	}

	rev := d.changes.Revision()
	draft, err := d.store.Load(ctx)
	if errors.Is(err, domain.ErrDraftNotFound) {
		d.logger.Debug("no draft to save")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}
	if d.period != "" {
		draft.Period = d.period
	}

	doc := domain.NewDocument(d.rowID, draft, d.now())
	if err := d.docs.Upsert(ctx, doc); err != nil {
		return err
	}
	if !d.changes.MarkSavedAt(rev) {
		d.logger.Debug("draft changed during save, still unsaved")
	}
	d.logger.Info("draft saved", log.String("id", doc.ID), log.Bool("forced", force))
	return nil
}
