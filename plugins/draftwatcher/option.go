package draftwatcher

import "github.com/bft-labs/connguard/pkg/connguard"

// WithDraftWatcher returns a connguard Option that watches the draft at
// cfg.Path, marks every write unsaved and autosaves it while the backend is
// reachable.
//
// Usage:
//
//	m, err := connguard.New(cfg, collab,
//	    draftwatcher.WithDraftWatcher(draftwatcher.Config{
//	        Path:          "/home/me/.connguard/draft.json",
//	        DebounceDelay: 2 * time.Second,
//	    }),
//	)
func WithDraftWatcher(cfg Config) connguard.Option {
	return connguard.WithPlugin(New(cfg))
}
