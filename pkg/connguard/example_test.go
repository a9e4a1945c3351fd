package connguard_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/connguard"
)

// ExampleNew demonstrates embedding a Manager in a client application.
func ExampleNew() {
	checker := connguard.SessionCheckerFunc(func(ctx context.Context) (*connguard.Session, error) {
		return &connguard.Session{UserID: "user-1"}, nil
	})

	m, err := connguard.New(connguard.Config{}, connguard.Collaborators{Session: checker},
		connguard.WithRepository(backup.NewMemoryRepository()),
	)
	if err != nil {
		fmt.Printf("failed to create manager: %v\n", err)
		return
	}

	if err := m.CheckConnection(context.Background()); err != nil {
		fmt.Printf("check failed: %v\n", err)
		return
	}
	fmt.Printf("connected: %v\n", m.Status().BackendConnected)

	// Output: connected: true
}

// Example_teardownAndRestore shows a pending save surviving a restart.
func Example_teardownAndRestore() {
	repo := backup.NewMemoryRepository()
	checker := connguard.SessionCheckerFunc(func(ctx context.Context) (*connguard.Session, error) {
		return nil, connguard.ErrSessionLost
	})

	before, _ := connguard.New(connguard.Config{}, connguard.Collaborators{
		Session: checker,
		Snapshot: func() (json.RawMessage, error) {
			return json.RawMessage(`{"spese":[{"importo":42}]}`), nil
		},
	}, connguard.WithRepository(repo))

	before.MarkUnsaved()
	before.HandleTeardown(nil)
	fmt.Printf("pending: %v\n", before.Status().HasPendingData)

	after, _ := connguard.New(connguard.Config{}, connguard.Collaborators{
		Session: checker,
		Apply: func(ctx context.Context, data json.RawMessage) error {
			fmt.Printf("applied: %s\n", data)
			return nil
		},
	}, connguard.WithRepository(repo))

	restored := after.RestoreFromBackup(context.Background())
	fmt.Printf("restored: %v, pending: %v\n", restored, after.Status().HasPendingData)

	// Output:
	// pending: true
	// applied: {"spese":[{"importo":42}]}
	// restored: true, pending: false
}

// myListener reacts only to connectivity edges.
type myListener struct {
	connguard.BaseListener
}

func (myListener) OnConnectionLost(ev connguard.ConnectionEvent) {
	fmt.Printf("offline: %v\n", ev.Err)
}

// Example_listener demonstrates registering a listener.
func Example_listener() {
	checker := connguard.SessionCheckerFunc(func(ctx context.Context) (*connguard.Session, error) {
		return &connguard.Session{}, nil
	})
	m, err := connguard.New(connguard.Config{}, connguard.Collaborators{Session: checker},
		connguard.WithListener(myListener{}),
		connguard.WithRepository(backup.NewMemoryRepository()),
	)
	if err != nil {
		fmt.Printf("failed to create manager: %v\n", err)
		return
	}
	_ = m
}
