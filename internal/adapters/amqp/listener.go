package amqp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bft-labs/connguard/internal/domain"
	"github.com/bft-labs/connguard/internal/ports"
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
)

// DefaultQueueSize bounds the events waiting to be published.
const DefaultQueueSize = 64

// Listener turns Manager callbacks into domain events and publishes them from
// its own goroutine, so a slow broker never stalls a heartbeat. Events that
// arrive while the queue is full are dropped.
type Listener struct {
	pub    ports.Publisher
	logger log.Logger
	queue  chan domain.Event
}

var _ connguard.Listener = (*Listener)(nil)

// NewListener creates a Listener. Call Run to start publishing.
func NewListener(pub ports.Publisher, logger log.Logger) *Listener {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Listener{
		pub:    pub,
		logger: logger.With(log.Component("amqp")),
		queue:  make(chan domain.Event, DefaultQueueSize),
	}
}

// Run publishes queued events until ctx is done.
func (l *Listener) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.queue:
			l.publish(ctx, ev)
		}
	}
}

func (l *Listener) publish(ctx context.Context, ev domain.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		l.logger.Error("encode event", log.String("kind", ev.Kind), log.Err(err))
		return
	}
	if err := l.pub.Publish(ctx, ev.Kind, body); err != nil {
		l.logger.Warn("publish event failed", log.String("kind", ev.Kind), log.Err(err))
	}
}

func (l *Listener) enqueue(ev domain.Event) {
	select {
	case l.queue <- ev:
	default:
		l.logger.Warn("event queue full, dropping", log.String("kind", ev.Kind))
	}
}

// OnStatusChange implements connguard.Listener.
func (l *Listener) OnStatusChange(s connguard.Status) {
	l.enqueue(domain.Event{
		Kind:               domain.EventStatus,
		At:                 time.Now().UTC(),
		Online:             s.Online,
		BackendConnected:   s.BackendConnected,
		ReconnectAttempts:  s.ReconnectAttempts,
		LastSuccessfulSync: s.LastSuccessfulSync,
	})
}

// OnConnectionLost implements connguard.Listener.
func (l *Listener) OnConnectionLost(e connguard.ConnectionEvent) {
	ev := domain.Event{
		Kind:              domain.EventLost,
		At:                e.At.UTC(),
		Online:            e.Online,
		ReconnectAttempts: e.Attempts,
	}
	if e.Err != nil {
		ev.Error = e.Err.Error()
	}
	l.enqueue(ev)
}

// OnConnectionRestored implements connguard.Listener.
func (l *Listener) OnConnectionRestored(e connguard.ConnectionEvent) {
	at := e.At.UTC()
	l.enqueue(domain.Event{
		Kind:               domain.EventRestored,
		At:                 at,
		Online:             e.Online,
		BackendConnected:   true,
		LastSuccessfulSync: &at,
	})
}

// Recovered announces that a pending save was restored at startup.
func (l *Listener) Recovered(at time.Time) {
	l.enqueue(domain.Event{Kind: domain.EventRecovered, At: at.UTC()})
}
