package netstatus

import (
	"context"
	"net"
	"time"
)

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Prober turns periodic TCP dials into Observer signals. Only changes are
// forwarded, so the Observer sees one signal per edge.
type Prober struct {
	Address  string
	Interval time.Duration
	Timeout  time.Duration
	Dialer   Dialer
}

// Probe performs a single reachability check.
func (p *Prober) Probe(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := p.Dialer
	if d == nil {
		d = &net.Dialer{}
	}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Run probes until ctx is done, signalling obs whenever reachability flips.
func (p *Prober) Run(ctx context.Context, obs *Observer) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := obs.Online()
	for {
		up := p.Probe(ctx)
		// A dial cut short by cancellation says nothing about the network.
		if ctx.Err() != nil {
			return
		}
		if up != last {
			last = up
			obs.SetOnline(up)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
