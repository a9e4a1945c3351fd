package reconnect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	p := New(Config{})

	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts())
	assert.Equal(t, 0, p.Attempts())
	assert.False(t, p.Exhausted())
}

func TestNext_BackoffSequence(t *testing.T) {
	p := New(DefaultConfig())

	want := []time.Duration{
		3 * time.Second,
		6 * time.Second,
		12 * time.Second,
		24 * time.Second,
		48 * time.Second,
	}
	for i, w := range want {
		delay, attempt, ok := p.Next()
		assert.True(t, ok)
		assert.Equal(t, i+1, attempt)
		assert.Equal(t, w, delay)
	}
}

func TestNext_StopsAtCap(t *testing.T) {
	p := New(Config{BaseDelay: time.Second, MaxAttempts: 2})

	p.Next()
	p.Next()
	delay, attempt, ok := p.Next()

	assert.False(t, ok)
	assert.Equal(t, time.Duration(0), delay)
	assert.Equal(t, 2, attempt)
	assert.Equal(t, 2, p.Attempts(), "counter must not move past the cap")
	assert.True(t, p.Exhausted())
}

func TestReset(t *testing.T) {
	p := New(DefaultConfig())
	for i := 0; i < 5; i++ {
		p.Next()
	}
	p.Reset()

	assert.Equal(t, 0, p.Attempts())
	delay, attempt, ok := p.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, attempt)
	assert.Equal(t, DefaultBaseDelay, delay)
}

func TestDelay(t *testing.T) {
	for n := 1; n <= 5; n++ {
		got := Delay(3000*time.Millisecond, n)
		want := time.Duration(3000*(1<<(n-1))) * time.Millisecond
		assert.Equal(t, want, got, "attempt %d", n)
	}
	assert.Equal(t, 3*time.Second, Delay(3*time.Second, 0))
}
