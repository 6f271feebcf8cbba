package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenBreaker(at time.Time) (*hostBreaker, *time.Time) {
	now := at
	b := newHostBreaker()
	b.nowFunc = func() time.Time { return now }
	return b, &now
}

func TestHostBreaker_TripsAfterThreshold(t *testing.T) {
	b, _ := frozenBreaker(time.Now())

	for i := 0; i < breakerFailureThreshold-1; i++ {
		b.record(true)
		assert.True(t, b.allow())
	}
	b.record(true)
	assert.False(t, b.allow())
}

func TestHostBreaker_ProbeAfterCooldown(t *testing.T) {
	b, now := frozenBreaker(time.Now())

	for i := 0; i < breakerFailureThreshold; i++ {
		b.record(true)
	}
	assert.False(t, b.allow())

	*now = now.Add(breakerCooldown)
	assert.True(t, b.allow())

	b.record(true)
	assert.False(t, b.allow())
}

func TestHostBreaker_DefiniteAnswerResets(t *testing.T) {
	b, _ := frozenBreaker(time.Now())

	for i := 0; i < breakerFailureThreshold; i++ {
		b.record(true)
	}
	b.record(false)
	assert.True(t, b.allow())
}

func TestClient_SuspendedHostSkipsFetch(t *testing.T) {
	c := NewClient(ClientOptions{Timeout: time.Second})
	b := c.breakers.get("127.0.0.1:1")
	for i := 0; i < breakerFailureThreshold; i++ {
		b.record(true)
	}

	res, err := c.Fetch(context.Background(), "http://127.0.0.1:1/profile", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHostSuspended)
	assert.Equal(t, NetworkError, res.Outcome)
}
