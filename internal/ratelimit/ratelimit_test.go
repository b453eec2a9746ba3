package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWait(t *testing.T) {
	start := time.Now()
	err := Fixed{}.Wait(context.Background(), 20*time.Millisecond)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixedWaitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Fixed{}.Wait(ctx, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFixedWaitZero(t *testing.T) {
	assert.NoError(t, Fixed{}.Wait(context.Background(), 0))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	assert.NoError(t, r.Wait(ctx, 5*time.Second))
	assert.NoError(t, r.Wait(ctx, 2*time.Second))

	assert.Equal(t, []time.Duration{5 * time.Second, 2 * time.Second}, r.Waits())
	assert.Equal(t, 7*time.Second, r.Total())
}
