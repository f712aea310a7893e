package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepPauser_Pause(t *testing.T) {
	t.Parallel()

	t.Run("waits for the picked duration", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		err := crawl.SleepPauser{}.Pause(context.Background(), harvest.Delay{Min: 20 * time.Millisecond, Max: 30 * time.Millisecond})

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("returns immediately for zero delay", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		err := crawl.SleepPauser{}.Pause(context.Background(), harvest.Delay{})

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("returns the context error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := crawl.SleepPauser{}.Pause(ctx, harvest.Fixed(time.Minute))

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
