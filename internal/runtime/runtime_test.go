package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcprealty/config"
)

func TestControllerAcquireRelease(t *testing.T) {
	limits := NewLimits(1, 1)
	controller := NewController(limits)

	require.Equal(t, limits, controller.LimitsSnapshot())

	require.NoError(t, controller.AcquireRequest(context.Background()))
	controller.ReleaseRequest()

	require.NoError(t, controller.AcquireDataset(context.Background()))
	controller.ReleaseDataset()
}

func TestControllerDatasetSaturation(t *testing.T) {
	controller := NewController(NewLimits(1, 1))
	require.NoError(t, controller.AcquireDataset(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, controller.AcquireDataset(ctx))

	controller.ReleaseDataset()
	require.NoError(t, controller.AcquireDataset(context.Background()))
	controller.ReleaseDataset()
}

func TestLimitsFromConfig(t *testing.T) {
	l := LimitsFromConfig(&config.Config{
		MaxConcurrentRequests: 3,
		SingleRowLimit:        50,
		OperationTimeout:      time.Second,
	})
	require.Equal(t, 3, l.MaxConcurrentRequests)
	require.Equal(t, config.DefaultMaxOpenDatasets, l.MaxOpenDatasets)
	require.Equal(t, 50, l.SingleRowLimit)
	require.Equal(t, config.DefaultCompareRowLimit, l.CompareRowLimit)
	require.Equal(t, time.Second, l.OperationTimeout)
	require.Equal(t, config.DefaultAcquireRequestTimeout, l.AcquireRequestTimeout)
}
