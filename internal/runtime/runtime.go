package runtime

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vinodismyname/mcprealty/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and dataset guardrails configured for the server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxOpenDatasets       int

	// Dataset and payload bounds
	MaxRows         int
	MaxUploadBytes  int64
	CompareRowLimit int
	SingleRowLimit  int
	AreaListLimit   int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with sensible fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxOpenDatasets int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxOpenDatasets <= 0 {
		maxOpenDatasets = config.DefaultMaxOpenDatasets
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxOpenDatasets:       maxOpenDatasets,
		MaxRows:               config.DefaultMaxRows,
		MaxUploadBytes:        config.DefaultMaxUploadBytes,
		CompareRowLimit:       config.DefaultCompareRowLimit,
		SingleRowLimit:        config.DefaultSingleRowLimit,
		AreaListLimit:         config.DefaultAreaListLimit,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// LimitsFromConfig maps a loaded configuration onto Limits.
func LimitsFromConfig(c *config.Config) Limits {
	l := NewLimits(c.MaxConcurrentRequests, c.MaxOpenDatasets)
	if c.MaxRows > 0 {
		l.MaxRows = c.MaxRows
	}
	if c.MaxUploadBytes > 0 {
		l.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.CompareRowLimit > 0 {
		l.CompareRowLimit = c.CompareRowLimit
	}
	if c.SingleRowLimit > 0 {
		l.SingleRowLimit = c.SingleRowLimit
	}
	if c.AreaListLimit > 0 {
		l.AreaListLimit = c.AreaListLimit
	}
	if c.OperationTimeout > 0 {
		l.OperationTimeout = c.OperationTimeout
	}
	if c.AcquireRequestTimeout > 0 {
		l.AcquireRequestTimeout = c.AcquireRequestTimeout
	}
	return l
}

// Controller coordinates runtime semaphores for request and dataset guardrails.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	datasetSemaphore *semaphore.Weighted

	served   atomic.Int64
	rejected atomic.Int64
	timedOut atomic.Int64
}

// Stats counts tool calls seen by the middleware since startup.
type Stats struct {
	Served   int64 `json:"served"`
	Rejected int64 `json:"rejected"`
	TimedOut int64 `json:"timed_out"`
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		datasetSemaphore: semaphore.NewWeighted(int64(limits.MaxOpenDatasets)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireDataset reserves a slot for reading a dataset source.
func (c *Controller) AcquireDataset(ctx context.Context) error {
	return c.datasetSemaphore.Acquire(ctx, 1)
}

// ReleaseDataset frees a dataset slot.
func (c *Controller) ReleaseDataset() {
	c.datasetSemaphore.Release(1)
}

// Stats returns the current call counters.
func (c *Controller) Stats() Stats {
	return Stats{Served: c.served.Load(), Rejected: c.rejected.Load(), TimedOut: c.timedOut.Load()}
}

// LimitsSnapshot exposes the configured guardrails for telemetry and discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
