package config

import "time"

// Default runtime limits and guardrails for the realty insights server.
// They are overridden by Load (env, .env, YAML file) and referenced by internal/runtime.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenDatasets       = 4

	// Dataset and payload bounds
	DefaultMaxRows        = 500_000
	DefaultMaxUploadBytes = 32 * 1024 * 1024 // 32MB
	DefaultAreaListLimit  = 200

	// Row-table page sizes per payload type
	DefaultCompareRowLimit = 200
	DefaultSingleRowLimit  = 1000
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second
)

const (
	// Locations
	DefaultDatasetPath = "datasets/realestate_data.xlsx"
	DefaultUploadDir   = "uploaded_files"

	// Logging
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	// EnvPrefix scopes environment overrides, e.g. REALTY_DATASET_PATH.
	EnvPrefix = "REALTY"
)
