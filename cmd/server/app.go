package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vinodismyname/mcprealty/config"
	"github.com/vinodismyname/mcprealty/internal/dataset"
	"github.com/vinodismyname/mcprealty/internal/insights"
	"github.com/vinodismyname/mcprealty/internal/runtime"
	"github.com/vinodismyname/mcprealty/internal/security"
	"github.com/vinodismyname/mcprealty/internal/uploads"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	limits     runtime.Limits
	controller *runtime.Controller
	security   *security.Manager
	analyst    *insights.Analyst
	uploads    *uploads.Store
}

// newLogger writes to w (stderr in production; stdout belongs to the stdio transport).
func newLogger(w io.Writer, level, format string) zerolog.Logger {
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "mcprealty").Logger()
}

func newApp(c *config.Config, logger zerolog.Logger) (*app, error) {
	if c.EnableUploads && c.UploadDir != "" {
		if err := os.MkdirAll(c.UploadDir, 0o755); err != nil {
			logger.Warn().Err(err).Str("dir", c.UploadDir).Msg("cannot create upload dir")
		}
	}

	roots, missing := security.SplitExisting(c.SecurityRoots())
	for _, d := range missing {
		logger.Warn().Str("dir", d).Msg("security: allow-list directory does not exist; skipped")
	}
	sec, err := security.NewManager(roots, nil)
	if err != nil {
		return nil, err
	}
	if err := sec.ValidateConfig(); err != nil {
		logger.Warn().Err(err).Msg("file datasets will be refused until allowed_dirs is set")
	} else {
		logger.Info().Strs("allowed_dirs", sec.AllowedDirectories()).Msg("security allow-list configured")
	}

	limits := runtime.LimitsFromConfig(c)
	ctrl := runtime.NewController(limits)
	loader := dataset.NewLoader(dataset.Options{Table: c.DatasetTable, MaxRows: limits.MaxRows}, ctrl, sec)

	a := &app{
		cfg:        c,
		logger:     logger,
		limits:     limits,
		controller: ctrl,
		security:   sec,
		analyst:    &insights.Analyst{Limits: limits, Loader: loader, DefaultSource: c.DatasetPath},
	}
	if c.EnableUploads {
		a.uploads = &uploads.Store{Dir: c.UploadDir, MaxBytes: limits.MaxUploadBytes, Guard: sec}
	}
	return a, nil
}

// opContext returns a context carrying the logger and bounded by the operation timeout.
func (a *app) opContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := a.logger.WithContext(parent)
	if a.limits.OperationTimeout > 0 {
		return context.WithTimeout(ctx, a.limits.OperationTimeout)
	}
	return context.WithCancel(ctx)
}

// probeDataset loads the preloaded dataset once so misconfiguration shows up at startup.
func (a *app) probeDataset(ctx context.Context) {
	if a.analyst.DefaultSource == "" {
		a.logger.Info().Msg("no preloaded dataset configured")
		return
	}
	ctx, cancel := a.opContext(ctx)
	defer cancel()
	out, err := a.analyst.Profile(ctx, insights.SourceInput{})
	if err != nil {
		a.logger.Warn().Err(err).Str("dataset", a.analyst.DefaultSource).Msg("preloaded dataset unavailable")
		return
	}
	a.logger.Info().
		Str("dataset", out.Source).
		Int("rows", out.Rows).
		Int("areas", out.DistinctAreas).
		Strs("warnings", out.Warnings).
		Msg("preloaded dataset ready")
}
