package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/mcprealty/pkg/validation"
)

var (
	// ErrTooLarge indicates the upload exceeded the configured byte limit.
	ErrTooLarge = errors.New("uploads: file too large")
	// ErrInvalidName indicates the file name has no supported dataset extension.
	ErrInvalidName = errors.New("uploads: unsupported file name")
)

// DirValidator confirms the upload directory lies inside the allow-list.
type DirValidator interface {
	ValidateWriteDir(dir string) (string, error)
}

// Store persists uploaded datasets under a single directory.
type Store struct {
	Dir      string
	MaxBytes int64
	Guard    DirValidator
}

// Saved describes a stored upload.
type Saved struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// Save writes r to <dir>/<uuid-hex>_<basename>. Partially written files are removed on error.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (Saved, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if !validation.IsUploadName(base) {
		return Saved{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("uploads: create dir: %w", err)
	}
	dir, err := filepath.Abs(s.Dir)
	if err != nil {
		return Saved{}, fmt.Errorf("uploads: abs dir: %w", err)
	}
	if s.Guard != nil {
		if dir, err = s.Guard.ValidateWriteDir(dir); err != nil {
			return Saved{}, err
		}
	}

	stored := strings.ReplaceAll(uuid.New().String(), "-", "") + "_" + base
	dest := filepath.Join(dir, stored)
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Saved{}, fmt.Errorf("uploads: create file: %w", err)
	}

	src := r
	if s.MaxBytes > 0 {
		// Read one byte past the limit to detect oversize input.
		src = io.LimitReader(r, s.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxBytes > 0 && n > s.MaxBytes {
		err = fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.MaxBytes)
	}
	if err != nil {
		_ = os.Remove(dest)
		if errors.Is(err, ErrTooLarge) {
			return Saved{}, err
		}
		return Saved{}, fmt.Errorf("uploads: write: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("file", stored).Int64("bytes", n).Msg("dataset uploaded")
	return Saved{Path: dest, Name: stored, Bytes: n}, nil
}
