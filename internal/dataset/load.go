package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Format identifies a supported dataset source.
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatSQLite   Format = "sqlite"
	FormatPostgres Format = "postgres"
)

var (
	// ErrDatasetNotFound indicates the source path does not resolve to a file.
	ErrDatasetNotFound = errors.New("dataset: dataset not found")
	// ErrUnsupportedFormat indicates the source is not a recognised tabular format.
	ErrUnsupportedFormat = errors.New("dataset: unsupported format")
	// ErrTooManyRows indicates the source exceeds the configured row limit.
	ErrTooManyRows = errors.New("dataset: row limit exceeded")
	// ErrNoTable indicates a database source has no table to read.
	ErrNoTable = errors.New("dataset: no table to read")
)

// Gate coordinates capacity for concurrently open dataset sources (backed by runtime.Controller).
type Gate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// PathValidator abstracts filesystem path validation. Implementations return a
// canonical absolute path if allowed, or an error when denied. Errors wrapping
// fs.ErrNotExist are reported as ErrDatasetNotFound.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// Options tune how sources are read.
type Options struct {
	// Table names the table for database sources; sqlite falls back to its first table.
	Table string
	// MaxRows bounds the number of data rows; 0 means unlimited.
	MaxRows int
}

// Loader reads dataset sources into normalized Tables. Every call loads afresh; no
// table is cached between calls. A Loader is safe for concurrent use.
type Loader struct {
	opts      Options
	gate      Gate
	validator PathValidator
}

// NewLoader constructs a Loader. Gate and validator may be nil.
func NewLoader(opts Options, gate Gate, validator PathValidator) *Loader {
	return &Loader{opts: opts, gate: gate, validator: validator}
}

// DetectFormat resolves the format of a source from its scheme or file extension.
func DetectFormat(source string) (Format, error) {
	low := strings.ToLower(strings.TrimSpace(source))
	if strings.HasPrefix(low, "postgres://") || strings.HasPrefix(low, "postgresql://") {
		return FormatPostgres, nil
	}
	switch ext := filepath.Ext(low); ext {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load reads the source (file path or postgres URL) and returns a normalized table.
func (l *Loader) Load(ctx context.Context, source string) (*Table, error) {
	format, err := DetectFormat(source)
	if err != nil {
		return nil, err
	}

	path := source
	if format != FormatPostgres {
		path, err = l.resolvePath(source)
		if err != nil {
			return nil, err
		}
	}

	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()

	var header []string
	var rows [][]Value
	switch format {
	case FormatXLSX:
		header, rows, err = readXLSXFile(path, l.opts.MaxRows)
	case FormatCSV, FormatTSV:
		header, rows, err = readDelimitedFile(path, delimiterFor(format), l.opts.MaxRows)
	case FormatSQLite:
		header, rows, err = readSQL(ctx, "sqlite", path, l.opts.Table, true, l.opts.MaxRows)
	case FormatPostgres:
		header, rows, err = readSQL(ctx, "pgx", source, l.opts.Table, false, l.opts.MaxRows)
	}
	if err != nil {
		return nil, err
	}

	t := Normalize(NewTable(prepareHeader(header, rows), rows))
	logSource := path
	if format == FormatPostgres {
		logSource = "postgres"
	}
	zerolog.Ctx(ctx).Debug().
		Str("source", logSource).
		Str("format", string(format)).
		Int("rows", t.Len()).
		Int("columns", len(t.Columns())).
		Msg("dataset loaded")
	return t, nil
}

// LoadReader reads a byte stream in the given format (xlsx, csv or tsv).
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, format Format) (*Table, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()

	var header []string
	var rows [][]Value
	var err error
	switch format {
	case FormatXLSX:
		header, rows, err = readXLSX(r, l.opts.MaxRows)
	case FormatCSV, FormatTSV:
		header, rows, err = readDelimited(r, delimiterFor(format), l.opts.MaxRows)
	default:
		return nil, fmt.Errorf("%w: %q is not readable from a stream", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return Normalize(NewTable(prepareHeader(header, rows), rows)), nil
}

func (l *Loader) resolvePath(path string) (string, error) {
	if l.validator != nil {
		canonical, err := l.validator.ValidateOpenPath(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w at %s", ErrDatasetNotFound, path)
			}
			return "", err
		}
		return canonical, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w at %s", ErrDatasetNotFound, path)
		}
		return "", fmt.Errorf("dataset: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w at %s", ErrDatasetNotFound, path)
	}
	return path, nil
}

func (l *Loader) acquire(ctx context.Context) error {
	if l.gate == nil {
		return nil
	}
	return l.gate.AcquireDataset(ctx)
}

func (l *Loader) release() {
	if l.gate == nil {
		return
	}
	l.gate.ReleaseDataset()
}

// prepareHeader widens the header to the widest row, names blank headers
// "Unnamed: <i>" and suffixes repeated headers with ".1", ".2", ...
func prepareHeader(header []string, rows [][]Value) []string {
	width := len(header)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func inferRow(cells []string) []Value {
	row := make([]Value, len(cells))
	for i, c := range cells {
		row[i] = Infer(c)
	}
	return row
}
