package insights

import (
	"context"
	"errors"
	"strings"

	"github.com/vinodismyname/mcprealty/internal/dataset"
	"github.com/vinodismyname/mcprealty/internal/runtime"
)

var (
	// ErrEmptyQuery indicates the query text is blank.
	ErrEmptyQuery = errors.New("insights: no query provided")
	// ErrNoAreaIdentified indicates the query names no locality.
	ErrNoAreaIdentified = errors.New("insights: could not identify an area from the query")
	// ErrNoDataset indicates no source was given and the preloaded dataset was declined or unset.
	ErrNoDataset = errors.New("insights: no dataset provided and use_preloaded is false")
	// ErrCursorInvalid indicates a paging cursor does not match the request.
	ErrCursorInvalid = errors.New("insights: cursor is invalid for current context")
)

// Loader loads a dataset source into a normalized table (satisfied by *dataset.Loader).
type Loader interface {
	Load(ctx context.Context, source string) (*dataset.Table, error)
}

// Analyst answers locality questions against dataset sources. Tables are loaded fresh
// for every call; an Analyst holds no per-request state.
type Analyst struct {
	Limits runtime.Limits
	Loader Loader
	// DefaultSource is the preloaded dataset used when a request names none.
	DefaultSource string
}

// SourceInput selects the dataset for a request.
type SourceInput struct {
	Dataset      string `json:"dataset,omitempty" validate:"omitempty,dataset_source" jsonschema_description:"Dataset path (.xlsx/.csv/.tsv/.sqlite) or postgres:// URL; overrides the preloaded dataset"`
	UsePreloaded *bool  `json:"use_preloaded,omitempty" jsonschema_description:"Use the server's preloaded dataset when no dataset is given (default true)"`
}

// ResolveSource picks the dataset: an explicit source wins, otherwise the preloaded
// dataset unless the caller opted out.
func (a *Analyst) ResolveSource(in SourceInput) (string, error) {
	if s := strings.TrimSpace(in.Dataset); s != "" {
		return s, nil
	}
	if in.UsePreloaded != nil && !*in.UsePreloaded {
		return "", ErrNoDataset
	}
	if strings.TrimSpace(a.DefaultSource) == "" {
		return "", ErrNoDataset
	}
	return a.DefaultSource, nil
}

func (a *Analyst) load(ctx context.Context, in SourceInput) (string, *dataset.Table, error) {
	src, err := a.ResolveSource(in)
	if err != nil {
		return "", nil, err
	}
	t, err := a.Loader.Load(ctx, src)
	if err != nil {
		return src, nil, err
	}
	return src, t, nil
}

func (a *Analyst) compareRowLimit() int {
	if a.Limits.CompareRowLimit > 0 {
		return a.Limits.CompareRowLimit
	}
	return 200
}

func (a *Analyst) singleRowLimit() int {
	if a.Limits.SingleRowLimit > 0 {
		return a.Limits.SingleRowLimit
	}
	return 1000
}

func (a *Analyst) areaListLimit() int {
	if a.Limits.AreaListLimit > 0 {
		return a.Limits.AreaListLimit
	}
	return 200
}
