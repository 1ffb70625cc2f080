package mcperr

import (
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestText_UsesCatalogDefaults(t *testing.T) {
	got := Text(DatasetNotFound, "")
	require.True(t, strings.HasPrefix(got, "DATASET_NOT_FOUND: dataset not found | nextSteps: "))

	got = Text(NoAreaIdentified, "query 'hello there' names no locality")
	require.True(t, strings.HasPrefix(got, "NO_AREA_IDENTIFIED: query 'hello there' names no locality"))
	require.Contains(t, got, "list_areas")
}

func TestText_UnknownCode(t *testing.T) {
	require.Equal(t, "SOMETHING: odd", Text(Code("SOMETHING"), "odd"))
	require.Equal(t, "SOMETHING", Text(Code("SOMETHING"), ""))
}

func TestFromText(t *testing.T) {
	res := FromText("VALIDATION: query is required")
	require.True(t, res.IsError)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	require.True(t, strings.HasPrefix(tc.Text, "VALIDATION: query is required | nextSteps:"))
}

func TestLimitHelpers(t *testing.T) {
	require.Contains(t, BusyText(4), "max=4")
	require.True(t, strings.HasPrefix(TimeoutText(2*time.Second), "TIMEOUT: operation exceeded configured time limit (2s)"))

	e, ok := Lookup(UnsupportedFormat)
	require.True(t, ok)
	require.False(t, e.Retryable)
}
