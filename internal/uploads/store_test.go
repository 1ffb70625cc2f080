package uploads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type denyDir struct{}

func (denyDir) ValidateWriteDir(string) (string, error) { return "", errors.New("denied") }

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := &Store{Dir: dir, MaxBytes: 64}

	saved, err := s.Save(context.Background(), "../../etc/Pune.csv", strings.NewReader("area,year\nwakad,2020\n"))
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(saved.Path))
	require.Equal(t, dir, filepath.Dir(saved.Path))
	require.True(t, strings.HasSuffix(saved.Name, "_Pune.csv"))
	require.Len(t, strings.TrimSuffix(saved.Name, "_Pune.csv"), 32)
	require.Equal(t, int64(21), saved.Bytes)

	body, err := os.ReadFile(saved.Path)
	require.NoError(t, err)
	require.Equal(t, "area,year\nwakad,2020\n", string(body))

	again, err := s.Save(context.Background(), "Pune.csv", strings.NewReader("x"))
	require.NoError(t, err)
	require.NotEqual(t, saved.Path, again.Path)
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Dir: dir, MaxBytes: 4}

	_, err := s.Save(context.Background(), "notes.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Save(context.Background(), "big.csv", strings.NewReader("12345"))
	require.ErrorIs(t, err, ErrTooLarge)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	s.Guard = denyDir{}
	_, err = s.Save(context.Background(), "ok.csv", strings.NewReader("x"))
	require.Error(t, err)
}
