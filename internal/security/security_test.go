package security

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func mustTempDir(t *testing.T) string {
	t.Helper()
	d := t.TempDir()
	// Ensure real path (EvalSymlinks on macOS can change /var -> /private/var)
	real, err := filepath.EvalSymlinks(d)
	if err != nil {
		t.Fatalf("eval symlinks: %v", err)
	}
	return real
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestNewManager_ValidateConfig(t *testing.T) {
	dir := mustTempDir(t)
	m, err := NewManager([]string{dir, "  "}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.ValidateConfig(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	if got := len(m.AllowedDirectories()); got != 1 {
		t.Fatalf("allowed dirs len = %d, want 1", got)
	}

	empty, err := NewManager(nil, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := empty.ValidateConfig(); err == nil {
		t.Fatalf("expected error without allowed directories")
	}
}

func TestNewManager_RejectsBadInput(t *testing.T) {
	if _, err := NewManager([]string{filepath.Join(mustTempDir(t), "missing")}, nil); err == nil {
		t.Fatalf("expected error for missing root")
	}
	if _, err := NewManager(nil, []string{"csv"}); err == nil {
		t.Fatalf("expected error for extension without dot")
	}
}

func TestSplitExisting(t *testing.T) {
	root := mustTempDir(t)
	missing := filepath.Join(root, "nope")
	have, lack := SplitExisting([]string{root, "", missing})
	if len(have) != 1 || have[0] != root {
		t.Fatalf("existing = %v", have)
	}
	if len(lack) != 1 || lack[0] != missing {
		t.Fatalf("missing = %v", lack)
	}
}

func TestValidateOpenPath_AllowsDatasetTypes(t *testing.T) {
	root := mustTempDir(t)
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, err := NewManager([]string{root}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	for _, name := range []string{"ok.xlsx", "ok.CSV", "ok.tsv", "ok.sqlite", "ok.db"} {
		fpath := filepath.Join(sub, name)
		mustWrite(t, fpath)
		got, err := m.ValidateOpenPath(fpath)
		if err != nil {
			t.Fatalf("validate %s: %v", name, err)
		}
		if !filepath.IsAbs(got) {
			t.Fatalf("expected absolute path, got %q", got)
		}
	}
}

func TestValidateOpenPath_NotFound(t *testing.T) {
	root := mustTempDir(t)
	m, err := NewManager([]string{root}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	_, err = m.ValidateOpenPath(filepath.Join(root, "absent.xlsx"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist in chain", err)
	}
}

func TestValidateOpenPath_DeniesOutsideRoot(t *testing.T) {
	root := mustTempDir(t)
	outside := filepath.Join(mustTempDir(t), "escape.xlsx")
	mustWrite(t, outside)

	m, err := NewManager([]string{root}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.ValidateOpenPath(outside); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("err = %v, want ErrNotAllowed", err)
	}
	if _, err := m.ValidateOpenPath(""); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("err = %v, want ErrNotAllowed for empty path", err)
	}
}

func TestValidateOpenPath_SymlinkEscapeDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test skipped on Windows")
	}
	root := mustTempDir(t)
	target := filepath.Join(mustTempDir(t), "target.csv")
	mustWrite(t, target)
	link := filepath.Join(root, "link.csv")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	m, err := NewManager([]string{root}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.ValidateOpenPath(link); err == nil {
		t.Fatalf("expected error for symlink escape")
	}
}

func TestValidateOpenPath_UnsupportedExt(t *testing.T) {
	root := mustTempDir(t)
	fp := filepath.Join(root, "bad.txt")
	mustWrite(t, fp)

	m, err := NewManager([]string{root}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.ValidateOpenPath(fp); !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("err = %v, want ErrUnsupportedExtension", err)
	}
}

func TestValidateWriteDir(t *testing.T) {
	root := mustTempDir(t)
	uploads := filepath.Join(root, "uploads")
	if err := os.Mkdir(uploads, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	m, err := NewManager([]string{root}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.ValidateWriteDir(root); err != nil {
		t.Fatalf("root: %v", err)
	}
	if _, err := m.ValidateWriteDir(uploads); err != nil {
		t.Fatalf("uploads: %v", err)
	}
	if _, err := m.ValidateWriteDir(mustTempDir(t)); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("err = %v, want ErrNotAllowed", err)
	}
}
