package fileutil_test

// Notes:
// - TestWriteTempFile_NoTempDir points TMPDIR at a missing directory with
//   t.Setenv and therefore runs serially.
// - Short writes and failing Close calls are not simulated; they need a
//   faulty filesystem.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-mdblog/internal/fileutil"
)

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		extension string
		wantErr   error
	}{
		{"mmd", nil},
		{"json", nil},
		{"tar.gz", nil},
		{"", fileutil.ErrExtensionEmpty},
		{"../mmd", fileutil.ErrExtensionPathTraversal},
		{`..\mmd`, fileutil.ErrExtensionPathTraversal},
		{"mmd\x00", fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		if err := fileutil.ValidateExtension(tt.extension); !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
		}
	}
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	source := "flowchart LR\n  A --> B\n"
	path, cleanup, err := fileutil.WriteTempFile(source, "mmd")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(path), "mdblog-") || filepath.Ext(path) != ".mmd" {
		t.Errorf("WriteTempFile() path = %q, want mdblog-*.mmd", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(got) != source {
		t.Errorf("temp file content = %q, want %q", got, source)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still present after cleanup: %v", err)
	}
	cleanup() // a second call is harmless
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("x", "../evil")
	if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		t.Fatalf("WriteTempFile() error = %v, want ErrExtensionPathTraversal", err)
	}
	if path != "" || cleanup != nil {
		t.Errorf("WriteTempFile() = %q, cleanup set: %v; want nothing on error", path, cleanup != nil)
	}
}

func TestWriteTempFile_NoTempDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("TMPDIR is not consulted on windows")
	}
	t.Setenv("TMPDIR", filepath.Join(t.TempDir(), "missing"))

	_, cleanup, err := fileutil.WriteTempFile("content", "mmd")
	if cleanup != nil {
		cleanup()
	}
	if err == nil || !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %v, want creating temp file failure", err)
	}
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out", "ko", "hello.html")

	if err := fileutil.WriteAtomic(path, "<p>first</p>"); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}
	if err := fileutil.WriteAtomic(path, "<p>second</p>"); err != nil {
		t.Fatalf("WriteAtomic() overwrite error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<p>second</p>" {
		t.Errorf("content = %q, want the second write", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the output file", len(entries))
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o644 {
			t.Errorf("mode = %o, want 644", perm)
		}
	}
}

func TestWriteAtomic_ParentIsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "out")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := fileutil.WriteAtomic(filepath.Join(blocker, "a.html"), "x")
	if err == nil || !strings.Contains(err.Error(), "creating output directory") {
		t.Errorf("WriteAtomic() error = %v, want output directory failure", err)
	}
}

func TestReplaceExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, ext, want string
	}{
		{"ko/hello.md", ".html", "ko/hello.html"},
		{"ko/hello.mdx", ".json", "ko/hello.json"},
		{"about", ".html", "about.html"},
		{"ko/v1.2/notes.md", ".html", "ko/v1.2/notes.html"},
		{"ko/archive.tar.gz", ".html", "ko/archive.tar.html"},
	}
	for _, tt := range tests {
		if got := fileutil.ReplaceExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("ReplaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "post.md")
	if err := os.WriteFile(file, []byte("# Hi"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists(file) = false")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true, want false for directories")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing.md")) {
		t.Error("FileExists(missing) = true")
	}
}
