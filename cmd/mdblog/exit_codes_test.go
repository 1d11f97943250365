package main

// Notes:
// - exitCodeFor: we test sentinel errors from mdblog, config, diagram and
//   the CLI itself, plus wrapped errors to verify the errors.Is() chain.
// - batchError unwraps to its first failure, so a batch exits with the class
//   of that failure.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mdblog "github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/diagram"
	"github.com/alnah/go-mdblog/internal/fetch"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Content errors (exit 4)
		{"parse", mdblog.ErrParse, ExitContent},
		{"compile", mdblog.ErrCompile, ExitContent},
		{"wrapped parse", fmt.Errorf("rendering: %w", mdblog.ErrParse), ExitContent},

		// Fetch and I/O errors (exit 3)
		{"fetch", mdblog.ErrFetch, ExitIO},
		{"status error", &fetch.StatusError{URL: "http://x/a.md", StatusCode: 404}, ExitIO},
		{"network", mdblog.ErrNetwork, ExitIO},
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"no input", ErrNoInput, ExitUsage},
		{"invalid workers", ErrInvalidWorkerCount, ExitUsage},
		{"invalid input", mdblog.ErrInvalidInput, ExitUsage},
		{"unknown engine", diagram.ErrUnknownEngine, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},

		// Batch takes the class of its first failure
		{"batch of fetch", &batchError{failed: 1, total: 2, first: mdblog.ErrFetch}, ExitIO},
		{"batch of parse", &batchError{failed: 2, total: 2, first: mdblog.ErrParse}, ExitContent},

		// General errors (exit 1)
		{"unknown error", errors.New("boom"), ExitGeneral},
		{"closed", mdblog.ErrClosed, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodes_Values - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodes_Values(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitContent} {
		if code <= ExitUsage || code >= 126 {
			t.Errorf("custom exit code %d must be in (2, 126)", code)
		}
	}
}
