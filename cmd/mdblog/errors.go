package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"strings"

	mdblog "github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/assets"
	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/diagram"
	"github.com/alnah/go-mdblog/internal/fetch"
	"github.com/alnah/go-mdblog/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrInvalidWorkerCount = errors.New("invalid worker count")

	// errHelpShown ends a command after --help printed its usage.
	errHelpShown = errors.New("help shown")
)

// batchError summarizes failed renders. It unwraps to the first failure so
// the exit code reflects its class.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d render(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// hintFor returns an actionable hint suffix for err, or "". locale feeds the
// content-not-found hint; env feeds the browser hint.
func hintFor(err error, locale string, env *Environment) string {
	var statusErr *fetch.StatusError
	var netErr net.Error
	var batch *batchError

	switch {
	case errors.As(err, &batch):
		return "" // each failure was reported with its own hint
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(strings.Split(err.Error(), ", "))
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		return hints.ForContentNotFound(locale)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return hints.ForTimeout()
	case errors.Is(err, mdblog.ErrParse):
		return hints.ForFrontmatter()
	case errors.Is(err, mdblog.ErrCompile):
		return hints.ForComponent()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.NewEmbeddedLoader().Names())
	case errors.Is(err, diagram.ErrBrowser):
		return hints.ForBrowserConnect(browserEnv(env))
	case errors.Is(err, exec.ErrNotFound):
		return hints.ForDiagramCommand(diagram.DefaultCommand)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// browserEnv summarizes env for the browser launch hint.
func browserEnv(env *Environment) hints.BrowserEnv {
	container, _ := isContainer(env)
	return hints.BrowserEnv{
		CI:          inCI(env),
		Container:   container,
		NoSandbox:   env.getenv("ROD_NO_SANDBOX") == "1",
		BrowserPath: env.getenv("ROD_BROWSER_BIN"),
	}
}
