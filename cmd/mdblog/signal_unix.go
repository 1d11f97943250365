//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals end a render or a watch session. SIGHUP covers a closed
// terminal during --watch.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
