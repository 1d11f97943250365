//go:build windows

package main

import "os"

// shutdownSignals end a render or a watch session. Only Ctrl+C is delivered
// as a signal on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
