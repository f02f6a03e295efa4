package acl

import "github.com/go-ble/acl/internal/btlog"

// Logger is the structured logging surface the manager and every
// component beneath it log through.
type Logger = btlog.Logger

// SetLogger installs a process-wide logger, mirroring the package-level
// SetLogger/GetLogger pattern the teacher uses for its host stack.
func SetLogger(l Logger) { btlog.Set(l) }

// GetLogger returns the process-wide logger, building the default one on
// first use.
func GetLogger() Logger { return btlog.Get() }
