// ulog.go - shared logger construction for the uindex CLIs
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package ulog builds the stderr logger used by uindex-create,
// scaling verbosity with repeated -v.
package ulog

import (
	"fmt"
	"os"

	"github.com/opencoff/go-logger"
)

// New builds a logger writing to stderr at a level derived from
// verbose (the repeat count of -v/--verbose).
func New(verbose int) logger.Logger {
	level := logger.LOG_WARNING
	switch {
	case verbose >= 2:
		level = logger.LOG_DEBUG
	case verbose == 1:
		level = logger.LOG_INFO
	}

	log, err := logger.NewLogger("STDERR", level, os.Args[0], logger.Ldate|logger.Ltime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: logger: %s\n", os.Args[0], err)
		os.Exit(1)
	}
	return log
}
