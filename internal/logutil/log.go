package logutil

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. Commands configure its level once
// at startup; everything else just writes to it.
var Log = logrus.New()

// SetLevel configures the shared logger from a --loglevel flag value.
func SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", level)
	}
	return nil
}
