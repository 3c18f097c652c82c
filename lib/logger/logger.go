/*package logger builds the zap loggers used throughout hpost and contains the
functions which report fatal errors to the user.
*/
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels lists the level names accepted by New.
var Levels = []string{"debug", "info", "warn", "error"}

// Exit terminates the process after a fatal error has been reported. Tests
// replace it to observe exits.
var Exit = os.Exit

// ParseLevel converts a level name into a zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return lvl, fmt.Errorf("The log level '%s' is not valid. It must "+
			"be one of %v.", level, Levels)
	}
	for _, name := range Levels {
		if lvl.String() == name {
			return lvl, nil
		}
	}
	return lvl, fmt.Errorf("The log level '%s' is not valid. It must be "+
		"one of %v.", level, Levels)
}

// New returns a console logger writing to stderr at the given level.
// Records are meant for people: plain-text entries with ISO8601 times and
// structured context rendered as JSON.
func New(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.Sampling = nil

	return c.Build(zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)))
}

// OrNop returns log, or a no-op logger if log is nil.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// External reports an error and exits. It should be used when an error is
// something a user could reasonably be expected to fix through changes in
// configuration, data or environment. It has the same signature as the
// standard fmt.*printf() functions, after the logger.
func External(log *zap.Logger, format string, a ...interface{}) {
	OrNop(log).Error("hpost exited early with the following error",
		zap.String("error", fmt.Sprintf(format, a...)))
	Exit(1)
}

// Internal reports an error along with a stack trace and exits. It should be
// used when the error requires a code dive to fix.
func Internal(log *zap.Logger, format string, a ...interface{}) {
	OrNop(log).Error("hpost exited early with the following internal error",
		zap.String("error", fmt.Sprintf(format, a...)), zap.Stack("stack"))
	Exit(1)
}
