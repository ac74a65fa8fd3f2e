package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the engine wide logger. It starts as a no-op logger so packages can log
// before Init is called (tests never call it).
var Log = zap.NewNop()

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Init replaces Log with a development logger writing to stderr.
func Init() {
	config := zap.NewDevelopmentConfig()
	config.Level = level
	config.DisableStacktrace = true

	l, err := config.Build()
	if err != nil {
		// Keep the no-op logger, nothing else can report the failure.
		return
	}
	Log = l
}

// SetLevel changes the minimum level of the logger built by Init.
// Accepts the zap level names: debug, info, warn, error.
func SetLevel(name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
