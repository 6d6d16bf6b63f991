// Package logger is the process-wide structured log. Records go to a rotating file
// under the config directory; --debug also echoes them to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/elioaoun07/homeagenda/internal/constants"
)

// Rotation limits for the log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Logger is nil until Init or SetOutput runs; the helpers below drop records until then.
var Logger *log.Logger

type Config struct {
	Debug bool
	// ConfigDir holds the logs/ directory. The SQLite backend uses the database's
	// directory, the other backends the user config directory.
	ConfigDir string
}

// LogPath is where Init writes for a given config directory.
func LogPath(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

func Init(cfg Config) error {
	path := LogPath(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	level := log.WarnLevel
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, out)
		level = log.DebugLevel
	}

	Logger = newLogger(out, level, true, cfg.Debug)
	return nil
}

// SetOutput sends records at or above level to w without timestamps. main falls
// back to it on stderr when the log file cannot be opened.
func SetOutput(w io.Writer, level log.Level) {
	Logger = newLogger(w, level, false, false)
}

func newLogger(w io.Writer, level log.Level, stamp, caller bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: stamp,
		ReportCaller:    caller,
	})
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
