package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	old := Logger
	Logger = nil
	defer func() { Logger = old }()

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}

func TestInitCreatesLogFile(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	dir := t.TempDir()
	if err := Init(Config{ConfigDir: dir}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	Warn("rule failed to parse", "item", "abc")

	if got, want := LogPath(dir), filepath.Join(dir, "logs", "homeagenda.log"); got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
	data, err := os.ReadFile(LogPath(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "rule failed to parse") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestSetOutputRespectsLevel(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	var buf bytes.Buffer
	SetOutput(&buf, log.WarnLevel)
	Info("hidden")
	Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn message missing: %q", out)
	}
}
