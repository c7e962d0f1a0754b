package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qpaper.log")

	log, err := New(Config{Path: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("loaded exams", zap.Int("count", 3))
	_ = log.Sync()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatal("log file is empty")
	}
	var entry map[string]any
	if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "loaded exams" || entry["level"] != "debug" {
		t.Errorf("entry = %v", entry)
	}
	if entry["count"] != float64(3) {
		t.Errorf("count = %v", entry["count"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing time key")
	}
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qpaper.log")

	log, err := New(Config{Path: path, Level: "warn"})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("info entry written at warn level: %s", data)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{Path: filepath.Join(t.TempDir(), "x.log"), Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	log, err := New(Config{})
	if err != nil || log == nil {
		t.Errorf("empty path should give a nop logger, got %v, %v", log, err)
	}
}
