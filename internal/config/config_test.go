package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.FuzzyThreshold != 88 || c.MaxTermsFuzzy != 500 || c.MaxCategories != 200 {
		t.Fatalf("unexpected analysis defaults: %+v", c)
	}
	if c.MaxRows != 10_000_000 || c.MaxFileSizeMB != 1000 {
		t.Fatalf("unexpected loader defaults: %+v", c)
	}
	if c.DashboardAddr != "127.0.0.1:8050" || c.OutputDir != "./output" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.LogFile != filepath.Join(home, ".tabloom", "tabloom.log") {
		t.Fatalf("log file = %s", c.LogFile)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.FuzzyThreshold = 92.5
	c.Stopwords = []string{"loja", "produto"}
	if err := Save(c, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.FuzzyThreshold != 92.5 || len(back.Stopwords) != 2 || back.Stopwords[1] != "produto" {
		t.Fatalf("round trip lost values: %+v", back)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABLOOM_MAX_CATEGORIES", "50")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MaxCategories != 50 {
		t.Fatalf("env override ignored: %d", c.MaxCategories)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(p, []byte("fuzzy_threshold: 140\nlog_level: loud\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "fuzzy_threshold") || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, "": slog.LevelInfo, "WARN": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	log := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)
	log.Debug("hidden")
	log.Info("column analyzed", "column", "city")
	if !strings.Contains(stderr.String(), "column analyzed") || strings.Contains(stderr.String(), "hidden") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(file.Bytes(), &rec); err != nil {
		t.Fatalf("file output is not JSON: %v (%q)", err, file.String())
	}
	if rec["column"] != "city" {
		t.Fatalf("json record = %v", rec)
	}
}

func TestSetupLoggerWritesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "tabloom.log")
	log, cleanup := SetupLogger(p, slog.LevelInfo)
	log.Info("hello")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("log file = %q, %v", b, err)
	}
}
