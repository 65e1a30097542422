// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LevelError.String() != "ERROR" {
		t.Error("level names wrong")
	}
	if Level(99).String() != "UNKNOWN" {
		t.Error("out-of-range level should be UNKNOWN")
	}
}

func TestFileOutputIsJSON(t *testing.T) {
	dir := t.TempDir()
	log := New(Config{Level: LevelDebug, LogDir: dir, Service: "verify", Quiet: true})

	log.Info("hello", "key", "value")
	log.Debug("fine detail")
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := "verify_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if entry["msg"] != "hello" || entry["key"] != "value" || entry["service"] != "verify" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	log := New(Config{Level: LevelWarn, LogDir: dir, Service: "verify", Quiet: true})

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")
	log.Close()

	name := "verify_" + time.Now().Format("2006-01-02") + ".log"
	data, _ := os.ReadFile(filepath.Join(dir, name))
	if got := strings.Count(string(data), "\n"); got != 1 {
		t.Errorf("got %d entries, want 1", got)
	}
}

func TestWithAddsAttributes(t *testing.T) {
	dir := t.TempDir()
	log := New(Config{LogDir: dir, Service: "verify", Quiet: true})

	log.With("run_id", "abc").Info("tagged")
	log.Close()

	name := "verify_" + time.Now().Format("2006-01-02") + ".log"
	data, _ := os.ReadFile(filepath.Join(dir, name))
	if !strings.Contains(string(data), `"run_id":"abc"`) {
		t.Errorf("attribute missing from %s", data)
	}
}

func TestUnwritableLogDirDegrades(t *testing.T) {
	log := New(Config{LogDir: "/proc/no-such-dir/logs", Quiet: true})
	log.Info("must not panic")
	if err := log.Close(); err != nil {
		t.Errorf("Close after degraded setup: %v", err)
	}
}

func TestMultiHandlerFanOut(t *testing.T) {
	var a, b bytes.Buffer
	h := newMultiHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("info msg")
	log.Error("error msg")

	if strings.Count(a.String(), "\n") != 2 {
		t.Errorf("first handler should see both records: %q", a.String())
	}
	if strings.Count(b.String(), "\n") != 1 || !strings.Contains(b.String(), "error msg") {
		t.Errorf("second handler should see only the error: %q", b.String())
	}
}

func TestMultiHandlerEnabled(t *testing.T) {
	h := newMultiHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("enabled when any child is enabled")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandPath("~/logs"); got != filepath.Join(home, "logs") {
		t.Errorf("expandPath(~/logs) = %q", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path must pass through, got %q", got)
	}
}
