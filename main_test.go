package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sgpt/model"
	"sgpt/role"
	"sgpt/storage"
)

type stubProvider struct {
	pingErr error
}

func (s *stubProvider) Complete(ctx context.Context, messages []model.Message, opts model.CompletionOptions, callback model.StreamCallback) error {
	return nil
}

func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Ping(ctx context.Context) error { return s.pingErr }

func TestVerifyProvider(t *testing.T) {
	if err := verifyProvider(context.Background(), &stubProvider{}, "ollama"); err != nil {
		t.Errorf("reachable provider reported an error: %v", err)
	}

	pingErr := errors.New("connection refused")
	err := verifyProvider(context.Background(), &stubProvider{pingErr: pingErr}, "ollama")
	if err == nil {
		t.Fatal("unreachable provider reported no error")
	}
	if !errors.Is(err, pingErr) {
		t.Errorf("expected the ping error in the chain, got %v", err)
	}
	if !strings.Contains(err.Error(), `"ollama"`) {
		t.Errorf("expected the provider id in the message, got %q", err.Error())
	}
}

func TestCreateShape(t *testing.T) {
	tests := []struct {
		name string
		opts cliOptions
		want role.OutputShape
	}{
		{"no mode flag", cliOptions{}, role.ShapeText},
		{"shell", cliOptions{shell: true}, role.ShapeShell},
		{"describe shell", cliOptions{describeShell: true}, role.ShapeDescription},
		{"code", cliOptions{code: true}, role.ShapeCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createShape(&tt.opts); got != tt.want {
				t.Errorf("createShape() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRunRecords(t *testing.T) {
	records := []storage.RunRecord{
		{
			Command:    "df -h",
			ExitCode:   1,
			ExecutedAt: time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC),
		},
	}

	lines := formatRunRecords(records)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	want := "2026-08-28 09:30  [1]  df -h"
	if lines[0] != want {
		t.Errorf("expected %q, got %q", want, lines[0])
	}
}
