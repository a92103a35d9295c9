package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/joshuapare/contigmem/internal/logger"
)

func TestAllocCommandErrors(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T)
		wantContain []string
	}{
		{
			name: "frame map missing",
			setup: func(t *testing.T) {
				allocFlags.pagemap = filepath.Join(t.TempDir(), "pagemap")
				allocSize = "1MiB"
			},
			wantContain: []string{"failed to allocate", "CAP_SYS_ADMIN"},
		},
		{
			name:        "bad size",
			setup:       func(t *testing.T) { allocSize = "lots" },
			wantContain: []string{"--size"},
		},
		{
			name:        "bad strategy",
			setup:       func(t *testing.T) { allocFlags.strategy = "hugetlb" },
			wantContain: []string{"unknown strategy"},
		},
		{
			name: "alignment below granularity",
			setup: func(t *testing.T) {
				allocFlags.granularity = "4MiB"
				allocFlags.align = "2MiB"
			},
			wantContain: []string{"smaller than cache granularity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			t.Cleanup(resetFlags)
			tt.setup(t)

			output, err := captureOutput(t, func() error {
				return runAlloc(context.Background())
			})
			if err == nil {
				t.Fatalf("runAlloc() succeeded, want error\nOutput: %s", output)
			}
			assertContains(t, err.Error(), tt.wantContain)
		})
	}
}

func TestAllocCommandLogsFailure(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	t.Cleanup(func() { logger.Init(logger.Options{}) })

	var logs bytes.Buffer
	logger.Init(logger.Options{Enabled: true, Writer: &logs, Level: slog.LevelDebug})
	allocFlags.pagemap = filepath.Join(t.TempDir(), "pagemap")
	allocSize = "1MiB"

	_, err := captureOutput(t, func() error {
		return runAlloc(context.Background())
	})
	if err == nil {
		t.Fatal("runAlloc() succeeded without a frame map")
	}
	assertContains(t, logs.String(), []string{
		"allocator ready",
		"strategy=heap",
		"allocation failed",
		"size=1048576",
	})
}
