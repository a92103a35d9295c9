package main

import (
	"path/filepath"
	"testing"
)

func TestProbeCommandUnavailable(t *testing.T) {
	tests := []struct {
		name        string
		json        bool
		wantContain []string
	}{
		{
			name:        "text",
			wantContain: []string{"Frame Inspection", "Unavailable", "CAP_SYS_ADMIN"},
		},
		{
			name:        "json",
			json:        true,
			wantContain: []string{`"available": false`, `"page_size"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			t.Cleanup(resetFlags)
			jsonOut = tt.json
			probeFlags.pagemap = filepath.Join(t.TempDir(), "pagemap")

			output, err := captureOutput(t, runProbe)
			if err != nil {
				t.Fatalf("runProbe() error = %v\nOutput: %s", err, output)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}
