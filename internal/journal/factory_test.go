package journal

import (
	"testing"

	"dump-go/internal/config"
)

func TestNewJournalFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.JournalConfig
		wantErr bool
		wantNil bool
	}{
		{"memory", config.JournalConfig{Type: "memory"}, false, false},
		{"sqlite", config.JournalConfig{Type: "sqlite", DataDir: t.TempDir()}, false, false},
		{"sqlite without data_dir", config.JournalConfig{Type: "sqlite"}, true, true},
		{"none", config.JournalConfig{Type: "none"}, false, true},
		{"unknown", config.JournalConfig{Type: "postgres"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewJournalFromConfig(tt.cfg, "test-host")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewJournalFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("NewJournalFromConfig() nil = %v, want %v", got == nil, tt.wantNil)
			}
			if got != nil {
				got.Close()
			}
		})
	}
}
