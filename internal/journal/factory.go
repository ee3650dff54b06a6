package journal

import (
	"fmt"
	"path/filepath"

	"dump-go/internal/config"
	"dump-go/internal/dump"
)

// NewJournalFromConfig creates a Journal implementation based on the journal
// config type. Type "none" returns a nil Journal, which the store accepts.
func NewJournalFromConfig(cfg config.JournalConfig, hostID string) (dump.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite journal")
		}
		return openSQLite(filepath.Join(cfg.DataDir, hostID+".db"))
	case "memory":
		return openSQLite(":memory:")
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}

func openSQLite(path string) (dump.Journal, error) {
	j, err := NewSQLiteJournal(path)
	if err != nil {
		return nil, err
	}
	return j, nil
}
