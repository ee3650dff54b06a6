package storage

import (
	"fmt"

	"dump-go/internal/config"
	"dump-go/internal/dump"
)

// NewStorageFromConfig creates a Storage implementation based on the storage config type.
func NewStorageFromConfig(cfg config.StorageConfig) (dump.Storage, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStorage(nil), nil
	case "file", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file storage requires path to be set")
		}
		s, err := NewFileStorage(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
