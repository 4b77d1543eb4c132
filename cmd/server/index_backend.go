package main

import (
	"fmt"
	"path/filepath"

	"wanderer.ai/internal/persistence/indexdb"
)

// openIndex returns nil without error when indexing is switched off.
func openIndex(cfg serverConfig) (*indexdb.SQLiteIndex, error) {
	switch cfg.IndexBackend {
	case "none", "off", "disabled":
		return nil, nil
	case "", "sqlite":
		return indexdb.OpenSQLite(filepath.Join(cfg.DataDir, "index", "plans.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", cfg.IndexBackend)
	}
}
