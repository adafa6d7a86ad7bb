package session

import (
	"context"
	"fmt"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/config"
	"github.com/Veraticus/claimguard/internal/service"
)

// New builds the session store selected by cfg.Backend.
func New(ctx context.Context, cfg config.SessionConfig) (service.SessionStore, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryStore(cfg.MaxAge), nil
	case "sqlite":
		store, err := NewSQLiteStore(cfg.Path, cfg.MaxAge)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run session migrations: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unsupported session backend %q", common.ErrInvalidConfig, cfg.Backend)
	}
}
