package api

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/store"
)

// NewClient creates a Client from configuration, wrapped with read retry and
// request logging.
func NewClient(cfg Config, eventRepo store.EventRepo, log *zap.Logger) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("api config: %w", err)
	}

	base := NewHTTPClient(cfg)

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, eventRepo, log)
	retried := WithReadRetry(logged, cfg.Retry)

	return retried, nil
}
