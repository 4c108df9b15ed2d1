// Package service implements the Warbler core: identity, follow graph,
// messages and likes. Every mutation runs in one transaction.
package service

import (
	"context"
	"time"

	"warbler/internal/models"
	"warbler/internal/policy"
)

// DefaultOperationTimeout bounds a core call when no timeout is configured.
const DefaultOperationTimeout = 5 * time.Second

// rules are the ownership and self-action rules the core always enforces.
// Members-only reads are the HTTP layer's concern.
var rules = policy.New(false)

func bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func requireUser(userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("authentication required")
	}
	return nil
}
