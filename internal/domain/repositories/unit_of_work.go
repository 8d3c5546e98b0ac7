package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic multi-repository operations.
// The admin review transition runs inside one: the verification row and the
// user's is_verified mirror must change together.
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
