package shared

import "context"

// UnitOfWork runs a function inside a single atomic boundary. Repository
// calls made with the context passed to fn join the same transaction, so
// either every write inside fn commits or none do.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
