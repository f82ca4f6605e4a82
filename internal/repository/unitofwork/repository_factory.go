package unitofwork

import "context"

// RepositoryFactory hands the chat service a fresh unit of work per
// request so repositories share one transaction boundary.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
