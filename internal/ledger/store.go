package ledger

import (
	"context"

	"github.com/attaboy/fairway/internal/domain"
)

// Mutator edits a working copy of a group inside one transactional attempt and
// returns the audit events to append with it. Returning an error aborts the
// attempt without writing.
type Mutator func(g *domain.Group) ([]domain.AuditEvent, error)

// Store persists group documents with optimistic versioning.
//
// TransactionalUpdate makes a single attempt: it loads the current document,
// runs mutate on a copy and commits only if the version is unchanged,
// otherwise it returns domain.ErrConcurrentModification. Retrying is the
// engine's job.
type Store interface {
	GetGroup(ctx context.Context, ref domain.GroupRef) (*domain.Group, error)
	CreateGroup(ctx context.Context, g *domain.Group, events []domain.AuditEvent) (*domain.Group, error)
	TransactionalUpdate(ctx context.Context, ref domain.GroupRef, mutate Mutator) (*domain.Group, error)
	Subscribe(ctx context.Context, ref domain.GroupRef, fn func(*domain.Group)) (func(), error)
	ListEvents(ctx context.Context, ref domain.GroupRef) ([]domain.AuditEvent, error)
}
