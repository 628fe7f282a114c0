package reviewermock

import (
	"context"

	domain "bankeu-backend/internal/domain/reviewer"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	GetByActorIDFn func(ctx context.Context, actorID string) (*domain.Profile, error)
	UpsertFn       func(ctx context.Context, p *domain.Profile) error
}

func (m *Repo) GetByActorID(ctx context.Context, actorID string) (*domain.Profile, error) {
	if m.GetByActorIDFn != nil {
		return m.GetByActorIDFn(ctx, actorID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Upsert(ctx context.Context, p *domain.Profile) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, p)
	}
	return nil
}
