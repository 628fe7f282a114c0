package settingmock

import (
	"context"

	domain "bankeu-backend/internal/domain/setting"
)

var _ domain.Repository = (*Repo)(nil)

// Repo counts reads so cache behaviour can be asserted.
type Repo struct {
	GetFn    func(ctx context.Context, key string) (*domain.Setting, error)
	UpsertFn func(ctx context.Context, s *domain.Setting) error
	Gets     int
}

func (m *Repo) Get(ctx context.Context, key string) (*domain.Setting, error) {
	m.Gets++
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Upsert(ctx context.Context, s *domain.Setting) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, s)
	}
	return nil
}
