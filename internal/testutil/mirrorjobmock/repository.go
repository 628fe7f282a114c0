package mirrorjobmock

import (
	"context"

	domain "bankeu-backend/internal/domain/mirrorjob"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn      func(ctx context.Context, j *domain.Job) error
	GetByJobIDFn  func(ctx context.Context, jobID string) (*domain.Job, error)
	ListPendingFn func(ctx context.Context, maxAttempts, limit int) ([]*domain.Job, error)
	SaveFn        func(ctx context.Context, j *domain.Job) error
}

func (m *Repo) Create(ctx context.Context, j *domain.Job) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, j)
	}
	return nil
}

func (m *Repo) GetByJobID(ctx context.Context, jobID string) (*domain.Job, error) {
	if m.GetByJobIDFn != nil {
		return m.GetByJobIDFn(ctx, jobID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListPending(ctx context.Context, maxAttempts, limit int) ([]*domain.Job, error) {
	if m.ListPendingFn != nil {
		return m.ListPendingFn(ctx, maxAttempts, limit)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, j *domain.Job) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, j)
	}
	return nil
}
