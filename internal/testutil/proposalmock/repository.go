package proposalmock

import (
	"context"
	"time"

	domain "bankeu-backend/internal/domain/proposal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled; unset writers succeed.
type Repo struct {
	CreateFn                   func(ctx context.Context, p *domain.Proposal) error
	GetByProposalIDFn          func(ctx context.Context, proposalID string) (*domain.Proposal, error)
	GetByProposalIDForUpdateFn func(ctx context.Context, proposalID string) (*domain.Proposal, error)
	ListForUpdateFn            func(ctx context.Context, villageID string, f domain.ListFilter) ([]*domain.Proposal, error)
	ListByVillageFn            func(ctx context.Context, villageID string, f domain.ListFilter) ([]*domain.Proposal, error)
	UpdateFn                   func(ctx context.Context, p *domain.Proposal) error
	SetReferenceFn             func(ctx context.Context, id uint64, file string, at time.Time) error
	DeleteFn                   func(ctx context.Context, p *domain.Proposal) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Proposal) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByProposalID(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	if m.GetByProposalIDFn != nil {
		return m.GetByProposalIDFn(ctx, proposalID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByProposalIDForUpdate(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	if m.GetByProposalIDForUpdateFn != nil {
		return m.GetByProposalIDForUpdateFn(ctx, proposalID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListForUpdate(ctx context.Context, villageID string, f domain.ListFilter) ([]*domain.Proposal, error) {
	if m.ListForUpdateFn != nil {
		return m.ListForUpdateFn(ctx, villageID, f)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByVillage(ctx context.Context, villageID string, f domain.ListFilter) ([]*domain.Proposal, error) {
	if m.ListByVillageFn != nil {
		return m.ListByVillageFn(ctx, villageID, f)
	}
	return nil, context.Canceled
}

func (m *Repo) Update(ctx context.Context, p *domain.Proposal) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, p)
	}
	return nil
}

func (m *Repo) SetReference(ctx context.Context, id uint64, file string, at time.Time) error {
	if m.SetReferenceFn != nil {
		return m.SetReferenceFn(ctx, id, file, at)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, p *domain.Proposal) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, p)
	}
	return nil
}
