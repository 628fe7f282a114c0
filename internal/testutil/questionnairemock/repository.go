package questionnairemock

import (
	"context"

	"bankeu-backend/internal/domain/proposal"
	domain "bankeu-backend/internal/domain/questionnaire"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	UpsertFn           func(ctx context.Context, q *domain.Questionnaire) error
	GetFn              func(ctx context.Context, proposalID uint64, a proposal.Authority) (*domain.Questionnaire, error)
	ResetForProposalFn func(ctx context.Context, proposalID uint64, as []proposal.Authority) error
}

func (m *Repo) Upsert(ctx context.Context, q *domain.Questionnaire) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, q)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, proposalID uint64, a proposal.Authority) (*domain.Questionnaire, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, proposalID, a)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ResetForProposal(ctx context.Context, proposalID uint64, as []proposal.Authority) error {
	if m.ResetForProposalFn != nil {
		return m.ResetForProposalFn(ctx, proposalID, as)
	}
	return nil
}
