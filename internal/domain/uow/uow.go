package uow

import (
	"context"

	"bankeu-backend/internal/domain/mirrorjob"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/questionnaire"
	"bankeu-backend/internal/domain/reviewer"
	"bankeu-backend/internal/domain/setting"
)

// Repos are bound to one transaction.
type Repos struct {
	Proposals      proposal.Repository
	Questionnaires questionnaire.Repository
	Reviewers      reviewer.Repository
	Settings       setting.Repository
	MirrorJobs     mirrorjob.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock proposal first, then pass it in
	WithinProposalTx(ctx context.Context, proposalID string, fn func(r Repos, p *proposal.Proposal) error) error
}
