package proposal

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	GetByProposalID(ctx context.Context, proposalID string) (*Proposal, error)

	// Row-locking reads; only meaningful inside a unit of work.
	GetByProposalIDForUpdate(ctx context.Context, proposalID string) (*Proposal, error)
	ListForUpdate(ctx context.Context, villageID string, filter ListFilter) ([]*Proposal, error)

	ListByVillage(ctx context.Context, villageID string, filter ListFilter) ([]*Proposal, error)

	// Update writes p if its stored version still equals p.Version, then
	// bumps p.Version. ErrStaleProposal otherwise.
	Update(ctx context.Context, p *Proposal) error

	// SetReference records a completed mirror copy without bumping the version.
	SetReference(ctx context.Context, id uint64, file string, at time.Time) error

	Delete(ctx context.Context, p *Proposal) error
}
