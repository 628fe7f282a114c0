package questionnaire

import (
	"context"

	"bankeu-backend/internal/domain/proposal"
)

type Repository interface {
	// Upsert on (proposal_id, authority).
	Upsert(ctx context.Context, q *Questionnaire) error
	Get(ctx context.Context, proposalID uint64, authority proposal.Authority) (*Questionnaire, error)
	// ResetForProposal moves every row of the proposal back to draft; used when
	// a resubmission re-opens review.
	ResetForProposal(ctx context.Context, proposalID uint64, authorities []proposal.Authority) error
}
