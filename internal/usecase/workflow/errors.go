package workflow

import (
	"errors"

	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/questionnaire"
	"bankeu-backend/internal/domain/workflowerr"
)

// Snapshot captures the state echoed back with a refused operation.
func Snapshot(p *proposal.Proposal) workflowerr.Snapshot {
	return workflowerr.Snapshot{
		ProposalID:        p.ProposalID,
		Stage:             string(p.Stage),
		ReturnOrigin:      string(p.ReturnOrigin),
		Status:            string(p.Status),
		DepartmentStatus:  string(p.DepartmentStatus),
		SubdistrictStatus: string(p.SubdistrictStatus),
		TopBodyStatus:     string(p.TopBodyStatus),
	}
}

// Classify tags a domain error with its kind and, when p is known, the
// proposal's state. Already-classified errors only gain the state.
func Classify(err error, p *proposal.Proposal) error {
	if err == nil {
		return nil
	}
	var we *workflowerr.Error
	if !errors.As(err, &we) {
		we = workflowerr.New(kindOf(err), err, "")
	}
	if we.Kind == "" {
		return err
	}
	if we.State == nil && p != nil && p.ProposalID != "" {
		we.WithState(Snapshot(p))
	}
	return we
}

func kindOf(err error) workflowerr.Kind {
	switch {
	case errors.Is(err, proposal.ErrNotFound), errors.Is(err, questionnaire.ErrNotFound):
		return workflowerr.KindNotFound
	case errors.Is(err, proposal.ErrNotOwner):
		return workflowerr.KindAuthorization
	case errors.Is(err, proposal.ErrInvalidDecision),
		errors.Is(err, proposal.ErrInvalidDestination),
		errors.Is(err, proposal.ErrProfileIncomplete),
		errors.Is(err, proposal.ErrInvalidProposalInput),
		errors.Is(err, questionnaire.ErrNoAnswers),
		errors.Is(err, questionnaire.ErrTooManyAnswers),
		errors.Is(err, questionnaire.ErrInvalidAuthority),
		errors.Is(err, questionnaire.ErrRecommendationConf):
		return workflowerr.KindValidation
	case errors.Is(err, proposal.ErrWrongAuthority),
		errors.Is(err, proposal.ErrStaleProposal),
		errors.Is(err, proposal.ErrNoEligibleProposals),
		errors.Is(err, proposal.ErrNotEditable),
		errors.Is(err, proposal.ErrNotDeletable),
		errors.Is(err, proposal.ErrNotReturned),
		errors.Is(err, proposal.ErrInvariantViolation):
		return workflowerr.KindStateConflict
	}
	return ""
}
