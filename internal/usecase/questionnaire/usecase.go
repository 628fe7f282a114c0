package questionnaire

import (
	"context"
	"errors"
	"time"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/proposal"
	domain "bankeu-backend/internal/domain/questionnaire"
	"bankeu-backend/internal/domain/uow"
	"bankeu-backend/internal/domain/workflowerr"
	"bankeu-backend/internal/infrastructure/logging"
	"bankeu-backend/internal/usecase/workflow"
)

// Decider applies the engine transition inside the questionnaire's
// transaction and runs the post-commit mirror.
type Decider interface {
	Decide(ctx context.Context, r uow.Repos, p *proposal.Proposal, a actor.Actor, authority proposal.Authority, dec proposal.Decision, notes string) (string, error)
	AfterCommit(ctx context.Context, jobID string, dto workflow.ProposalDTO) *workflow.ProposalDTO
}

type Usecase struct {
	uow     uow.UnitOfWork
	decider Decider
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, d Decider) *Usecase {
	return &Usecase{uow: tx, decider: d, now: func() time.Time { return time.Now().UTC() }}
}

// Questions returns the fixed checklist of a reviewing authority.
func (u *Usecase) Questions(authority proposal.Authority) ([]QuestionDTO, error) {
	texts, ok := domain.Questions(authority)
	if !ok {
		return nil, workflowerr.Validation(domain.ErrInvalidAuthority, "")
	}
	out := make([]QuestionDTO, 0, len(texts))
	for i, t := range texts {
		out = append(out, QuestionDTO{No: i + 1, Text: t})
	}
	return out, nil
}

func checkReviewer(a actor.Actor, authority proposal.Authority) error {
	if !authority.IsReviewer() {
		return workflowerr.Validation(domain.ErrInvalidAuthority, "")
	}
	if a.Role != authority {
		return workflowerr.Authorization(proposal.ErrNotOwner, "actor may only fill its own authority's questionnaire")
	}
	return nil
}

// normalize pads answers to the full checklist.
func normalize(in []domain.Answer) ([]domain.Answer, error) {
	if len(in) > domain.QuestionCount {
		return nil, workflowerr.Validation(domain.ErrTooManyAnswers, "")
	}
	out := make([]domain.Answer, domain.QuestionCount)
	copy(out, in)
	return out, nil
}

func holds(p *proposal.Proposal, authority proposal.Authority) error {
	if p.Stage.Holder() != authority {
		return workflow.Classify(proposal.ErrWrongAuthority, p)
	}
	return nil
}

// SaveDraft stores answers without touching the proposal.
func (u *Usecase) SaveDraft(ctx context.Context, a actor.Actor, in AnswersInput) (*QuestionnaireDTO, error) {
	if err := checkReviewer(a, in.Authority); err != nil {
		return nil, err
	}
	answers, err := normalize(in.Answers)
	if err != nil {
		return nil, err
	}

	var dto QuestionnaireDTO
	err = u.uow.WithinProposalTx(ctx, in.ProposalID, func(r uow.Repos, p *proposal.Proposal) error {
		if err := holds(p, in.Authority); err != nil {
			return err
		}
		q := &domain.Questionnaire{
			ProposalID: p.ID,
			Authority:  in.Authority,
			Remark:     in.Remark,
			Status:     domain.StatusDraft,
			ReviewerID: a.ID,
		}
		q.SetAnswers(answers)
		if err := r.Questionnaires.Upsert(ctx, q); err != nil {
			return err
		}
		dto = toDTO(p.ProposalID, q)
		return nil
	})
	if err != nil {
		return nil, workflow.Classify(err, nil)
	}
	return &dto, nil
}

// Submit finalizes the questionnaire and feeds its recommendation to the
// engine in the same transaction.
func (u *Usecase) Submit(ctx context.Context, a actor.Actor, in AnswersInput) (*SubmitResultDTO, error) {
	if err := checkReviewer(a, in.Authority); err != nil {
		return nil, err
	}
	answers, err := normalize(in.Answers)
	if err != nil {
		return nil, err
	}
	if domain.Answered(answers) == 0 {
		return nil, workflowerr.Validation(domain.ErrNoAnswers, "")
	}
	dec, err := recommendation(answers, in.Recommendation)
	if err != nil {
		return nil, err
	}

	var res SubmitResultDTO
	var jobID string
	err = u.uow.WithinProposalTx(ctx, in.ProposalID, func(r uow.Repos, p *proposal.Proposal) error {
		if err := holds(p, in.Authority); err != nil {
			return err
		}
		at := u.now()
		q := &domain.Questionnaire{
			ProposalID:     p.ID,
			Authority:      in.Authority,
			Remark:         in.Remark,
			Status:         domain.StatusSubmitted,
			Recommendation: dec,
			ReviewerID:     a.ID,
			SubmittedAt:    &at,
		}
		q.SetAnswers(answers)
		if err := r.Questionnaires.Upsert(ctx, q); err != nil {
			return err
		}

		// last step: the transition commits with the questionnaire or not at all
		jobID, err = u.decider.Decide(ctx, r, p, a, in.Authority, dec, in.Remark)
		if err != nil {
			return err
		}
		res.Questionnaire = toDTO(p.ProposalID, q)
		res.Proposal = workflow.ToDTO(p)
		return nil
	})
	if err != nil {
		return nil, workflow.Classify(err, nil)
	}
	res.Proposal = *u.decider.AfterCommit(ctx, jobID, res.Proposal)

	logging.Get().Info().
		Str("proposal_id", in.ProposalID).
		Str("authority", string(in.Authority)).
		Str("recommendation", string(dec)).
		Int("answered", res.Questionnaire.Answered).
		Msg("questionnaire: submitted")
	return &res, nil
}

// recommendation derives the decision from the answers. An explicit
// approval is refused when any item failed.
func recommendation(answers []domain.Answer, explicit string) (proposal.Decision, error) {
	derived := domain.Recommend(answers)
	if explicit == "" {
		return derived, nil
	}
	dec, err := proposal.ParseDecision(explicit)
	if err != nil {
		return "", workflowerr.Validation(err, "")
	}
	if dec == proposal.DecisionApproved && derived != proposal.DecisionApproved {
		return "", workflowerr.Validation(domain.ErrRecommendationConf, "an answer is marked as not compliant")
	}
	return dec, nil
}

// Get returns the current questionnaire; reviewers see every authority,
// the owning village sees its own proposals.
func (u *Usecase) Get(ctx context.Context, a actor.Actor, proposalID string, authority proposal.Authority) (*QuestionnaireDTO, error) {
	if !authority.IsReviewer() {
		return nil, workflowerr.Validation(domain.ErrInvalidAuthority, "")
	}
	var dto QuestionnaireDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Proposals.GetByProposalID(ctx, proposalID)
		if err != nil {
			return err
		}
		if !a.Role.IsReviewer() && !a.Owns(p.VillageID) {
			return workflowerr.Authorization(proposal.ErrNotOwner, "")
		}
		q, err := r.Questionnaires.Get(ctx, p.ID, authority)
		if errors.Is(err, domain.ErrNotFound) {
			q = &domain.Questionnaire{Authority: authority, Status: domain.StatusDraft}
		} else if err != nil {
			return err
		}
		dto = toDTO(p.ProposalID, q)
		return nil
	})
	if err != nil {
		return nil, workflow.Classify(err, nil)
	}
	return &dto, nil
}
