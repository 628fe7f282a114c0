package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/reviewer"
	"bankeu-backend/internal/domain/uow"
	"bankeu-backend/internal/domain/workflowerr"
	"bankeu-backend/internal/infrastructure/filestore"
	"bankeu-backend/internal/infrastructure/logging"
	"bankeu-backend/internal/infrastructure/metrics"
	"bankeu-backend/internal/usecase/mirror"
	"bankeu-backend/pkg/id"
)

// Gate is consulted before any submit or resubmit transaction.
type Gate interface {
	Check(ctx context.Context) error
}

// Mirror processes an outbox job after the approval has committed.
type Mirror interface {
	Process(ctx context.Context, jobID string) mirror.Outcome
}

type Usecase struct {
	proposals  proposal.Repository
	uow        uow.UnitOfWork
	gate       Gate
	mirror     Mirror // optional; pending jobs are left to the drainer
	metrics    *metrics.Metrics
	budgetYear int
	now        func() time.Time
}

func NewUsecase(proposals proposal.Repository, tx uow.UnitOfWork, gate Gate, m Mirror, mt *metrics.Metrics, budgetYear int) *Usecase {
	if budgetYear == 0 {
		budgetYear = time.Now().Year()
	}
	return &Usecase{
		proposals:  proposals,
		uow:        tx,
		gate:       gate,
		mirror:     m,
		metrics:    mt,
		budgetYear: budgetYear,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) BudgetYear() int { return u.budgetYear }

func ownVillage(a actor.Actor, villageID string) error {
	if !a.Owns(villageID) {
		return workflowerr.Authorization(proposal.ErrNotOwner, "village actor required for this village")
	}
	return nil
}

func (u *Usecase) CreateProposal(ctx context.Context, a actor.Actor, in CreateProposalInput) (*ProposalDTO, error) {
	if in.VillageID == "" {
		in.VillageID = a.VillageID
	}
	if err := ownVillage(a, in.VillageID); err != nil {
		return nil, err
	}
	if in.BudgetYear == 0 {
		in.BudgetYear = u.budgetYear
	}
	if err := validateContent(in.Title, in.ActivityIDs, in.BudgetAmount); err != nil {
		return nil, err
	}
	file := ""
	if in.WorkingFile != "" {
		n, err := filestore.CleanName(in.WorkingFile)
		if err != nil {
			return nil, workflowerr.Validation(proposal.ErrInvalidProposalInput, "working_file")
		}
		file = n
	}

	p := &proposal.Proposal{
		ProposalID:      id.NewID32(),
		VillageID:       in.VillageID,
		BudgetYear:      in.BudgetYear,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Location:        in.Location,
		Volume:          in.Volume,
		BudgetAmount:    in.BudgetAmount,
		WorkingFile:     file,
		WorkingFileSize: in.WorkingFileSize,
		Stage:           proposal.StageDraft,
		Status:          proposal.TrackDraft,
		CreatedBy:       a.ID,
	}
	p.SetActivities(in.ActivityIDs)
	if err := u.proposals.Create(ctx, p); err != nil {
		return nil, err
	}
	dto := ToDTO(p)
	return &dto, nil
}

func validateContent(title string, activities []string, amount float64) error {
	switch {
	case strings.TrimSpace(title) == "":
		return workflowerr.Validation(proposal.ErrInvalidProposalInput, "title is required")
	case len(activities) == 0:
		return workflowerr.Validation(proposal.ErrInvalidProposalInput, "at least one activity is required")
	case amount < 0:
		return workflowerr.Validation(proposal.ErrInvalidProposalInput, "budget amount must not be negative")
	}
	for _, a := range activities {
		if strings.TrimSpace(a) == "" {
			return workflowerr.Validation(proposal.ErrInvalidProposalInput, "activity id must not be empty")
		}
	}
	return nil
}

// canRead: reviewers see every proposal, villages only their own.
func canRead(a actor.Actor, p *proposal.Proposal) bool {
	return a.Role.IsReviewer() || a.Owns(p.VillageID)
}

func (u *Usecase) GetProposal(ctx context.Context, a actor.Actor, proposalID string) (*ProposalDTO, error) {
	p, err := u.proposals.GetByProposalID(ctx, proposalID)
	if err != nil {
		return nil, Classify(err, nil)
	}
	if !canRead(a, p) {
		return nil, workflowerr.Authorization(proposal.ErrNotOwner, "")
	}
	dto := ToDTO(p)
	return &dto, nil
}

func (u *Usecase) ListProposals(ctx context.Context, a actor.Actor, villageID string, f proposal.ListFilter) ([]ProposalDTO, error) {
	if a.IsVillage() {
		if villageID == "" {
			villageID = a.VillageID
		}
		if err := ownVillage(a, villageID); err != nil {
			return nil, err
		}
	} else if !a.Role.IsReviewer() {
		return nil, workflowerr.Authorization(proposal.ErrNotOwner, "")
	}
	if villageID == "" {
		return nil, workflowerr.Validation(proposal.ErrInvalidProposalInput, "village_id is required")
	}
	ps, err := u.proposals.ListByVillage(ctx, villageID, f)
	if err != nil {
		return nil, err
	}
	out := make([]ProposalDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToDTO(p))
	}
	return out, nil
}

// UpdateContent edits or re-uploads while the village holds the proposal.
func (u *Usecase) UpdateContent(ctx context.Context, a actor.Actor, in UpdateContentInput) (*ProposalDTO, error) {
	if err := validateContent(in.Title, in.ActivityIDs, in.BudgetAmount); err != nil {
		return nil, err
	}
	var dto ProposalDTO
	err := u.uow.WithinProposalTx(ctx, in.ProposalID, func(r uow.Repos, p *proposal.Proposal) error {
		if err := ownVillage(a, p.VillageID); err != nil {
			return err
		}
		if !p.Editable() {
			return Classify(proposal.ErrNotEditable, p)
		}
		p.SetActivities(in.ActivityIDs)
		p.Title = strings.TrimSpace(in.Title)
		p.Description = in.Description
		p.Location = in.Location
		p.Volume = in.Volume
		p.BudgetAmount = in.BudgetAmount
		if in.WorkingFile != "" {
			n, err := filestore.CleanName(in.WorkingFile)
			if err != nil {
				return workflowerr.Validation(proposal.ErrInvalidProposalInput, "working_file")
			}
			p.WorkingFile = n
			p.WorkingFileSize = in.WorkingFileSize
		}
		if err := u.save(ctx, r, p); err != nil {
			return err
		}
		dto = ToDTO(p)
		return nil
	})
	if err != nil {
		return nil, Classify(err, nil)
	}
	return &dto, nil
}

func (u *Usecase) DeleteProposal(ctx context.Context, a actor.Actor, proposalID string) error {
	err := u.uow.WithinProposalTx(ctx, proposalID, func(r uow.Repos, p *proposal.Proposal) error {
		if err := ownVillage(a, p.VillageID); err != nil {
			return err
		}
		if !p.Deletable() {
			return Classify(proposal.ErrNotDeletable, p)
		}
		return r.Proposals.Delete(ctx, p)
	})
	return Classify(err, nil)
}

// save checks the invariants and writes p with a version check.
func (u *Usecase) save(ctx context.Context, r uow.Repos, p *proposal.Proposal) error {
	if err := p.CheckInvariants(); err != nil {
		return Classify(err, p)
	}
	if err := r.Proposals.Update(ctx, p); err != nil {
		return Classify(err, p)
	}
	return nil
}

// SubmitInitial sends every draft of the village for the active budget
// year into department review.
func (u *Usecase) SubmitInitial(ctx context.Context, a actor.Actor, villageID string) (*BatchDTO, error) {
	if err := ownVillage(a, villageID); err != nil {
		return nil, err
	}
	if err := u.checkGate(ctx); err != nil {
		return nil, err
	}

	out := &BatchDTO{VillageID: villageID}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ps, err := r.Proposals.ListForUpdate(ctx, villageID, proposal.ListFilter{Stage: proposal.StageDraft, BudgetYear: u.budgetYear})
		if err != nil {
			return err
		}
		if len(ps) == 0 {
			return Classify(proposal.ErrNoEligibleProposals, nil)
		}
		now := u.now()
		for _, p := range ps {
			if err := Submit(p, now); err != nil {
				return Classify(err, p)
			}
			if err := u.save(ctx, r, p); err != nil {
				return err
			}
			out.Proposals = append(out.Proposals, ToDTO(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Count = len(out.Proposals)
	logging.Get().Info().Str("village_id", villageID).Int("count", out.Count).Msg("workflow: submitted")
	return out, nil
}

func (u *Usecase) checkGate(ctx context.Context) error {
	err := u.gate.Check(ctx)
	if workflowerr.KindOf(err) == workflowerr.KindStateConflict {
		u.metrics.IncGateRejection()
	}
	return err
}

// Resubmit routes every returned proposal of the village back into review.
// hint, when set, overrides the stored origin.
func (u *Usecase) Resubmit(ctx context.Context, a actor.Actor, villageID string, hint string) (*BatchDTO, error) {
	if err := ownVillage(a, villageID); err != nil {
		return nil, err
	}
	if err := u.checkGate(ctx); err != nil {
		return nil, err
	}
	dest, err := ParseHint(hint)
	if err != nil {
		return nil, Classify(err, nil)
	}

	out := &BatchDTO{VillageID: villageID, Policies: map[string]string{}}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ps, err := r.Proposals.ListForUpdate(ctx, villageID, proposal.ListFilter{Stage: proposal.StageReturned})
		if err != nil {
			return err
		}
		if len(ps) == 0 {
			return Classify(proposal.ErrNoEligibleProposals, nil)
		}
		now := u.now()
		for _, p := range ps {
			pol, err := Resubmit(p, dest, now)
			if err != nil {
				return Classify(err, p)
			}
			if err := u.save(ctx, r, p); err != nil {
				return err
			}
			if err := r.Questionnaires.ResetForProposal(ctx, p.ID, pol.Reopened); err != nil {
				return err
			}
			out.Proposals = append(out.Proposals, ToDTO(p))
			out.Policies[p.ProposalID] = pol.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Count = len(out.Proposals)
	logging.Get().Info().Str("village_id", villageID).Int("count", out.Count).Str("hint", hint).Msg("workflow: resubmitted")
	return out, nil
}

// RecordDecision applies one review decision outside the questionnaire path.
func (u *Usecase) RecordDecision(ctx context.Context, a actor.Actor, in DecisionInput) (*ProposalDTO, error) {
	if err := authorizeReviewer(a, in.Authority); err != nil {
		return nil, err
	}
	dec, err := proposal.ParseDecision(in.Decision)
	if err != nil {
		return nil, Classify(err, nil)
	}

	var dto ProposalDTO
	var jobID string
	err = u.uow.WithinProposalTx(ctx, in.ProposalID, func(r uow.Repos, p *proposal.Proposal) error {
		var err error
		jobID, err = u.Decide(ctx, r, p, a, in.Authority, dec, in.Notes)
		if err != nil {
			return err
		}
		dto = ToDTO(p)
		return nil
	})
	if err != nil {
		return nil, Classify(err, nil)
	}
	return u.AfterCommit(ctx, jobID, dto), nil
}

func authorizeReviewer(a actor.Actor, authority proposal.Authority) error {
	if !authority.IsReviewer() {
		return workflowerr.Validation(proposal.ErrWrongAuthority, fmt.Sprintf("%q is not a reviewing authority", authority))
	}
	if a.Role != authority {
		return workflowerr.Authorization(proposal.ErrNotOwner, "actor may only decide for its own authority")
	}
	return nil
}

// Decide applies a decision inside an open unit of work and returns the
// mirror job id written for a department approval, if any. The caller
// must pass that id to AfterCommit once the transaction has committed.
func (u *Usecase) Decide(ctx context.Context, r uow.Repos, p *proposal.Proposal, a actor.Actor, authority proposal.Authority, dec proposal.Decision, notes string) (string, error) {
	v := Verdict{Authority: authority, Decision: dec, ActorID: a.ID, Notes: notes, At: u.now()}
	if authority == proposal.AuthorityTopBody && dec == proposal.DecisionApproved {
		prof, err := r.Reviewers.GetByActorID(ctx, a.ID)
		if err != nil && !errors.Is(err, reviewer.ErrNotFound) {
			return "", err
		}
		v.Profile = prof
	}

	fx, err := Apply(p, v)
	if err != nil {
		return "", Classify(err, p)
	}
	if err := u.save(ctx, r, p); err != nil {
		return "", err
	}

	var jobID string
	if fx.MirrorRequested && p.WorkingFile != "" {
		job := mirror.NewJob(p)
		if err := r.MirrorJobs.Create(ctx, job); err != nil {
			return "", err
		}
		jobID = job.JobID
	}
	u.metrics.IncTransition(string(authority), string(dec))
	logging.Get().Info().
		Str("proposal_id", p.ProposalID).
		Str("authority", string(authority)).
		Str("decision", string(dec)).
		Str("stage", string(p.Stage)).
		Msg("workflow: decision applied")
	return jobID, nil
}

// AfterCommit runs the mirror for jobID and returns dto refreshed with
// the reference pointer when the copy succeeded. Mirror failures are
// never returned.
func (u *Usecase) AfterCommit(ctx context.Context, jobID string, dto ProposalDTO) *ProposalDTO {
	if jobID == "" || u.mirror == nil {
		return &dto
	}
	if u.mirror.Process(ctx, jobID) != mirror.OutcomeDone {
		return &dto
	}
	p, err := u.proposals.GetByProposalID(ctx, dto.ProposalID)
	if err != nil {
		return &dto
	}
	fresh := ToDTO(p)
	return &fresh
}
