package workflow

import (
	"time"

	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/reviewer"
)

// Verdict is one reviewing authority's decision on the proposal it holds.
type Verdict struct {
	Authority proposal.Authority
	Decision  proposal.Decision
	ActorID   string
	Notes     string
	At        time.Time
	// Profile of the deciding reviewer; only consulted for a top-body approval.
	Profile *reviewer.Profile
}

// Effects are follow-ups the caller must run for an applied transition.
type Effects struct {
	MirrorRequested bool
}

// Submit moves a draft into department review.
func Submit(p *proposal.Proposal, now time.Time) error {
	if p.Stage != proposal.StageDraft {
		return proposal.ErrNotEditable
	}
	p.Stage = proposal.StagePendingDepartment
	p.Status = proposal.TrackPending
	p.DepartmentStatus = proposal.TrackPending
	p.SubmittedToDepartmentAt = &now
	return nil
}

// Apply runs one edge of the review table. On error p is unchanged.
func Apply(p *proposal.Proposal, v Verdict) (Effects, error) {
	var fx Effects

	holder := p.Stage.Holder()
	if holder == "" || holder != v.Authority {
		return fx, proposal.ErrWrongAuthority
	}
	if _, err := proposal.ParseDecision(string(v.Decision)); err != nil {
		return fx, err
	}
	if v.Authority == proposal.AuthorityTopBody && v.Decision == proposal.DecisionApproved && !v.Profile.Complete() {
		return fx, proposal.ErrProfileIncomplete
	}

	track := v.Decision.Track()
	stamp(p, v)

	switch v.Authority {
	case proposal.AuthorityDepartment:
		p.DepartmentStatus = track
		if v.Decision == proposal.DecisionApproved {
			p.SubmittedToSubdistrict = true
			p.SubdistrictStatus = proposal.TrackPending
			p.Stage = proposal.StagePendingSubdistrict
			fx.MirrorRequested = true
			return fx, nil
		}
		p.Status = track
		p.SubmittedToDepartmentAt = nil

	case proposal.AuthoritySubdistrict:
		p.SubdistrictStatus = track
		if v.Decision == proposal.DecisionApproved {
			p.TopBodyStatus = proposal.TrackPending
			p.Stage = proposal.StagePendingTopBody
			return fx, nil
		}
		p.Status = track
		p.SubmittedToSubdistrict = false
		p.SubmittedToDepartmentAt = nil

	case proposal.AuthorityTopBody:
		p.TopBodyStatus = track
		if v.Decision == proposal.DecisionApproved {
			p.Status = proposal.TrackVerified
			p.Stage = proposal.StageVerified
			return fx, nil
		}
		p.Status = track
	}

	p.Stage = proposal.StageReturned
	p.ReturnOrigin = v.Authority
	return fx, nil
}

// stamp writes the audit fields of the deciding authority.
func stamp(p *proposal.Proposal, v Verdict) {
	by, at := v.ActorID, v.At
	var notes *string
	if v.Notes != "" {
		n := v.Notes
		notes = &n
	}
	switch v.Authority {
	case proposal.AuthorityDepartment:
		p.DepartmentBy, p.DepartmentAt, p.DepartmentNotes = &by, &at, notes
	case proposal.AuthoritySubdistrict:
		p.SubdistrictBy, p.SubdistrictAt, p.SubdistrictNotes = &by, &at, notes
	case proposal.AuthorityTopBody:
		p.TopBodyBy, p.TopBodyAt, p.TopBodyNotes = &by, &at, notes
	}
}
