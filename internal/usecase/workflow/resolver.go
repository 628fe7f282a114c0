package workflow

import (
	"time"

	"bankeu-backend/internal/domain/proposal"
)

// RetentionPolicy decides what a resubmission keeps and where it re-enters
// review, keyed by the authority that returned the proposal.
type RetentionPolicy struct {
	Name   string
	Origin proposal.Authority
	Target proposal.Stage
	// KeepDepartmentReview retains the department track and its audit so
	// reviewers can compare the old and new submissions.
	KeepDepartmentReview bool
	// Reopened lists the authorities whose questionnaires go back to draft.
	Reopened []proposal.Authority
}

var (
	policyRetainDepartment = RetentionPolicy{
		Name:                 "retain-department-review",
		Origin:               proposal.AuthoritySubdistrict,
		Target:               proposal.StagePendingSubdistrict,
		KeepDepartmentReview: true,
		Reopened:             []proposal.Authority{proposal.AuthoritySubdistrict, proposal.AuthorityTopBody},
	}
	policyFullRestartDepartment = RetentionPolicy{
		Name:     "full-restart",
		Origin:   proposal.AuthorityDepartment,
		Target:   proposal.StagePendingDepartment,
		Reopened: proposal.ReviewAuthorities,
	}
	policyFullRestartTopBody = RetentionPolicy{
		Name:     "full-restart",
		Origin:   proposal.AuthorityTopBody,
		Target:   proposal.StagePendingDepartment,
		Reopened: proposal.ReviewAuthorities,
	}
)

// RetentionPolicies maps a return origin to its resubmission policy.
var RetentionPolicies = map[proposal.Authority]RetentionPolicy{
	proposal.AuthorityDepartment:  policyFullRestartDepartment,
	proposal.AuthoritySubdistrict: policyRetainDepartment,
	proposal.AuthorityTopBody:     policyFullRestartTopBody,
}

// ParseHint validates a caller-supplied resubmission destination.
// Only department and subdistrict are re-entry points.
func ParseHint(s string) (proposal.Authority, error) {
	switch a := proposal.Authority(s); a {
	case "", proposal.AuthorityDepartment, proposal.AuthoritySubdistrict:
		return a, nil
	}
	return "", proposal.ErrInvalidDestination
}

// ResolveOrigin picks the authority a returned proposal goes back to:
// the hint, then the stored origin, then inference from the tracks.
func ResolveOrigin(p *proposal.Proposal, hint proposal.Authority) (proposal.Authority, error) {
	if p.Stage != proposal.StageReturned {
		return "", proposal.ErrNotReturned
	}
	if hint != "" {
		if _, err := ParseHint(string(hint)); err != nil {
			return "", err
		}
		if hint == proposal.AuthoritySubdistrict && p.DepartmentStatus != proposal.TrackApproved {
			return "", proposal.ErrInvalidDestination
		}
		return hint, nil
	}
	if p.ReturnOrigin != "" {
		return p.ReturnOrigin, nil
	}
	if o := InferOrigin(p); o != "" {
		return o, nil
	}
	return proposal.AuthorityDepartment, nil
}

// InferOrigin is the fallback for rows written before the origin was
// stored. Among tracks holding rejected or revision the latest decision
// wins; ties go to TopBody, then Subdistrict, then Department.
func InferOrigin(p *proposal.Proposal) proposal.Authority {
	type track struct {
		a  proposal.Authority
		st proposal.TrackStatus
		at *time.Time
	}
	tracks := []track{
		{proposal.AuthorityTopBody, p.TopBodyStatus, p.TopBodyAt},
		{proposal.AuthoritySubdistrict, p.SubdistrictStatus, p.SubdistrictAt},
		{proposal.AuthorityDepartment, p.DepartmentStatus, p.DepartmentAt},
	}
	var best *track
	for i := range tracks {
		t := &tracks[i]
		if !t.st.IsReturn() {
			continue
		}
		if best == nil || at(t.at).After(at(best.at)) {
			best = t
		}
	}
	if best == nil {
		return ""
	}
	return best.a
}

func at(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Resubmit re-enters review for a returned proposal and reports the
// policy that was applied. On error p is unchanged.
func Resubmit(p *proposal.Proposal, hint proposal.Authority, now time.Time) (RetentionPolicy, error) {
	origin, err := ResolveOrigin(p, hint)
	if err != nil {
		return RetentionPolicy{}, err
	}
	pol, ok := RetentionPolicies[origin]
	if !ok {
		return RetentionPolicy{}, proposal.ErrInvalidDestination
	}
	pol.apply(p, now)
	return pol, nil
}

func (pol RetentionPolicy) apply(p *proposal.Proposal, now time.Time) {
	clearSubdistrict(p)
	clearTopBody(p)

	if pol.KeepDepartmentReview {
		p.SubdistrictStatus = proposal.TrackPending
		p.SubmittedToSubdistrict = true
	} else {
		p.DepartmentStatus = proposal.TrackPending
		p.DepartmentBy, p.DepartmentAt, p.DepartmentNotes = nil, nil, nil
		p.SubmittedToSubdistrict = false
		p.SubmittedToDepartmentAt = &now
		// the stored reference copy is kept; only the pointer goes
		p.ReferenceFile, p.ReferenceAt = nil, nil
	}

	p.Status = proposal.TrackPending
	p.Stage = pol.Target
	p.ReturnOrigin = ""
}

func clearSubdistrict(p *proposal.Proposal) {
	p.SubdistrictStatus = proposal.TrackNull
	p.SubdistrictBy, p.SubdistrictAt, p.SubdistrictNotes = nil, nil, nil
}

func clearTopBody(p *proposal.Proposal) {
	p.TopBodyStatus = proposal.TrackNull
	p.TopBodyBy, p.TopBodyAt, p.TopBodyNotes = nil, nil, nil
}
