package proposal

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("proposal not found")
	ErrStaleProposal        = errors.New("proposal was modified concurrently")
	ErrNoEligibleProposals  = errors.New("no eligible proposals")
	ErrWrongAuthority       = errors.New("wrong authority for current state")
	ErrInvalidDecision      = errors.New("invalid decision")
	ErrProfileIncomplete    = errors.New("reviewer profile incomplete")
	ErrNotOwner             = errors.New("actor does not own this proposal")
	ErrNotEditable          = errors.New("proposal is not editable in its current state")
	ErrNotDeletable         = errors.New("proposal cannot be deleted in its current state")
	ErrNotReturned          = errors.New("proposal is not returned to the village")
	ErrInvalidDestination   = errors.New("invalid resubmission destination")
	ErrInvariantViolation   = errors.New("proposal invariant violated")
	ErrInvalidProposalInput = errors.New("invalid proposal input")
)

// Authority is one of the four parties that can hold a proposal.
type Authority string

const (
	AuthorityVillage     Authority = "village"
	AuthorityDepartment  Authority = "department"
	AuthoritySubdistrict Authority = "subdistrict"
	AuthorityTopBody     Authority = "topbody"
)

// Reviewing authorities in review order.
var ReviewAuthorities = []Authority{AuthorityDepartment, AuthoritySubdistrict, AuthorityTopBody}

func (a Authority) IsReviewer() bool {
	switch a {
	case AuthorityDepartment, AuthoritySubdistrict, AuthorityTopBody:
		return true
	}
	return false
}

// Stage is the canonical workflow position. Transitions are decided on
// Stage (+ ReturnOrigin) only; the track columns are derived bookkeeping.
type Stage string

const (
	StageDraft              Stage = "draft"
	StagePendingDepartment  Stage = "pending_department"
	StagePendingSubdistrict Stage = "pending_subdistrict"
	StagePendingTopBody     Stage = "pending_topbody"
	StageVerified           Stage = "verified"
	StageReturned           Stage = "returned"
)

// Holder returns the reviewing authority that currently holds a proposal in
// stage s, or "" when no reviewer does.
func (s Stage) Holder() Authority {
	switch s {
	case StagePendingDepartment:
		return AuthorityDepartment
	case StagePendingSubdistrict:
		return AuthoritySubdistrict
	case StagePendingTopBody:
		return AuthorityTopBody
	}
	return ""
}

// TrackStatus is the value of one status track. TrackNull is stored as SQL NULL.
type TrackStatus string

const (
	TrackNull     TrackStatus = ""
	TrackDraft    TrackStatus = "draft"
	TrackPending  TrackStatus = "pending"
	TrackInReview TrackStatus = "in_review"
	TrackApproved TrackStatus = "approved"
	TrackRejected TrackStatus = "rejected"
	TrackRevision TrackStatus = "revision"
	TrackVerified TrackStatus = "verified"
)

func (t TrackStatus) Value() (driver.Value, error) {
	if t == TrackNull {
		return nil, nil
	}
	return string(t), nil
}

func (t *TrackStatus) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*t = TrackNull
	case string:
		*t = TrackStatus(x)
	case []byte:
		*t = TrackStatus(x)
	default:
		return fmt.Errorf("track status: unsupported scan type %T", v)
	}
	return nil
}

// IsReturn reports whether t sends the proposal back to the village.
func (t TrackStatus) IsReturn() bool { return t == TrackRejected || t == TrackRevision }

// Decision is a reviewing authority's verdict.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionRevision Decision = "revision"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionApproved, DecisionRejected, DecisionRevision:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

func (d Decision) Track() TrackStatus { return TrackStatus(d) }

// Table: bankeu_proposals
type Proposal struct {
	ID          uint64         `gorm:"primaryKey;column:id" json:"-"`
	ProposalID  string         `gorm:"column:proposal_id;size:32;uniqueIndex:ux_proposals_proposal_id" json:"proposal_id"`
	VillageID   string         `gorm:"column:village_id;size:32;index:idx_proposals_village_stage" json:"village_id"`
	ActivityIDs datatypes.JSON `gorm:"column:activity_ids;not null" json:"activity_ids"`
	BudgetYear  int            `gorm:"column:budget_year;index:idx_proposals_village_stage" json:"budget_year"`

	Title           string  `gorm:"column:title;size:255" json:"title"`
	Description     string  `gorm:"column:description;type:text" json:"description"`
	Location        string  `gorm:"column:location;size:255" json:"location"`
	Volume          string  `gorm:"column:volume;size:100" json:"volume"`
	BudgetAmount    float64 `gorm:"column:budget_amount;type:decimal(18,2)" json:"budget_amount"`
	WorkingFile     string  `gorm:"column:working_file;size:255" json:"working_file"`
	WorkingFileSize int64   `gorm:"column:working_file_size" json:"working_file_size"`

	Stage        Stage     `gorm:"column:stage;size:24;not null;index:idx_proposals_village_stage" json:"stage"`
	ReturnOrigin Authority `gorm:"column:return_origin;size:16" json:"return_origin,omitempty"`
	Version      uint64    `gorm:"column:version;not null;default:1" json:"version"`

	Status            TrackStatus `gorm:"column:status;size:16" json:"status"`
	DepartmentStatus  TrackStatus `gorm:"column:department_status;size:16" json:"department_status"`
	SubdistrictStatus TrackStatus `gorm:"column:subdistrict_status;size:16" json:"subdistrict_status"`
	TopBodyStatus     TrackStatus `gorm:"column:topbody_status;size:16" json:"topbody_status"`

	DepartmentBy     *string    `gorm:"column:department_by;size:32" json:"department_by,omitempty"`
	DepartmentAt     *time.Time `gorm:"column:department_at" json:"department_at,omitempty"`
	DepartmentNotes  *string    `gorm:"column:department_notes;type:text" json:"department_notes,omitempty"`
	SubdistrictBy    *string    `gorm:"column:subdistrict_by;size:32" json:"subdistrict_by,omitempty"`
	SubdistrictAt    *time.Time `gorm:"column:subdistrict_at" json:"subdistrict_at,omitempty"`
	SubdistrictNotes *string    `gorm:"column:subdistrict_notes;type:text" json:"subdistrict_notes,omitempty"`
	TopBodyBy        *string    `gorm:"column:topbody_by;size:32" json:"topbody_by,omitempty"`
	TopBodyAt        *time.Time `gorm:"column:topbody_at" json:"topbody_at,omitempty"`
	TopBodyNotes     *string    `gorm:"column:topbody_notes;type:text" json:"topbody_notes,omitempty"`

	SubmittedToDepartmentAt *time.Time `gorm:"column:submitted_to_department_at" json:"submitted_to_department_at,omitempty"`
	SubmittedToSubdistrict  bool       `gorm:"column:submitted_to_subdistrict;not null;default:false" json:"submitted_to_subdistrict"`

	ReferenceFile *string    `gorm:"column:reference_file;size:255" json:"reference_file,omitempty"`
	ReferenceAt   *time.Time `gorm:"column:reference_at" json:"reference_at,omitempty"`

	CreatedBy string         `gorm:"column:created_by;size:32" json:"created_by"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Proposal) TableName() string { return "bankeu_proposals" }

func (p *Proposal) Activities() []string {
	var out []string
	if len(p.ActivityIDs) == 0 {
		return out
	}
	_ = json.Unmarshal(p.ActivityIDs, &out)
	return out
}

func (p *Proposal) SetActivities(ids []string) {
	b, _ := json.Marshal(ids)
	p.ActivityIDs = datatypes.JSON(b)
}

// CheckInvariants is run before every versioned write.
func (p *Proposal) CheckInvariants() error {
	if p.SubmittedToSubdistrict && p.SubdistrictStatus == TrackNull {
		return fmt.Errorf("%w: submitted_to_subdistrict set while subdistrict status is null", ErrInvariantViolation)
	}
	if p.Stage == StageReturned && p.ReturnOrigin == "" {
		return fmt.Errorf("%w: returned without origin", ErrInvariantViolation)
	}
	if p.Stage != StageReturned && p.ReturnOrigin != "" {
		return fmt.Errorf("%w: origin set outside returned stage", ErrInvariantViolation)
	}
	if p.ReferenceFile != nil && p.DepartmentStatus != TrackApproved {
		return fmt.Errorf("%w: reference file without department approval", ErrInvariantViolation)
	}
	return nil
}

// Deletable: a draft, or a returned proposal the department has not approved.
func (p *Proposal) Deletable() bool {
	switch p.Stage {
	case StageDraft:
		return true
	case StageReturned:
		return p.DepartmentStatus != TrackApproved
	}
	return false
}

// Editable by the owning village: only while it holds the proposal.
func (p *Proposal) Editable() bool {
	return p.Stage == StageDraft || p.Stage == StageReturned
}

// ListFilter narrows ListByVillage. Zero values mean "any".
type ListFilter struct {
	Stage      Stage
	BudgetYear int
}
