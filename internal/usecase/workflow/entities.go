package workflow

import (
	"time"

	"bankeu-backend/internal/domain/proposal"
)

type CreateProposalInput struct {
	VillageID       string
	ActivityIDs     []string
	BudgetYear      int // 0: active cycle
	Title           string
	Description     string
	Location        string
	Volume          string
	BudgetAmount    float64
	WorkingFile     string
	WorkingFileSize int64
}

type UpdateContentInput struct {
	ProposalID      string
	ActivityIDs     []string
	Title           string
	Description     string
	Location        string
	Volume          string
	BudgetAmount    float64
	WorkingFile     string // empty: keep current file
	WorkingFileSize int64
}

type DecisionInput struct {
	ProposalID string
	Authority  proposal.Authority
	Decision   string
	Notes      string
}

type ProposalDTO struct {
	ProposalID              string     `json:"proposal_id"`
	VillageID               string     `json:"village_id"`
	ActivityIDs             []string   `json:"activity_ids"`
	BudgetYear              int        `json:"budget_year"`
	Title                   string     `json:"title"`
	Description             string     `json:"description,omitempty"`
	Location                string     `json:"location,omitempty"`
	Volume                  string     `json:"volume,omitempty"`
	BudgetAmount            float64    `json:"budget_amount"`
	WorkingFile             string     `json:"working_file,omitempty"`
	FileSize                int64      `json:"working_file_size,omitempty"`
	Stage                   string     `json:"stage"`
	ReturnOrigin            string     `json:"return_origin,omitempty"`
	Version                 uint64     `json:"version"`
	Status                  string     `json:"status"`
	Department              TrackDTO   `json:"department"`
	Subdistrict             TrackDTO   `json:"subdistrict"`
	TopBody                 TrackDTO   `json:"topbody"`
	SubmittedToDepartmentAt *time.Time `json:"submitted_to_department_at,omitempty"`
	SubmittedToSubdistrict  bool       `json:"submitted_to_subdistrict"`
	ReferenceFile           *string    `json:"reference_file,omitempty"`
	ReferenceAt             *time.Time `json:"reference_at,omitempty"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

type TrackDTO struct {
	Status string     `json:"status,omitempty"`
	By     *string    `json:"by,omitempty"`
	At     *time.Time `json:"at,omitempty"`
	Notes  *string    `json:"notes,omitempty"`
}

// BatchDTO is the result of a village-wide submit or resubmit.
type BatchDTO struct {
	VillageID string        `json:"village_id"`
	Count     int           `json:"count"`
	Proposals []ProposalDTO `json:"proposals"`
	// Policies maps proposal id to the retention policy applied on resubmit.
	Policies map[string]string `json:"policies,omitempty"`
}

func ToDTO(p *proposal.Proposal) ProposalDTO {
	return ProposalDTO{
		ProposalID:              p.ProposalID,
		VillageID:               p.VillageID,
		ActivityIDs:             p.Activities(),
		BudgetYear:              p.BudgetYear,
		Title:                   p.Title,
		Description:             p.Description,
		Location:                p.Location,
		Volume:                  p.Volume,
		BudgetAmount:            p.BudgetAmount,
		WorkingFile:             p.WorkingFile,
		FileSize:                p.WorkingFileSize,
		Stage:                   string(p.Stage),
		ReturnOrigin:            string(p.ReturnOrigin),
		Version:                 p.Version,
		Status:                  string(p.Status),
		Department:              TrackDTO{string(p.DepartmentStatus), p.DepartmentBy, p.DepartmentAt, p.DepartmentNotes},
		Subdistrict:             TrackDTO{string(p.SubdistrictStatus), p.SubdistrictBy, p.SubdistrictAt, p.SubdistrictNotes},
		TopBody:                 TrackDTO{string(p.TopBodyStatus), p.TopBodyBy, p.TopBodyAt, p.TopBodyNotes},
		SubmittedToDepartmentAt: p.SubmittedToDepartmentAt,
		SubmittedToSubdistrict:  p.SubmittedToSubdistrict,
		ReferenceFile:           p.ReferenceFile,
		ReferenceAt:             p.ReferenceAt,
		UpdatedAt:               p.UpdatedAt,
	}
}
