package mirrorjob

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("mirror job not found")

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Job is an outbox row asking for the working file of a proposal to be
// copied into the reference store. It is written in the same transaction
// as the department approval.
// Table: bankeu_mirror_jobs
type Job struct {
	ID          uint64     `gorm:"primaryKey;column:id"`
	JobID       string     `gorm:"column:job_id;size:32;uniqueIndex:ux_mirror_jobs_job_id"`
	ProposalID  string     `gorm:"column:proposal_id;size:32;not null;index"`
	FileName    string     `gorm:"column:file_name;size:255;not null"`
	Status      Status     `gorm:"column:status;size:16;not null;index"`
	Attempts    int        `gorm:"column:attempts;not null;default:0"`
	LastError   string     `gorm:"column:last_error;type:text"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Job) TableName() string { return "bankeu_mirror_jobs" }

type Repository interface {
	Create(ctx context.Context, j *Job) error
	GetByJobID(ctx context.Context, jobID string) (*Job, error)
	// ListPending returns pending jobs with fewer than maxAttempts attempts, oldest first.
	ListPending(ctx context.Context, maxAttempts, limit int) ([]*Job, error)
	Save(ctx context.Context, j *Job) error
}
