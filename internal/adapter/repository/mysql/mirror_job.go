package mysql

import (
	"context"
	"errors"

	jobDomain "bankeu-backend/internal/domain/mirrorjob"

	"gorm.io/gorm"
)

type MirrorJobRepository struct{ db *gorm.DB }

func NewMirrorJobRepository(db *gorm.DB) *MirrorJobRepository { return &MirrorJobRepository{db: db} }

func (r *MirrorJobRepository) Create(ctx context.Context, j *jobDomain.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *MirrorJobRepository) GetByJobID(ctx context.Context, jobID string) (*jobDomain.Job, error) {
	var out jobDomain.Job
	res := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, jobDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *MirrorJobRepository) ListPending(ctx context.Context, maxAttempts, limit int) ([]*jobDomain.Job, error) {
	var out []*jobDomain.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", jobDomain.StatusPending, maxAttempts).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *MirrorJobRepository) Save(ctx context.Context, j *jobDomain.Job) error {
	return r.db.WithContext(ctx).Save(j).Error
}
