package mysql

import (
	"context"
	"errors"

	reviewerDomain "bankeu-backend/internal/domain/reviewer"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewerRepository struct{ db *gorm.DB }

func NewReviewerRepository(db *gorm.DB) *ReviewerRepository { return &ReviewerRepository{db: db} }

func (r *ReviewerRepository) GetByActorID(ctx context.Context, actorID string) (*reviewerDomain.Profile, error) {
	var out reviewerDomain.Profile
	res := r.db.WithContext(ctx).Where("actor_id = ?", actorID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, reviewerDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ReviewerRepository) Upsert(ctx context.Context, p *reviewerDomain.Profile) error {
	row := *p
	row.ID = 0
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"authority", "name", "role_title", "signature_file", "updated_at"}),
	}).Create(&row).Error
}
