package mysql

import (
	"context"
	"errors"

	proposalDomain "bankeu-backend/internal/domain/proposal"
	qDomain "bankeu-backend/internal/domain/questionnaire"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionnaireRepository struct{ db *gorm.DB }

func NewQuestionnaireRepository(db *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

func (r *QuestionnaireRepository) Upsert(ctx context.Context, q *qDomain.Questionnaire) error {
	// conflict target is the natural key, never the surrogate id
	row := *q
	row.ID = 0
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "proposal_id"}, {Name: "authority"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answers", "remark", "status", "recommendation", "reviewer_id", "submitted_at", "updated_at",
		}),
	}).Create(&row).Error
}

func (r *QuestionnaireRepository) Get(ctx context.Context, proposalID uint64, authority proposalDomain.Authority) (*qDomain.Questionnaire, error) {
	var out qDomain.Questionnaire
	res := r.db.WithContext(ctx).
		Where("proposal_id = ? AND authority = ?", proposalID, authority).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, qDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *QuestionnaireRepository) ResetForProposal(ctx context.Context, proposalID uint64, authorities []proposalDomain.Authority) error {
	if len(authorities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&qDomain.Questionnaire{}).
		Where("proposal_id = ? AND authority IN ?", proposalID, authorities).
		Updates(map[string]any{"status": qDomain.StatusDraft, "submitted_at": nil}).Error
}
