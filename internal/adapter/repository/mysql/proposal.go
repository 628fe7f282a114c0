package mysql

import (
	"context"
	"errors"
	"time"

	proposalDomain "bankeu-backend/internal/domain/proposal"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProposalRepository struct{ db *gorm.DB }

func NewProposalRepository(db *gorm.DB) *ProposalRepository { return &ProposalRepository{db: db} }

func (r *ProposalRepository) Create(ctx context.Context, p *proposalDomain.Proposal) error {
	if p.Version == 0 {
		p.Version = 1
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProposalRepository) GetByProposalID(ctx context.Context, proposalID string) (*proposalDomain.Proposal, error) {
	return r.first(r.db.WithContext(ctx), proposalID)
}

func (r *ProposalRepository) GetByProposalIDForUpdate(ctx context.Context, proposalID string) (*proposalDomain.Proposal, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), proposalID)
}

func (r *ProposalRepository) first(q *gorm.DB, proposalID string) (*proposalDomain.Proposal, error) {
	var out proposalDomain.Proposal
	res := q.Where("proposal_id = ?", proposalID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, proposalDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ProposalRepository) ListByVillage(ctx context.Context, villageID string, f proposalDomain.ListFilter) ([]*proposalDomain.Proposal, error) {
	return r.list(r.db.WithContext(ctx), villageID, f)
}

func (r *ProposalRepository) ListForUpdate(ctx context.Context, villageID string, f proposalDomain.ListFilter) ([]*proposalDomain.Proposal, error) {
	return r.list(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), villageID, f)
}

func (r *ProposalRepository) list(q *gorm.DB, villageID string, f proposalDomain.ListFilter) ([]*proposalDomain.Proposal, error) {
	q = q.Where("village_id = ?", villageID)
	if f.Stage != "" {
		q = q.Where("stage = ?", f.Stage)
	}
	if f.BudgetYear != 0 {
		q = q.Where("budget_year = ?", f.BudgetYear)
	}
	var out []*proposalDomain.Proposal
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update is a compare-and-swap on version. Select("*") makes gorm write
// zero values too, so cleared tracks and false flags are persisted.
func (r *ProposalRepository) Update(ctx context.Context, p *proposalDomain.Proposal) error {
	expected := p.Version
	p.Version = expected + 1
	res := r.db.WithContext(ctx).
		Model(&proposalDomain.Proposal{}).
		Where("id = ? AND version = ?", p.ID, expected).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		p.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		p.Version = expected
		return proposalDomain.ErrStaleProposal
	}
	return nil
}

func (r *ProposalRepository) SetReference(ctx context.Context, id uint64, file string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&proposalDomain.Proposal{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"reference_file": file, "reference_at": at.UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return proposalDomain.ErrNotFound
	}
	return nil
}

func (r *ProposalRepository) Delete(ctx context.Context, p *proposalDomain.Proposal) error {
	return r.db.WithContext(ctx).Delete(p).Error
}
