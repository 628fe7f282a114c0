package mysql

import (
	"context"
	"errors"

	settingDomain "bankeu-backend/internal/domain/setting"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) *SettingRepository { return &SettingRepository{db: db} }

func (r *SettingRepository) Get(ctx context.Context, key string) (*settingDomain.Setting, error) {
	var out settingDomain.Setting
	res := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, settingDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, s *settingDomain.Setting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_open", "updated_by", "updated_at"}),
	}).Create(s).Error
}
