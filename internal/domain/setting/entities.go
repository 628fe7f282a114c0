package setting

import (
	"context"
	"errors"
	"time"
)

// SubmissionKey names the single global submission toggle.
const SubmissionKey = "bankeu_submission"

var ErrNotFound = errors.New("setting not found")

// Table: bankeu_settings
type Setting struct {
	Key       string    `gorm:"primaryKey;column:setting_key;size:64"`
	Open      bool      `gorm:"column:is_open;not null"`
	UpdatedBy string    `gorm:"column:updated_by;size:32"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "bankeu_settings" }

type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, s *Setting) error
}
