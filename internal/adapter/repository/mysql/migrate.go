package mysql

import (
	"bankeu-backend/internal/domain/mirrorjob"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/questionnaire"
	"bankeu-backend/internal/domain/reviewer"
	"bankeu-backend/internal/domain/setting"

	"gorm.io/gorm"
)

// Models lists every table owned by this service.
func Models() []any {
	return []any{
		&proposal.Proposal{},
		&questionnaire.Questionnaire{},
		&reviewer.Profile{},
		&setting.Setting{},
		&mirrorjob.Job{},
	}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
