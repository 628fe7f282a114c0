package mysql

import (
	"testing"
	"time"

	proposalDomain "bankeu-backend/internal/domain/proposal"
	"bankeu-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with every service table.
// One connection only: each new sqlite :memory: connection is a new database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeProposal(villageID string, year int) *proposalDomain.Proposal {
	p := &proposalDomain.Proposal{
		ProposalID:      id.NewID32(),
		VillageID:       villageID,
		BudgetYear:      year,
		Title:           "Village road paving",
		Location:        "Dusun Krajan",
		Volume:          "350 m",
		BudgetAmount:    150_000_000,
		WorkingFile:     "rab-" + villageID + ".pdf",
		WorkingFileSize: 2048,
		Stage:           proposalDomain.StageDraft,
		Status:          proposalDomain.TrackDraft,
		CreatedBy:       "actor-village",
	}
	p.SetActivities([]string{"road"})
	return p
}

func ptrTime(t time.Time) *time.Time { return &t }
