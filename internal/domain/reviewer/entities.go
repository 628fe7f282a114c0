package reviewer

import (
	"context"
	"errors"
	"strings"
	"time"

	"bankeu-backend/internal/domain/proposal"
)

var ErrNotFound = errors.New("reviewer profile not found")

// Profile is the delegated credential a reviewer signs decisions with.
// Table: bankeu_reviewer_profiles
type Profile struct {
	ID            uint64             `gorm:"primaryKey;column:id" json:"-"`
	ActorID       string             `gorm:"column:actor_id;size:32;not null;uniqueIndex:ux_reviewer_profiles_actor" json:"actor_id"`
	Authority     proposal.Authority `gorm:"column:authority;size:16;not null" json:"authority"`
	Name          string             `gorm:"column:name;size:255" json:"name"`
	RoleTitle     string             `gorm:"column:role_title;size:255" json:"role_title"`
	SignatureFile string             `gorm:"column:signature_file;size:255" json:"signature_file"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "bankeu_reviewer_profiles" }

// Complete reports whether every credential field is filled in.
func (p *Profile) Complete() bool {
	return p != nil &&
		strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.RoleTitle) != "" &&
		strings.TrimSpace(p.SignatureFile) != ""
}

type Repository interface {
	GetByActorID(ctx context.Context, actorID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}
