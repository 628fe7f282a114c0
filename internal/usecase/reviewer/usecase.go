package reviewer

import (
	"context"
	"errors"
	"strings"

	"bankeu-backend/internal/domain/actor"
	domain "bankeu-backend/internal/domain/reviewer"
	"bankeu-backend/internal/domain/workflowerr"
	"bankeu-backend/internal/infrastructure/logging"
)

var ErrNotReviewer = errors.New("only reviewing authorities keep a profile")

type ProfileInput struct {
	Name          string
	RoleTitle     string
	SignatureFile string
}

type ProfileDTO struct {
	ActorID       string `json:"actor_id"`
	Authority     string `json:"authority"`
	Name          string `json:"name"`
	RoleTitle     string `json:"role_title"`
	SignatureFile string `json:"signature_file"`
	Complete      bool   `json:"complete"`
}

func toDTO(p *domain.Profile) ProfileDTO {
	return ProfileDTO{
		ActorID:       p.ActorID,
		Authority:     string(p.Authority),
		Name:          p.Name,
		RoleTitle:     p.RoleTitle,
		SignatureFile: p.SignatureFile,
		Complete:      p.Complete(),
	}
}

type Usecase struct {
	profiles domain.Repository
}

func NewUsecase(profiles domain.Repository) *Usecase { return &Usecase{profiles: profiles} }

// Me returns the actor's own profile; an absent row is an empty, incomplete profile.
func (u *Usecase) Me(ctx context.Context, a actor.Actor) (*ProfileDTO, error) {
	if !a.Role.IsReviewer() {
		return nil, workflowerr.Authorization(ErrNotReviewer, "")
	}
	p, err := u.profiles.GetByActorID(ctx, a.ID)
	if errors.Is(err, domain.ErrNotFound) {
		p = &domain.Profile{ActorID: a.ID, Authority: a.Role}
	} else if err != nil {
		return nil, err
	}
	dto := toDTO(p)
	return &dto, nil
}

// Save upserts the actor's own delegated credential. Partial profiles are
// stored; only a top-body approval requires a complete one.
func (u *Usecase) Save(ctx context.Context, a actor.Actor, in ProfileInput) (*ProfileDTO, error) {
	if !a.Role.IsReviewer() {
		return nil, workflowerr.Authorization(ErrNotReviewer, "")
	}
	p := &domain.Profile{
		ActorID:       a.ID,
		Authority:     a.Role,
		Name:          strings.TrimSpace(in.Name),
		RoleTitle:     strings.TrimSpace(in.RoleTitle),
		SignatureFile: strings.TrimSpace(in.SignatureFile),
	}
	if err := u.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	logging.Get().Info().
		Str("actor_id", a.ID).
		Str("authority", string(a.Role)).
		Bool("complete", p.Complete()).
		Msg("reviewer: profile saved")
	dto := toDTO(p)
	return &dto, nil
}
