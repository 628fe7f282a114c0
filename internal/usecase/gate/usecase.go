package gate

import (
	"context"
	"errors"
	"time"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/setting"
	"bankeu-backend/internal/domain/workflowerr"
	"bankeu-backend/internal/infrastructure/cache"
	"bankeu-backend/internal/infrastructure/logging"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSubmissionClosed = errors.New("submission window is closed")
	ErrNotAdministrator = errors.New("only the top body may toggle submission")
)

const CacheKey = "bankeu:gate:submission"

// StatusDTO is the current toggle as shown to administrators.
type StatusDTO struct {
	Open      bool      `json:"open"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Usecase reads and toggles the global submission switch. A missing row
// means open.
type Usecase struct {
	settings setting.Repository
	cache    *cache.Flag // nil without redis
}

func NewUsecase(settings setting.Repository, rdb *redis.Client, ttl time.Duration) *Usecase {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Usecase{settings: settings, cache: cache.NewFlag(rdb, CacheKey, ttl)}
}

// IsOpen must be called before any submit/resubmit transaction begins.
func (u *Usecase) IsOpen(ctx context.Context) (bool, error) {
	open, ok, err := u.cache.Get(ctx)
	if err != nil {
		logging.Get().Warn().Err(err).Msg("gate: cache read failed, reading setting directly")
	}
	if ok {
		return open, nil
	}

	open, err = u.load(ctx)
	if err != nil {
		return false, err
	}
	if err := u.cache.Set(ctx, open); err != nil {
		logging.Get().Warn().Err(err).Msg("gate: cache write failed")
	}
	return open, nil
}

func (u *Usecase) load(ctx context.Context) (bool, error) {
	s, err := u.settings.Get(ctx, setting.SubmissionKey)
	if errors.Is(err, setting.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return s.Open, nil
}

// Check returns ErrSubmissionClosed when the window is closed.
func (u *Usecase) Check(ctx context.Context) error {
	open, err := u.IsOpen(ctx)
	if err != nil {
		return err
	}
	if !open {
		return workflowerr.Conflict(ErrSubmissionClosed, "")
	}
	return nil
}

func (u *Usecase) Status(ctx context.Context) (*StatusDTO, error) {
	s, err := u.settings.Get(ctx, setting.SubmissionKey)
	if errors.Is(err, setting.ErrNotFound) {
		return &StatusDTO{Open: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &StatusDTO{Open: s.Open, UpdatedBy: s.UpdatedBy, UpdatedAt: s.UpdatedAt}, nil
}

// SetOpen is the only mutation path. The cached value is dropped afterwards
// so the next read sees the new state.
func (u *Usecase) SetOpen(ctx context.Context, a actor.Actor, open bool) (*StatusDTO, error) {
	if a.Role != proposal.AuthorityTopBody {
		return nil, workflowerr.Authorization(ErrNotAdministrator, "")
	}
	s := &setting.Setting{Key: setting.SubmissionKey, Open: open, UpdatedBy: a.ID}
	if err := u.settings.Upsert(ctx, s); err != nil {
		return nil, err
	}
	if err := u.cache.Drop(ctx); err != nil {
		logging.Get().Warn().Err(err).Msg("gate: cache invalidation failed")
	}
	logging.Get().Info().Bool("open", open).Str("actor_id", a.ID).Msg("gate: submission toggled")
	return &StatusDTO{Open: open, UpdatedBy: a.ID, UpdatedAt: s.UpdatedAt}, nil
}
