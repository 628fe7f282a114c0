package actor

import (
	"context"

	"bankeu-backend/internal/domain/proposal"
)

// Actor is the authenticated caller as supplied by the upstream gateway.
type Actor struct {
	ID        string
	Role      proposal.Authority
	VillageID string // set for village actors only
}

func (a Actor) IsVillage() bool { return a.Role == proposal.AuthorityVillage }

// Owns reports whether a is the village actor for villageID.
func (a Actor) Owns(villageID string) bool {
	return a.IsVillage() && a.VillageID != "" && a.VillageID == villageID
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}
