package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/proposal"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID   = "Ax-Actor-Id"
	HeaderActorRole = "Ax-Actor-Role"
	HeaderVillageID = "Ax-Village-Id"
)

var reActorID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,32}$`)

func parseRole(s string) (proposal.Authority, bool) {
	switch r := proposal.Authority(strings.ToLower(strings.TrimSpace(s))); r {
	case proposal.AuthorityVillage, proposal.AuthorityDepartment, proposal.AuthoritySubdistrict, proposal.AuthorityTopBody:
		return r, true
	}
	return "", false
}

// ActorMiddleware trusts the identity headers set by the upstream auth
// gateway and puts the actor on the request context.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := strings.TrimSpace(req.Header.Get(HeaderActorID))
			if id == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID})
			}
			if !reActorID.MatchString(id) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorID})
			}
			role, ok := parseRole(req.Header.Get(HeaderActorRole))
			if !ok {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorRole})
			}

			a := actor.Actor{ID: id, Role: role}
			if role == proposal.AuthorityVillage {
				a.VillageID = strings.TrimSpace(req.Header.Get(HeaderVillageID))
				if a.VillageID == "" {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing " + HeaderVillageID + " for village actor"})
				}
			}

			c.SetRequest(req.WithContext(actor.WithActor(req.Context(), a)))
			return next(c)
		}
	}
}
