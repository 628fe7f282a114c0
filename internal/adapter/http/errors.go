package http

import (
	"net/http"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/workflowerr"
	"bankeu-backend/internal/infrastructure/logging"
	"bankeu-backend/pkg/id"

	"github.com/labstack/echo/v4"
)

func statusOf(k workflowerr.Kind) int {
	switch k {
	case workflowerr.KindValidation:
		return http.StatusUnprocessableEntity
	case workflowerr.KindAuthorization:
		return http.StatusForbidden
	case workflowerr.KindStateConflict:
		return http.StatusConflict
	case workflowerr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError maps usecase errors to HTTP codes. Refusals carry the
// proposal's current state so the client can re-render.
func writeError(c echo.Context, err error) error {
	kind := workflowerr.KindOf(err)
	code := statusOf(kind)
	if code == http.StatusInternalServerError {
		logging.Get().Error().
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Err(err).
			Msg("http: unhandled error")
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error(), Kind: string(kind), State: workflowerr.StateOf(err)})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}

// currentActor is set by middleware.ActorMiddleware.
func currentActor(c echo.Context) (actor.Actor, bool) {
	return actor.FromContext(c.Request().Context())
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
}

func badProposalID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid proposal id"})
}

func proposalIDParam(c echo.Context) (string, bool) {
	pid := c.Param("id")
	return pid, id.Valid(pid)
}
