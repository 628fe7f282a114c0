package http

import (
	"context"
	"net/http"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/usecase/gate"
	"bankeu-backend/internal/usecase/reviewer"

	"github.com/labstack/echo/v4"
)

type GateService interface {
	Status(ctx context.Context) (*gate.StatusDTO, error)
	SetOpen(ctx context.Context, a actor.Actor, open bool) (*gate.StatusDTO, error)
}

type ReviewerService interface {
	Me(ctx context.Context, a actor.Actor) (*reviewer.ProfileDTO, error)
	Save(ctx context.Context, a actor.Actor, in reviewer.ProfileInput) (*reviewer.ProfileDTO, error)
}

type SettingsHandler struct {
	gate      GateService
	reviewers ReviewerService
}

func NewSettingsHandler(g GateService, r ReviewerService) *SettingsHandler {
	return &SettingsHandler{gate: g, reviewers: r}
}

func (h *SettingsHandler) GetSubmission(c echo.Context) error {
	dto, err := h.gate.Status(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type submissionReq struct {
	Open *bool `json:"open" validate:"required"`
}

func (h *SettingsHandler) PutSubmission(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req submissionReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.gate.SetOpen(c.Request().Context(), a, *req.Open)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type profileReq struct {
	Name          string `json:"name"           validate:"max=255"`
	RoleTitle     string `json:"role_title"     validate:"max=255"`
	SignatureFile string `json:"signature_file" validate:"max=255"`
}

func (h *SettingsHandler) GetProfile(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	dto, err := h.reviewers.Me(c.Request().Context(), a)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *SettingsHandler) PutProfile(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.reviewers.Save(c.Request().Context(), a, reviewer.ProfileInput{
		Name:          req.Name,
		RoleTitle:     req.RoleTitle,
		SignatureFile: req.SignatureFile,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
