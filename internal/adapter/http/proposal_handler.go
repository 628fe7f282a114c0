package http

import (
	"context"
	"net/http"
	"strconv"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/usecase/workflow"

	"github.com/labstack/echo/v4"
)

// ProposalService is the workflow usecase as seen by the HTTP layer.
type ProposalService interface {
	CreateProposal(ctx context.Context, a actor.Actor, in workflow.CreateProposalInput) (*workflow.ProposalDTO, error)
	GetProposal(ctx context.Context, a actor.Actor, proposalID string) (*workflow.ProposalDTO, error)
	ListProposals(ctx context.Context, a actor.Actor, villageID string, f proposal.ListFilter) ([]workflow.ProposalDTO, error)
	UpdateContent(ctx context.Context, a actor.Actor, in workflow.UpdateContentInput) (*workflow.ProposalDTO, error)
	DeleteProposal(ctx context.Context, a actor.Actor, proposalID string) error
	SubmitInitial(ctx context.Context, a actor.Actor, villageID string) (*workflow.BatchDTO, error)
	Resubmit(ctx context.Context, a actor.Actor, villageID string, hint string) (*workflow.BatchDTO, error)
	RecordDecision(ctx context.Context, a actor.Actor, in workflow.DecisionInput) (*workflow.ProposalDTO, error)
}

type ProposalHandler struct {
	uc ProposalService
}

func NewProposalHandler(uc ProposalService) *ProposalHandler { return &ProposalHandler{uc: uc} }

type proposalReq struct {
	ActivityIDs     []string `json:"activity_ids"      validate:"required,min=1,dive,required,max=32"`
	BudgetYear      int      `json:"budget_year"       validate:"omitempty,gte=2000,lte=2100"`
	Title           string   `json:"title"             validate:"required,max=255"`
	Description     string   `json:"description"       validate:"max=5000"`
	Location        string   `json:"location"          validate:"max=255"`
	Volume          string   `json:"volume"            validate:"max=100"`
	BudgetAmount    float64  `json:"budget_amount"     validate:"gte=0,dec2"`
	WorkingFile     string   `json:"working_file"      validate:"max=255"`
	WorkingFileSize int64    `json:"working_file_size" validate:"gte=0"`
}

func (h *ProposalHandler) Create(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req proposalReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.CreateProposal(c.Request().Context(), a, workflow.CreateProposalInput{
		VillageID:       a.VillageID,
		ActivityIDs:     req.ActivityIDs,
		BudgetYear:      req.BudgetYear,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Volume:          req.Volume,
		BudgetAmount:    req.BudgetAmount,
		WorkingFile:     req.WorkingFile,
		WorkingFileSize: req.WorkingFileSize,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ProposalHandler) Get(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := proposalIDParam(c)
	if !ok {
		return badProposalID(c)
	}
	dto, err := h.uc.GetProposal(c.Request().Context(), a, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// List: GET /proposals?village_id=&stage=&budget_year=
func (h *ProposalHandler) List(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	f := proposal.ListFilter{Stage: proposal.Stage(c.QueryParam("stage"))}
	if v := c.QueryParam("budget_year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid budget_year"})
		}
		f.BudgetYear = n
	}
	out, err := h.uc.ListProposals(c.Request().Context(), a, c.QueryParam("village_id"), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out, "count": len(out)})
}

func (h *ProposalHandler) Update(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := proposalIDParam(c)
	if !ok {
		return badProposalID(c)
	}
	var req proposalReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.UpdateContent(c.Request().Context(), a, workflow.UpdateContentInput{
		ProposalID:      id,
		ActivityIDs:     req.ActivityIDs,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Volume:          req.Volume,
		BudgetAmount:    req.BudgetAmount,
		WorkingFile:     req.WorkingFile,
		WorkingFileSize: req.WorkingFileSize,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProposalHandler) Delete(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := proposalIDParam(c)
	if !ok {
		return badProposalID(c)
	}
	if err := h.uc.DeleteProposal(c.Request().Context(), a, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit sends every draft of the village's active budget year to the department.
func (h *ProposalHandler) Submit(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	dto, err := h.uc.SubmitInitial(c.Request().Context(), a, c.Param("village_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type resubmitReq struct {
	// Destination overrides the stored return origin; empty lets the server resolve it.
	Destination string `json:"destination" validate:"omitempty,oneof=department subdistrict"`
}

func (h *ProposalHandler) Resubmit(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req resubmitReq
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badBody(c)
		}
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.Resubmit(c.Request().Context(), a, c.Param("village_id"), req.Destination)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type decisionReq struct {
	Authority string `json:"authority" validate:"required,authority"`
	Decision  string `json:"decision"  validate:"required,decision"`
	Notes     string `json:"notes"     validate:"max=5000"`
}

func (h *ProposalHandler) Decide(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := proposalIDParam(c)
	if !ok {
		return badProposalID(c)
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.RecordDecision(c.Request().Context(), a, workflow.DecisionInput{
		ProposalID: id,
		Authority:  proposal.Authority(req.Authority),
		Decision:   req.Decision,
		Notes:      req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
