package http

import (
	"context"
	"net/http"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/proposal"
	domain "bankeu-backend/internal/domain/questionnaire"
	ucq "bankeu-backend/internal/usecase/questionnaire"

	"github.com/labstack/echo/v4"
)

type QuestionnaireService interface {
	Questions(authority proposal.Authority) ([]ucq.QuestionDTO, error)
	Get(ctx context.Context, a actor.Actor, proposalID string, authority proposal.Authority) (*ucq.QuestionnaireDTO, error)
	SaveDraft(ctx context.Context, a actor.Actor, in ucq.AnswersInput) (*ucq.QuestionnaireDTO, error)
	Submit(ctx context.Context, a actor.Actor, in ucq.AnswersInput) (*ucq.SubmitResultDTO, error)
}

type QuestionnaireHandler struct {
	uc QuestionnaireService
}

func NewQuestionnaireHandler(uc QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{uc: uc}
}

type answerReq struct {
	Value  *bool  `json:"value"`
	Remark string `json:"remark" validate:"max=1000"`
}

type answersReq struct {
	Answers        []answerReq `json:"answers"        validate:"max=13,dive"`
	Remark         string      `json:"remark"         validate:"max=5000"`
	Recommendation string      `json:"recommendation" validate:"omitempty,decision"`
}

func (r answersReq) input(proposalID string, authority proposal.Authority) ucq.AnswersInput {
	in := ucq.AnswersInput{
		ProposalID:     proposalID,
		Authority:      authority,
		Answers:        make([]domain.Answer, 0, len(r.Answers)),
		Remark:         r.Remark,
		Recommendation: r.Recommendation,
	}
	for _, a := range r.Answers {
		in.Answers = append(in.Answers, domain.Answer{Value: a.Value, Remark: a.Remark})
	}
	return in
}

func authorityParam(c echo.Context) (proposal.Authority, bool) {
	a := proposal.Authority(c.Param("authority"))
	return a, a.IsReviewer()
}

func badAuthority(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid authority"})
}

func (h *QuestionnaireHandler) Questions(c echo.Context) error {
	auth, ok := authorityParam(c)
	if !ok {
		return badAuthority(c)
	}
	qs, err := h.uc.Questions(auth)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"authority": auth, "questions": qs})
}

func (h *QuestionnaireHandler) Get(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := proposalIDParam(c)
	if !ok {
		return badProposalID(c)
	}
	auth, ok := authorityParam(c)
	if !ok {
		return badAuthority(c)
	}
	dto, err := h.uc.Get(c.Request().Context(), a, id, auth)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// bindAnswers reads the shared body of SaveDraft and Submit. A non-nil
// response means the request was refused with code.
func bindAnswers(c echo.Context) (ucq.AnswersInput, int, *ErrorResponse) {
	id, ok := proposalIDParam(c)
	if !ok {
		return ucq.AnswersInput{}, http.StatusBadRequest, &ErrorResponse{Error: "invalid proposal id"}
	}
	auth, ok := authorityParam(c)
	if !ok {
		return ucq.AnswersInput{}, http.StatusBadRequest, &ErrorResponse{Error: "invalid authority"}
	}
	var req answersReq
	if err := c.Bind(&req); err != nil {
		return ucq.AnswersInput{}, http.StatusBadRequest, &ErrorResponse{Error: "invalid body"}
	}
	if err := c.Validate(&req); err != nil {
		return ucq.AnswersInput{}, http.StatusUnprocessableEntity, &ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)}
	}
	return req.input(id, auth), 0, nil
}

func (h *QuestionnaireHandler) SaveDraft(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	in, code, refused := bindAnswers(c)
	if refused != nil {
		return c.JSON(code, refused)
	}
	dto, err := h.uc.SaveDraft(c.Request().Context(), a, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *QuestionnaireHandler) Submit(c echo.Context) error {
	a, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	in, code, refused := bindAnswers(c)
	if refused != nil {
		return c.JSON(code, refused)
	}
	dto, err := h.uc.Submit(c.Request().Context(), a, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
