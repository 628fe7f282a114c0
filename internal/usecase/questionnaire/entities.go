package questionnaire

import (
	"time"

	"bankeu-backend/internal/domain/proposal"
	domain "bankeu-backend/internal/domain/questionnaire"
	"bankeu-backend/internal/usecase/workflow"
)

type AnswersInput struct {
	ProposalID string
	Authority  proposal.Authority
	Answers    []domain.Answer
	Remark     string
	// Recommendation is optional on submit; derived from the answers when empty.
	Recommendation string
}

type AnswerDTO struct {
	No       int    `json:"no"`
	Question string `json:"question"`
	Value    *bool  `json:"value"`
	Remark   string `json:"remark,omitempty"`
}

type QuestionnaireDTO struct {
	ProposalID     string      `json:"proposal_id"`
	Authority      string      `json:"authority"`
	Status         string      `json:"status"`
	Answers        []AnswerDTO `json:"answers"`
	Answered       int         `json:"answered"`
	Remark         string      `json:"remark,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
	ReviewerID     string      `json:"reviewer_id,omitempty"`
	SubmittedAt    *time.Time  `json:"submitted_at,omitempty"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type SubmitResultDTO struct {
	Questionnaire QuestionnaireDTO     `json:"questionnaire"`
	Proposal      workflow.ProposalDTO `json:"proposal"`
}

type QuestionDTO struct {
	No   int    `json:"no"`
	Text string `json:"text"`
}

func toDTO(proposalID string, q *domain.Questionnaire) QuestionnaireDTO {
	texts, _ := domain.Questions(q.Authority)
	answers := q.AnswerList()
	out := QuestionnaireDTO{
		ProposalID:     proposalID,
		Authority:      string(q.Authority),
		Status:         string(q.Status),
		Answers:        make([]AnswerDTO, 0, domain.QuestionCount),
		Answered:       domain.Answered(answers),
		Remark:         q.Remark,
		Recommendation: string(q.Recommendation),
		ReviewerID:     q.ReviewerID,
		SubmittedAt:    q.SubmittedAt,
		UpdatedAt:      q.UpdatedAt,
	}
	for i := 0; i < domain.QuestionCount; i++ {
		a := AnswerDTO{No: i + 1, Question: texts[i]}
		if i < len(answers) {
			a.Value, a.Remark = answers[i].Value, answers[i].Remark
		}
		out.Answers = append(out.Answers, a)
	}
	return out
}
