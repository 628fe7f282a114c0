package questionnaire

import (
	"encoding/json"
	"errors"
	"time"

	"bankeu-backend/internal/domain/proposal"

	"gorm.io/datatypes"
)

// QuestionCount is fixed for every reviewing authority.
const QuestionCount = 13

var (
	ErrNotFound           = errors.New("questionnaire not found")
	ErrNoAnswers          = errors.New("at least one question must be answered")
	ErrTooManyAnswers     = errors.New("too many answers")
	ErrInvalidAuthority   = errors.New("questionnaire authority must be a reviewing authority")
	ErrRecommendationConf = errors.New("recommendation contradicts the answers")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// Answer is one compliance item. A nil Value means unanswered.
type Answer struct {
	Value  *bool  `json:"value"`
	Remark string `json:"remark,omitempty"`
}

// Table: bankeu_questionnaires; one current row per (proposal, authority).
type Questionnaire struct {
	ID             uint64             `gorm:"primaryKey;column:id" json:"-"`
	ProposalID     uint64             `gorm:"column:proposal_id;not null;uniqueIndex:ux_questionnaires_proposal_authority" json:"-"`
	Authority      proposal.Authority `gorm:"column:authority;size:16;not null;uniqueIndex:ux_questionnaires_proposal_authority" json:"authority"`
	Answers        datatypes.JSON     `gorm:"column:answers;not null" json:"answers"`
	Remark         string             `gorm:"column:remark;type:text" json:"remark"`
	Status         Status             `gorm:"column:status;size:16;not null" json:"status"`
	Recommendation proposal.Decision  `gorm:"column:recommendation;size:16" json:"recommendation,omitempty"`
	ReviewerID     string             `gorm:"column:reviewer_id;size:32" json:"reviewer_id"`
	SubmittedAt    *time.Time         `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Questionnaire) TableName() string { return "bankeu_questionnaires" }

func (q *Questionnaire) AnswerList() []Answer {
	var out []Answer
	if len(q.Answers) > 0 {
		_ = json.Unmarshal(q.Answers, &out)
	}
	return out
}

func (q *Questionnaire) SetAnswers(a []Answer) {
	b, _ := json.Marshal(a)
	q.Answers = datatypes.JSON(b)
}

// Answered counts questions with a non-nil value.
func Answered(answers []Answer) int {
	n := 0
	for _, a := range answers {
		if a.Value != nil {
			n++
		}
	}
	return n
}

// Recommend derives the overall recommendation: approved unless some item failed.
func Recommend(answers []Answer) proposal.Decision {
	for _, a := range answers {
		if a.Value != nil && !*a.Value {
			return proposal.DecisionRevision
		}
	}
	return proposal.DecisionApproved
}
