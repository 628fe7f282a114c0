package workflowerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindStateConflict Kind = "state_conflict"
	KindNotFound      Kind = "not_found"
	// KindSideEffect never reaches callers; the mirror downgrades it to a log line.
	KindSideEffect Kind = "side_effect"
)

// Snapshot is the proposal's current known state, echoed back so the
// caller can re-render without another round trip.
type Snapshot struct {
	ProposalID        string `json:"proposal_id"`
	Stage             string `json:"stage"`
	ReturnOrigin      string `json:"return_origin,omitempty"`
	Status            string `json:"status,omitempty"`
	DepartmentStatus  string `json:"department_status,omitempty"`
	SubdistrictStatus string `json:"subdistrict_status,omitempty"`
	TopBodyStatus     string `json:"topbody_status,omitempty"`
}

// Error wraps a sentinel with its taxonomy kind and, when known, the state
// of the proposal the operation was refused on.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
	State  *Snapshot
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, err error, reason string) *Error {
	return &Error{Kind: kind, Err: err, Reason: reason}
}

func (e *Error) WithState(s Snapshot) *Error {
	e.State = &s
	return e
}

func Validation(err error, reason string) *Error    { return New(KindValidation, err, reason) }
func Authorization(err error, reason string) *Error { return New(KindAuthorization, err, reason) }
func Conflict(err error, reason string) *Error      { return New(KindStateConflict, err, reason) }
func NotFound(err error) *Error                     { return New(KindNotFound, err, "") }

// KindOf reports the taxonomy kind of err, or "" for untyped errors.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// StateOf returns the snapshot attached to err, if any.
func StateOf(err error) *Snapshot {
	var we *Error
	if errors.As(err, &we) {
		return we.State
	}
	return nil
}
