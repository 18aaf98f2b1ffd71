package submission

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acadyo/acadyo/core"
)

type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	FileURL      string    `json:"file_url,omitempty"`
	FilePublicID string    `json:"-"`
	Comment      string    `json:"comment"`
	Grade        *int      `json:"grade"`
	SubmittedAt  time.Time `json:"submitted_at"` // UTC
	CreatedAt    time.Time `json:"created_at"`   // UTC
	UpdatedAt    time.Time `json:"updated_at"`   // UTC
}

// IsGraded reports whether a grade has been assigned.
func (s *Submission) IsGraded() bool {
	return s.Grade != nil
}

// NewSubmission contains information needed to create a new Submission.
type NewSubmission struct {
	AssignmentID string `json:"assignment_id" form:"assignment_id" validate:"required"`
	Comment      string `json:"comment" form:"comment"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Comment = core.CleanString(ns.Comment)
	return validate.Struct(ns)
}

// GradeSubmission carries a teacher's grade and feedback for a Submission.
type GradeSubmission struct {
	Grade   *int   `json:"grade" validate:"required,min=0,max=100"`
	Comment string `json:"comment"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.Comment = core.CleanString(gs.Comment)
	return validate.Struct(gs)
}

type QueryFilter struct {
	AssignmentID string `query:"assignment"`
	StudentID    string `query:"-"`
	Graded       *bool  `query:"graded"`
}

func (qf *QueryFilter) Clean() {
	qf.AssignmentID = core.CleanString(qf.AssignmentID)
}
