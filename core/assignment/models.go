package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acadyo/acadyo/core"
)

type Assignment struct {
	ID          string     `json:"id"`
	ClassroomID string     `json:"classroom_id"`
	Title       string     `json:"title"`
	Instruction string     `json:"instruction"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

// IsOverdue reports whether the due date has passed.
func (a *Assignment) IsOverdue(now time.Time) bool {
	return a.DueDate != nil && now.After(*a.DueDate)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	ClassroomID string     `json:"classroom_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Instruction string     `json:"instruction"`
	DueDate     *time.Time `json:"due_date"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Title       string     `json:"title"`
	Instruction string     `json:"instruction"`
	DueDate     *time.Time `json:"due_date"`
}

func (ua *UpdateAssignment) Validate(origAsgmt Assignment, validate *validator.Validate) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = origAsgmt.Title
	}
	return validate.Struct(ua)
}

type QueryFilter struct {
	Search      string `query:"search"`
	ClassroomID string `query:"classroom"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassroomID = core.CleanString(qf.ClassroomID)
}
