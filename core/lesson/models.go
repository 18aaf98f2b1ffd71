package lesson

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acadyo/acadyo/core"
)

type Lesson struct {
	ID           string    `json:"id"`
	ClassroomID  string    `json:"classroom_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	FileURL      string    `json:"file_url,omitempty"`
	FilePublicID string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	ClassroomID string `json:"classroom_id" form:"classroom_id" validate:"required"`
	Title       string `json:"title" form:"title" validate:"required"`
	Content     string `json:"content" form:"content"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

// UpdateLesson defines what information may be provided to modify an existing Lesson.
type UpdateLesson struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

func (ul *UpdateLesson) Validate(origLesson Lesson, validate *validator.Validate) error {
	if title := core.CleanString(ul.Title); title != "" {
		ul.Title = title
	} else {
		ul.Title = origLesson.Title
	}
	return validate.Struct(ul)
}

type QueryFilter struct {
	Search      string `query:"search"`
	ClassroomID string `query:"classroom"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassroomID = core.CleanString(qf.ClassroomID)
}
