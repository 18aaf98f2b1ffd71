package classroom

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acadyo/acadyo/core"
)

type Classroom struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code"` // unique; assigned at creation, immutable
	TeacherID   string    `json:"teacher_id"`
	StudentIDs  []string  `json:"student_ids"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// HasStudent reports whether the student is in the loaded enrolled set.
func (c *Classroom) HasStudent(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// NormalizeCode prepares a user-entered join code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewClassroom) Validate(ctx context.Context, teacherID string, validate *validator.Validate, svc Service) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckTitleUniqueness(ctx, nc.Title, teacherID)
}

// UpdateClassroom defines what information may be provided to modify an existing
// Classroom. The join code is immutable and cannot be updated.
type UpdateClassroom struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (uc *UpdateClassroom) Validate(ctx context.Context, origRoom Classroom, validate *validator.Validate, svc Service) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = origRoom.Title
	}
	uc.Description = core.CleanString(uc.Description)

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckTitleUniqueness(ctx, uc.Title, origRoom.TeacherID, origRoom)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	TeacherID   string    `query:"-"`
	StudentID   string    `query:"-"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single Classroom by exactly one of its fields.
type GetFilter struct {
	ID   string
	Code string
}
