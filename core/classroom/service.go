package classroom

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("classroom not found")
	ErrTitleExists     = errors.New("a classroom with this title already exists")
	ErrInvalidCode     = errors.New("invalid classroom code")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this classroom")
	ErrSelfEnrollment  = errors.New("a teacher cannot enroll in their own classroom")
	ErrNotAStudent     = errors.New("only students can enroll in a classroom")
	ErrNotEnrolled     = errors.New("student is not enrolled in this classroom")
	ErrNotOwner        = errors.New("classroom does not belong to this teacher")
)

type (
	Repository interface {
		CheckTitleUniqueness(ctx context.Context, title, teacherID string, excludedRooms ...Classroom) error
		ClassroomCodeExists(ctx context.Context, code string) (bool, error)
		CreateClassroom(ctx context.Context, room Classroom) (Classroom, error)
		GetClassroom(ctx context.Context, filter GetFilter) (Classroom, error)
		// FilterClassrooms applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Classroom.Title.
		FilterClassrooms(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Classroom, error)
		UpdateClassroom(ctx context.Context, room Classroom) (Classroom, error)
		DeleteClassroomsByID(ctx context.Context, ids ...string) error

		// membership ledger; both sides of the relation always change together
		AddStudent(ctx context.Context, classroomID, studentID string) error
		RemoveStudent(ctx context.Context, classroomID, studentID string) error
		HasStudent(ctx context.Context, classroomID, studentID string) (bool, error)
		GetStudents(ctx context.Context, classroomID string) ([]user.User, error)
		ClearStudents(ctx context.Context, classroomID string) error
	}

	Service interface {
		CheckTitleUniqueness(ctx context.Context, title, teacherID string, exclRooms ...Classroom) error
		Create(ctx context.Context, nc NewClassroom, teacher user.User) (Classroom, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Classroom, error)
		GetByID(ctx context.Context, id string) (Classroom, error)
		Update(ctx context.Context, id string, uc UpdateClassroom) (Classroom, error)
		Delete(ctx context.Context, ids ...string) error

		Join(ctx context.Context, code string, usr user.User) (Classroom, error)
		Leave(ctx context.Context, classroomID string, usr user.User) error
		RemoveStudent(ctx context.Context, classroomID, studentID string, actingUsr user.User) error
		Students(ctx context.Context, classroomID string) ([]user.User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckTitleUniqueness(ctx context.Context, title, teacherID string, exclRooms ...Classroom) error {
	return svc.repo.CheckTitleUniqueness(ctx, title, teacherID, exclRooms...)
}

func (svc *service) Create(ctx context.Context, nc NewClassroom, teacher user.User) (Classroom, error) {
	code, err := GenerateUniqueCode(func(code string) (bool, error) {
		return svc.repo.ClassroomCodeExists(ctx, code)
	}, DefaultCodeLength)
	if err != nil {
		return Classroom{}, err
	}

	now := time.Now().UTC()
	room := Classroom{
		Title:       nc.Title,
		Description: nc.Description,
		Code:        code,
		TeacherID:   teacher.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateClassroom(ctx, room)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Classroom, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterClassrooms(ctx, *filter, ordering...)
}

func (svc *service) GetByID(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroom(ctx, GetFilter{ID: id})
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClassroom) (Classroom, error) {
	room := Classroom{
		ID:          id,
		Title:       uc.Title,
		Description: uc.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateClassroom(ctx, room)
}

// Delete removes classrooms along with their enrollments. Back-references are
// cleared explicitly before each classroom goes so no student is left pointing
// at a deleted classroom.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := svc.repo.ClearStudents(ctx, id); err != nil {
			return errors.Wrap(err, "clearing enrollments")
		}
	}
	return svc.repo.DeleteClassroomsByID(ctx, ids...)
}

// Join enrolls usr in the classroom matching code. The code comparison is
// case-insensitive and whitespace-trimmed.
func (svc *service) Join(ctx context.Context, code string, usr user.User) (Classroom, error) {
	if !usr.IsStudent() {
		return Classroom{}, ErrNotAStudent
	}

	room, err := svc.repo.GetClassroom(ctx, GetFilter{Code: NormalizeCode(code)})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Classroom{}, ErrInvalidCode
		}
		return Classroom{}, err
	}
	if room.TeacherID == usr.ID {
		return Classroom{}, ErrSelfEnrollment
	}

	if err := svc.repo.AddStudent(ctx, room.ID, usr.ID); err != nil {
		return Classroom{}, err
	}
	room.StudentIDs = append(room.StudentIDs, usr.ID)
	return room, nil
}

func (svc *service) Leave(ctx context.Context, classroomID string, usr user.User) error {
	if _, err := svc.GetByID(ctx, classroomID); err != nil {
		return err
	}
	return svc.repo.RemoveStudent(ctx, classroomID, usr.ID)
}

func (svc *service) RemoveStudent(ctx context.Context, classroomID, studentID string, actingUsr user.User) error {
	room, err := svc.GetByID(ctx, classroomID)
	if err != nil {
		return err
	}
	if room.TeacherID != actingUsr.ID && !actingUsr.IsAdmin() {
		return ErrNotOwner
	}
	return svc.repo.RemoveStudent(ctx, classroomID, studentID)
}

func (svc *service) Students(ctx context.Context, classroomID string) ([]user.User, error) {
	if _, err := svc.GetByID(ctx, classroomID); err != nil {
		return nil, err
	}
	return svc.repo.GetStudents(ctx, classroomID)
}
