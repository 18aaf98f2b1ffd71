package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/user"
)

type classroomRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Code        string         `db:"code"`
	TeacherID   string         `db:"teacher_id"`
	StudentIDs  pq.StringArray `db:"student_ids"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *classroomRow) unpack() classroom.Classroom {
	return classroom.Classroom{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Code:        r.Code,
		TeacherID:   r.TeacherID,
		StudentIDs:  r.StudentIDs,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// selectClassroom aggregates the enrolled set into each returned row.
const selectClassroom = `
	SELECT c.*,
	       COALESCE(ARRAY_AGG(cs.student_id ORDER BY cs.student_id)
	                FILTER (WHERE cs.student_id IS NOT NULL), '{}') AS student_ids
	FROM classroom c
	LEFT JOIN classroom_student cs ON cs.classroom_id = c.id`

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) classroom.Repository {
	return &classroomRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to classroom.ErrNotFound
func (repo *classroomRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return classroom.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *classroomRepository) CheckTitleUniqueness(ctx context.Context, title, teacherID string, excludedRooms ...classroom.Classroom) error {
	query := `SELECT EXISTS (SELECT 1 FROM classroom WHERE teacher_id = $1 AND LOWER(title) = LOWER($2)`
	args := []interface{}{teacherID, title}
	if len(excludedRooms) > 0 {
		ids := make([]string, 0, len(excludedRooms))
		for _, room := range excludedRooms {
			ids = append(ids, room.ID)
		}
		query += ` AND NOT (id = ANY($3))`
		args = append(args, pq.StringArray(ids))
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking classroom title uniqueness")
	}
	if exists {
		return classroom.ErrTitleExists
	}
	return nil
}

func (repo *classroomRepository) ClassroomCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM classroom WHERE code = $1)`, code)
	return exists, errors.Wrap(err, "checking classroom code")
}

func (repo *classroomRepository) CreateClassroom(ctx context.Context, room classroom.Classroom) (classroom.Classroom, error) {
	room.ID = uuid.NewString()
	const query = `
		INSERT INTO classroom (id, title, description, code, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		room.ID, room.Title, room.Description, room.Code, room.TeacherID, room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			switch pqErr.Constraint {
			case "classroom_code_key":
				// the unique index is the backstop to the generator's pre-check
				return classroom.Classroom{}, classroom.ErrCodeExhausted
			default:
				return classroom.Classroom{}, classroom.ErrTitleExists
			}
		}
		return classroom.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	return room, nil
}

func (repo *classroomRepository) GetClassroom(ctx context.Context, filter classroom.GetFilter) (classroom.Classroom, error) {
	query := selectClassroom
	var arg interface{}
	switch {
	case filter.ID != "":
		query += ` WHERE c.id = $1`
		arg = filter.ID
	case filter.Code != "":
		query += ` WHERE c.code = $1`
		arg = filter.Code
	default:
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	query += ` GROUP BY c.id`

	var row classroomRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		return classroom.Classroom{}, repo.trapNoRowsErr(err, "getting classroom")
	}
	return row.unpack(), nil
}

func (repo *classroomRepository) FilterClassrooms(ctx context.Context, filter classroom.QueryFilter, ordering ...core.DBOrdering) ([]classroom.Classroom, error) {
	query := selectClassroom + ` WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		query += ` AND c.title ILIKE ` + arg("%"+filter.Search+"%")
	}
	if filter.TeacherID != "" {
		query += ` AND c.teacher_id = ` + arg(filter.TeacherID)
	}
	if filter.StudentID != "" {
		query += ` AND EXISTS (SELECT 1 FROM classroom_student m
			WHERE m.classroom_id = c.id AND m.student_id = ` + arg(filter.StudentID) + `)`
	}
	if !filter.CreatedFrom.IsZero() {
		query += ` AND c.created_at >= ` + arg(filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		query += ` AND c.created_at <= ` + arg(filter.CreatedTo.UTC())
	}
	query += ` GROUP BY c.id` + orderBy(ordering, "c.created_at DESC")

	var rows []classroomRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering classrooms")
	}
	rooms := make([]classroom.Classroom, 0, len(rows))
	for i := range rows {
		rooms = append(rooms, rows[i].unpack())
	}
	return rooms, nil
}

func (repo *classroomRepository) UpdateClassroom(ctx context.Context, room classroom.Classroom) (classroom.Classroom, error) {
	// the code is immutable and never updated
	const query = `
		UPDATE classroom
		SET title       = COALESCE(NULLIF($2, ''), title),
		    description = $3,
		    updated_at  = $4
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, room.ID, room.Title, room.Description, room.UpdatedAt)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return classroom.Classroom{}, classroom.ErrTitleExists
		}
		return classroom.Classroom{}, errors.Wrap(err, "updating classroom")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	return repo.GetClassroom(ctx, classroom.GetFilter{ID: room.ID})
}

func (repo *classroomRepository) DeleteClassroomsByID(ctx context.Context, ids ...string) error {
	// ON DELETE CASCADE clears remaining enrollment rows
	_, err := repo.db.ExecContext(ctx, `DELETE FROM classroom WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting classrooms")
}

func (repo *classroomRepository) AddStudent(ctx context.Context, classroomID, studentID string) error {
	// the composite primary key turns a concurrent double-join into a conflict
	const query = `INSERT INTO classroom_student (classroom_id, student_id) VALUES ($1, $2)`
	if _, err := repo.db.ExecContext(ctx, query, classroomID, studentID); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
			switch pqErr.Code {
			case uniqueViolation:
				return classroom.ErrAlreadyEnrolled
			case foreignKeyViolation:
				return classroom.ErrNotFound
			}
		}
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo *classroomRepository) RemoveStudent(ctx context.Context, classroomID, studentID string) error {
	const query = `DELETE FROM classroom_student WHERE classroom_id = $1 AND student_id = $2`
	res, err := repo.db.ExecContext(ctx, query, classroomID, studentID)
	if err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classroom.ErrNotEnrolled
	}
	return nil
}

func (repo *classroomRepository) HasStudent(ctx context.Context, classroomID, studentID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM classroom_student WHERE classroom_id = $1 AND student_id = $2)`
	err := repo.db.GetContext(ctx, &exists, query, classroomID, studentID)
	return exists, errors.Wrap(err, "checking enrollment")
}

func (repo *classroomRepository) GetStudents(ctx context.Context, classroomID string) ([]user.User, error) {
	const query = `
		SELECT u.*
		FROM "user" u
		JOIN classroom_student cs ON cs.student_id = u.id
		WHERE cs.classroom_id = $1
		ORDER BY u.name`
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, classroomID); err != nil {
		return nil, errors.Wrap(err, "getting classroom students")
	}
	students := make([]user.User, 0, len(rows))
	for i := range rows {
		students = append(students, rows[i].unpack())
	}
	return students, nil
}

func (repo *classroomRepository) ClearStudents(ctx context.Context, classroomID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM classroom_student WHERE classroom_id = $1`, classroomID)
	return errors.Wrap(err, "clearing classroom enrollments")
}
