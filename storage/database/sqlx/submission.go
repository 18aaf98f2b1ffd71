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
	"github.com/acadyo/acadyo/core/submission"
	"github.com/acadyo/acadyo/core/user"
)

type submissionRow struct {
	ID           string        `db:"id"`
	AssignmentID string        `db:"assignment_id"`
	StudentID    string        `db:"student_id"`
	FileURL      string        `db:"file_url"`
	FilePublicID string        `db:"file_public_id"`
	Comment      string        `db:"comment"`
	Grade        sql.NullInt64 `db:"grade"`
	SubmittedAt  time.Time     `db:"submitted_at"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (r *submissionRow) unpack() submission.Submission {
	sub := submission.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		FileURL:      r.FileURL,
		FilePublicID: r.FilePublicID,
		Comment:      r.Comment,
		SubmittedAt:  r.SubmittedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Grade.Valid {
		grade := int(r.Grade.Int64)
		sub.Grade = &grade
	}
	return sub
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	sub.ID = uuid.NewString()
	const query = `
		INSERT INTO submission (id, assignment_id, student_id, file_url, file_public_id, comment,
		                        grade, submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, query,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.FileURL, sub.FilePublicID, sub.Comment,
		gradeArg(sub.Grade), sub.SubmittedAt, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return submission.Submission{}, submission.ErrAlreadyExists
		}
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id string) (submission.Submission, error) {
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM submission WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.unpack(), nil
}

func (repo *submissionRepository) FilterSubmissions(ctx context.Context, filter submission.QueryFilter, ordering ...core.DBOrdering) ([]submission.Submission, error) {
	query := `SELECT * FROM submission WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.AssignmentID != "" {
		query += ` AND assignment_id = ` + arg(filter.AssignmentID)
	}
	if filter.StudentID != "" {
		query += ` AND student_id = ` + arg(filter.StudentID)
	}
	if filter.Graded != nil {
		if *filter.Graded {
			query += ` AND grade IS NOT NULL`
		} else {
			query += ` AND grade IS NULL`
		}
	}
	query += orderBy(ordering, "submitted_at DESC")

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering submissions")
	}
	subs := make([]submission.Submission, 0, len(rows))
	for i := range rows {
		subs = append(subs, rows[i].unpack())
	}
	return subs, nil
}

func (repo *submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	const query = `
		UPDATE submission
		SET comment        = $2,
		    grade          = COALESCE($3, grade),
		    file_url       = CASE WHEN $5 = '' THEN file_url ELSE $4 END,
		    file_public_id = CASE WHEN $5 = '' THEN file_public_id ELSE $5 END,
		    updated_at     = $6
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		sub.ID, sub.Comment, gradeArg(sub.Grade), sub.FileURL, sub.FilePublicID, sub.UpdatedAt,
	)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}
	return repo.GetSubmissionByID(ctx, sub.ID)
}

func (repo *submissionRepository) DeleteSubmissionsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM submission WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting submissions")
}

func (repo *submissionRepository) IsStudentEnrolled(ctx context.Context, assignmentID, studentID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM assignment a
			JOIN classroom_student cs ON cs.classroom_id = a.classroom_id
			WHERE a.id = $1 AND cs.student_id = $2
		)`
	var enrolled bool
	err := repo.db.GetContext(ctx, &enrolled, query, assignmentID, studentID)
	return enrolled, errors.Wrap(err, "checking assignment enrollment")
}

func (repo *submissionRepository) GetAssignmentTeacher(ctx context.Context, assignmentID string) (user.User, error) {
	const query = `
		SELECT u.*
		FROM "user" u
		JOIN classroom c ON c.teacher_id = u.id
		JOIN assignment a ON a.classroom_id = c.id
		WHERE a.id = $1`
	var row userRow
	if err := repo.db.GetContext(ctx, &row, query, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting assignment teacher")
	}
	return row.unpack(), nil
}

func gradeArg(grade *int) interface{} {
	if grade == nil {
		return nil
	}
	return *grade
}
