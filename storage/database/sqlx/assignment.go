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
	"github.com/acadyo/acadyo/core/assignment"
)

type assignmentRow struct {
	ID          string       `db:"id"`
	ClassroomID string       `db:"classroom_id"`
	Title       string       `db:"title"`
	Instruction string       `db:"instruction"`
	DueDate     sql.NullTime `db:"due_date"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r *assignmentRow) unpack() assignment.Assignment {
	asgmt := assignment.Assignment{
		ID:          r.ID,
		ClassroomID: r.ClassroomID,
		Title:       r.Title,
		Instruction: r.Instruction,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time
		asgmt.DueDate = &due
	}
	return asgmt
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	asgmt.ID = uuid.NewString()
	const query = `
		INSERT INTO assignment (id, classroom_id, title, instruction, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		asgmt.ID, asgmt.ClassroomID, asgmt.Title, asgmt.Instruction, dueDateArg(asgmt.DueDate),
		asgmt.CreatedAt, asgmt.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asgmt, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return row.unpack(), nil
}

func (repo *assignmentRepository) FilterAssignments(ctx context.Context, filter assignment.QueryFilter, ordering ...core.DBOrdering) ([]assignment.Assignment, error) {
	query := `SELECT * FROM assignment WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ClassroomID != "" {
		query += ` AND classroom_id = ` + arg(filter.ClassroomID)
	}
	if filter.Search != "" {
		query += ` AND title ILIKE ` + arg("%"+filter.Search+"%")
	}
	query += orderBy(ordering, "due_date ASC NULLS LAST, created_at DESC")

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering assignments")
	}
	asgmts := make([]assignment.Assignment, 0, len(rows))
	for i := range rows {
		asgmts = append(asgmts, rows[i].unpack())
	}
	return asgmts, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	const query = `
		UPDATE assignment
		SET title       = COALESCE(NULLIF($2, ''), title),
		    instruction = $3,
		    due_date    = COALESCE($4, due_date),
		    updated_at  = $5
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		asgmt.ID, asgmt.Title, asgmt.Instruction, dueDateArg(asgmt.DueDate), asgmt.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.GetAssignmentByID(ctx, asgmt.ID)
}

func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting assignments")
}

func dueDateArg(due *time.Time) interface{} {
	if due == nil {
		return nil
	}
	return due.UTC()
}
