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
	"github.com/acadyo/acadyo/core/lesson"
)

type lessonRow struct {
	ID           string    `db:"id"`
	ClassroomID  string    `db:"classroom_id"`
	Title        string    `db:"title"`
	Content      string    `db:"content"`
	FileURL      string    `db:"file_url"`
	FilePublicID string    `db:"file_public_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *lessonRow) unpack() lesson.Lesson {
	return lesson.Lesson{
		ID:           r.ID,
		ClassroomID:  r.ClassroomID,
		Title:        r.Title,
		Content:      r.Content,
		FileURL:      r.FileURL,
		FilePublicID: r.FilePublicID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type lessonRepository struct {
	db *sqlx.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *sqlx.DB) lesson.Repository {
	return &lessonRepository{db: db}
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	lsn.ID = uuid.NewString()
	const query = `
		INSERT INTO lesson (id, classroom_id, title, content, file_url, file_public_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		lsn.ID, lsn.ClassroomID, lsn.Title, lsn.Content, lsn.FileURL, lsn.FilePublicID, lsn.CreatedAt, lsn.UpdatedAt,
	)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return lsn, nil
}

func (repo *lessonRepository) GetLessonByID(ctx context.Context, id string) (lesson.Lesson, error) {
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return lesson.Lesson{}, lesson.ErrNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return row.unpack(), nil
}

func (repo *lessonRepository) FilterLessons(ctx context.Context, filter lesson.QueryFilter, ordering ...core.DBOrdering) ([]lesson.Lesson, error) {
	query := `SELECT * FROM lesson WHERE true`
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
	query += orderBy(ordering, "created_at DESC")

	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering lessons")
	}
	lessons := make([]lesson.Lesson, 0, len(rows))
	for i := range rows {
		lessons = append(lessons, rows[i].unpack())
	}
	return lessons, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	const query = `
		UPDATE lesson
		SET title          = COALESCE(NULLIF($2, ''), title),
		    content        = $3,
		    file_url       = CASE WHEN $5 = '' THEN file_url ELSE $4 END,
		    file_public_id = CASE WHEN $5 = '' THEN file_public_id ELSE $5 END,
		    updated_at     = $6
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		lsn.ID, lsn.Title, lsn.Content, lsn.FileURL, lsn.FilePublicID, lsn.UpdatedAt,
	)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	return repo.GetLessonByID(ctx, lsn.ID)
}

func (repo *lessonRepository) DeleteLessonsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM lesson WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting lessons")
}
