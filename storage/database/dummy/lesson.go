package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/lesson"
)

type lessonRepository struct {
	db *lessonTable
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db.lesson}
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	lsn.ID = uuid.NewString()
	repo.db.table[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *lessonRepository) GetLessonByID(ctx context.Context, id string) (lesson.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lsn, ok := repo.db.table[id]; ok {
		return *lsn, nil
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) FilterLessons(ctx context.Context, filter lesson.QueryFilter, ordering ...core.DBOrdering) ([]lesson.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := make([]lesson.Lesson, 0, len(repo.db.table))
	for _, lsn := range repo.db.table {
		if filter.ClassroomID != "" && lsn.ClassroomID != filter.ClassroomID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(lsn.Title), strings.ToLower(filter.Search)) {
			continue
		}
		lessons = append(lessons, *lsn)
	}
	return lessons, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origLsn, ok := repo.db.table[lsn.ID]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	if lsn.Title != "" {
		origLsn.Title = lsn.Title
	}
	origLsn.Content = lsn.Content
	if lsn.FilePublicID != "" {
		origLsn.FileURL = lsn.FileURL
		origLsn.FilePublicID = lsn.FilePublicID
	}
	origLsn.UpdatedAt = lsn.UpdatedAt

	repo.db.table[lsn.ID] = origLsn
	return *origLsn, nil
}

func (repo *lessonRepository) DeleteLessonsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
