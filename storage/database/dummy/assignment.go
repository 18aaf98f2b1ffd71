package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asgmt.ID = uuid.NewString()
	repo.db.table[asgmt.ID] = &asgmt
	return asgmt, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asgmt, ok := repo.db.table[id]; ok {
		return *asgmt, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) FilterAssignments(ctx context.Context, filter assignment.QueryFilter, ordering ...core.DBOrdering) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgmts := make([]assignment.Assignment, 0, len(repo.db.table))
	for _, asgmt := range repo.db.table {
		if filter.ClassroomID != "" && asgmt.ClassroomID != filter.ClassroomID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(asgmt.Title), strings.ToLower(filter.Search)) {
			continue
		}
		asgmts = append(asgmts, *asgmt)
	}
	return asgmts, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origAsgmt, ok := repo.db.table[asgmt.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	if asgmt.Title != "" {
		origAsgmt.Title = asgmt.Title
	}
	origAsgmt.Instruction = asgmt.Instruction
	if asgmt.DueDate != nil {
		origAsgmt.DueDate = asgmt.DueDate
	}
	origAsgmt.UpdatedAt = asgmt.UpdatedAt

	repo.db.table[asgmt.ID] = origAsgmt
	return *origAsgmt, nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
