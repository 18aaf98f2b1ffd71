package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/assignment"
	"github.com/acadyo/acadyo/core/submission"
	"github.com/acadyo/acadyo/core/user"
)

type submissionRepository struct {
	db          *submissionTable
	assignments *assignmentTable
	classrooms  *classroomTable
	users       *userTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{
		db:          db.submission,
		assignments: db.assignment,
		classrooms:  db.classroom,
		users:       db.user,
	}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// one submission per (assignment, student), same guarantee as the DB index
	for _, existing := range repo.db.table {
		if existing.AssignmentID == sub.AssignmentID && existing.StudentID == sub.StudentID {
			return submission.Submission{}, submission.ErrAlreadyExists
		}
	}

	sub.ID = uuid.NewString()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) FilterSubmissions(ctx context.Context, filter submission.QueryFilter, ordering ...core.DBOrdering) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0, len(repo.db.table))
	for _, sub := range repo.db.table {
		if filter.AssignmentID != "" && sub.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && sub.StudentID != filter.StudentID {
			continue
		}
		if filter.Graded != nil && sub.IsGraded() != *filter.Graded {
			continue
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}

func (repo *submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origSub, ok := repo.db.table[sub.ID]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	if sub.Grade != nil {
		origSub.Grade = sub.Grade
	}
	origSub.Comment = sub.Comment
	if sub.FilePublicID != "" {
		origSub.FileURL = sub.FileURL
		origSub.FilePublicID = sub.FilePublicID
	}
	origSub.UpdatedAt = sub.UpdatedAt

	repo.db.table[sub.ID] = origSub
	return *origSub, nil
}

func (repo *submissionRepository) DeleteSubmissionsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *submissionRepository) IsStudentEnrolled(ctx context.Context, assignmentID, studentID string) (bool, error) {
	classroomID, err := repo.classroomID(assignmentID)
	if err != nil {
		return false, err
	}

	repo.classrooms.RLock()
	defer repo.classrooms.RUnlock()

	_, ok := repo.classrooms.byRoom[classroomID][studentID]
	return ok, nil
}

func (repo *submissionRepository) GetAssignmentTeacher(ctx context.Context, assignmentID string) (user.User, error) {
	classroomID, err := repo.classroomID(assignmentID)
	if err != nil {
		return user.User{}, err
	}

	repo.classrooms.RLock()
	room, ok := repo.classrooms.table[classroomID]
	repo.classrooms.RUnlock()
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	repo.users.RLock()
	defer repo.users.RUnlock()

	if teacher, ok := repo.users.table[room.TeacherID]; ok {
		return *teacher, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *submissionRepository) classroomID(assignmentID string) (string, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	if asgmt, ok := repo.assignments.table[assignmentID]; ok {
		return asgmt.ClassroomID, nil
	}
	return "", assignment.ErrNotFound
}
