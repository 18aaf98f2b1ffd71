package dummydb

import (
	"sync"

	"github.com/acadyo/acadyo/core/assignment"
	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/lesson"
	"github.com/acadyo/acadyo/core/submission"
	"github.com/acadyo/acadyo/core/user"
)

type (
	DB struct {
		user       *userTable
		classroom  *classroomTable
		lesson     *lessonTable
		assignment *assignmentTable
		submission *submissionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	// classroomTable holds classrooms and both sides of the enrollment
	// relation under a single lock so they always change together.
	classroomTable struct {
		sync.RWMutex
		table     map[string]*classroom.Classroom
		byRoom    map[string]map[string]struct{} // classroomID -> studentIDs
		byStudent map[string]map[string]struct{} // studentID -> classroomIDs
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*lesson.Lesson
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*submission.Submission
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		classroom: &classroomTable{
			table:     make(map[string]*classroom.Classroom),
			byRoom:    make(map[string]map[string]struct{}),
			byStudent: make(map[string]map[string]struct{}),
		},
		lesson:     &lessonTable{table: make(map[string]*lesson.Lesson)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		submission: &submissionTable{table: make(map[string]*submission.Submission)},
	}
	return db, nil
}
