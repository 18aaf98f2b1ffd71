// Package testutil provides shared fixtures for tests that need a populated repository.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/acadyo/acadyo/core/assignment"
	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/lesson"
	"github.com/acadyo/acadyo/core/submission"
	"github.com/acadyo/acadyo/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     user.NormalizeRoles(roles...),
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateClassroom(t *testing.T, repo classroom.Repository, title, teacherID string) classroom.Classroom {
	t.Helper()

	code, err := classroom.GenerateUniqueCode(func(c string) (bool, error) {
		return repo.ClassroomCodeExists(context.Background(), c)
	}, classroom.DefaultCodeLength)
	if err != nil {
		t.Fatalf("CreateClassroom(): %v", err)
	}

	now := time.Now().UTC()
	room, err := repo.CreateClassroom(context.Background(), classroom.Classroom{
		Title:     title,
		Code:      code,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClassroom(): %v", err)
	}
	return room
}

func Enroll(t *testing.T, repo classroom.Repository, classroomID, studentID string) {
	t.Helper()

	if err := repo.AddStudent(context.Background(), classroomID, studentID); err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
}

func CreateLesson(t *testing.T, repo lesson.Repository, classroomID, title string) lesson.Lesson {
	t.Helper()

	now := time.Now().UTC()
	lsn, err := repo.CreateLesson(context.Background(), lesson.Lesson{
		ClassroomID: classroomID,
		Title:       title,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}
	return lsn
}

func CreateAssignment(t *testing.T, repo assignment.Repository, classroomID, title string, dueDate *time.Time) assignment.Assignment {
	t.Helper()

	now := time.Now().UTC()
	asgmt, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		ClassroomID: classroomID,
		Title:       title,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateAssignment(): %v", err)
	}
	return asgmt
}

func CreateSubmission(t *testing.T, repo submission.Repository, assignmentID, studentID string) submission.Submission {
	t.Helper()

	now := time.Now().UTC()
	sub, err := repo.CreateSubmission(context.Background(), submission.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateSubmission(): %v", err)
	}
	return sub
}
