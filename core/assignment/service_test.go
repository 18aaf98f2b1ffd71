package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acadyo/acadyo/core/assignment"
	dummydb "github.com/acadyo/acadyo/storage/database/dummy"
)

func setup(t *testing.T) assignment.Service {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return assignment.NewService(dummydb.NewAssignmentRepository(db))
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)
	asgmt, err := svc.Create(ctx, assignment.NewAssignment{
		ClassroomID: "room1",
		Title:       "Essay",
		Instruction: "500 words",
		DueDate:     &dueDate,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Essay", asgmt.Title)
	if assert.NotNil(t, asgmt.DueDate) {
		assert.True(t, asgmt.DueDate.Equal(dueDate))
	}

	got, err := svc.GetByID(ctx, asgmt.ID)
	assert.NoError(t, err)
	assert.Equal(t, asgmt.ID, got.ID)
}

func TestServiceQuery(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	mustCreate := func(classroomID, title string) {
		_, err := svc.Create(ctx, assignment.NewAssignment{ClassroomID: classroomID, Title: title})
		assert.NoError(t, err)
	}
	mustCreate("room1", "Essay")
	mustCreate("room1", "Lab Report")
	mustCreate("room2", "Quiz")

	all, err := svc.Query(ctx, nil)
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	room1, err := svc.Query(ctx, &assignment.QueryFilter{ClassroomID: "room1"})
	assert.NoError(t, err)
	assert.Len(t, room1, 2)

	found, err := svc.Query(ctx, &assignment.QueryFilter{Search: "lab"})
	assert.NoError(t, err)
	if assert.Len(t, found, 1) {
		assert.Equal(t, "Lab Report", found[0].Title)
	}
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	asgmt, err := svc.Create(ctx, assignment.NewAssignment{ClassroomID: "room1", Title: "Essay"})
	assert.NoError(t, err)

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := svc.Update(ctx, "nope", assignment.UpdateAssignment{Title: "X"})
		assert.Equal(t, assignment.ErrNotFound, err)
	})

	t.Run("extends the due date", func(t *testing.T) {
		dueDate := time.Now().UTC().Add(14 * 24 * time.Hour)
		got, err := svc.Update(ctx, asgmt.ID, assignment.UpdateAssignment{Title: "Final Essay", DueDate: &dueDate})
		assert.NoError(t, err)
		assert.Equal(t, "Final Essay", got.Title)
		if assert.NotNil(t, got.DueDate) {
			assert.True(t, got.DueDate.Equal(dueDate))
		}
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	asgmt, err := svc.Create(ctx, assignment.NewAssignment{ClassroomID: "room1", Title: "Essay"})
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, asgmt.ID))
	_, err = svc.GetByID(ctx, asgmt.ID)
	assert.Equal(t, assignment.ErrNotFound, err)
}

func TestAssignmentIsOverdue(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	asgmt := assignment.Assignment{}
	assert.False(t, asgmt.IsOverdue(now)) // no due date

	asgmt.DueDate = &future
	assert.False(t, asgmt.IsOverdue(now))

	asgmt.DueDate = &past
	assert.True(t, asgmt.IsOverdue(now))
}
