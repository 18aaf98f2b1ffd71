package classroom_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/user"
	"github.com/acadyo/acadyo/storage/database/dummy"
)

func setup(t *testing.T) (classroom.Service, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return classroom.NewService(dummydb.NewClassroomRepository(db)), dummydb.NewUserRepository(db)
}

func createUser(t *testing.T, repo user.Repository, name string, roles ...string) user.User {
	t.Helper()

	usr := user.User{
		Name:     name,
		Username: strings.ToLower(name),
		Email:    strings.ToLower(name) + "@test.test",
		Roles:    user.NormalizeRoles(roles...),
	}
	usr.SetActive(true)
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createClassroom(t *testing.T, svc classroom.Service, teacher user.User, title string) classroom.Classroom {
	t.Helper()

	room, err := svc.Create(context.Background(), classroom.NewClassroom{Title: title}, teacher)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	return room
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	teacher := createUser(t, usrRepo, "teachr", user.RoleTeacher)

	room := createClassroom(t, svc, teacher, "Algebra I")
	assert.Equal(t, "Algebra I", room.Title)
	assert.Equal(t, teacher.ID, room.TeacherID)
	assert.Len(t, room.Code, classroom.DefaultCodeLength)
	assert.Empty(t, room.StudentIDs)

	// the generated code resolves back to the classroom
	got, err := svc.GetByID(ctx, room.ID)
	assert.NoError(t, err)
	assert.Equal(t, room.Code, got.Code)
}

func TestServiceJoin(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	teacher := createUser(t, usrRepo, "teachr", user.RoleTeacher)
	student := createUser(t, usrRepo, "studnt", user.RoleStudent)
	room := createClassroom(t, svc, teacher, "Algebra I")

	t.Run("invalid code", func(t *testing.T) {
		_, err := svc.Join(ctx, "NOPE99", student)
		assert.Equal(t, classroom.ErrInvalidCode, err)
	})

	t.Run("not a student", func(t *testing.T) {
		other := createUser(t, usrRepo, "other1", user.RoleTeacher)
		_, err := svc.Join(ctx, room.Code, other)
		assert.Equal(t, classroom.ErrNotAStudent, err)
	})

	t.Run("self enrollment", func(t *testing.T) {
		// a teacher holding the student role still cannot join their own classroom
		hybrid := createUser(t, usrRepo, "hybrid", user.RoleTeacher, user.RoleStudent)
		hybridRoom := createClassroom(t, svc, hybrid, "Physics")
		_, err := svc.Join(ctx, hybridRoom.Code, hybrid)
		assert.Equal(t, classroom.ErrSelfEnrollment, err)
	})

	t.Run("normalized code matches", func(t *testing.T) {
		// lowercase, padded input still resolves
		joined, err := svc.Join(ctx, " "+strings.ToLower(room.Code)+" ", student)
		assert.NoError(t, err)
		assert.Equal(t, room.ID, joined.ID)
		assert.Contains(t, joined.StudentIDs, student.ID)
	})

	t.Run("already enrolled", func(t *testing.T) {
		_, err := svc.Join(ctx, room.Code, student)
		assert.Equal(t, classroom.ErrAlreadyEnrolled, err)

		// retrying yields the same error, not a different state
		_, err = svc.Join(ctx, room.Code, student)
		assert.Equal(t, classroom.ErrAlreadyEnrolled, err)

		got, err := svc.GetByID(ctx, room.ID)
		assert.NoError(t, err)
		assert.Equal(t, []string{student.ID}, got.StudentIDs)
	})
}

func TestServiceLeave(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	teacher := createUser(t, usrRepo, "teachr", user.RoleTeacher)
	student := createUser(t, usrRepo, "studnt", user.RoleStudent)
	room := createClassroom(t, svc, teacher, "Algebra I")

	t.Run("not enrolled", func(t *testing.T) {
		assert.Equal(t, classroom.ErrNotEnrolled, svc.Leave(ctx, room.ID, student))
	})

	t.Run("unknown classroom", func(t *testing.T) {
		assert.Equal(t, classroom.ErrNotFound, svc.Leave(ctx, "nope", student))
	})

	t.Run("enrolled", func(t *testing.T) {
		_, err := svc.Join(ctx, room.Code, student)
		assert.NoError(t, err)

		assert.NoError(t, svc.Leave(ctx, room.ID, student))

		got, err := svc.GetByID(ctx, room.ID)
		assert.NoError(t, err)
		assert.Empty(t, got.StudentIDs)

		mine, err := svc.Query(ctx, &classroom.QueryFilter{StudentID: student.ID})
		assert.NoError(t, err)
		assert.Empty(t, mine)
	})
}

func TestServiceRemoveStudent(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	teacher := createUser(t, usrRepo, "teachr", user.RoleTeacher)
	student := createUser(t, usrRepo, "studnt", user.RoleStudent)
	room := createClassroom(t, svc, teacher, "Algebra I")

	_, err := svc.Join(ctx, room.Code, student)
	assert.NoError(t, err)

	t.Run("not owner", func(t *testing.T) {
		other := createUser(t, usrRepo, "other2", user.RoleTeacher)
		assert.Equal(t, classroom.ErrNotOwner, svc.RemoveStudent(ctx, room.ID, student.ID, other))
	})

	t.Run("owner", func(t *testing.T) {
		assert.NoError(t, svc.RemoveStudent(ctx, room.ID, student.ID, teacher))

		got, err := svc.GetByID(ctx, room.ID)
		assert.NoError(t, err)
		assert.Empty(t, got.StudentIDs)
	})

	t.Run("not enrolled", func(t *testing.T) {
		assert.Equal(t, classroom.ErrNotEnrolled, svc.RemoveStudent(ctx, room.ID, student.ID, teacher))
	})

	t.Run("admin", func(t *testing.T) {
		_, err := svc.Join(ctx, room.Code, student)
		assert.NoError(t, err)

		admin := createUser(t, usrRepo, "admin1", user.RoleAdmin)
		assert.NoError(t, svc.RemoveStudent(ctx, room.ID, student.ID, admin))
	})
}

func TestServiceDeleteClearsEnrollments(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	teacher := createUser(t, usrRepo, "teachr", user.RoleTeacher)
	room := createClassroom(t, svc, teacher, "Algebra I")

	students := make([]user.User, 3)
	for i, name := range []string{"alice1", "brian1", "carol1"} {
		students[i] = createUser(t, usrRepo, name, user.RoleStudent)
		_, err := svc.Join(ctx, room.Code, students[i])
		assert.NoError(t, err)
	}

	assert.NoError(t, svc.Delete(ctx, room.ID))

	_, err := svc.GetByID(ctx, room.ID)
	assert.Equal(t, classroom.ErrNotFound, err)

	// no dangling back-references survive
	for _, student := range students {
		mine, err := svc.Query(ctx, &classroom.QueryFilter{StudentID: student.ID})
		assert.NoError(t, err)
		assert.Empty(t, mine)
	}
}

// end-to-end: create -> join with a messy code -> listed on both sides -> leave -> both sides empty
func TestEnrollmentRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	teacher := createUser(t, usrRepo, "teachr", user.RoleTeacher)
	student := createUser(t, usrRepo, "studnt", user.RoleStudent)
	room := createClassroom(t, svc, teacher, "Algebra I")

	_, err := svc.Join(ctx, " "+strings.ToLower(room.Code)+" ", student)
	assert.NoError(t, err)

	roster, err := svc.Students(ctx, room.ID)
	assert.NoError(t, err)
	if assert.Len(t, roster, 1) {
		assert.Equal(t, student.ID, roster[0].ID)
	}
	mine, err := svc.Query(ctx, &classroom.QueryFilter{StudentID: student.ID})
	assert.NoError(t, err)
	if assert.Len(t, mine, 1) {
		assert.Equal(t, room.ID, mine[0].ID)
	}

	assert.NoError(t, svc.Leave(ctx, room.ID, student))

	roster, err = svc.Students(ctx, room.ID)
	assert.NoError(t, err)
	assert.Empty(t, roster)
	mine, err = svc.Query(ctx, &classroom.QueryFilter{StudentID: student.ID})
	assert.NoError(t, err)
	assert.Empty(t, mine)
}

func TestServiceCheckTitleUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	teacher := createUser(t, usrRepo, "teachr", user.RoleTeacher)
	room := createClassroom(t, svc, teacher, "Algebra I")

	assert.Equal(t, classroom.ErrTitleExists, svc.CheckTitleUniqueness(ctx, "algebra i", teacher.ID))

	// excluding the classroom itself allows an unchanged title on update
	assert.NoError(t, svc.CheckTitleUniqueness(ctx, "Algebra I", teacher.ID, room))

	// another teacher may reuse the title
	other := createUser(t, usrRepo, "other3", user.RoleTeacher)
	assert.NoError(t, svc.CheckTitleUniqueness(ctx, "Algebra I", other.ID))
}
