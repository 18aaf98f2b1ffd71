package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/user"
	testutil "github.com/acadyo/acadyo/tests"
)

func Test_classroomApi_create(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getToken(t, student),
			body:     marchallObj(t, classroom.NewClassroom{Title: "Chemistry 101"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: getToken(t, teacher), body: marchallObj(t, classroom.NewClassroom{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "duplicate title", token: getToken(t, teacher),
			body:     marchallObj(t, classroom.NewClassroom{Title: "Biology 101"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "a classroom with this title already exists"}),
		},
		{
			name: "duplicate title (case-insensitive)", token: getToken(t, teacher),
			body:     marchallObj(t, classroom.NewClassroom{Title: "bioLOGY 101"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "a classroom with this title already exists"}),
		},
		{
			name: "created", token: getToken(t, teacher),
			body:     marchallObj(t, classroom.NewClassroom{Title: "Chemistry 101", Description: "Atoms and such"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/classrooms"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var room classroom.Classroom
				if err := json.Unmarshal(rec.Body.Bytes(), &room); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if room.TeacherID != teacher.ID {
					t.Errorf("failed! TeacherID = %v; want %v", room.TeacherID, teacher.ID)
				}
				if len(room.Code) != classroom.DefaultCodeLength {
					t.Errorf("failed! code %q; want length %d", room.Code, classroom.DefaultCodeLength)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_classroomApi_query(t *testing.T) {
	app := setup(t)

	teacher1 := testutil.CreateUser(t, usrRepo, "Teacher One", "teach01", "teach1@test.cd", "", []string{user.RoleTeacher}, true)
	teacher2 := testutil.CreateUser(t, usrRepo, "Teacher Two", "teach02", "teach2@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	room1 := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher1.ID)
	room2 := testutil.CreateClassroom(t, roomRepo, "Chemistry 101", teacher2.ID)

	tests := []httpTest{
		{
			name: "teacher sees only their own", token: getToken(t, teacher1),
			wantCode: http.StatusOK, wantData: marchallList(t, room1),
		},
		{
			name: "admin sees all", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, room1, room2),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/classrooms"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_classroomApi_detail(t *testing.T) {
	app := setup(t)

	teacher1 := testutil.CreateUser(t, usrRepo, "Teacher One", "teach01", "teach1@test.cd", "", []string{user.RoleTeacher}, true)
	teacher2 := testutil.CreateUser(t, usrRepo, "Teacher Two", "teach02", "teach2@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher1.ID)

	t.Run("owner retrieves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classrooms/"+room.ID, getToken(t, teacher1))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, room)}, rec)
	})

	t.Run("non-owner gets 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classrooms/"+room.ID, getToken(t, teacher2))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("owner updates; code is immutable", func(t *testing.T) {
		body := marchallObj(t, classroom.UpdateClassroom{Title: "Biology 102"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/classrooms/"+room.ID, getToken(t, teacher1), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var updated classroom.Classroom
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if updated.Title != "Biology 102" {
			t.Errorf("failed! Title = %q; want %q", updated.Title, "Biology 102")
		}
		if updated.Code != room.Code {
			t.Errorf("failed! Code changed from %q to %q", room.Code, updated.Code)
		}
	})

	t.Run("admin deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/classrooms/"+room.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusNoContent)
		}

		if _, err := roomRepo.GetClassroom(context.Background(), classroom.GetFilter{ID: room.ID}); err == nil {
			t.Error("failed! classroom still exists after delete")
		}
	})
}

func Test_enrollmentApi_join(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	hybrid := testutil.CreateUser(t, usrRepo, "Hybrid", "hybrid01", "hybrid@test.cd", "", []string{user.RoleTeacher, user.RoleStudent}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	ownRoom := testutil.CreateClassroom(t, roomRepo, "Own Room", hybrid.ID)

	joinBody := func(code string) []byte {
		return marchallObj(t, map[string]string{"code": code})
	}

	tests := []httpTest{
		{name: "Auth required", body: joinBody(room.Code), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "code required", token: getToken(t, student), body: joinBody(""),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": "this field is required"}),
		},
		{
			name: "teacher cannot join", token: getToken(t, teacher), body: joinBody(room.Code),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "only students can enroll in a classroom"}),
		},
		{
			name: "invalid code", token: getToken(t, student), body: joinBody("NOPE42"),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "invalid classroom code"}),
		},
		{
			name: "self-enrollment rejected", token: getToken(t, hybrid), body: joinBody(ownRoom.Code),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "a teacher cannot enroll in their own classroom"}),
		},
		{name: "joined", token: getToken(t, student), body: joinBody(room.Code), wantCode: http.StatusOK},
		{
			name: "joined with messy code", token: getToken(t, hybrid),
			body:     joinBody("  " + strings.ToLower(room.Code) + " "),
			wantCode: http.StatusOK,
		},
		{
			name: "already enrolled", token: getToken(t, student), body: joinBody(room.Code),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "student is already enrolled in this classroom"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/enrollment/join"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var joined classroom.Classroom
				if err := json.Unmarshal(rec.Body.Bytes(), &joined); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if joined.ID != room.ID {
					t.Errorf("failed! joined %v; want %v", joined.ID, room.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// both sides of the enrollment agree
	enrolled, err := roomRepo.HasStudent(context.Background(), room.ID, student.ID)
	if err != nil {
		t.Fatalf("HasStudent(): %v", err)
	}
	if !enrolled {
		t.Error("failed! student not recorded in classroom roster")
	}
}

func Test_enrollmentApi_leaveAndRemove(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, usrRepo, "Other Teacher", "teach02", "teach2@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student.ID)

	t.Run("non-owner cannot remove student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/enrollment/classrooms/"+room.ID+"/students/"+student.ID, getToken(t, other))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "classroom does not belong to this teacher"}),
		}, rec)
	})

	t.Run("owner removes student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/enrollment/classrooms/"+room.ID+"/students/"+student.ID, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
	})

	t.Run("leave when not enrolled", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/enrollment/leave/"+room.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "student is not enrolled in this classroom"}),
		}, rec)
	})

	t.Run("leave", func(t *testing.T) {
		testutil.Enroll(t, roomRepo, room.ID, student.ID)

		req, rec := newAuthRequest(http.MethodDelete, "/v1/enrollment/leave/"+room.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		enrolled, err := roomRepo.HasStudent(context.Background(), room.ID, student.ID)
		if err != nil {
			t.Fatalf("HasStudent(): %v", err)
		}
		if enrolled {
			t.Error("failed! student still enrolled after leaving")
		}
	})
}

func Test_enrollmentApi_myClassroomsAndStudents(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	room1 := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	room2 := testutil.CreateClassroom(t, roomRepo, "Chemistry 101", teacher.ID)
	testutil.CreateClassroom(t, roomRepo, "Physics 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room1.ID, student.ID)
	testutil.Enroll(t, roomRepo, room2.ID, student.ID)

	t.Run("my-classrooms", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/enrollment/my-classrooms", getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusOK)
		}
		var rooms []classroom.Classroom
		if err := json.Unmarshal(rec.Body.Bytes(), &rooms); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(rooms) != 2 {
			t.Fatalf("failed! len(rooms) = %d; want 2", len(rooms))
		}
		for _, room := range rooms {
			if !room.HasStudent(student.ID) {
				t.Errorf("failed! classroom %q roster is missing the student", room.Title)
			}
		}
	})

	t.Run("students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/enrollment/classrooms/"+room1.ID+"/students", getToken(t, teacher))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusOK)
		}
		var students []user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(students) != 1 || students[0].ID != student.ID {
			t.Errorf("failed! students = %v; want [%v]", students, student.ID)
		}
	})

	t.Run("students of unknown classroom", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/enrollment/classrooms/nope/students", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "classroom not found"}),
		}, rec)
	})
}
