package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/acadyo/acadyo/core/submission"
	"github.com/acadyo/acadyo/core/user"
	testutil "github.com/acadyo/acadyo/tests"
)

func intPtr(i int) *int { return &i }

func Test_submissionApi_create(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "out01", "out@test.cd", "", []string{user.RoleStudent}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student.ID)
	asgmt := testutil.CreateAssignment(t, asgRepo, room.ID, "Essay", nil)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: getToken(t, student), body: marchallObj(t, submission.NewSubmission{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"assignment_id": "this field is required"}),
		},
		{
			name: "unknown assignment", token: getToken(t, student),
			body:     marchallObj(t, submission.NewSubmission{AssignmentID: "nope"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
		},
		{
			name: "enrollment required", token: getToken(t, outsider),
			body:     marchallObj(t, submission.NewSubmission{AssignmentID: asgmt.ID}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "student is not enrolled in this assignment's classroom"}),
		},
		{
			name: "created", token: getToken(t, student),
			body:     marchallObj(t, submission.NewSubmission{AssignmentID: asgmt.ID, Comment: "Here is my essay."}),
			wantCode: http.StatusCreated,
		},
		{
			name: "one submission per assignment", token: getToken(t, student),
			body:     marchallObj(t, submission.NewSubmission{AssignmentID: asgmt.ID}),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "a submission for this assignment already exists"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/submissions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var sub submission.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if sub.StudentID != student.ID {
					t.Errorf("failed! StudentID = %v; want %v", sub.StudentID, student.ID)
				}
				if sub.IsGraded() {
					t.Error("failed! new submission already graded")
				}
				if sub.SubmittedAt.IsZero() {
					t.Error("failed! SubmittedAt is zero")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_createWithFile(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student.ID)
	asgmt := testutil.CreateAssignment(t, asgRepo, room.ID, "Essay", nil)

	fields := map[string]string{
		"assignment_id": asgmt.ID,
		"comment":       "Essay attached.",
	}
	req, rec := newUploadRequest(t, http.MethodPost, "/v1/submissions", getToken(t, student), fields, "essay.pdf", "application/pdf", []byte("%PDF-1.4 my essay"))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var sub submission.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if sub.FileURL == "" {
		t.Error("failed! FileURL is empty; want hosted file URL")
	}

	stored, err := subRepo.GetSubmissionByID(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("GetSubmissionByID(): %v", err)
	}
	if !mediaSvc.Has(stored.FilePublicID) {
		t.Error("failed! uploaded file not found on media host")
	}
}

func Test_submissionApi_query(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, usrRepo, "Other Teacher", "teach02", "teach2@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student.ID)
	asgmt := testutil.CreateAssignment(t, asgRepo, room.ID, "Essay", nil)
	sub := testutil.CreateSubmission(t, subRepo, asgmt.ID, student.ID)

	tests := []httpTest{
		{
			name: "Teacher required", path: "/v1/submissions?assignment=" + asgmt.ID, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "assignment param required", path: "/v1/submissions", token: getToken(t, teacher),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "assignment query parameter is required"}),
		},
		{
			name: "assignment owner required", path: "/v1/submissions?assignment=" + asgmt.ID, token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "owner lists submissions", path: "/v1/submissions?assignment=" + asgmt.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, sub),
		},
		{
			name: "graded filter", path: "/v1/submissions?assignment=" + asgmt.ID + "&graded=true", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_mine(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	student1 := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	student2 := testutil.CreateUser(t, usrRepo, "Sidekick", "side01", "side@test.cd", "", []string{user.RoleStudent}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student1.ID)
	testutil.Enroll(t, roomRepo, room.ID, student2.ID)
	asgmt := testutil.CreateAssignment(t, asgRepo, room.ID, "Essay", nil)

	sub1 := testutil.CreateSubmission(t, subRepo, asgmt.ID, student1.ID)
	testutil.CreateSubmission(t, subRepo, asgmt.ID, student2.ID)

	req, rec := newAuthRequest(http.MethodGet, "/v1/submissions/mine", getToken(t, student1))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, sub1)}, rec)
}

func Test_submissionApi_retrieve(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, usrRepo, "Other Teacher", "teach02", "teach2@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	peer := testutil.CreateUser(t, usrRepo, "Peer", "peer01", "peer@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student.ID)
	asgmt := testutil.CreateAssignment(t, asgRepo, room.ID, "Essay", nil)
	sub := testutil.CreateSubmission(t, subRepo, asgmt.ID, student.ID)

	tests := []httpTest{
		{
			name: "unknown", path: "/v1/submissions/nope", token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "submission not found"}),
		},
		{
			name: "student owner", path: "/v1/submissions/" + sub.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, sub),
		},
		{
			name: "classroom teacher", path: "/v1/submissions/" + sub.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, sub),
		},
		{
			name: "admin", path: "/v1/submissions/" + sub.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, sub),
		},
		{
			name: "another student", path: "/v1/submissions/" + sub.ID, token: getToken(t, peer),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "another teacher", path: "/v1/submissions/" + sub.ID, token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_grade(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, usrRepo, "Other Teacher", "teach02", "teach2@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student.ID)
	asgmt := testutil.CreateAssignment(t, asgRepo, room.ID, "Essay", nil)
	sub := testutil.CreateSubmission(t, subRepo, asgmt.ID, student.ID)

	tests := []httpTest{
		{
			name: "Teacher required", token: getToken(t, student),
			body:     marchallObj(t, submission.GradeSubmission{Grade: intPtr(80)}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "grade required", token: getToken(t, teacher), body: marchallObj(t, submission.GradeSubmission{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grade": "this field is required"}),
		},
		{
			name: "grade below range", token: getToken(t, teacher),
			body:     marchallObj(t, submission.GradeSubmission{Grade: intPtr(-5)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grade": "grade must be 0 or greater"}),
		},
		{
			name: "grade above range", token: getToken(t, teacher),
			body:     marchallObj(t, submission.GradeSubmission{Grade: intPtr(120)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grade": "grade must be 100 or less"}),
		},
		{
			name: "assignment owner required", token: getToken(t, other),
			body:     marchallObj(t, submission.GradeSubmission{Grade: intPtr(80)}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "assignment does not belong to this teacher"}),
		},
		{
			name: "graded", token: getToken(t, teacher),
			body:     marchallObj(t, submission.GradeSubmission{Grade: intPtr(85), Comment: "Well researched."}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.path = "/v1/submissions/" + sub.ID + "/grade"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var graded submission.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &graded); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if !graded.IsGraded() || *graded.Grade != 85 {
					t.Errorf("failed! Grade = %v; want 85", graded.Grade)
				}
				if graded.Comment != "Well researched." {
					t.Errorf("failed! Comment = %q; want %q", graded.Comment, "Well researched.")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_destroy(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach01", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	room := testutil.CreateClassroom(t, roomRepo, "Biology 101", teacher.ID)
	testutil.Enroll(t, roomRepo, room.ID, student.ID)
	asgmt := testutil.CreateAssignment(t, asgRepo, room.ID, "Essay", nil)
	sub := testutil.CreateSubmission(t, subRepo, asgmt.ID, student.ID)

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/submissions/"+sub.ID, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("deleted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/submissions/"+sub.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		if _, err := subRepo.GetSubmissionByID(context.Background(), sub.ID); err == nil {
			t.Error("failed! submission still exists after delete")
		}
	})
}
