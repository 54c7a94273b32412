package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/aulalink/backend/apps/api/echo"
	"github.com/aulalink/backend/core/account"
	"github.com/aulalink/backend/core/class"
	"github.com/aulalink/backend/core/student"
	emailsvc "github.com/aulalink/backend/services/email"
	testutil "github.com/aulalink/backend/tests"
)

func Test_studentApi_onboard(t *testing.T) {
	resetDB(t)

	tprof, tchr := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	sprof := testutil.CreateProfile(t, acctRepo, "Ben Ilunga", "ben.ilunga@test.cd", "", account.RoleStudent)
	teacherToken := getToken(t, tprof)
	studentToken := getToken(t, sprof)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: studentToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Payload required", token: teacherToken, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"student_name":  "this field is required",
				"student_email": "this field is required",
			}),
		},
		{
			name:  "Invalid email",
			token: teacherToken, body: marchallObj(t, student.EnrollStudent{StudentName: "Ana", StudentEmail: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_email": "student_email must be a valid email address"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/students", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Unknown email creates invitation", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		body := marchallObj(t, student.EnrollStudent{
			StudentName:  "Ana Ruiz",
			StudentEmail: "ana.ruiz@test.cd",
			StudentLevel: "Secundaria 2",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", teacherToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res echoapi.EnrollmentResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Outcome != student.OutcomeCreatedInvitation {
			t.Errorf("outcome = %v, want %v", res.Outcome, student.OutcomeCreatedInvitation)
		}
		if res.Invitation == nil || res.Invitation.TeacherID != tprof.ID {
			t.Errorf("invitation = %+v, want one for teacher %v", res.Invitation, tprof.ID)
		}
		if res.Student != nil {
			t.Error("no student row expected on the invitation branch")
		}
		if len(res.Warnings) != 0 {
			t.Errorf("warnings = %v", res.Warnings)
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Errorf("emails sent = %d, want 1", len(emailsvc.SentMessages))
		}
	})

	t.Run("Existing profile is linked", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		body := marchallObj(t, student.EnrollStudent{
			StudentName:  "Ben Ilunga",
			StudentEmail: "ben.ilunga@test.cd",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", teacherToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res echoapi.EnrollmentResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Outcome != student.OutcomeLinkedExisting {
			t.Errorf("outcome = %v, want %v", res.Outcome, student.OutcomeLinkedExisting)
		}
		if res.Student == nil || res.Student.TeacherCode != tchr.TeacherCode {
			t.Errorf("student = %+v, want one under %v", res.Student, tchr.TeacherCode)
		}
		if len(emailsvc.SentMessages) != 0 {
			t.Errorf("no email expected; got %d", len(emailsvc.SentMessages))
		}

		// onboarding the same pair again conflicts
		req, rec = newAuthRequest(http.MethodPost, "/v1/students", teacherToken, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "student is already enrolled with this teacher"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Class booked alongside", func(t *testing.T) {
		body := marchallObj(t, student.EnrollStudent{
			StudentName:   "Carla Mbiya",
			StudentEmail:  "carla.mbiya@test.cd",
			ScheduleClass: true,
			Topic:         "Fracciones",
			ClassDate:     tomorrow(),
			ClassTime:     "16:30",
			Duration:      60,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", teacherToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res echoapi.EnrollmentResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Class == nil || res.Class.Status != class.StatusPending {
			t.Errorf("class = %+v, want a pending one", res.Class)
		}
	})

	t.Run("Past class date is a warning", func(t *testing.T) {
		body := marchallObj(t, student.EnrollStudent{
			StudentName:   "Dado Kanza",
			StudentEmail:  "dado.kanza@test.cd",
			ScheduleClass: true,
			Topic:         "Fracciones",
			ClassDate:     "2020-01-15",
			ClassTime:     "16:30",
			Duration:      60,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", teacherToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res echoapi.EnrollmentResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Class != nil {
			t.Error("no class expected for a past date")
		}
		if len(res.Warnings) != 1 {
			t.Errorf("warnings = %v, want 1", res.Warnings)
		}
	})
}

func Test_studentApi_query(t *testing.T) {
	resetDB(t)

	tprof, tchr := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	ana := testutil.CreateProfile(t, acctRepo, "Ana Ruiz", "ana.ruiz@test.cd", "", account.RoleStudent)
	ben := testutil.CreateProfile(t, acctRepo, "Ben Ilunga", "ben.ilunga@test.cd", "", account.RoleStudent)
	anaStd := testutil.CreateStudent(t, stdRepo, ana.ID, tchr.TeacherCode, true)
	benStd := testutil.CreateStudent(t, stdRepo, ben.ID, student.UnassignedTeacherCode, true)
	teacherToken := getToken(t, tprof)

	anaInfo := student.Info{Student: anaStd, FullName: ana.FullName, Email: ana.Email}
	benInfo := student.Info{Student: benStd, FullName: ben.FullName, Email: ben.Email}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", path: "/v1/students", token: getToken(t, ana), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "My students", path: "/v1/students", token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallList(t, anaInfo),
		},
		{
			name: "Unassigned pool", path: "/v1/students/unassigned", token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallList(t, benInfo),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_assign(t *testing.T) {
	resetDB(t)

	tprof, tchr := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	ana := testutil.CreateProfile(t, acctRepo, "Ana Ruiz", "ana.ruiz@test.cd", "", account.RoleStudent)
	ben := testutil.CreateProfile(t, acctRepo, "Ben Ilunga", "ben.ilunga@test.cd", "", account.RoleStudent)
	unassigned := testutil.CreateStudent(t, stdRepo, ana.ID, student.UnassignedTeacherCode, true)
	taken := testutil.CreateStudent(t, stdRepo, ben.ID, "PROFZZ99XX", true)
	teacherToken := getToken(t, tprof)

	t.Run("Claims an unassigned student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+unassigned.ID+"/assign", teacherToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var std student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if std.TeacherCode != tchr.TeacherCode {
			t.Errorf("teacher code = %v, want %v", std.TeacherCode, tchr.TeacherCode)
		}
	})

	tests := []httpTest{
		{
			name: "Already assigned", path: "/v1/students/" + taken.ID + "/assign", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "student is already assigned to a teacher"}),
		},
		{
			name: "Unknown student", path: "/v1/students/8b8e39c5-95bc-4bd2-b1e2-6d2c1f3d9f5e/assign", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, teacherToken)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
