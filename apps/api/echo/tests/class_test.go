package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/aulalink/backend/core/account"
	"github.com/aulalink/backend/core/class"
	dummydb "github.com/aulalink/backend/storage/database/dummy"
	testutil "github.com/aulalink/backend/tests"
)

func Test_classApi_create(t *testing.T) {
	resetDB(t)

	tprof, _ := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	sprof := testutil.CreateProfile(t, acctRepo, "Ana Ruiz", "ana.ruiz@test.cd", "", account.RoleStudent)
	teacherToken := getToken(t, tprof)

	payload := func(mutate func(*class.NewClass)) []byte {
		nc := class.NewClass{
			StudentName:  "Ana Ruiz",
			StudentEmail: "ana.ruiz@test.cd",
			Topic:        "Fracciones",
			ClassDate:    tomorrow(),
			ClassTime:    "16:30",
			Duration:     60,
		}
		if mutate != nil {
			mutate(&nc)
		}
		return marchallObj(t, nc)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getToken(t, sprof), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Bad duration", token: teacherToken, body: payload(func(nc *class.NewClass) { nc.Duration = 42 }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"duration": "duration must be one of [30 45 60 90 120]"}),
		},
		{
			name: "Past date", token: teacherToken, body: payload(func(nc *class.NewClass) { nc.ClassDate = "2020-01-15" }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class_date": "date cannot be in the past"}),
		},
		{
			name: "Bad status", token: teacherToken, body: payload(func(nc *class.NewClass) { nc.Status = "Confirmada" }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "status must be one of [Programada Pendiente Completada Cancelada]"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/classes", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Class created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", teacherToken, payload(nil))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var cls class.Class
		if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if cls.TeacherID != tprof.ID {
			t.Errorf("teacher ID = %v, want %v", cls.TeacherID, tprof.ID)
		}
		if cls.Status != class.StatusScheduled || cls.PaymentStatus != class.PaymentUnpaid {
			t.Errorf("defaults not applied: %v / %v", cls.Status, cls.PaymentStatus)
		}
	})
}

func Test_classApi_query(t *testing.T) {
	resetDB(t)

	tprof, _ := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	other, _ := testutil.CreateTeacher(t, acctRepo, "Prof Kalala", "kalala@test.cd", "", "PROFZZ99XX")
	teacherToken := getToken(t, tprof)

	soon := testutil.CreateClass(t, dummydb.NewClassRepository(db), tprof.ID, "Ana Ruiz", "ana.ruiz@test.cd", "Fracciones", time.Now().UTC().AddDate(0, 0, 1))
	later := testutil.CreateClass(t, dummydb.NewClassRepository(db), tprof.ID, "Ben Ilunga", "ben.ilunga@test.cd", "Geometría", time.Now().UTC().AddDate(0, 0, 7))
	testutil.CreateClass(t, dummydb.NewClassRepository(db), other.ID, "Carla Mbiya", "carla.mbiya@test.cd", "Álgebra", time.Now().UTC().AddDate(0, 0, 3))

	tests := []httpTest{
		{
			name: "Own classes only, soonest first", path: "/v1/classes",
			wantData: marchallList(t, soon, later),
		},
		{
			name: "Explicit ordering", path: "/v1/classes?ordering=-class_date",
			wantData: marchallList(t, later, soon),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, teacherToken)
			app.ServeHTTP(rec, req)
			tt.wantCode = http.StatusOK
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_classApi_update(t *testing.T) {
	resetDB(t)

	tprof, _ := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	other, _ := testutil.CreateTeacher(t, acctRepo, "Prof Kalala", "kalala@test.cd", "", "PROFZZ99XX")
	cls := testutil.CreateClass(t, dummydb.NewClassRepository(db), tprof.ID, "Ana Ruiz", "ana.ruiz@test.cd", "Fracciones", time.Now().UTC().AddDate(0, 0, 1))
	teacherToken := getToken(t, tprof)

	t.Run("Not the owner", func(t *testing.T) {
		body := marchallObj(t, class.UpdateClass{Status: class.StatusCompleted})
		req, rec := newAuthRequest(http.MethodPut, "/v1/classes/"+cls.ID, getToken(t, other), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		}, rec)
	})

	t.Run("Partial update", func(t *testing.T) {
		body := marchallObj(t, class.UpdateClass{
			Status:        class.StatusCompleted,
			PaymentStatus: class.PaymentPaid,
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/classes/"+cls.ID, teacherToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got class.Class
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.Status != class.StatusCompleted || got.PaymentStatus != class.PaymentPaid {
			t.Errorf("update not applied: %v / %v", got.Status, got.PaymentStatus)
		}
		if got.Topic != cls.Topic {
			t.Errorf("topic changed: %v", got.Topic)
		}
	})

	t.Run("Bad payment status", func(t *testing.T) {
		body := marchallObj(t, class.UpdateClass{PaymentStatus: "Gratis"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/classes/"+cls.ID, teacherToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"payment_status": "invalid payment status"}),
		}, rec)
	})
}

func Test_classApi_destroy(t *testing.T) {
	resetDB(t)

	tprof, _ := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	cls := testutil.CreateClass(t, dummydb.NewClassRepository(db), tprof.ID, "Ana Ruiz", "ana.ruiz@test.cd", "Fracciones", time.Now().UTC().AddDate(0, 0, 1))
	teacherToken := getToken(t, tprof)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/classes/"+cls.ID, teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/classes/"+cls.ID, teacherToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)
}

func Test_classApi_myClasses(t *testing.T) {
	resetDB(t)

	tprof, _ := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	sprof := testutil.CreateProfile(t, acctRepo, "Ana Ruiz", "ana.ruiz@test.cd", "", account.RoleStudent)
	mine := testutil.CreateClass(t, dummydb.NewClassRepository(db), tprof.ID, "Ana Ruiz", "ana.ruiz@test.cd", "Fracciones", time.Now().UTC().AddDate(0, 0, 1))
	testutil.CreateClass(t, dummydb.NewClassRepository(db), tprof.ID, "Ben Ilunga", "ben.ilunga@test.cd", "Geometría", time.Now().UTC().AddDate(0, 0, 2))

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Student required", token: getToken(t, tprof), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Own classes", token: getToken(t, sprof), wantCode: http.StatusOK,
			wantData: marchallList(t, mine),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/my-classes", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
