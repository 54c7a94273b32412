package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/aulalink/backend/apps/api/echo"
	"github.com/aulalink/backend/core/account"
	testutil "github.com/aulalink/backend/tests"
)

func Test_authApi_register(t *testing.T) {
	resetDB(t)

	testutil.CreateProfile(t, acctRepo, "Taken", "taken@test.cd", "", account.RoleStudent)
	testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")

	payload := func(role, name, email, pwd, code string) []byte {
		return marchallObj(t, echoapi.RegisterRequest{
			Role:            role,
			FullName:        name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			TeacherCode:     code,
		})
	}

	tests := []httpTest{
		{
			name: "Role required", body: payload("principal", "Ana Ruiz", "ana.ruiz@test.cd", "Ch4ng3m3Pls!", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of [teacher student]"}),
		},
		{
			name: "Weak password", body: payload("student", "Ana Ruiz", "ana.ruiz@test.cd", "short", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "Numeric password", body: payload("student", "Ana Ruiz", "ana.ruiz@test.cd", "1234567890", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "Email taken", body: payload("student", "Taken Bis", "taken@test.cd", "Ch4ng3m3Pls!", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "an account with this email already exists"}),
		},
		{
			name: "Unknown teacher code", body: payload("student", "Ana Ruiz", "ana.ruiz@test.cd", "Ch4ng3m3Pls!", "PROFZZ99XX"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacher_code": "unknown teacher code"}),
		},
		{
			name: "Malformed teacher code", body: payload("student", "Ana Ruiz", "ana.ruiz@test.cd", "Ch4ng3m3Pls!", "nope"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacher_code": "invalid teacher code"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Teacher registered", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/register", payload("teacher", "Prof Kalala", "kalala@test.cd", "Ch4ng3m3Pls!", ""))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res echoapi.RegisterResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Profile.Role != account.RoleTeacher {
			t.Errorf("role = %v, want %v", res.Profile.Role, account.RoleTeacher)
		}
		if res.Teacher == nil || !account.IsTeacherCode(res.Teacher.TeacherCode) {
			t.Errorf("teacher = %+v, want one with a valid code", res.Teacher)
		}
	})

	t.Run("Student registered", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/register", payload("student", "Ana Ruiz", "ana.ruiz@test.cd", "Ch4ng3m3Pls!", "PROFAB12CD"))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res echoapi.RegisterResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Profile.Role != account.RoleStudent {
			t.Errorf("role = %v, want %v", res.Profile.Role, account.RoleStudent)
		}
		if res.Teacher != nil {
			t.Errorf("teacher = %+v, want none", res.Teacher)
		}
	})
}

func Test_authApi_login(t *testing.T) {
	resetDB(t)

	testutil.CreateProfile(t, acctRepo, "Ana Ruiz", "ana.ruiz@test.cd", "Ch4ng3m3Pls!", account.RoleStudent)

	payload := func(email, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Email: email, Password: pwd})
	}
	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "Payload required", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{name: "Unknown email", body: payload("nope@test.cd", "Ch4ng3m3Pls!"), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "Wrong password", body: payload("ana.ruiz@test.cd", "nope"), wantCode: http.StatusBadRequest, wantData: authFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Logged in", func(t *testing.T) {
		// email case is normalized at the boundary
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", payload("Ana.Ruiz@Test.cd", "Ch4ng3m3Pls!"))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var res echoapi.LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Token == "" {
			t.Error("empty token")
		}
	})
}

func Test_authApi_me(t *testing.T) {
	resetDB(t)

	tprof, tchr := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	sprof := testutil.CreateProfile(t, acctRepo, "Ana Ruiz", "ana.ruiz@test.cd", "", account.RoleStudent)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher profile", token: getToken(t, tprof), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MeResponse{Profile: tprof, Teacher: &tchr}),
		},
		{
			name: "Student profile", token: getToken(t, sprof), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MeResponse{Profile: sprof}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_refreshToken(t *testing.T) {
	resetDB(t)

	prof := testutil.CreateProfile(t, acctRepo, "Ana Ruiz", "ana.ruiz@test.cd", "", account.RoleStudent)

	staleOriat := time.Now().Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix()
	staleToken, err := echoapi.GenerateToken(conf, echoapi.GetProfileClaims(conf, prof, staleOriat))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Refresh period expired", token: staleToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, prof), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v, want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				if ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData); err != nil || !ok {
					t.Errorf("data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
				}
				return
			}
			var res echoapi.LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if res.Token == "" {
				t.Error("empty token")
			}
		})
	}
}

func Test_authApi_acceptInvitation(t *testing.T) {
	resetDB(t)

	tprof, tchr := testutil.CreateTeacher(t, acctRepo, "Prof Mutombo", "mutombo@test.cd", "", "PROFAB12CD")
	inv := testutil.CreateInvitation(t, stdRepo, tprof.ID, "Ana Ruiz", "ana.ruiz@test.cd", "Secundaria 2")

	payload := func(id, pwd string) []byte {
		return marchallObj(t, account.AcceptInvitation{InvitationID: id, Password: pwd, PasswordConfirm: pwd})
	}

	t.Run("Onboarding completed", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/invitations/accept", payload(inv.ID, "Ch4ng3m3Pls!"))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res echoapi.RegisterResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Profile.Email != inv.StudentEmail {
			t.Errorf("email = %v, want %v", res.Profile.Email, inv.StudentEmail)
		}

		infos, err := stdRepo.QueryStudentsByTeacherCode(req.Context(), tchr.TeacherCode)
		if err != nil {
			t.Fatalf("QueryStudentsByTeacherCode() failed: %v", err)
		}
		if len(infos) != 1 {
			t.Errorf("students = %d, want 1", len(infos))
		}
	})

	tests := []httpTest{
		{
			name: "Already accepted", body: payload(inv.ID, "Ch4ng3m3Pls!"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"invitation_id": "invitation has already been accepted"}),
		},
		{
			name: "Unknown invitation", body: payload("b9a1a279-00dd-4589-8be6-c835e1d63cbb", "Ch4ng3m3Pls!"),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/invitations/accept", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
