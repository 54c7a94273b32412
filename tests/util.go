package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/account"
	"github.com/aulalink/backend/core/class"
	"github.com/aulalink/backend/core/student"
)

// TestLogger drops everything; failures surface through test assertions.
type TestLogger struct{}

var _ core.Logger = (*TestLogger)(nil)

func (TestLogger) Debug(msg string, args ...interface{}) {}
func (TestLogger) Info(msg string, args ...interface{})  {}
func (TestLogger) Warn(msg string, args ...interface{})  {}
func (TestLogger) Error(msg string, args ...interface{}) {}
func (TestLogger) Fatal(msg string, args ...interface{}) {}

// NewTestConfig returns a Config suitable for unit tests.
func NewTestConfig() *core.Config {
	return &core.Config{
		Env:              "test",
		TestMode:         true,
		AppName:          "AulaLink",
		SecretKey:        []byte("secret"),
		FrontendBaseURL:  "https://app.aulalink.test",
		DefaultFromEmail: mail.Address{Name: "AulaLink", Address: "noreply@aulalink.test"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

// CreateProfile inserts a profile with the given role.
func CreateProfile(
	t *testing.T,
	repo account.Repository,
	name, email, pwd, role string,
) account.Profile {
	t.Helper()

	now := time.Now().UTC()
	prof := account.Profile{
		Email:     email,
		FullName:  name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := prof.SetPassword(pwd); err != nil {
			t.Fatalf("CreateProfile() failed: %v", err)
		}
	}
	prof, err := repo.CreateProfile(context.Background(), prof)
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return prof
}

// CreateTeacher inserts a teacher profile plus its teacher row.
func CreateTeacher(
	t *testing.T,
	repo account.Repository,
	name, email, pwd, code string,
) (account.Profile, account.Teacher) {
	t.Helper()

	prof := CreateProfile(t, repo, name, email, pwd, account.RoleTeacher)
	tchr, err := repo.CreateTeacher(context.Background(), account.Teacher{
		ID:          prof.ID,
		TeacherCode: code,
		CreatedAt:   prof.CreatedAt,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return prof, tchr
}

// CreateStudent inserts a student row for an existing profile.
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	profileID, teacherCode string,
	isRegistered bool,
) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		ProfileID:    profileID,
		TeacherCode:  teacherCode,
		IsRegistered: isRegistered,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

// CreateInvitation inserts a pending invitation.
func CreateInvitation(
	t *testing.T,
	repo student.Repository,
	teacherID, name, email, level string,
) student.Invitation {
	t.Helper()

	inv, err := repo.CreateInvitation(context.Background(), student.Invitation{
		TeacherID:    teacherID,
		StudentName:  name,
		StudentEmail: email,
		StudentLevel: level,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateInvitation() failed: %v", err)
	}
	return inv
}

// CreateClass inserts a class row directly, bypassing service validation.
func CreateClass(
	t *testing.T,
	repo class.Repository,
	teacherID, studentName, studentEmail, topic string,
	date time.Time,
) class.Class {
	t.Helper()

	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), class.Class{
		TeacherID:     teacherID,
		StudentName:   studentName,
		StudentEmail:  studentEmail,
		Topic:         topic,
		ClassDate:     date,
		ClassTime:     "10:00",
		Duration:      60,
		Status:        class.StatusScheduled,
		PaymentStatus: class.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}
