package student

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/class"
)

var (
	// errors
	ErrNotFound            = errors.New("student not found")
	ErrTeacherNotFound     = errors.New("teacher not found")
	ErrDuplicateEnrollment = errors.New("student is already enrolled with this teacher")

	// NowFunc returns the current time; mockable in tests.
	NowFunc = time.Now
)

type (
	// Repository is the store collaborator of the onboarding workflow.
	// Implementations must map a unique-constraint conflict on
	// (profile_id, teacher_code) to ErrDuplicateEnrollment.
	Repository interface {
		GetTeacher(ctx context.Context, teacherID string) (TeacherRef, error)
		GetProfileIDByEmail(ctx context.Context, email string) (string, error)
		EnrollmentExists(ctx context.Context, profileID, teacherCode string) (bool, error)
		CreateStudent(ctx context.Context, std Student) (Student, error)
		CreateInvitation(ctx context.Context, inv Invitation) (Invitation, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		QueryStudentsByTeacherCode(ctx context.Context, teacherCode string) ([]Info, error)
		UpdateStudentTeacherCode(ctx context.Context, studentID, teacherCode string) (Student, error)
	}

	Service interface {
		Onboard(ctx context.Context, teacherID string, form EnrollStudent) (Enrollment, error)
		QueryByTeacher(ctx context.Context, teacherID string) ([]Info, error)
		QueryUnassigned(ctx context.Context) ([]Info, error)
		Assign(ctx context.Context, teacherID, studentID string) (Student, error)
	}

	service struct {
		repo     Repository
		classSvc class.Service
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, classSvc class.Service, mailSvc core.EmailService, conf *core.Config) *service {
	return &service{
		repo:     repo,
		classSvc: classSvc,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

// Onboard ensures a correctly-linked Student record (or a pending
// invitation) exists for the candidate, optionally booking one class in the
// same operation.
//
// The email is matched exactly as persisted; callers normalize beforehand if
// they want case-insensitive behavior. Two fatal outcomes exist:
// ErrTeacherNotFound and ErrDuplicateEnrollment, both before any write.
// Class-booking and notification failures after the commit are reported as
// warnings on the returned Enrollment, never as errors.
func (svc *service) Onboard(ctx context.Context, teacherID string, form EnrollStudent) (Enrollment, error) {
	teacher, err := svc.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return Enrollment{}, err
	}

	profileID, err := svc.repo.GetProfileIDByEmail(ctx, form.StudentEmail)
	switch {
	case err == nil:
		return svc.linkExisting(ctx, teacher, profileID, form)
	case errors.Is(err, ErrNotFound):
		return svc.createInvitation(ctx, teacher, form)
	default:
		return Enrollment{}, err
	}
}

// linkExisting is Branch A: the email belongs to a registered Profile.
func (svc *service) linkExisting(ctx context.Context, teacher TeacherRef, profileID string, form EnrollStudent) (Enrollment, error) {
	exists, err := svc.repo.EnrollmentExists(ctx, profileID, teacher.TeacherCode)
	if err != nil {
		return Enrollment{}, err
	}
	if exists {
		return Enrollment{}, ErrDuplicateEnrollment
	}

	now := NowFunc().UTC()
	std, err := svc.repo.CreateStudent(ctx, Student{
		ProfileID:    profileID,
		TeacherCode:  teacher.TeacherCode,
		Grade:        form.StudentLevel,
		IsRegistered: true, // a Profile implies completed credential setup
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// lost the race against a concurrent onboarding for the same pair
		return Enrollment{}, err
	}

	enr := Enrollment{Outcome: OutcomeLinkedExisting, Student: &std}
	svc.bookClass(ctx, teacher, form, class.StatusScheduled, &enr)
	// no notification: the person already has credentials
	return enr, nil
}

// createInvitation is Branch B: no Profile exists for the email.
func (svc *service) createInvitation(ctx context.Context, teacher TeacherRef, form EnrollStudent) (Enrollment, error) {
	inv, err := svc.repo.CreateInvitation(ctx, Invitation{
		TeacherID:    teacher.ID,
		StudentName:  form.StudentName,
		StudentEmail: form.StudentEmail,
		StudentLevel: form.StudentLevel,
		IsAccepted:   false,
		CreatedAt:    NowFunc().UTC(),
	})
	if err != nil {
		return Enrollment{}, err
	}

	enr := Enrollment{Outcome: OutcomeCreatedInvitation, Invitation: &inv}
	svc.bookClass(ctx, teacher, form, class.StatusPending, &enr)
	enr.NotifyErr = svc.sendInvitationMail(form, inv, teacher)
	return enr, nil
}

// bookClass runs the optional class-booking sub-step. A missing required
// field skips the booking silently; any other failure is recorded on the
// enrollment as a warning. The Student/Invitation write is never rolled back.
func (svc *service) bookClass(ctx context.Context, teacher TeacherRef, form EnrollStudent, status string, enr *Enrollment) {
	if !form.ScheduleClass {
		return
	}
	if !form.hasClassFields() {
		return // documented quirk: skip, do not fail the operation
	}

	duration := form.Duration
	if duration == 0 {
		duration = 60
	}
	cls, err := svc.classSvc.Create(ctx, teacher.ID, class.NewClass{
		StudentName:  form.StudentName,
		StudentEmail: form.StudentEmail,
		StudentLevel: form.StudentLevel,
		Topic:        form.Topic,
		ClassDate:    form.ClassDate,
		ClassTime:    form.ClassTime,
		Duration:     duration,
		Status:       status,
		MeetingLink:  form.MeetingLink,
		Notes:        form.Notes,
	})
	if err != nil {
		enr.ClassErr = err
		return
	}
	enr.Class = &cls
}

func (svc *service) sendInvitationMail(form EnrollStudent, inv Invitation, teacher TeacherRef) error {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: form.StudentName, Address: form.StudentEmail}},
		Subject:      fmt.Sprintf("Invitación para unirte a la clase de %s", teacher.FullName),
		TemplateName: "student-invitation",
		TemplateData: struct {
			StudentName     string
			TeacherName     string
			RegistrationURL string
		}{
			StudentName:     form.StudentName,
			TeacherName:     teacher.FullName,
			RegistrationURL: fmt.Sprintf("%s/auth?invitation=%s", svc.conf.FrontendBaseURL, inv.ID),
		},
	}
	return svc.mailSvc.SendMessage(msg)
}

func (svc *service) QueryByTeacher(ctx context.Context, teacherID string) ([]Info, error) {
	teacher, err := svc.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentsByTeacherCode(ctx, teacher.TeacherCode)
}

func (svc *service) QueryUnassigned(ctx context.Context) ([]Info, error) {
	return svc.repo.QueryStudentsByTeacherCode(ctx, UnassignedTeacherCode)
}

// Assign moves a self-registered, unclaimed student under the acting
// teacher's code.
func (svc *service) Assign(ctx context.Context, teacherID, studentID string) (Student, error) {
	teacher, err := svc.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return Student{}, err
	}
	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return Student{}, err
	}
	if std.TeacherCode != UnassignedTeacherCode {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "student is already assigned to a teacher"})
	}
	return svc.repo.UpdateStudentTeacherCode(ctx, std.ID, teacher.TeacherCode)
}
