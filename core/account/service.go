package account

import (
	"context"
	"errors"
	"time"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/student"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrTeacherCodeExists  = errors.New("teacher code already taken")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationAccepted = errors.New("invitation has already been accepted")

	// NowFunc returns the current time; mockable in tests.
	NowFunc = time.Now

	// teacher code collisions are vanishingly rare; bail out after a few tries
	maxCodeAttempts = 3
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateProfile(ctx context.Context, prof Profile) (Profile, error)
		GetProfileByID(ctx context.Context, id string) (Profile, error)
		GetProfileByEmail(ctx context.Context, email string) (Profile, error)
		SetLastLogin(ctx context.Context, profileID string, t time.Time) (Profile, error)
		SetPassword(ctx context.Context, profileID string, hash []byte) error
		CreateTeacher(ctx context.Context, tchr Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		GetTeacherByCode(ctx context.Context, code string) (Teacher, error)
		CreateStudent(ctx context.Context, std student.Student) (student.Student, error)
		GetInvitation(ctx context.Context, id string) (student.Invitation, error)
		MarkInvitationAccepted(ctx context.Context, id string) error
	}

	Service interface {
		RegisterTeacher(ctx context.Context, rt RegisterTeacher) (Profile, Teacher, error)
		RegisterStudent(ctx context.Context, rs RegisterStudent) (Profile, error)
		AcceptInvitation(ctx context.Context, ai AcceptInvitation) (Profile, error)
		GetByID(ctx context.Context, id string) (Profile, error)
		GetByEmail(ctx context.Context, email string) (Profile, error)
		GetTeacher(ctx context.Context, profileID string) (Teacher, error)
		SetLastLogin(ctx context.Context, prof Profile) (Profile, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) checkEmailUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// RegisterTeacher opens a teacher account: a Profile plus a Teacher row
// carrying a freshly generated teacher code. The code is stable for the
// lifetime of the account.
func (svc *service) RegisterTeacher(ctx context.Context, rt RegisterTeacher) (Profile, Teacher, error) {
	if err := svc.checkEmailUniqueness(ctx, rt.Email); err != nil {
		return Profile{}, Teacher{}, err
	}

	now := NowFunc().UTC()
	prof := Profile{
		Email:     rt.Email,
		FullName:  rt.FullName,
		Role:      RoleTeacher,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := prof.SetPassword(rt.Password); err != nil {
		return Profile{}, Teacher{}, err
	}
	prof, err := svc.repo.CreateProfile(ctx, prof)
	if err != nil {
		return Profile{}, Teacher{}, err
	}

	var tchr Teacher
	for attempt := 0; ; attempt++ {
		code, err := GenerateTeacherCode()
		if err != nil {
			return Profile{}, Teacher{}, err
		}
		tchr, err = svc.repo.CreateTeacher(ctx, Teacher{
			ID:          prof.ID,
			TeacherCode: code,
			SchoolName:  rt.SchoolName,
			Subject:     rt.Subject,
			CreatedAt:   now,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, ErrTeacherCodeExists) || attempt+1 >= maxCodeAttempts {
			return Profile{}, Teacher{}, err
		}
	}
	return prof, tchr, nil
}

// RegisterStudent opens a student account. With a valid teacher code the
// student is enrolled immediately; without one they join the unassigned pool.
func (svc *service) RegisterStudent(ctx context.Context, rs RegisterStudent) (Profile, error) {
	teacherCode := student.UnassignedTeacherCode
	if rs.TeacherCode != "" {
		tchr, err := svc.repo.GetTeacherByCode(ctx, rs.TeacherCode)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Profile{}, core.NewValidationError(err, core.FieldError{Field: "teacher_code", Error: "unknown teacher code"})
			}
			return Profile{}, err
		}
		teacherCode = tchr.TeacherCode
	}

	if err := svc.checkEmailUniqueness(ctx, rs.Email); err != nil {
		return Profile{}, err
	}

	now := NowFunc().UTC()
	prof := Profile{
		Email:     rs.Email,
		FullName:  rs.FullName,
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := prof.SetPassword(rs.Password); err != nil {
		return Profile{}, err
	}
	prof, err := svc.repo.CreateProfile(ctx, prof)
	if err != nil {
		return Profile{}, err
	}

	if _, err = svc.repo.CreateStudent(ctx, student.Student{
		ProfileID:    prof.ID,
		TeacherCode:  teacherCode,
		Grade:        rs.Grade,
		IsRegistered: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return Profile{}, err
	}
	return prof, nil
}

// AcceptInvitation completes a pending onboarding: it creates the invitee's
// Profile and Student rows under the inviting teacher's code and flags the
// invitation accepted.
func (svc *service) AcceptInvitation(ctx context.Context, ai AcceptInvitation) (Profile, error) {
	inv, err := svc.repo.GetInvitation(ctx, ai.InvitationID)
	if err != nil {
		return Profile{}, err
	}
	if inv.IsAccepted {
		return Profile{}, core.NewValidationError(ErrInvitationAccepted, core.FieldError{Field: "invitation_id", Error: ErrInvitationAccepted.Error()})
	}
	tchr, err := svc.repo.GetTeacherByID(ctx, inv.TeacherID)
	if err != nil {
		return Profile{}, err
	}
	if err = svc.checkEmailUniqueness(ctx, inv.StudentEmail); err != nil {
		return Profile{}, err
	}

	now := NowFunc().UTC()
	prof := Profile{
		Email:     inv.StudentEmail,
		FullName:  inv.StudentName,
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = prof.SetPassword(ai.Password); err != nil {
		return Profile{}, err
	}
	prof, err = svc.repo.CreateProfile(ctx, prof)
	if err != nil {
		return Profile{}, err
	}

	if _, err = svc.repo.CreateStudent(ctx, student.Student{
		ProfileID:    prof.ID,
		TeacherCode:  tchr.TeacherCode,
		Grade:        inv.StudentLevel,
		IsRegistered: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return Profile{}, err
	}

	if err = svc.repo.MarkInvitationAccepted(ctx, inv.ID); err != nil {
		return Profile{}, err
	}
	return prof, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetProfileByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Profile, error) {
	return svc.repo.GetProfileByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) GetTeacher(ctx context.Context, profileID string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, profileID)
}

func (svc *service) SetLastLogin(ctx context.Context, prof Profile) (Profile, error) {
	return svc.repo.SetLastLogin(ctx, prof.ID, NowFunc().UTC())
}
