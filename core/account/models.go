package account

import (
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/aulalink/backend/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var AllRoles = []string{RoleTeacher, RoleStudent}

// Profile is the canonical identity record for any person in the system.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (p *Profile) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return nil
}

func (p *Profile) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(pwd))
}

func (p *Profile) IsTeacher() bool { return p.Role == RoleTeacher }
func (p *Profile) IsStudent() bool { return p.Role == RoleStudent }

// PasswordResetMessage notifies the account owner after an admin reset.
func (p *Profile) PasswordResetMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: p.FullName, Address: p.Email}},
		Subject:      "Tu contraseña ha sido restablecida",
		TemplateName: "password-reset",
		TemplateData: struct {
			FullName string
		}{p.FullName},
	}
}

// Teacher extends a Profile with the shareable enrollment code.
// Teacher.ID is the owning Profile's ID.
type Teacher struct {
	ID          string    `json:"id"`
	TeacherCode string    `json:"teacher_code"`
	SchoolName  string    `json:"school_name,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// RegisterTeacher contains information needed to open a teacher account.
// The teacher code is generated server-side and returned once registered.
type RegisterTeacher struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	SchoolName      string `json:"school_name"`
	Subject         string `json:"subject"`
}

func (rt *RegisterTeacher) Validate(validate *validator.Validate) error {
	rt.FullName = core.CleanString(rt.FullName)
	rt.Email = core.CleanString(rt.Email, true /* lower */)
	rt.SchoolName = core.CleanString(rt.SchoolName)
	rt.Subject = core.CleanString(rt.Subject)
	return validate.Struct(rt)
}

// RegisterStudent contains information needed to open a student account
// without a prior invitation. When no teacher code is supplied the student
// lands in the unassigned pool until a teacher claims them.
type RegisterStudent struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	TeacherCode     string `json:"teacher_code" validate:"omitempty,teachercode"`
	Grade           string `json:"grade"`
}

func (rs *RegisterStudent) Validate(validate *validator.Validate) error {
	rs.FullName = core.CleanString(rs.FullName)
	rs.Email = core.CleanString(rs.Email, true /* lower */)
	rs.TeacherCode = core.CleanString(rs.TeacherCode)
	rs.Grade = core.CleanString(rs.Grade)
	return validate.Struct(rs)
}

// AcceptInvitation completes a pending onboarding: the invitee sets their
// credentials and is enrolled under the inviting teacher.
type AcceptInvitation struct {
	InvitationID    string `json:"invitation_id" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ai *AcceptInvitation) Validate(validate *validator.Validate) error {
	ai.InvitationID = core.CleanString(ai.InvitationID)
	return validate.Struct(ai)
}
