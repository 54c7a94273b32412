package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/class"
)

// UnassignedTeacherCode marks self-registered students that no teacher has
// claimed yet.
const UnassignedTeacherCode = "UNASSIGNED"

// Student links a Profile to one teacher's code, representing enrollment.
// The teacher code is deliberately denormalized onto the row; the store
// enforces uniqueness of (profile_id, teacher_code).
type Student struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	TeacherCode  string    `json:"teacher_code"`
	Grade        string    `json:"grade,omitempty"`
	IsRegistered bool      `json:"is_registered"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Info is a Student joined with its Profile, for teacher-facing listings.
type Info struct {
	Student
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Invitation is a placeholder enrollment for an email with no Profile yet.
type Invitation struct {
	ID           string    `json:"id"`
	TeacherID    string    `json:"teacher_id"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	StudentLevel string    `json:"student_level,omitempty"`
	IsAccepted   bool      `json:"is_accepted"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// TeacherRef is the slice of a teacher account the onboarding workflow needs.
type TeacherRef struct {
	ID          string
	TeacherCode string
	FullName    string
}

// EnrollStudent contains the onboarding form: the candidate student's
// identifying fields plus an optional class booking.
//
// The class fields carry no `required` tags on purpose: when ScheduleClass
// is set but a required class field is missing, the booking sub-step is
// skipped without failing the whole operation.
type EnrollStudent struct {
	StudentName  string `json:"student_name" validate:"required"`
	StudentEmail string `json:"student_email" validate:"required,email"`
	StudentLevel string `json:"student_level"`

	ScheduleClass bool   `json:"schedule_class"`
	Topic         string `json:"topic"`
	ClassDate     string `json:"class_date"` // "2006-01-02"
	ClassTime     string `json:"class_time"` // "15:04"
	Duration      int    `json:"duration" validate:"omitempty,oneof=30 45 60 90 120"`
	MeetingLink   string `json:"meeting_link" validate:"omitempty,url"`
	Notes         string `json:"notes"`
}

// Validate normalizes and validates the form. Email is lowered here, at the
// caller boundary: the workflow itself matches emails exactly as persisted.
func (es *EnrollStudent) Validate(validate *validator.Validate) error {
	es.StudentName = core.CleanString(es.StudentName)
	es.StudentEmail = core.CleanString(es.StudentEmail, true /* lower */)
	es.StudentLevel = core.CleanString(es.StudentLevel)
	es.Topic = core.CleanString(es.Topic)
	return validate.Struct(es)
}

// hasClassFields reports whether all required class-booking fields are set.
func (es *EnrollStudent) hasClassFields() bool {
	return es.Topic != "" && es.ClassDate != "" && es.ClassTime != ""
}

// Outcome tags the branch the onboarding workflow took.
type Outcome string

const (
	// OutcomeLinkedExisting: a registered Profile existed for the email and
	// was linked to the acting teacher.
	OutcomeLinkedExisting Outcome = "linked_existing"
	// OutcomeCreatedInvitation: no Profile existed; a pending invitation was
	// recorded and the invitee notified.
	OutcomeCreatedInvitation Outcome = "created_invitation"
)

// Enrollment is the single outcome of one onboarding invocation.
// ClassErr and NotifyErr are non-fatal sub-failures: the student creation
// itself succeeded and they are reported as warnings alongside it.
type Enrollment struct {
	Outcome    Outcome      `json:"outcome"`
	Student    *Student     `json:"student,omitempty"`
	Invitation *Invitation  `json:"invitation,omitempty"`
	Class      *class.Class `json:"class,omitempty"`

	ClassErr  error `json:"-"`
	NotifyErr error `json:"-"`
}

// Warnings renders the non-fatal sub-failures for the caller.
func (e Enrollment) Warnings() []string {
	var warns []string
	if e.ClassErr != nil {
		warns = append(warns, "class booking failed: "+e.ClassErr.Error())
	}
	if e.NotifyErr != nil {
		warns = append(warns, "invitation email could not be sent: "+e.NotifyErr.Error())
	}
	return warns
}
