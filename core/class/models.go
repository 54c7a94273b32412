package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aulalink/backend/core"
)

// Class statuses. Kept in Spanish for compatibility with existing data.
const (
	StatusScheduled = "Programada"
	StatusPending   = "Pendiente"
	StatusCompleted = "Completada"
	StatusCancelled = "Cancelada"
)

// Payment statuses.
const (
	PaymentPaid   = "Pagado"
	PaymentUnpaid = "No Pagado"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Durations are the allowed class lengths, in minutes.
var Durations = []int{30, 45, 60, 90, 120}

// Class is a scheduled session between a teacher and a student.
// Student fields are denormalized copies taken at booking time.
type Class struct {
	ID            string    `json:"id"`
	TeacherID     string    `json:"teacher_id"`
	StudentName   string    `json:"student_name"`
	StudentEmail  string    `json:"student_email"`
	StudentLevel  string    `json:"student_level,omitempty"`
	Topic         string    `json:"topic"`
	ClassDate     time.Time `json:"class_date"` // date only, UTC
	ClassTime     string    `json:"class_time"` // "15:04"
	Duration      int       `json:"duration"`   // minutes
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	MeetingLink   string    `json:"meeting_link,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// NewClass contains information needed to book a Class.
type NewClass struct {
	StudentName  string `json:"student_name" validate:"required"`
	StudentEmail string `json:"student_email" validate:"required,email"`
	StudentLevel string `json:"student_level"`
	Topic        string `json:"topic" validate:"required"`
	ClassDate    string `json:"class_date" validate:"required"` // "2006-01-02"
	ClassTime    string `json:"class_time" validate:"required"` // "15:04"
	Duration     int    `json:"duration" validate:"required,oneof=30 45 60 90 120"`
	Status       string `json:"status" validate:"omitempty,oneof=Programada Pendiente Completada Cancelada"`
	MeetingLink  string `json:"meeting_link" validate:"omitempty,url"`
	Notes        string `json:"notes"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.StudentName = core.CleanString(nc.StudentName)
	nc.StudentEmail = core.CleanString(nc.StudentEmail, true /* lower */)
	nc.StudentLevel = core.CleanString(nc.StudentLevel)
	nc.Topic = core.CleanString(nc.Topic)
	return validate.Struct(nc)
}

// UpdateClass defines what may be modified on an existing Class.
// Zero-valued fields are left untouched.
type UpdateClass struct {
	Topic         string  `json:"topic"`
	ClassDate     string  `json:"class_date"`
	ClassTime     string  `json:"class_time"`
	Duration      int     `json:"duration" validate:"omitempty,oneof=30 45 60 90 120"`
	Status        string  `json:"status" validate:"omitempty,oneof=Programada Pendiente Completada Cancelada"`
	PaymentStatus string  `json:"payment_status"`
	MeetingLink   *string `json:"meeting_link"`
	Notes         *string `json:"notes"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Topic = core.CleanString(uc.Topic)
	return validate.Struct(uc)
}
