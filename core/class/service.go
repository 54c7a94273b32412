package class

import (
	"context"
	"errors"
	"time"

	"github.com/aulalink/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("class not found")

	// NowFunc returns the current time; mockable in tests.
	NowFunc = time.Now
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryClassesByTeacher(ctx context.Context, teacherID string, ordering []core.DBOrdering) ([]Class, error)
		QueryClassesByStudentEmail(ctx context.Context, email string) ([]Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, teacherID string, nc NewClass) (Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		QueryByTeacher(ctx context.Context, teacherID string, ordering []core.DBOrdering) ([]Class, error)
		QueryByStudentEmail(ctx context.Context, email string) ([]Class, error)
		Update(ctx context.Context, orig Class, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// parseDate parses a "2006-01-02" value and rejects dates before today.
// "Today" is evaluated in UTC, matching how dates are persisted.
func parseDate(val string) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, val, time.UTC)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "class_date", Error: "invalid date"})
	}
	today := NowFunc().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: "class_date", Error: "date cannot be in the past"})
	}
	return date, nil
}

func parseTime(val string) (string, error) {
	t, err := time.Parse(TimeLayout, val)
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: "class_time", Error: "invalid time"})
	}
	return t.Format(TimeLayout), nil
}

func validDuration(minutes int) bool {
	for _, d := range Durations {
		if minutes == d {
			return true
		}
	}
	return false
}

// Create books a class. Semantic checks (date not in the past, enumerated
// duration) live here rather than in struct tags so that internal callers
// get the same guarantees as the HTTP layer.
func (svc *service) Create(ctx context.Context, teacherID string, nc NewClass) (Class, error) {
	date, err := parseDate(nc.ClassDate)
	if err != nil {
		return Class{}, err
	}
	clock, err := parseTime(nc.ClassTime)
	if err != nil {
		return Class{}, err
	}
	if !validDuration(nc.Duration) {
		return Class{}, core.NewValidationError(nil, core.FieldError{Field: "duration", Error: "invalid duration"})
	}

	status := nc.Status
	if status == "" {
		status = StatusScheduled
	}

	now := NowFunc().UTC()
	cls := Class{
		TeacherID:     teacherID,
		StudentName:   nc.StudentName,
		StudentEmail:  nc.StudentEmail,
		StudentLevel:  nc.StudentLevel,
		Topic:         nc.Topic,
		ClassDate:     date,
		ClassTime:     clock,
		Duration:      nc.Duration,
		Status:        status,
		PaymentStatus: PaymentUnpaid,
		MeetingLink:   nc.MeetingLink,
		Notes:         nc.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *service) QueryByTeacher(ctx context.Context, teacherID string, ordering []core.DBOrdering) ([]Class, error) {
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "class_date", Ascending: true}}
	}
	return svc.repo.QueryClassesByTeacher(ctx, teacherID, ordering)
}

func (svc *service) QueryByStudentEmail(ctx context.Context, email string) ([]Class, error) {
	return svc.repo.QueryClassesByStudentEmail(ctx, email)
}

// Update applies set fields of uc onto orig.
func (svc *service) Update(ctx context.Context, orig Class, uc UpdateClass) (Class, error) {
	if uc.Topic != "" {
		orig.Topic = uc.Topic
	}
	if uc.ClassDate != "" {
		date, err := parseDate(uc.ClassDate)
		if err != nil {
			return Class{}, err
		}
		orig.ClassDate = date
	}
	if uc.ClassTime != "" {
		clock, err := parseTime(uc.ClassTime)
		if err != nil {
			return Class{}, err
		}
		orig.ClassTime = clock
	}
	if uc.Duration != 0 {
		if !validDuration(uc.Duration) {
			return Class{}, core.NewValidationError(nil, core.FieldError{Field: "duration", Error: "invalid duration"})
		}
		orig.Duration = uc.Duration
	}
	if uc.Status != "" {
		orig.Status = uc.Status
	}
	if uc.PaymentStatus != "" {
		if uc.PaymentStatus != PaymentPaid && uc.PaymentStatus != PaymentUnpaid {
			return Class{}, core.NewValidationError(nil, core.FieldError{Field: "payment_status", Error: "invalid payment status"})
		}
		orig.PaymentStatus = uc.PaymentStatus
	}
	if uc.MeetingLink != nil {
		orig.MeetingLink = *uc.MeetingLink
	}
	if uc.Notes != nil {
		orig.Notes = *uc.Notes
	}
	orig.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateClass(ctx, orig)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteClass(ctx, id)
}
