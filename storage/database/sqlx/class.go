package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/class"
)

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

type classRow struct {
	ID            string      `db:"id"`
	TeacherID     string      `db:"teacher_id"`
	StudentName   string      `db:"student_name"`
	StudentEmail  string      `db:"student_email"`
	StudentLevel  null.String `db:"student_level"`
	Topic         string      `db:"topic"`
	ClassDate     time.Time   `db:"class_date"`
	ClassTime     string      `db:"class_time"`
	Duration      int         `db:"duration"`
	Status        string      `db:"status"`
	PaymentStatus string      `db:"payment_status"`
	MeetingLink   null.String `db:"meeting_link"`
	Notes         null.String `db:"notes"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (r classRow) class() class.Class {
	return class.Class{
		ID:            r.ID,
		TeacherID:     r.TeacherID,
		StudentName:   r.StudentName,
		StudentEmail:  r.StudentEmail,
		StudentLevel:  r.StudentLevel.String,
		Topic:         r.Topic,
		ClassDate:     r.ClassDate,
		ClassTime:     r.ClassTime,
		Duration:      r.Duration,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		MeetingLink:   r.MeetingLink.String,
		Notes:         r.Notes.String,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func newClassRow(cls class.Class) classRow {
	return classRow{
		ID:            cls.ID,
		TeacherID:     cls.TeacherID,
		StudentName:   cls.StudentName,
		StudentEmail:  cls.StudentEmail,
		StudentLevel:  null.NewString(cls.StudentLevel, cls.StudentLevel != ""),
		Topic:         cls.Topic,
		ClassDate:     cls.ClassDate.UTC(),
		ClassTime:     cls.ClassTime,
		Duration:      cls.Duration,
		Status:        cls.Status,
		PaymentStatus: cls.PaymentStatus,
		MeetingLink:   null.NewString(cls.MeetingLink, cls.MeetingLink != ""),
		Notes:         null.NewString(cls.Notes, cls.Notes != ""),
		CreatedAt:     cls.CreatedAt.UTC(),
		UpdatedAt:     cls.UpdatedAt.UTC(),
	}
}

// trapNoRowsErr maps psql "no rows" err to class.ErrNotFound
func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	row := newClassRow(cls)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO class (id, teacher_id, student_name, student_email, student_level, topic, class_date,
		                   class_time, duration, status, payment_status, meeting_link, notes, created_at, updated_at)
		VALUES (:id, :teacher_id, :student_name, :student_email, :student_level, :topic, :class_date,
		        :class_time, :duration, :status, :payment_status, :meeting_link, :notes, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return row.class(), nil
}

func (repo classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE id = $1`, id); err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "getting class by id")
	}
	return row.class(), nil
}

// classOrderColumns guards ORDER BY interpolation against arbitrary input.
var classOrderColumns = map[string]bool{
	"class_date": true,
	"created_at": true,
	"status":     true,
	"topic":      true,
}

func (repo classRepository) QueryClassesByTeacher(ctx context.Context, teacherID string, ordering []core.DBOrdering) ([]class.Class, error) {
	orderBy := "class_date ASC"
	if len(ordering) > 0 {
		clauses := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			if classOrderColumns[ord.Field] {
				clauses = append(clauses, ord.String())
			}
		}
		if len(clauses) > 0 {
			orderBy = strings.Join(clauses, ", ")
		}
	}

	var rows []classRow
	q := fmt.Sprintf(`SELECT * FROM class WHERE teacher_id = $1 ORDER BY %s`, orderBy)
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying classes by teacher")
	}
	return repo.classes(rows), nil
}

func (repo classRepository) QueryClassesByStudentEmail(ctx context.Context, email string) ([]class.Class, error) {
	var rows []classRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM class WHERE student_email = $1 ORDER BY class_date ASC`,
		email,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes by student email")
	}
	return repo.classes(rows), nil
}

func (repo classRepository) classes(rows []classRow) []class.Class {
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.class())
	}
	return classes
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	row := newClassRow(cls)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE class
		SET topic = :topic, class_date = :class_date, class_time = :class_time, duration = :duration,
		    status = :status, payment_status = :payment_status, meeting_link = :meeting_link,
		    notes = :notes, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return row.class(), nil
}

func (repo classRepository) DeleteClass(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}
