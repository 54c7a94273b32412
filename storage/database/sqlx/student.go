package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulalink/backend/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

type studentRow struct {
	ID           string      `db:"id"`
	ProfileID    string      `db:"profile_id"`
	TeacherCode  string      `db:"teacher_code"`
	Grade        null.String `db:"grade"`
	IsRegistered bool        `db:"is_registered"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	return student.Student{
		ID:           r.ID,
		ProfileID:    r.ProfileID,
		TeacherCode:  r.TeacherCode,
		Grade:        r.Grade.String,
		IsRegistered: r.IsRegistered,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newStudentRow(std student.Student) studentRow {
	return studentRow{
		ID:           std.ID,
		ProfileID:    std.ProfileID,
		TeacherCode:  std.TeacherCode,
		Grade:        null.NewString(std.Grade, std.Grade != ""),
		IsRegistered: std.IsRegistered,
		CreatedAt:    std.CreatedAt.UTC(),
		UpdatedAt:    std.UpdatedAt.UTC(),
	}
}

type invitationRow struct {
	ID           string      `db:"id"`
	TeacherID    string      `db:"teacher_id"`
	StudentName  string      `db:"student_name"`
	StudentEmail string      `db:"student_email"`
	StudentLevel null.String `db:"student_level"`
	IsAccepted   bool        `db:"is_accepted"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (r invitationRow) invitation() student.Invitation {
	return student.Invitation{
		ID:           r.ID,
		TeacherID:    r.TeacherID,
		StudentName:  r.StudentName,
		StudentEmail: r.StudentEmail,
		StudentLevel: r.StudentLevel.String,
		IsAccepted:   r.IsAccepted,
		CreatedAt:    r.CreatedAt,
	}
}

type studentInfoRow struct {
	studentRow
	FullName  string      `db:"full_name"`
	Email     string      `db:"email"`
	AvatarURL null.String `db:"avatar_url"`
}

func (r studentInfoRow) info() student.Info {
	return student.Info{
		Student:   r.student(),
		FullName:  r.FullName,
		Email:     r.Email,
		AvatarURL: r.AvatarURL.String,
	}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) GetTeacher(ctx context.Context, teacherID string) (student.TeacherRef, error) {
	var row struct {
		ID          string `db:"id"`
		TeacherCode string `db:"teacher_code"`
		FullName    string `db:"full_name"`
	}
	err := repo.db.GetContext(ctx, &row, `
		SELECT t.id, t.teacher_code, p.full_name
		FROM teacher t
		INNER JOIN profile p ON p.id = t.id
		WHERE t.id = $1`,
		teacherID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.TeacherRef{}, student.ErrTeacherNotFound
		}
		return student.TeacherRef{}, errors.Wrap(err, "getting teacher")
	}
	return student.TeacherRef{ID: row.ID, TeacherCode: row.TeacherCode, FullName: row.FullName}, nil
}

func (repo studentRepository) GetProfileIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	if err := repo.db.GetContext(ctx, &id, `SELECT id FROM profile WHERE email = $1`, email); err != nil {
		return "", repo.trapNoRowsErr(err, "getting profile by email")
	}
	return id, nil
}

func (repo studentRepository) EnrollmentExists(ctx context.Context, profileID, teacherCode string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM student WHERE profile_id = $1 AND teacher_code = $2)`,
		profileID, teacherCode,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return exists, nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	row := newStudentRow(std)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (id, profile_id, teacher_code, grade, is_registered, created_at, updated_at)
		VALUES (:id, :profile_id, :teacher_code, :grade, :is_registered, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return student.Student{}, trapUniqueErr(err, "inserting student")
	}
	return row.student(), nil
}

func (repo studentRepository) CreateInvitation(ctx context.Context, inv student.Invitation) (student.Invitation, error) {
	inv.ID = uuid.New().String()
	row := invitationRow{
		ID:           inv.ID,
		TeacherID:    inv.TeacherID,
		StudentName:  inv.StudentName,
		StudentEmail: inv.StudentEmail,
		StudentLevel: null.NewString(inv.StudentLevel, inv.StudentLevel != ""),
		IsAccepted:   inv.IsAccepted,
		CreatedAt:    inv.CreatedAt.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student_invitation (id, teacher_id, student_name, student_email, student_level, is_accepted, created_at)
		VALUES (:id, :teacher_id, :student_name, :student_email, :student_level, :is_accepted, :created_at)`,
		row,
	)
	if err != nil {
		return student.Invitation{}, errors.Wrap(err, "inserting invitation")
	}
	return row.invitation(), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student by id")
	}
	return row.student(), nil
}

func (repo studentRepository) QueryStudentsByTeacherCode(ctx context.Context, teacherCode string) ([]student.Info, error) {
	var rows []studentInfoRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT s.*, p.full_name, p.email, p.avatar_url
		FROM student s
		INNER JOIN profile p ON p.id = s.profile_id
		WHERE s.teacher_code = $1
		ORDER BY p.full_name ASC`,
		teacherCode,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	infos := make([]student.Info, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, row.info())
	}
	return infos, nil
}

func (repo studentRepository) UpdateStudentTeacherCode(ctx context.Context, studentID, teacherCode string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE student SET teacher_code = $1, updated_at = $2 WHERE id = $3
		RETURNING *`,
		teacherCode, time.Now().UTC(), studentID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, trapUniqueErr(err, "updating student teacher code")
	}
	return row.student(), nil
}
