package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulalink/backend/core/account"
	"github.com/aulalink/backend/core/student"
)

// pq unique-violation constraint names, as declared in the migrations.
const (
	uniqueViolation        = "23505"
	profileEmailConstraint = "profile_email_key"
	teacherCodeConstraint  = "teacher_teacher_code_key"
	enrollmentConstraint   = "student_profile_teacher_key"
)

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

type profileRow struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	FullName     string      `db:"full_name"`
	Role         string      `db:"role"`
	AvatarURL    null.String `db:"avatar_url"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r profileRow) profile() account.Profile {
	return account.Profile{
		ID:           r.ID,
		Email:        r.Email,
		FullName:     r.FullName,
		Role:         r.Role,
		AvatarURL:    r.AvatarURL.String,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

func newProfileRow(prof account.Profile) profileRow {
	return profileRow{
		ID:           prof.ID,
		Email:        prof.Email,
		FullName:     prof.FullName,
		Role:         prof.Role,
		AvatarURL:    null.NewString(prof.AvatarURL, prof.AvatarURL != ""),
		PasswordHash: prof.PasswordHash,
		CreatedAt:    prof.CreatedAt.UTC(),
		UpdatedAt:    prof.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(prof.LastLogin.UTC(), !prof.LastLogin.IsZero()),
	}
}

type teacherRow struct {
	ID          string      `db:"id"`
	TeacherCode string      `db:"teacher_code"`
	SchoolName  null.String `db:"school_name"`
	Subject     null.String `db:"subject"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r teacherRow) teacher() account.Teacher {
	return account.Teacher{
		ID:          r.ID,
		TeacherCode: r.TeacherCode,
		SchoolName:  r.SchoolName.String,
		Subject:     r.Subject.String,
		CreatedAt:   r.CreatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to account.ErrNotFound
func (repo accountRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps a pq unique violation to the matching domain error.
func trapUniqueErr(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case profileEmailConstraint:
			return account.ErrEmailExists
		case teacherCodeConstraint:
			return account.ErrTeacherCodeExists
		case enrollmentConstraint:
			return student.ErrDuplicateEnrollment
		}
	}
	return errors.Wrap(err, msg)
}

func (repo accountRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM profile WHERE email = $1)`, email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo accountRepository) CreateProfile(ctx context.Context, prof account.Profile) (account.Profile, error) {
	prof.ID = uuid.New().String()
	row := newProfileRow(prof)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO profile (id, email, full_name, role, avatar_url, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :email, :full_name, :role, :avatar_url, :password_hash, :created_at, :updated_at, :last_login)`,
		row,
	)
	if err != nil {
		return account.Profile{}, trapUniqueErr(err, "inserting profile")
	}
	return row.profile(), nil
}

func (repo accountRepository) GetProfileByID(ctx context.Context, id string) (account.Profile, error) {
	var row profileRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM profile WHERE id = $1`, id); err != nil {
		return account.Profile{}, repo.trapNoRowsErr(err, "getting profile by id")
	}
	return row.profile(), nil
}

func (repo accountRepository) GetProfileByEmail(ctx context.Context, email string) (account.Profile, error) {
	var row profileRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM profile WHERE email = $1`, email); err != nil {
		return account.Profile{}, repo.trapNoRowsErr(err, "getting profile by email")
	}
	return row.profile(), nil
}

func (repo accountRepository) SetLastLogin(ctx context.Context, profileID string, t time.Time) (account.Profile, error) {
	var row profileRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE profile SET last_login = $1 WHERE id = $2
		RETURNING *`,
		t.UTC(), profileID,
	)
	if err != nil {
		return account.Profile{}, repo.trapNoRowsErr(err, "setting last login")
	}
	return row.profile(), nil
}

func (repo accountRepository) SetPassword(ctx context.Context, profileID string, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE profile SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, time.Now().UTC(), profileID,
	)
	if err != nil {
		return errors.Wrap(err, "setting password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (repo accountRepository) CreateTeacher(ctx context.Context, tchr account.Teacher) (account.Teacher, error) {
	row := teacherRow{
		ID:          tchr.ID,
		TeacherCode: tchr.TeacherCode,
		SchoolName:  null.NewString(tchr.SchoolName, tchr.SchoolName != ""),
		Subject:     null.NewString(tchr.Subject, tchr.Subject != ""),
		CreatedAt:   tchr.CreatedAt.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO teacher (id, teacher_code, school_name, subject, created_at)
		VALUES (:id, :teacher_code, :school_name, :subject, :created_at)`,
		row,
	)
	if err != nil {
		return account.Teacher{}, trapUniqueErr(err, "inserting teacher")
	}
	return row.teacher(), nil
}

func (repo accountRepository) GetTeacherByID(ctx context.Context, id string) (account.Teacher, error) {
	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE id = $1`, id); err != nil {
		return account.Teacher{}, repo.trapNoRowsErr(err, "getting teacher by id")
	}
	return row.teacher(), nil
}

func (repo accountRepository) GetTeacherByCode(ctx context.Context, code string) (account.Teacher, error) {
	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE teacher_code = $1`, code); err != nil {
		return account.Teacher{}, repo.trapNoRowsErr(err, "getting teacher by code")
	}
	return row.teacher(), nil
}

func (repo accountRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
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

func (repo accountRepository) GetInvitation(ctx context.Context, id string) (student.Invitation, error) {
	var row invitationRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student_invitation WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Invitation{}, account.ErrInvitationNotFound
		}
		return student.Invitation{}, errors.Wrap(err, "getting invitation")
	}
	return row.invitation(), nil
}

func (repo accountRepository) MarkInvitationAccepted(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE student_invitation SET is_accepted = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "accepting invitation")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrInvitationNotFound
	}
	return nil
}
