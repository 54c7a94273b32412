package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aulalink/backend/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// createStudent inserts a student row, enforcing the same
// (profile_id, teacher_code) uniqueness the real store does.
func createStudent(db *DB, std student.Student) (student.Student, error) {
	db.student.Lock()
	defer db.student.Unlock()

	for _, s := range db.student.table {
		if s.ProfileID == std.ProfileID && s.TeacherCode == std.TeacherCode {
			return student.Student{}, student.ErrDuplicateEnrollment
		}
	}
	std.ID = uuid.New().String()
	db.student.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetTeacher(_ context.Context, teacherID string) (student.TeacherRef, error) {
	repo.db.teacher.RLock()
	tchr, ok := repo.db.teacher.table[teacherID]
	repo.db.teacher.RUnlock()
	if !ok {
		return student.TeacherRef{}, student.ErrTeacherNotFound
	}

	ref := student.TeacherRef{ID: tchr.ID, TeacherCode: tchr.TeacherCode}

	repo.db.profile.RLock()
	if prof, ok := repo.db.profile.table[tchr.ID]; ok {
		ref.FullName = prof.FullName
	}
	repo.db.profile.RUnlock()
	return ref, nil
}

func (repo *studentRepository) GetProfileIDByEmail(_ context.Context, email string) (string, error) {
	repo.db.profile.RLock()
	defer repo.db.profile.RUnlock()

	for _, prof := range repo.db.profile.table {
		if prof.Email == email {
			return prof.ID, nil
		}
	}
	return "", student.ErrNotFound
}

func (repo *studentRepository) EnrollmentExists(_ context.Context, profileID, teacherCode string) (bool, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	for _, std := range repo.db.student.table {
		if std.ProfileID == profileID && std.TeacherCode == teacherCode {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	return createStudent(repo.db, std)
}

func (repo *studentRepository) CreateInvitation(_ context.Context, inv student.Invitation) (student.Invitation, error) {
	repo.db.invitation.Lock()
	defer repo.db.invitation.Unlock()

	inv.ID = uuid.New().String()
	repo.db.invitation.table[inv.ID] = &inv
	return inv, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	if std, ok := repo.db.student.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudentsByTeacherCode(_ context.Context, teacherCode string) ([]student.Info, error) {
	repo.db.student.RLock()
	students := make([]student.Student, 0, len(repo.db.student.table))
	for _, std := range repo.db.student.table {
		if std.TeacherCode == teacherCode {
			students = append(students, *std)
		}
	}
	repo.db.student.RUnlock()

	repo.db.profile.RLock()
	defer repo.db.profile.RUnlock()

	infos := make([]student.Info, 0, len(students))
	for _, std := range students {
		info := student.Info{Student: std}
		if prof, ok := repo.db.profile.table[std.ProfileID]; ok {
			info.FullName = prof.FullName
			info.Email = prof.Email
			info.AvatarURL = prof.AvatarURL
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].FullName < infos[j].FullName })
	return infos, nil
}

func (repo *studentRepository) UpdateStudentTeacherCode(_ context.Context, studentID, teacherCode string) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	std, ok := repo.db.student.table[studentID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	for _, s := range repo.db.student.table {
		if s.ID != std.ID && s.ProfileID == std.ProfileID && s.TeacherCode == teacherCode {
			return student.Student{}, student.ErrDuplicateEnrollment
		}
	}
	std.TeacherCode = teacherCode
	std.UpdatedAt = time.Now().UTC()
	return *std, nil
}
