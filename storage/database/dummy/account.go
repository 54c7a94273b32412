package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aulalink/backend/core/account"
	"github.com/aulalink/backend/core/student"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.db.profile.RLock()
	defer repo.db.profile.RUnlock()

	for _, prof := range repo.db.profile.table {
		if prof.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateProfile(ctx context.Context, prof account.Profile) (account.Profile, error) {
	if err := repo.CheckEmailUniqueness(ctx, prof.Email); err != nil {
		return account.Profile{}, err
	}

	repo.db.profile.Lock()
	defer repo.db.profile.Unlock()

	prof.ID = uuid.New().String()
	repo.db.profile.table[prof.ID] = &prof
	return prof, nil
}

func (repo *accountRepository) GetProfileByID(_ context.Context, id string) (account.Profile, error) {
	repo.db.profile.RLock()
	defer repo.db.profile.RUnlock()

	if prof, ok := repo.db.profile.table[id]; ok {
		return *prof, nil
	}
	return account.Profile{}, account.ErrNotFound
}

func (repo *accountRepository) GetProfileByEmail(_ context.Context, email string) (account.Profile, error) {
	repo.db.profile.RLock()
	defer repo.db.profile.RUnlock()

	for _, prof := range repo.db.profile.table {
		if prof.Email == email {
			return *prof, nil
		}
	}
	return account.Profile{}, account.ErrNotFound
}

func (repo *accountRepository) SetLastLogin(_ context.Context, profileID string, t time.Time) (account.Profile, error) {
	repo.db.profile.Lock()
	defer repo.db.profile.Unlock()

	prof, ok := repo.db.profile.table[profileID]
	if !ok {
		return account.Profile{}, account.ErrNotFound
	}
	prof.LastLogin = t
	return *prof, nil
}

func (repo *accountRepository) SetPassword(_ context.Context, profileID string, hash []byte) error {
	repo.db.profile.Lock()
	defer repo.db.profile.Unlock()

	prof, ok := repo.db.profile.table[profileID]
	if !ok {
		return account.ErrNotFound
	}
	prof.PasswordHash = hash
	prof.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *accountRepository) CreateTeacher(_ context.Context, tchr account.Teacher) (account.Teacher, error) {
	repo.db.teacher.Lock()
	defer repo.db.teacher.Unlock()

	for _, t := range repo.db.teacher.table {
		if t.TeacherCode == tchr.TeacherCode {
			return account.Teacher{}, account.ErrTeacherCodeExists
		}
	}
	repo.db.teacher.table[tchr.ID] = &tchr
	return tchr, nil
}

func (repo *accountRepository) GetTeacherByID(_ context.Context, id string) (account.Teacher, error) {
	repo.db.teacher.RLock()
	defer repo.db.teacher.RUnlock()

	if tchr, ok := repo.db.teacher.table[id]; ok {
		return *tchr, nil
	}
	return account.Teacher{}, account.ErrNotFound
}

func (repo *accountRepository) GetTeacherByCode(_ context.Context, code string) (account.Teacher, error) {
	repo.db.teacher.RLock()
	defer repo.db.teacher.RUnlock()

	for _, tchr := range repo.db.teacher.table {
		if tchr.TeacherCode == code {
			return *tchr, nil
		}
	}
	return account.Teacher{}, account.ErrNotFound
}

func (repo *accountRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	return createStudent(repo.db, std)
}

func (repo *accountRepository) GetInvitation(_ context.Context, id string) (student.Invitation, error) {
	repo.db.invitation.RLock()
	defer repo.db.invitation.RUnlock()

	if inv, ok := repo.db.invitation.table[id]; ok {
		return *inv, nil
	}
	return student.Invitation{}, account.ErrInvitationNotFound
}

func (repo *accountRepository) MarkInvitationAccepted(_ context.Context, id string) error {
	repo.db.invitation.Lock()
	defer repo.db.invitation.Unlock()

	inv, ok := repo.db.invitation.table[id]
	if !ok {
		return account.ErrInvitationNotFound
	}
	inv.IsAccepted = true
	return nil
}
