package dummydb

import (
	"sync"

	"github.com/aulalink/backend/core/account"
	"github.com/aulalink/backend/core/class"
	"github.com/aulalink/backend/core/student"
)

type (
	DB struct {
		profile    *profileTable
		teacher    *teacherTable
		student    *studentTable
		invitation *invitationTable
		class      *classTable
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*account.Profile
	}

	teacherTable struct {
		sync.RWMutex
		table map[string]*account.Teacher
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	invitationTable struct {
		sync.RWMutex
		table map[string]*student.Invitation
	}

	classTable struct {
		sync.RWMutex
		table map[string]*class.Class
	}
)

func Open() (*DB, error) {
	db := &DB{
		profile:    &profileTable{table: make(map[string]*account.Profile)},
		teacher:    &teacherTable{table: make(map[string]*account.Teacher)},
		student:    &studentTable{table: make(map[string]*student.Student)},
		invitation: &invitationTable{table: make(map[string]*student.Invitation)},
		class:      &classTable{table: make(map[string]*class.Class)},
	}
	return db, nil
}

// Clear empties all tables. For tests.
func (db *DB) Clear() {
	db.profile.Lock()
	db.profile.table = make(map[string]*account.Profile)
	db.profile.Unlock()

	db.teacher.Lock()
	db.teacher.table = make(map[string]*account.Teacher)
	db.teacher.Unlock()

	db.student.Lock()
	db.student.table = make(map[string]*student.Student)
	db.student.Unlock()

	db.invitation.Lock()
	db.invitation.table = make(map[string]*student.Invitation)
	db.invitation.Unlock()

	db.class.Lock()
	db.class.table = make(map[string]*class.Class)
	db.class.Unlock()
}
