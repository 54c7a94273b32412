package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.class.Lock()
	defer repo.db.class.Unlock()

	cls.ID = uuid.New().String()
	repo.db.class.table[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (class.Class, error) {
	repo.db.class.RLock()
	defer repo.db.class.RUnlock()

	if cls, ok := repo.db.class.table[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) QueryClassesByTeacher(_ context.Context, teacherID string, ordering []core.DBOrdering) ([]class.Class, error) {
	repo.db.class.RLock()
	classes := make([]class.Class, 0, len(repo.db.class.table))
	for _, cls := range repo.db.class.table {
		if cls.TeacherID == teacherID {
			classes = append(classes, *cls)
		}
	}
	repo.db.class.RUnlock()

	sortClasses(classes, ordering)
	return classes, nil
}

func (repo *classRepository) QueryClassesByStudentEmail(_ context.Context, email string) ([]class.Class, error) {
	repo.db.class.RLock()
	classes := make([]class.Class, 0, len(repo.db.class.table))
	for _, cls := range repo.db.class.table {
		if cls.StudentEmail == email {
			classes = append(classes, *cls)
		}
	}
	repo.db.class.RUnlock()

	sortClasses(classes, nil)
	return classes, nil
}

// sortClasses only understands the class_date ordering; anything else
// falls back to the date ascending default.
func sortClasses(classes []class.Class, ordering []core.DBOrdering) {
	desc := false
	if len(ordering) > 0 && ordering[0].Field == "class_date" {
		desc = !ordering[0].Ascending
	}
	sort.Slice(classes, func(i, j int) bool {
		if desc {
			i, j = j, i
		}
		if classes[i].ClassDate.Equal(classes[j].ClassDate) {
			return classes[i].ClassTime < classes[j].ClassTime
		}
		return classes[i].ClassDate.Before(classes[j].ClassDate)
	})
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.class.Lock()
	defer repo.db.class.Unlock()

	if _, ok := repo.db.class.table[cls.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	repo.db.class.table[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.class.Lock()
	defer repo.db.class.Unlock()

	delete(repo.db.class.table, id)
	return nil
}
