package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// withAdmission must be called with the lock held.
func (repo *studentRepository) withAdmission(std student.Student) student.Student {
	std.Admission = nil
	for _, adm := range repo.db.tables.admissions {
		if adm.StudentID == std.ID {
			adm := adm
			std.Admission = &adm
			break
		}
	}
	return std
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if std.Email != "" {
		for _, s := range repo.db.tables.students {
			if s.Email == std.Email {
				return student.Student{}, student.ErrEmailExists
			}
		}
	}
	std.ID = repo.db.nextPK("students")
	std.Admission = nil
	repo.db.tables.students[std.ID] = std
	return std, nil
}

func (repo *studentRepository) CreateAdmission(_ context.Context, adm student.Admission, _ ...core.DBExecutor) (student.Admission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tables.students[adm.StudentID]; !ok {
		return student.Admission{}, student.ErrNotFound
	}
	for _, a := range repo.db.tables.admissions {
		if a.StudentID == adm.StudentID {
			return student.Admission{}, student.ErrAdmissionExists
		}
	}
	adm.ID = repo.db.nextPK("admissions")
	repo.db.tables.admissions[adm.ID] = adm
	return adm, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.tables.students))
	for _, std := range repo.db.tables.students {
		if !std.IsActive && !filter.IncludeInactive {
			continue
		}
		students = append(students, repo.withAdmission(std))
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].ID > students[j].ID
		}
		return students[i].CreatedAt.After(students[j].CreatedAt)
	})
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.tables.students[id]; ok {
		return repo.withAdmission(std), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.tables.students[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.Email != "" {
		for _, s := range repo.db.tables.students {
			if s.Email == std.Email && s.ID != std.ID {
				return student.Student{}, student.ErrEmailExists
			}
		}
	}
	std.CreatedAt = orig.CreatedAt
	std.Admission = nil
	repo.db.tables.students[std.ID] = std
	return repo.withAdmission(std), nil
}
