package student

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/ada/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound          = errors.New("student not found")
	ErrAdmissionNotFound = errors.New("admission not found for this student")
	ErrAdmissionExists   = errors.New("this student is already admitted")
	ErrEmailExists       = errors.New("a student with this email already exists")
)

type (
	QueryFilter struct {
		IncludeInactive bool
	}

	Repository interface {
		// CreateStudent returns ErrEmailExists when the email is taken.
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		CreateAdmission(ctx context.Context, adm Admission, exec ...core.DBExecutor) (Admission, error)
		// QueryStudents returns students with their admission, newest first.
		QueryStudents(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter)
}

// Get returns the student with its admission.
func (svc *Service) Get(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id, exec...)
}

// Update changes the fields set in us.
func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	if err := us.Validate(); err != nil {
		return Student{}, err
	}
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	us.apply(&std)
	std.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) SetActive(ctx context.Context, id int, active bool) (Student, error) {
	return svc.Update(ctx, id, UpdateStudent{IsActive: &active})
}
