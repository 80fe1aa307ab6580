package user

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/ada/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with that email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotSuperAdmin      = errors.New("unauthorized: only a super admin can create users")
	ErrBadAdminPassword   = errors.New("unauthorized: incorrect super admin password")
)

type (
	Repository interface {
		// CreateUser returns ErrEmailExists when the email is taken.
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate returns the User owning the credentials.
// Unknown emails and wrong passwords both give ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// Register creates a User on behalf of the super admin whose credentials come with nu.
// nu must have been validated.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	admin, err := svc.repo.GetUserByEmail(ctx, nu.AdminEmail)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrNotSuperAdmin
		}
		return User{}, err
	}
	if !admin.IsSuperAdmin() {
		return User{}, ErrNotSuperAdmin
	}
	if err := admin.CheckPassword(nu.AdminPassword); err != nil {
		return User{}, ErrBadAdminPassword
	}

	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}
	return svc.create(ctx, nu.Name, nu.Email, nu.Password, nu.Role)
}

func (svc *Service) create(ctx context.Context, name, email, pwd string, role Role) (User, error) {
	now := NowFunc().UTC()
	usr := User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// CreateSuperAdmin seeds a super admin. It is a no-op returning the existing User
// when the email is already registered.
func (svc *Service) CreateSuperAdmin(ctx context.Context, name, email, pwd string) (usr User, created bool, err error) {
	email = core.CleanString(email, true /* lower */)
	if usr, err = svc.repo.GetUserByEmail(ctx, email); err == nil {
		return usr, false, nil
	} else if err != ErrNotFound {
		return User{}, false, err
	}
	if len(pwd) < 6 {
		return User{}, false, core.NewFieldError("password", "password must be at least 6 characters")
	}
	usr, err = svc.create(ctx, core.CleanString(name), email, pwd, RoleSuperAdmin)
	return usr, err == nil, err
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	if len(pwd) < 6 {
		return core.NewFieldError("password", "password must be at least 6 characters")
	}
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = NowFunc().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
