package testutil

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/admission"
	"github.com/trezcool/ada/core/expense"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
	"github.com/trezcool/ada/core/user"
	logsvc "github.com/trezcool/ada/services/logger"
	"github.com/trezcool/ada/storage/database"
	inmemdb "github.com/trezcool/ada/storage/database/inmem"
)

// Env wires the services over an in-memory database.
type Env struct {
	DB     *inmemdb.DB
	Logger core.Logger

	UserRepo    user.Repository
	SchoolRepo  school.Repository
	StudentRepo student.Repository
	FeeRepo     fee.Repository
	ExpenseRepo expense.Repository

	Users      *user.Service
	Schools    *school.Service
	Students   *student.Service
	Fees       *fee.Service
	Admissions *admission.Service
	Expenses   *expense.Service
}

func NewEnv() *Env {
	db := inmemdb.Open()
	env := &Env{
		DB:          db,
		Logger:      NewLogger(),
		UserRepo:    inmemdb.NewUserRepository(db),
		SchoolRepo:  inmemdb.NewSchoolRepository(db),
		StudentRepo: inmemdb.NewStudentRepository(db),
		FeeRepo:     inmemdb.NewFeeRepository(db),
		ExpenseRepo: inmemdb.NewExpenseRepository(db),
	}
	env.Users = user.NewService(env.UserRepo)
	env.Schools = school.NewService(env.SchoolRepo, db, nil)
	env.Students = student.NewService(env.StudentRepo)
	env.Fees = fee.NewService(env.FeeRepo, env.Students, env.Schools, db, env.Logger)
	env.Admissions = admission.NewService(env.StudentRepo, env.Fees, env.Schools, db)
	env.Expenses = expense.NewService(env.ExpenseRepo)
	return env
}

// NewLogger returns a logger that discards its output.
func NewLogger() core.Logger {
	std := logrus.New()
	std.SetOutput(io.Discard)
	return logsvc.NewRollbarLogger(std, &core.Config{Env: "TEST"})
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string, role user.Role, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultSettings describes a school with two classes and all transport tiers priced.
func DefaultSettings() school.Settings {
	return school.Settings{
		SchoolID:   "sch-001",
		SchoolName: "Green Valley School",
		Slogan:     "Learn and grow",
		AdminName:  "Meera Nair",
		AdminEmail: "admin@greenvalley.test",
		TransportFees: school.TransportFees{
			Below3:        Dec("100"),
			Between3And5:  Dec("200"),
			Between5And10: Dec("300"),
			Above10:       Dec("400"),
		},
		Classes: []school.Class{
			{Name: "Grade 2", TuitionFee: Dec("800"), AdmissionFee: Dec("600")},
			{Name: "Grade 1", TuitionFee: Dec("600"), AdmissionFee: Dec("400")},
		},
	}
}

func SaveSettings(t *testing.T, svc *school.Service, s ...school.Settings) school.Settings {
	settings := DefaultSettings()
	if len(s) > 0 {
		settings = s[0]
	}
	saved, err := svc.Save(context.Background(), settings)
	if err != nil {
		t.Fatalf("saveSettings() failed: %v", err)
	}
	return saved
}

// Admit creates a student admitted on admissionDate (YYYY-MM-DD) with their ledger.
func Admit(t *testing.T, svc *admission.Service, name, class, admissionDate, transport string) admission.Result {
	res, err := svc.Create(context.Background(), admission.NewAdmission{
		StudentName:   name,
		DateOfBirth:   "2015-05-20",
		Gender:        "Female",
		Phone:         "9876543210",
		Address:       "12 MG Road",
		AdmissionDate: admissionDate,
		ClassEnrolled: class,
		TransportType: transport,
	})
	if err != nil {
		t.Fatalf("admit() failed: %v", err)
	}
	return res
}

// CreateStudent creates a student without admission.
func CreateStudent(t *testing.T, repo student.Repository, name string, isActive bool, createdAt ...time.Time) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(context.Background(), student.Student{
		Name:        name,
		DateOfBirth: time.Date(2015, 5, 20, 0, 0, 0, 0, time.UTC),
		Gender:      "Male",
		Phone:       "9876543210",
		Address:     "12 MG Road",
		IsActive:    isActive,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

// PrepareDB returns a migrated PostgreSQL database emptied after the test.
// Tests are skipped when TEST_DATABASE_URL is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dsn)
	if err != nil {
		t.Fatalf("prepareDB() failed: %v", err)
	}
	if err = database.Migrate(context.Background(), db.DB); err != nil {
		t.Fatalf("prepareDB() failed: %v", err)
	}
	flush := func() {
		q := "TRUNCATE users, settings, classes, students, admissions, monthly_fees, expenses RESTART IDENTITY CASCADE"
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("flushDB() failed: %v", err)
		}
	}
	flush()
	t.Cleanup(func() {
		flush()
		_ = db.Close()
	})
	return db
}
