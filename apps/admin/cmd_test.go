package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/student"
	"github.com/trezcool/ada/core/user"
	testutil "github.com/trezcool/ada/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Env) {
	env := testutil.NewEnv()
	return &commandLine{users: env.Users, fees: env.Fees}, env
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	runCLITests(t, cli, tests)
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	runCLITests(t, cli, tests)
}

func Test_commandLine_createSuperAdmin(t *testing.T) {
	cli, env := setup(t)
	ctx := context.Background()

	mockPassword("")
	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"createsuperadmin"}, wantErr: errHelp},
		{name: "no email", args: []string{"createsuperadmin", "-name", "Meera"}, wantErr: errHelp},
		{name: "no password", args: []string{"createsuperadmin", "-name", "Meera", "-email", "meera@school.test"}, wantErr: errHelp},
	})

	mockPassword("short")
	runCLITests(t, cli, []cliTest{
		{name: "password too short", args: []string{"createsuperadmin", "-name", "Meera", "-email", "meera@school.test"}, wantErrStr: "password must be at least 6 characters"},
	})

	mockPassword("s3cret-Pass")
	runCLITests(t, cli, []cliTest{
		{name: "create", args: []string{"createsuperadmin", "-name", "Meera Nair", "-email", "Meera@School.test"}},
	})
	usr, err := env.Users.GetByEmail(ctx, "meera@school.test")
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", usr.Name)
	assert.Equal(t, user.RoleSuperAdmin, usr.Role)

	mockPassword("another-Pass")
	runCLITests(t, cli, []cliTest{
		{name: "existing email", args: []string{"createsuperadmin", "-name", "Someone", "-email", "meera@school.test"}},
	})
	usr, err = env.Users.GetByEmail(ctx, "meera@school.test")
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", usr.Name)
	assert.NoError(t, usr.CheckPassword("s3cret-Pass"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, env := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.UserRepo, "Ravi Kumar", "ravi@school.test", "old-Pass1", user.RoleAccountant)

	mockPassword("")
	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "ravi@school.test"}, wantErr: errHelp},
	})

	mockPassword("new-Pass1")
	runCLITests(t, cli, []cliTest{
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@school.test"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "RAVI@school.test"}},
	})

	usr, err := env.Users.GetByEmail(ctx, "ravi@school.test")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("new-Pass1"))
}

func Test_commandLine_generateFees(t *testing.T) {
	cli, env := setup(t)
	ctx := context.Background()
	testutil.SaveSettings(t, env.Schools)

	admitted := testutil.Admit(t, env.Admissions, "Ravi Kumar", "Grade 1", "2025-06-15", "").Student
	notAdmitted := testutil.CreateStudent(t, env.StudentRepo, "Asha Menon", true)
	ledgerless := testutil.CreateStudent(t, env.StudentRepo, "Kiran Das", true)
	_, err := env.StudentRepo.CreateAdmission(ctx, student.Admission{
		StudentID:     ledgerless.ID,
		AdmissionDate: time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC),
		ClassEnrolled: "Grade 2",
		Section:       "A",
	})
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no args", args: []string{"generatefees"}, wantErr: errHelp},
		{name: "unknown student", args: []string{"generatefees", "-student", "9999"}, wantErr: student.ErrNotFound},
		{name: "no admission", args: []string{"generatefees", "-student", strconv.Itoa(notAdmitted.ID)}, wantErr: student.ErrAdmissionNotFound},
		{name: "already generated", args: []string{"generatefees", "-student", strconv.Itoa(admitted.ID)}, wantErr: fee.ErrDuplicateLedgerEntry},
		{name: "generate", args: []string{"generatefees", "-student", strconv.Itoa(ledgerless.ID)}},
	}
	runCLITests(t, cli, tests)

	sum, err := env.Fees.Summary(ctx, ledgerless.ID)
	require.NoError(t, err)
	assert.Len(t, sum.MonthlyFees, 4)
}
