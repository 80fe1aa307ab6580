package admission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/admission"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
	testutil "github.com/trezcool/ada/tests"
)

func newAdmission(mod func(na *admission.NewAdmission)) admission.NewAdmission {
	na := admission.NewAdmission{
		StudentName:   " Ravi Kumar ",
		DateOfBirth:   "2015-05-20",
		Gender:        "Male",
		Email:         "Ravi@Family.test",
		Phone:         "9876543210",
		Address:       "12 MG Road",
		City:          "Kochi",
		State:         "Kerala",
		FatherName:    "Suresh Kumar",
		AdmissionDate: "2025-06-15",
		ClassEnrolled: "Grade 1",
	}
	if mod != nil {
		mod(&na)
	}
	return na
}

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv()
	testutil.SaveSettings(t, env.Schools)
	ctx := context.Background()

	res, err := env.Admissions.Create(ctx, newAdmission(nil))
	require.NoError(t, err)

	std := res.Student
	assert.NotZero(t, std.ID)
	assert.Equal(t, "Ravi Kumar", std.Name)
	assert.Equal(t, "ravi@family.test", std.Email)
	assert.Equal(t, "12 MG Road, Kochi, Kerala", std.Address)
	assert.True(t, std.DateOfBirth.Equal(time.Date(2015, time.May, 20, 0, 0, 0, 0, time.UTC)))
	assert.True(t, std.IsActive)
	require.NotNil(t, std.Admission)

	adm := res.Admission
	assert.Equal(t, std.ID, adm.StudentID)
	assert.Equal(t, "Grade 1", adm.ClassEnrolled)
	assert.Equal(t, "A", adm.Section)
	assert.Equal(t, "2025-2026", adm.AcademicYear)
	assert.Equal(t, string(school.TierNone), adm.TransportType)

	require.Len(t, res.MonthlyFees, 10)
	for i, f := range res.MonthlyFees {
		assert.Equal(t, std.ID, f.StudentID)
		assert.Equal(t, ledger.StatusPending, f.Status)
		want := "600"
		if i == 0 {
			want = "1000"
		}
		assert.Equal(t, want, f.TotalAmount.String(), "fee %d/%d", f.Month, f.Year)
	}

	stored, err := env.Fees.Query(ctx, fee.QueryFilter{StudentID: std.ID})
	require.NoError(t, err)
	assert.Len(t, stored, 10)
}

func TestService_Create_variants(t *testing.T) {
	tests := []struct {
		name          string
		mod           func(na *admission.NewAdmission)
		wantFees      int
		wantFirst     string
		wantRest      string
		wantTransport school.TransportTier
		wantYear      string
	}{
		{
			name:          "transport tier",
			mod:           func(na *admission.NewAdmission) { na.TransportType = "3-5 km" },
			wantFees:      10,
			wantFirst:     "1200",
			wantRest:      "800",
			wantTransport: school.Tier3To5,
			wantYear:      "2025-2026",
		},
		{
			name: "aliases",
			mod: func(na *admission.NewAdmission) {
				na.DateOfBirth, na.DOB = "", "2014-01-02"
				na.ClassEnrolled, na.Grade = "", "Grade 2"
				na.AdmissionDate = "2026-02-10"
			},
			wantFees:      2,
			wantFirst:     "1400",
			wantRest:      "800",
			wantTransport: school.TierNone,
			wantYear:      "2025-2026",
		},
		{
			name: "given academic year",
			mod: func(na *admission.NewAdmission) {
				na.AcademicYear = "2026-27"
				na.AdmissionDate = "2026-03-31T10:00:00Z"
				na.TransportType = "Above 10KM"
			},
			wantFees:      1,
			wantFirst:     "1400",
			wantTransport: school.TierAbove10,
			wantYear:      "2026-27",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv()
			testutil.SaveSettings(t, env.Schools)

			res, err := env.Admissions.Create(context.Background(), newAdmission(tt.mod))
			require.NoError(t, err)
			assert.Equal(t, string(tt.wantTransport), res.Admission.TransportType)
			assert.Equal(t, tt.wantYear, res.Admission.AcademicYear)
			require.Len(t, res.MonthlyFees, tt.wantFees)
			assert.Equal(t, tt.wantFirst, res.MonthlyFees[0].TotalAmount.String())
			for _, f := range res.MonthlyFees[1:] {
				assert.Equal(t, tt.wantRest, f.TotalAmount.String())
			}
		})
	}
}

func TestService_Create_invalid(t *testing.T) {
	tests := []struct {
		name      string
		mod       func(na *admission.NewAdmission)
		wantErr   error
		wantField string
	}{
		{name: "missing name", mod: func(na *admission.NewAdmission) { na.StudentName = "  " }, wantField: "studentName"},
		{name: "missing phone", mod: func(na *admission.NewAdmission) { na.Phone = "" }, wantField: "phone"},
		{name: "bad email", mod: func(na *admission.NewAdmission) { na.Email = "ravi" }, wantField: "email"},
		{name: "bad birth date", mod: func(na *admission.NewAdmission) { na.DateOfBirth = "20/05/2015" }, wantField: "dateOfBirth"},
		{name: "missing admission date", mod: func(na *admission.NewAdmission) { na.AdmissionDate = "" }, wantField: "admissionDate"},
		{name: "missing class", mod: func(na *admission.NewAdmission) { na.ClassEnrolled = "" }, wantField: "classEnrolled"},
		{name: "unknown transport", mod: func(na *admission.NewAdmission) { na.TransportType = "Helicopter" }, wantField: "transportType"},
		{name: "unknown class", mod: func(na *admission.NewAdmission) { na.ClassEnrolled = "Grade 9" }, wantErr: school.ErrClassNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv()
			testutil.SaveSettings(t, env.Schools)
			ctx := context.Background()

			_, err := env.Admissions.Create(ctx, newAdmission(tt.mod))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			}
			if tt.wantField != "" {
				verrs, ok := err.(validator.ValidationErrors)
				require.True(t, ok, "want validator.ValidationErrors, got %T", err)
				assert.Equal(t, tt.wantField, verrs[0].Field())
			}

			stds, err := env.Students.Query(ctx, student.QueryFilter{IncludeInactive: true})
			require.NoError(t, err)
			assert.Empty(t, stds)
		})
	}
}

func TestService_Create_noSettings(t *testing.T) {
	env := testutil.NewEnv()
	_, err := env.Admissions.Create(context.Background(), newAdmission(nil))
	assert.Equal(t, school.ErrSettingsNotFound, err)
}

func TestService_Create_duplicateEmail(t *testing.T) {
	env := testutil.NewEnv()
	testutil.SaveSettings(t, env.Schools)
	ctx := context.Background()

	_, err := env.Admissions.Create(ctx, newAdmission(nil))
	require.NoError(t, err)
	_, err = env.Admissions.Create(ctx, newAdmission(func(na *admission.NewAdmission) { na.StudentName = "Another Ravi" }))
	assert.Equal(t, student.ErrEmailExists, err)

	stds, err := env.Students.Query(ctx, student.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, stds, 1)
}

type failingLedger struct{}

var errLedger = errors.New("ledger unavailable")

func (failingLedger) CreateLedger(context.Context, int, []ledger.MonthlyFeeRecord, ...core.DBExecutor) ([]fee.MonthlyFee, error) {
	return nil, errLedger
}

func TestService_Create_rollback(t *testing.T) {
	env := testutil.NewEnv()
	testutil.SaveSettings(t, env.Schools)
	ctx := context.Background()

	svc := admission.NewService(env.StudentRepo, failingLedger{}, env.Schools, env.DB)
	_, err := svc.Create(ctx, newAdmission(nil))
	assert.Equal(t, errLedger, err)

	stds, err := env.Students.Query(ctx, student.QueryFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, stds, "the student must not outlive a failed admission")
}
