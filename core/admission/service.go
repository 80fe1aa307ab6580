package admission

import (
	"context"
	"time"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
)

var NowFunc = time.Now // mockable

type (
	StudentCreator interface {
		CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error)
		CreateAdmission(ctx context.Context, adm student.Admission, exec ...core.DBExecutor) (student.Admission, error)
	}

	LedgerCreator interface {
		CreateLedger(ctx context.Context, studentID int, records []ledger.MonthlyFeeRecord, exec ...core.DBExecutor) ([]fee.MonthlyFee, error)
	}

	SettingsGetter interface {
		Get(ctx context.Context, exec ...core.DBExecutor) (school.Settings, error)
	}

	Service struct {
		students StudentCreator
		ledgers  LedgerCreator
		settings SettingsGetter
		txr      core.Transactor
	}
)

func NewService(students StudentCreator, ledgers LedgerCreator, settings SettingsGetter, txr core.Transactor) *Service {
	return &Service{students: students, ledgers: ledgers, settings: settings, txr: txr}
}

// Create admits a new student: the student, their admission and their fee ledger
// for the rest of the financial year are stored together or not at all.
func (svc *Service) Create(ctx context.Context, na NewAdmission) (Result, error) {
	if err := na.Validate(); err != nil {
		return Result{}, err
	}
	dob, err := ledger.ParseDate(na.DateOfBirth)
	if err != nil {
		return Result{}, err
	}
	admissionDate, err := ledger.ParseDate(na.AdmissionDate)
	if err != nil {
		return Result{}, err
	}
	tier, err := school.NormalizeTransportTier(na.TransportType)
	if err != nil {
		return Result{}, err
	}

	settings, err := svc.settings.Get(ctx)
	if err != nil {
		return Result{}, err
	}

	academicYear := na.AcademicYear
	if academicYear == "" {
		academicYear = ledger.FinancialYearLabel(admissionDate)
	}
	now := NowFunc().UTC()
	adm := student.Admission{
		AdmissionDate: admissionDate,
		ClassEnrolled: na.ClassEnrolled,
		Section:       na.Section,
		AcademicYear:  academicYear,
		Remarks:       na.Remarks,
		TransportType: string(tier),
		CreatedAt:     now,
	}
	records, err := fee.ScheduleFor(settings, adm)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = svc.txr.WithinTx(ctx, func(exec core.DBExecutor) error {
		std, err := svc.students.CreateStudent(ctx, student.Student{
			Name:          na.StudentName,
			DateOfBirth:   dob,
			Gender:        na.Gender,
			Email:         na.Email,
			Phone:         na.Phone,
			Address:       na.fullAddress(),
			FatherName:    na.FatherName,
			MotherName:    na.MotherName,
			AadhaarNumber: na.AadhaarNumber,
			Photo:         na.Photo,
			RegNo:         na.RegNo,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}, exec)
		if err != nil {
			return err
		}

		adm.StudentID = std.ID
		if adm, err = svc.students.CreateAdmission(ctx, adm, exec); err != nil {
			return err
		}
		std.Admission = &adm

		fees, err := svc.ledgers.CreateLedger(ctx, std.ID, records, exec)
		if err != nil {
			return err
		}
		res = Result{Student: std, Admission: adm, MonthlyFees: fees}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
