package fee

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound             = errors.New("monthly fee not found")
	ErrDuplicateLedgerEntry = errors.New("a fee already exists for this student and month")
	ErrInvalidStatus        = errors.New("invalid fee status")
)

// Orderings understood by repositories
var (
	OrderByPeriod  = []core.DBOrdering{{Field: "year", Ascending: true}, {Field: "month", Ascending: true}}
	OrderByDueDate = []core.DBOrdering{{Field: "due_date"}, {Field: "id"}}
)

type (
	QueryFilter struct {
		StudentID int
		Year      int
		Status    ledger.Status
		Unpaid    bool      // any status but PAID
		DueBefore time.Time // exclusive; zero means no bound
		Ordering  []core.DBOrdering
	}

	Repository interface {
		// CreateFees returns ErrDuplicateLedgerEntry when a (student, month, year) already has a fee.
		CreateFees(ctx context.Context, fees []MonthlyFee, exec ...core.DBExecutor) ([]MonthlyFee, error)
		// QueryFees returns fees with their student (and the student's admission).
		QueryFees(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]MonthlyFee, error)
		GetFeeByID(ctx context.Context, id int, exec ...core.DBExecutor) (MonthlyFee, error)
		GetFeeByPeriod(ctx context.Context, studentID, month, year int, exec ...core.DBExecutor) (MonthlyFee, error)
		UpdateFee(ctx context.Context, f MonthlyFee, exec ...core.DBExecutor) (MonthlyFee, error)
	}

	StudentGetter interface {
		Get(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error)
	}

	SettingsGetter interface {
		Get(ctx context.Context, exec ...core.DBExecutor) (school.Settings, error)
	}

	Service struct {
		repo     Repository
		students StudentGetter
		settings SettingsGetter
		txr      core.Transactor
		logger   core.Logger
	}
)

func NewService(repo Repository, students StudentGetter, settings SettingsGetter, txr core.Transactor, logger core.Logger) *Service {
	return &Service{repo: repo, students: students, settings: settings, txr: txr, logger: logger}
}

// ScheduleFor resolves the class and transport fees of an admission and generates its ledger.
func ScheduleFor(settings school.Settings, adm student.Admission) ([]ledger.MonthlyFeeRecord, error) {
	cls, err := settings.ClassFee(adm.ClassEnrolled)
	if err != nil {
		return nil, err
	}
	transportFee, err := settings.TransportFee(adm.TransportType)
	if err != nil {
		return nil, err
	}
	return ledger.Generate(ledger.FeeScheduleInput{
		AdmissionDate: adm.AdmissionDate,
		TuitionFee:    cls.TuitionFee,
		AdmissionFee:  cls.AdmissionFee,
		TransportFee:  transportFee,
	})
}

// CreateLedger persists the generated records of a student.
func (svc *Service) CreateLedger(ctx context.Context, studentID int, records []ledger.MonthlyFeeRecord, exec ...core.DBExecutor) ([]MonthlyFee, error) {
	now := NowFunc().UTC()
	fees := make([]MonthlyFee, 0, len(records))
	for _, rec := range records {
		fees = append(fees, fromRecord(studentID, rec, now))
	}
	return svc.repo.CreateFees(ctx, fees, exec...)
}

// GenerateForStudent generates and stores the ledger of an admitted student.
// The financial year comes from the admission date: academicYear is not used.
func (svc *Service) GenerateForStudent(ctx context.Context, studentID int, academicYear string) ([]MonthlyFee, error) {
	std, err := svc.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if std.Admission == nil {
		return nil, student.ErrAdmissionNotFound
	}
	if academicYear != "" && svc.logger != nil {
		svc.logger.Debug("fee.GenerateForStudent: ignoring academicYear", map[string]interface{}{
			"studentId":     studentID,
			"academicYear":  academicYear,
			"financialYear": ledger.FinancialYearLabel(std.Admission.AdmissionDate),
		})
	}

	settings, err := svc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	records, err := ScheduleFor(settings, *std.Admission)
	if err != nil {
		return nil, err
	}

	var fees []MonthlyFee
	err = svc.txr.WithinTx(ctx, func(exec core.DBExecutor) error {
		fees, err = svc.CreateLedger(ctx, std.ID, records, exec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fees, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]MonthlyFee, error) {
	if len(filter.Ordering) == 0 {
		filter.Ordering = OrderByPeriod
	}
	return svc.repo.QueryFees(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, id int) (MonthlyFee, error) {
	return svc.repo.GetFeeByID(ctx, id)
}

// RecordPayment sets the paid amount and status of a fee.
// The paid date is kept only on PAID fees: the given one, or now.
func (svc *Service) RecordPayment(ctx context.Context, id int, pu PaymentUpdate) (MonthlyFee, error) {
	if err := pu.Validate(); err != nil {
		return MonthlyFee{}, err
	}
	f, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return MonthlyFee{}, err
	}

	if pu.PaidAmount != nil {
		f.PaidAmount = *pu.PaidAmount
	}
	if f.Status, err = ResolveStatus(pu.Status, f.PaidAmount, f.TotalAmount); err != nil {
		return MonthlyFee{}, core.NewFieldError("status", err.Error())
	}

	now := NowFunc().UTC()
	f.PaidDate = nil
	if f.IsPaid() {
		paidDate := now
		if pu.PaidDate != "" {
			if paidDate, err = ledger.ParseDate(pu.PaidDate); err != nil {
				return MonthlyFee{}, err
			}
		}
		f.PaidDate = &paidDate
	}
	f.UpdatedAt = now
	return svc.repo.UpdateFee(ctx, f)
}

// CreateAdHoc charges amount to a student for the month of the due date.
// An existing fee for that month is reset to the new amount.
func (svc *Service) CreateAdHoc(ctx context.Context, nf NewAdHocFee) (MonthlyFee, error) {
	if err := nf.Validate(); err != nil {
		return MonthlyFee{}, err
	}
	due, err := ledger.ParseDate(nf.DueDate)
	if err != nil {
		return MonthlyFee{}, err
	}
	if _, err := svc.students.Get(ctx, nf.StudentID); err != nil {
		return MonthlyFee{}, err
	}

	var f MonthlyFee
	err = svc.txr.WithinTx(ctx, func(exec core.DBExecutor) error {
		now := NowFunc().UTC()
		existing, err := svc.repo.GetFeeByPeriod(ctx, nf.StudentID, int(due.Month()), due.Year(), exec)
		switch err {
		case nil:
			existing.TuitionFee = nf.Amount
			existing.AdmissionFee = decimal.Zero
			existing.TransportFee = decimal.Zero
			existing.TotalAmount = nf.Amount
			existing.PaidAmount = decimal.Zero
			existing.PaidDate = nil
			existing.Status = ledger.StatusPending
			existing.DueDate = due
			if nf.Remarks != "" {
				existing.Remarks = nf.Remarks
			}
			existing.UpdatedAt = now
			f, err = svc.repo.UpdateFee(ctx, existing, exec)
			return err
		case ErrNotFound:
			var created []MonthlyFee
			created, err = svc.repo.CreateFees(ctx, []MonthlyFee{{
				StudentID:    nf.StudentID,
				Month:        int(due.Month()),
				Year:         due.Year(),
				TuitionFee:   nf.Amount,
				AdmissionFee: decimal.Zero,
				TransportFee: decimal.Zero,
				TotalAmount:  nf.Amount,
				PaidAmount:   decimal.Zero,
				DueDate:      due,
				Status:       ledger.StatusPending,
				Remarks:      nf.Remarks,
				CreatedAt:    now,
				UpdatedAt:    now,
			}}, exec)
			if err == nil {
				f = created[0]
			}
			return err
		}
		return err
	})
	if err != nil {
		return MonthlyFee{}, err
	}
	return f, nil
}

// Summary returns the fees of a student with their totals.
func (svc *Service) Summary(ctx context.Context, studentID int) (Summary, error) {
	std, err := svc.students.Get(ctx, studentID)
	if err != nil {
		return Summary{}, err
	}
	fees, err := svc.repo.QueryFees(ctx, QueryFilter{StudentID: studentID, Ordering: OrderByPeriod})
	if err != nil {
		return Summary{}, err
	}
	return summarize(std, fees), nil
}

// Overdue returns the unpaid fees due before asOf, oldest first.
func (svc *Service) Overdue(ctx context.Context, asOf time.Time) ([]MonthlyFee, error) {
	return svc.repo.QueryFees(ctx, QueryFilter{
		Unpaid:    true,
		DueBefore: asOf,
		Ordering:  []core.DBOrdering{{Field: "due_date", Ascending: true}, {Field: "id", Ascending: true}},
	})
}
