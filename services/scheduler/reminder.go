package schedulersvc

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/school"
	exportsvc "github.com/trezcool/ada/services/export"
)

var NowFunc = time.Now // mockable

const reminderTemplate = "fee_reminder"

type (
	OverdueLister interface {
		Overdue(ctx context.Context, asOf time.Time) ([]fee.MonthlyFee, error)
	}

	SettingsGetter interface {
		Get(ctx context.Context, exec ...core.DBExecutor) (school.Settings, error)
	}

	// Scheduler runs the periodic jobs of the app.
	Scheduler struct {
		cron     *cron.Cron
		fees     OverdueLister
		settings SettingsGetter
		mailer   core.EmailService
		logger   core.Logger
		loc      *time.Location
	}

	reminderRow struct {
		StudentName string
		Period      string
		DueDate     string
		Pending     string
	}

	reminderData struct {
		AdminName  string
		SchoolName string
		AsOf       string
		Count      int
		Pending    string
		Rows       []reminderRow
	}
)

func New(fees OverdueLister, settings SettingsGetter, mailer core.EmailService, logger core.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		fees:     fees,
		settings: settings,
		mailer:   mailer,
		logger:   logger,
		loc:      loc,
	}
}

// Start schedules the overdue fee reminder on spec (standard 5 field cron). An empty spec disables it.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.logger.Info("scheduler: reminder disabled")
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.SendOverdueReminder(context.Background()); err != nil {
			s.logger.Error("scheduler: overdue fee reminder", err)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling reminder %q", spec)
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// SendOverdueReminder emails the school admin the fees due before today that are not paid.
func (s *Scheduler) SendOverdueReminder(ctx context.Context) error {
	now := NowFunc().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	fees, err := s.fees.Overdue(ctx, today)
	if err != nil {
		return errors.Wrap(err, "listing overdue fees")
	}
	if len(fees) == 0 {
		return nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	if settings.AdminEmail == "" {
		s.logger.Warn("scheduler: no admin email in settings, skipping reminder")
		return nil
	}

	data := reminderData{
		AdminName:  settings.AdminName,
		SchoolName: settings.SchoolName,
		AsOf:       today.Format("2006-01-02"),
		Count:      len(fees),
		Rows:       make([]reminderRow, 0, len(fees)),
	}
	pending := decimal.Zero
	for _, f := range fees {
		var name string
		if f.Student != nil {
			name = f.Student.Name
		}
		pending = pending.Add(f.Pending())
		data.Rows = append(data.Rows, reminderRow{
			StudentName: name,
			Period:      fmt.Sprintf("%s %d", time.Month(f.Month), f.Year),
			DueDate:     f.DueDate.Format("2006-01-02"),
			Pending:     f.Pending().StringFixed(2),
		})
	}
	data.Pending = pending.StringFixed(2)

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: settings.AdminName, Address: settings.AdminEmail}},
		Subject:      fmt.Sprintf("%d overdue fee(s) as of %s", len(fees), data.AsOf),
		TemplateName: reminderTemplate,
		TemplateData: data,
	}
	wb, err := exportsvc.FeeLedgerWorkbook(fees)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = wb.Write(&buf); err != nil {
		return err
	}
	if err = msg.Attach(&buf, exportsvc.Filename("overdue-fees", today), exportsvc.ContentType); err != nil {
		return err
	}

	s.mailer.SendMessages(msg)
	s.logger.Info("scheduler: overdue fee reminder sent", map[string]interface{}{
		"count":   len(fees),
		"pending": data.Pending,
		"asOf":    data.AsOf,
	})
	return nil
}
