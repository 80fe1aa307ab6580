package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/school"
)

const settingsColumns = `id, school_id, school_name, slogan, admin_name, admin_email, logo,
	transport_fee_below3, transport_fee_between3_and5, transport_fee_between5_and10, transport_fee_above10,
	created_at, updated_at`

type (
	schoolRepository struct {
		repository
	}

	settingsRow struct {
		ID                        int                 `db:"id"`
		SchoolID                  string              `db:"school_id"`
		SchoolName                string              `db:"school_name"`
		Slogan                    string              `db:"slogan"`
		AdminName                 string              `db:"admin_name"`
		AdminEmail                string              `db:"admin_email"`
		Logo                      string              `db:"logo"`
		TransportFeeBelow3        decimal.NullDecimal `db:"transport_fee_below3"`
		TransportFeeBetween3And5  decimal.NullDecimal `db:"transport_fee_between3_and5"`
		TransportFeeBetween5And10 decimal.NullDecimal `db:"transport_fee_between5_and10"`
		TransportFeeAbove10       decimal.NullDecimal `db:"transport_fee_above10"`
		CreatedAt                 time.Time           `db:"created_at"`
		UpdatedAt                 time.Time           `db:"updated_at"`
	}

	classRow struct {
		ID           int             `db:"id"`
		SettingID    int             `db:"setting_id"`
		Name         string          `db:"name"`
		TuitionFee   decimal.Decimal `db:"tuition_fee"`
		AdmissionFee decimal.Decimal `db:"admission_fee"`
	}
)

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{repository{exec: exec}}
}

// orZero maps unset transport fees to 0.
func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

func (r settingsRow) toSettings() school.Settings {
	return school.Settings{
		ID:         r.ID,
		SchoolID:   r.SchoolID,
		SchoolName: r.SchoolName,
		Slogan:     r.Slogan,
		AdminName:  r.AdminName,
		AdminEmail: r.AdminEmail,
		Logo:       r.Logo,
		TransportFees: school.TransportFees{
			Below3:        orZero(r.TransportFeeBelow3),
			Between3And5:  orZero(r.TransportFeeBetween3And5),
			Between5And10: orZero(r.TransportFeeBetween5And10),
			Above10:       orZero(r.TransportFeeAbove10),
		},
		Classes:   []school.Class{},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (repo schoolRepository) getSettings(ctx context.Context, exec []core.DBExecutor, q string, args ...interface{}) (school.Settings, error) {
	exe := repo.getExec(exec)

	var row settingsRow
	if err := sqlx.GetContext(ctx, exe, &row, q, args...); err != nil {
		return school.Settings{}, trapNoRowsErr(err, school.ErrSettingsNotFound, "finding settings")
	}
	s := row.toSettings()

	var classes []classRow
	q = "SELECT id, setting_id, name, tuition_fee, admission_fee FROM classes WHERE setting_id = $1 ORDER BY id"
	if err := sqlx.SelectContext(ctx, exe, &classes, q, s.ID); err != nil {
		return school.Settings{}, errors.Wrap(err, "querying classes")
	}
	for _, c := range classes {
		s.Classes = append(s.Classes, school.Class{ID: c.ID, Name: c.Name, TuitionFee: c.TuitionFee, AdmissionFee: c.AdmissionFee})
	}
	return s, nil
}

func (repo schoolRepository) GetSettings(ctx context.Context, exec ...core.DBExecutor) (school.Settings, error) {
	return repo.getSettings(ctx, exec, "SELECT "+settingsColumns+" FROM settings ORDER BY id LIMIT 1")
}

func (repo schoolRepository) GetSettingsBySchoolID(ctx context.Context, schoolID string, exec ...core.DBExecutor) (school.Settings, error) {
	return repo.getSettings(ctx, exec, "SELECT "+settingsColumns+" FROM settings WHERE school_id = $1", schoolID)
}

func (repo schoolRepository) CreateSettings(ctx context.Context, s school.Settings, exec ...core.DBExecutor) (school.Settings, error) {
	var row settingsRow
	q := `INSERT INTO settings (school_id, school_name, slogan, admin_name, admin_email, logo,
			transport_fee_below3, transport_fee_between3_and5, transport_fee_between5_and10, transport_fee_above10,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING ` + settingsColumns
	tf := s.TransportFees
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q,
		s.SchoolID, s.SchoolName, s.Slogan, s.AdminName, s.AdminEmail, s.Logo,
		tf.Below3, tf.Between3And5, tf.Between5And10, tf.Above10,
		s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return school.Settings{}, errors.Wrap(err, "inserting settings")
	}
	return row.toSettings(), nil
}

func (repo schoolRepository) UpdateSettings(ctx context.Context, s school.Settings, exec ...core.DBExecutor) (school.Settings, error) {
	var row settingsRow
	q := `UPDATE settings SET school_id = $2, school_name = $3, slogan = $4, admin_name = $5, admin_email = $6, logo = $7,
			transport_fee_below3 = $8, transport_fee_between3_and5 = $9, transport_fee_between5_and10 = $10,
			transport_fee_above10 = $11, updated_at = $12
		WHERE id = $1 RETURNING ` + settingsColumns
	tf := s.TransportFees
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q,
		s.ID, s.SchoolID, s.SchoolName, s.Slogan, s.AdminName, s.AdminEmail, s.Logo,
		tf.Below3, tf.Between3And5, tf.Between5And10, tf.Above10, s.UpdatedAt.UTC())
	if err != nil {
		return school.Settings{}, trapNoRowsErr(err, school.ErrSettingsNotFound, "updating settings")
	}
	return row.toSettings(), nil
}

func (repo schoolRepository) ReplaceClasses(ctx context.Context, settingsID int, classes []school.Class, exec ...core.DBExecutor) ([]school.Class, error) {
	exe := repo.getExec(exec)
	if _, err := exe.ExecContext(ctx, "DELETE FROM classes WHERE setting_id = $1", settingsID); err != nil {
		return nil, errors.Wrap(err, "deleting classes")
	}

	saved := make([]school.Class, 0, len(classes))
	q := "INSERT INTO classes (setting_id, name, tuition_fee, admission_fee) VALUES ($1, $2, $3, $4) RETURNING id"
	for _, cls := range classes {
		if err := exe.QueryRowxContext(ctx, q, settingsID, cls.Name, cls.TuitionFee, cls.AdmissionFee).Scan(&cls.ID); err != nil {
			return nil, errors.Wrap(err, "inserting class")
		}
		saved = append(saved, cls)
	}
	return saved, nil
}
