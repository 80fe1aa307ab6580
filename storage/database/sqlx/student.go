package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/student"
)

// studentSelect selects students with their admission, if any.
const studentSelect = `SELECT s.id, s.name, s.date_of_birth, s.gender, s.email, s.phone, s.address,
		s.father_name, s.mother_name, s.aadhaar_number, s.photo, s.reg_no, s.is_active, s.created_at, s.updated_at,
		a.id AS adm_id, a.admission_date AS adm_admission_date, a.class_enrolled AS adm_class_enrolled,
		a.section AS adm_section, a.academic_year AS adm_academic_year, a.remarks AS adm_remarks,
		a.transport_type AS adm_transport_type, a.created_at AS adm_created_at
	FROM students s LEFT JOIN admissions a ON a.student_id = s.id`

type (
	studentRepository struct {
		repository
	}

	studentRow struct {
		ID            int         `db:"id"`
		Name          string      `db:"name"`
		DateOfBirth   time.Time   `db:"date_of_birth"`
		Gender        string      `db:"gender"`
		Email         null.String `db:"email"`
		Phone         string      `db:"phone"`
		Address       string      `db:"address"`
		FatherName    null.String `db:"father_name"`
		MotherName    null.String `db:"mother_name"`
		AadhaarNumber null.String `db:"aadhaar_number"`
		Photo         null.String `db:"photo"`
		RegNo         null.String `db:"reg_no"`
		IsActive      bool        `db:"is_active"`
		CreatedAt     time.Time   `db:"created_at"`
		UpdatedAt     time.Time   `db:"updated_at"`

		// admission
		AdmID            null.Int    `db:"adm_id"`
		AdmAdmissionDate null.Time   `db:"adm_admission_date"`
		AdmClassEnrolled null.String `db:"adm_class_enrolled"`
		AdmSection       null.String `db:"adm_section"`
		AdmAcademicYear  null.String `db:"adm_academic_year"`
		AdmRemarks       null.String `db:"adm_remarks"`
		AdmTransportType null.String `db:"adm_transport_type"`
		AdmCreatedAt     null.Time   `db:"adm_created_at"`
	}
)

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{repository{exec: exec}}
}

func (r studentRow) toStudent() student.Student {
	std := student.Student{
		ID:            r.ID,
		Name:          r.Name,
		DateOfBirth:   ledger.DateOf(r.DateOfBirth),
		Gender:        r.Gender,
		Email:         r.Email.String,
		Phone:         r.Phone,
		Address:       r.Address,
		FatherName:    r.FatherName.String,
		MotherName:    r.MotherName.String,
		AadhaarNumber: r.AadhaarNumber.String,
		Photo:         r.Photo.String,
		RegNo:         r.RegNo.String,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.AdmID.Valid {
		std.Admission = &student.Admission{
			ID:            r.AdmID.Int,
			StudentID:     r.ID,
			AdmissionDate: ledger.DateOf(r.AdmAdmissionDate.Time),
			ClassEnrolled: r.AdmClassEnrolled.String,
			Section:       r.AdmSection.String,
			AcademicYear:  r.AdmAcademicYear.String,
			Remarks:       r.AdmRemarks.String,
			TransportType: r.AdmTransportType.String,
			CreatedAt:     r.AdmCreatedAt.Time.UTC(),
		}
	}
	return std
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q := `INSERT INTO students (name, date_of_birth, gender, email, phone, address, father_name, mother_name,
			aadhaar_number, photo, reg_no, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	err := repo.getExec(exec).QueryRowxContext(ctx, q,
		std.Name, std.DateOfBirth, std.Gender, nullString(std.Email), std.Phone, std.Address,
		nullString(std.FatherName), nullString(std.MotherName), nullString(std.AadhaarNumber),
		nullString(std.Photo), nullString(std.RegNo), std.IsActive, std.CreatedAt.UTC(), std.UpdatedAt.UTC(),
	).Scan(&std.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	std.Admission = nil
	return std, nil
}

func (repo studentRepository) CreateAdmission(ctx context.Context, adm student.Admission, exec ...core.DBExecutor) (student.Admission, error) {
	q := `INSERT INTO admissions (student_id, admission_date, class_enrolled, section, academic_year, remarks,
			transport_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := repo.getExec(exec).QueryRowxContext(ctx, q,
		adm.StudentID, adm.AdmissionDate, adm.ClassEnrolled, adm.Section, adm.AcademicYear,
		nullString(adm.Remarks), adm.TransportType, adm.CreatedAt.UTC(),
	).Scan(&adm.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Admission{}, student.ErrAdmissionExists
		}
		return student.Admission{}, errors.Wrap(err, "inserting admission")
	}
	return adm, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	q := studentSelect
	if !filter.IncludeInactive {
		q += " WHERE s.is_active"
	}
	q += " ORDER BY s.created_at DESC, s.id DESC"

	var rows []studentRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, studentSelect+" WHERE s.id = $1", id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	exe := repo.getExec(exec)
	q := `UPDATE students SET name = $2, gender = $3, email = $4, phone = $5, address = $6, father_name = $7,
			mother_name = $8, aadhaar_number = $9, photo = $10, reg_no = $11, is_active = $12, updated_at = $13
		WHERE id = $1`
	res, err := exe.ExecContext(ctx, q,
		std.ID, std.Name, std.Gender, nullString(std.Email), std.Phone, std.Address, nullString(std.FatherName),
		nullString(std.MotherName), nullString(std.AadhaarNumber), nullString(std.Photo), nullString(std.RegNo),
		std.IsActive, std.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, std.ID, exe)
}
