package admission

import (
	"strings"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/student"
)

const defaultSection = "A"

type (
	// NewAdmission is the admission form: the student's details and where they are enrolled.
	NewAdmission struct {
		// student
		StudentName   string `json:"studentName" validate:"required"`
		DateOfBirth   string `json:"dateOfBirth" validate:"required,date"`
		DOB           string `json:"dob"` // alias of dateOfBirth
		Gender        string `json:"gender" validate:"required"`
		Email         string `json:"email" validate:"omitempty,email"`
		Phone         string `json:"phone" validate:"required"`
		Address       string `json:"address" validate:"required"`
		City          string `json:"city"`
		State         string `json:"state"`
		FatherName    string `json:"fatherName"`
		MotherName    string `json:"motherName"`
		AadhaarNumber string `json:"aadhaarNumber"`
		Photo         string `json:"studentPhotoBase64"`
		RegNo         string `json:"regNo"`

		// admission
		AdmissionDate string `json:"admissionDate" validate:"required,date"`
		ClassEnrolled string `json:"classEnrolled" validate:"required"`
		Grade         string `json:"grade"` // alias of classEnrolled
		Section       string `json:"section"`
		AcademicYear  string `json:"academicYear"`
		Remarks       string `json:"remarks"`
		TransportType string `json:"transportType" validate:"transport_tier"`
	}

	// Result is what an admission creates.
	Result struct {
		Student     student.Student   `json:"student"`
		Admission   student.Admission `json:"admission"`
		MonthlyFees []fee.MonthlyFee  `json:"monthlyFees"`
	}
)

func (na *NewAdmission) clean() {
	for _, s := range []*string{
		&na.StudentName, &na.DateOfBirth, &na.DOB, &na.Gender, &na.Phone, &na.Address, &na.City, &na.State,
		&na.FatherName, &na.MotherName, &na.AadhaarNumber, &na.RegNo, &na.AdmissionDate, &na.ClassEnrolled,
		&na.Grade, &na.Section, &na.AcademicYear, &na.Remarks, &na.TransportType,
	} {
		*s = core.CleanString(*s)
	}
	na.Email = core.CleanString(na.Email, true /* lower */)

	if na.DateOfBirth == "" {
		na.DateOfBirth = na.DOB
	}
	if na.ClassEnrolled == "" {
		na.ClassEnrolled = na.Grade
	}
	if na.Section == "" {
		na.Section = defaultSection
	}
}

// fullAddress joins the address with the city and state, when given.
func (na NewAdmission) fullAddress() string {
	parts := []string{na.Address}
	for _, p := range []string{na.City, na.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (na *NewAdmission) Validate() error {
	na.clean()
	return core.Validate.Struct(na)
}
