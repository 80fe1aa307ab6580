package student

import (
	"time"

	"github.com/trezcool/ada/core"
)

type (
	// Admission records how a Student joined the school.
	Admission struct {
		ID            int       `json:"id"`
		StudentID     int       `json:"studentId"`
		AdmissionDate time.Time `json:"admissionDate"`
		ClassEnrolled string    `json:"classEnrolled"`
		Section       string    `json:"section"`
		AcademicYear  string    `json:"academicYear"`
		Remarks       string    `json:"remarks"`
		TransportType string    `json:"transportType"`
		CreatedAt     time.Time `json:"createdAt"` // UTC
	}

	Student struct {
		ID            int        `json:"id"`
		Name          string     `json:"studentName"`
		DateOfBirth   time.Time  `json:"dateOfBirth"`
		Gender        string     `json:"gender"`
		Email         string     `json:"email"` // optional, unique when set
		Phone         string     `json:"phone"`
		Address       string     `json:"address"`
		FatherName    string     `json:"fatherName"`
		MotherName    string     `json:"motherName"`
		AadhaarNumber string     `json:"aadhaarNumber"`
		Photo         string     `json:"studentPhotoBase64"`
		RegNo         string     `json:"regNo"`
		IsActive      bool       `json:"isActive"`
		CreatedAt     time.Time  `json:"createdAt"` // UTC
		UpdatedAt     time.Time  `json:"updatedAt"` // UTC
		Admission     *Admission `json:"admission"`
	}

	// UpdateStudent holds the fields a Student update may change. Nil fields are left as is.
	UpdateStudent struct {
		Name          *string `json:"studentName"`
		FatherName    *string `json:"fatherName"`
		MotherName    *string `json:"motherName"`
		Gender        *string `json:"gender"`
		Address       *string `json:"address"`
		AadhaarNumber *string `json:"aadhaarNumber"`
		Photo         *string `json:"studentPhotoBase64"`
		IsActive      *bool   `json:"isActive"`
	}
)

// Validate cleans the set fields. Name, gender and address cannot be blanked.
func (us *UpdateStudent) Validate() error {
	for _, s := range []*string{us.Name, us.FatherName, us.MotherName, us.Gender, us.Address, us.AadhaarNumber} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}

	var flds []core.FieldError
	for _, f := range []struct {
		name string
		val  *string
	}{{"studentName", us.Name}, {"gender", us.Gender}, {"address", us.Address}} {
		if f.val != nil && *f.val == "" {
			flds = append(flds, core.FieldError{Field: f.name, Error: "this field cannot be empty"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// apply copies the set fields of us onto std.
func (us UpdateStudent) apply(std *Student) {
	if us.Name != nil {
		std.Name = *us.Name
	}
	if us.FatherName != nil {
		std.FatherName = *us.FatherName
	}
	if us.MotherName != nil {
		std.MotherName = *us.MotherName
	}
	if us.Gender != nil {
		std.Gender = *us.Gender
	}
	if us.Address != nil {
		std.Address = *us.Address
	}
	if us.AadhaarNumber != nil {
		std.AadhaarNumber = *us.AadhaarNumber
	}
	if us.Photo != nil {
		std.Photo = *us.Photo
	}
	if us.IsActive != nil {
		std.IsActive = *us.IsActive
	}
}
