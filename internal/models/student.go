package models

import (
	"strconv"
	"time"
)

// Student is one record in a per-account scope. The serial ID is a
// string-encoded positive integer kept dense within the scope: after any
// delete the remaining records are renumbered 1..N in order. JSON field
// names match the storage format of the original web client.
type Student struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Caste       string `json:"caste"`
	CasteName   string `json:"casteName"`
	DateOfBirth string `json:"dateOfBirth"`
	PEN         string `json:"PEN"`
	AdmnNo      string `json:"admnNo"`
	ApaarID     string `json:"apaarID"`
	Class       string `json:"class"`
	AadharNo    string `json:"aadharNumber"`

	FatherName     string `json:"fatherName"`
	FatherAadharNo string `json:"fatheraadharNumber"`
	FatherMobileNo string `json:"fathermobileNumber"`

	MotherName      string `json:"motherName"`
	MotherAadharNo  string `json:"motheraadharNumber"`
	MotherMobileNo  string `json:"mothermobileNumber"`
	MotherBankAccNo string `json:"motherBankAccountNumber"`
	MotherIFSCCode  string `json:"motherIFSCCode"`
	MotherBranch    string `json:"motherBranchName"`

	GuardianName      string `json:"guardianName,omitempty"`
	GuardianAadharNo  string `json:"guardianAadharNumber,omitempty"`
	GuardianMobileNo  string `json:"guardianMobileNumber,omitempty"`
	GuardianBankAccNo string `json:"guardianBankAccountNumber,omitempty"`
	GuardianIFSCCode  string `json:"guardianIFSCCode,omitempty"`
	GuardianBranch    string `json:"guardianBranchName,omitempty"`

	Habitation string `json:"habitation"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SerialNumber returns the numeric value of the serial ID, 0 when malformed.
func (s *Student) SerialNumber() int {
	n, err := strconv.Atoi(s.ID)
	if err != nil {
		return 0
	}
	return n
}

// StudentFormData is the strongly-typed mutation payload: every descriptive
// field of a Student except the generated ones. Guardian fields are the only
// optional group.
type StudentFormData struct {
	Name        string `json:"name" validate:"required"`
	Gender      string `json:"gender" validate:"required,oneof=Male Female Other"`
	Caste       string `json:"caste" validate:"required,oneof=SC ST BC OC"`
	CasteName   string `json:"casteName" validate:"required"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	PEN         string `json:"PEN" validate:"required"`
	AdmnNo      string `json:"admnNo" validate:"required"`
	ApaarID     string `json:"apaarID" validate:"required"`
	Class       string `json:"class" validate:"required"`
	AadharNo    string `json:"aadharNumber" validate:"required"`

	FatherName     string `json:"fatherName" validate:"required"`
	FatherAadharNo string `json:"fatheraadharNumber" validate:"required"`
	FatherMobileNo string `json:"fathermobileNumber" validate:"required"`

	MotherName      string `json:"motherName" validate:"required"`
	MotherAadharNo  string `json:"motheraadharNumber" validate:"required"`
	MotherMobileNo  string `json:"mothermobileNumber" validate:"required"`
	MotherBankAccNo string `json:"motherBankAccountNumber" validate:"required"`
	MotherIFSCCode  string `json:"motherIFSCCode" validate:"required"`
	MotherBranch    string `json:"motherBranchName" validate:"required"`

	GuardianName      string `json:"guardianName"`
	GuardianAadharNo  string `json:"guardianAadharNumber"`
	GuardianMobileNo  string `json:"guardianMobileNumber"`
	GuardianBankAccNo string `json:"guardianBankAccountNumber"`
	GuardianIFSCCode  string `json:"guardianIFSCCode"`
	GuardianBranch    string `json:"guardianBranchName"`

	Habitation string `json:"habitation" validate:"required"`
}

// Apply copies every form field onto the student, leaving the generated
// fields (ID, UserID, CreatedAt, UpdatedAt) untouched.
func (f StudentFormData) Apply(s *Student) {
	s.Name = f.Name
	s.Gender = f.Gender
	s.Caste = f.Caste
	s.CasteName = f.CasteName
	s.DateOfBirth = f.DateOfBirth
	s.PEN = f.PEN
	s.AdmnNo = f.AdmnNo
	s.ApaarID = f.ApaarID
	s.Class = f.Class
	s.AadharNo = f.AadharNo
	s.FatherName = f.FatherName
	s.FatherAadharNo = f.FatherAadharNo
	s.FatherMobileNo = f.FatherMobileNo
	s.MotherName = f.MotherName
	s.MotherAadharNo = f.MotherAadharNo
	s.MotherMobileNo = f.MotherMobileNo
	s.MotherBankAccNo = f.MotherBankAccNo
	s.MotherIFSCCode = f.MotherIFSCCode
	s.MotherBranch = f.MotherBranch
	s.GuardianName = f.GuardianName
	s.GuardianAadharNo = f.GuardianAadharNo
	s.GuardianMobileNo = f.GuardianMobileNo
	s.GuardianBankAccNo = f.GuardianBankAccNo
	s.GuardianIFSCCode = f.GuardianIFSCCode
	s.GuardianBranch = f.GuardianBranch
	s.Habitation = f.Habitation
}
