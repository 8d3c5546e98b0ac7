package entities

import (
	"github.com/volatiletech/null/v8"
)

// VerificationStatus is the review lifecycle of a KYC submission.
// StatusNotSubmitted is the explicit pre-state for records whose text
// sections have never been submitted.
type VerificationStatus string

const (
	StatusNotSubmitted VerificationStatus = "not_submitted"
	StatusPending      VerificationStatus = "pending"
	StatusApproved     VerificationStatus = "approved"
	StatusRejected     VerificationStatus = "rejected"
)

// ReviewableStatus reports whether an admin may set this status
func ReviewableStatus(s VerificationStatus) bool {
	return s == StatusApproved || s == StatusRejected
}

// PersonalDetails holds the KYC personal data section
type PersonalDetails struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Nationality string `json:"nationality"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	PostalCode  string `json:"postalCode"`
}

// NextOfKin holds the KYC next-of-kin section
type NextOfKin struct {
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
}

// BankDetails holds the KYC bank details section
type BankDetails struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	SwiftCode     string `json:"swiftCode"`
	Currency      string `json:"currency"`
}

// Documents holds web-accessible paths of the three required documents
type Documents struct {
	IDDocument    string `json:"idDocument"`
	PassportPhoto string `json:"passportPhoto"`
	UtilityBill   string `json:"utilityBill"`
}

// Complete reports whether all three document slots are filled
func (d Documents) Complete() bool {
	return d.IDDocument != "" && d.PassportPhoto != "" && d.UtilityBill != ""
}

// Verification is the KYC record of a user
type Verification struct {
	Personal    *PersonalDetails   `json:"personal,omitempty"`
	NextOfKin   *NextOfKin         `json:"nextOfKin,omitempty"`
	BankDetails *BankDetails       `json:"bankDetails,omitempty"`
	Documents   Documents          `json:"documents"`
	Status      VerificationStatus `json:"status"`

	SubmittedAt     null.Time   `json:"submittedAt,omitempty"`
	RejectionReason null.String `json:"rejectionReason,omitempty"`
	ReviewedAt      null.Time   `json:"reviewedAt,omitempty"`
	ReviewedBy      null.String `json:"reviewedBy,omitempty"`
}

// Complete reports whether every text section and all documents are present.
// Admin approval requires a complete record.
func (v *Verification) Complete() bool {
	return v.Personal != nil && v.NextOfKin != nil && v.BankDetails != nil && v.Documents.Complete()
}

// SubmitVerificationInput carries the three text sections. Each section
// replaces the stored one wholesale on resubmission.
type SubmitVerificationInput struct {
	Personal    PersonalDetails `json:"personal" binding:"required"`
	NextOfKin   NextOfKin       `json:"nextOfKin" binding:"required"`
	BankDetails BankDetails     `json:"bankDetails" binding:"required"`
}

// ReviewInput carries an admin review decision
type ReviewInput struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}
