package document

import (
	"encoding/base64"
	"time"

	"broker-crm/internal/features/file"
	"broker-crm/internal/features/record"
)

type Kind string

const (
	KindPreApproval  Kind = "pre-approval"
	KindLoanEstimate Kind = "loan-estimate"
)

// Mode selects the terminal step after generation: an attachment response
// or the raw bytes for a delivery attachment.
type Mode string

const (
	ModeDownload Mode = "download"
	ModeBytes    Mode = "bytes"
)

func (m Mode) Valid() bool {
	return m == ModeDownload || m == ModeBytes
}

// Payload is a client-facing letter's input. Every amount arrives
// pre-formatted; the generator prints values exactly as given.
type Payload interface {
	Kind() Kind
	Customer() string
	Contact() string
}

// Subject identifies the borrower and the contact a generated letter can be
// archived on.
type Subject struct {
	ContactID       string `json:"contact_id"`
	FullName        string `json:"full_name" validate:"required"`
	CoBorrowerName  string `json:"co_borrower_name"`
	PropertyAddress string `json:"property_address" validate:"required"`
}

func (s Subject) Customer() string { return s.FullName }
func (s Subject) Contact() string  { return s.ContactID }

type PreApprovalPayload struct {
	Subject
	LoanType       string   `json:"loan_type" validate:"required"`
	SalesPrice     string   `json:"sales_price" validate:"required"`
	LoanAmount     string   `json:"loan_amount" validate:"required"`
	DownPayment    string   `json:"down_payment"`
	InterestRate   string   `json:"interest_rate"`
	LoanTerm       string   `json:"loan_term"`
	ExpirationDate string   `json:"expiration_date"`
	LoanOfficer    string   `json:"loan_officer"`
	OfficerNMLSID  string   `json:"officer_nmls_id"`
	Conditions     []string `json:"conditions"`
}

func (PreApprovalPayload) Kind() Kind { return KindPreApproval }

type LoanEstimatePayload struct {
	Subject
	LoanPurpose     string `json:"loan_purpose"`
	LoanType        string `json:"loan_type" validate:"required"`
	LoanTerm        string `json:"loan_term" validate:"required"`
	SalesPrice      string `json:"sales_price"`
	LoanAmount      string `json:"loan_amount" validate:"required"`
	InterestRate    string `json:"interest_rate" validate:"required"`
	APR             string `json:"apr" validate:"required"`
	RateLockExpires string `json:"rate_lock_expires"`

	PrincipalInterest   string `json:"principal_interest" validate:"required"`
	MortgageInsurance   string `json:"mortgage_insurance"`
	EstimatedEscrow     string `json:"estimated_escrow"`
	TotalMonthlyPayment string `json:"total_monthly_payment" validate:"required"`

	OriginationCharges  string `json:"origination_charges"`
	AppraisalFee        string `json:"appraisal_fee"`
	CreditReportFee     string `json:"credit_report_fee"`
	TitleFees           string `json:"title_fees"`
	RecordingFees       string `json:"recording_fees"`
	TransferTaxes       string `json:"transfer_taxes"`
	PrepaidInterest     string `json:"prepaid_interest"`
	HomeownersInsurance string `json:"homeowners_insurance"`
	PropertyTaxes       string `json:"property_taxes"`
	ClosingCosts        string `json:"closing_costs" validate:"required"`
	CashToClose         string `json:"cash_to_close" validate:"required"`
}

func (LoanEstimatePayload) Kind() Kind { return KindLoanEstimate }

// Options control what happens around a generation.
type Options struct {
	Mode    Mode
	Archive bool
}

// Document is a generated PDF. Bytes is never empty.
type Document struct {
	Kind        Kind       `json:"kind"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Pages       int        `json:"pages"`
	Size        int        `json:"size"`
	GeneratedAt time.Time  `json:"generated_at"`
	File        *file.File `json:"file,omitempty"`
	Bytes       []byte     `json:"-"`
}

func (d *Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.Bytes)
}

// BytesResponse is the JSON form of a document generated in bytes mode.
type BytesResponse struct {
	*Document
	PDFBase64 string `json:"pdf_base64"`
}

// SendRequest delivers a freshly generated document.
type SendRequest struct {
	PrimaryEmail    string   `json:"primary_email" validate:"required,email"`
	SecondaryEmails []string `json:"secondary_emails" validate:"omitempty,dive,email"`
	Subject         string   `json:"subject"`
	HTMLBody        string   `json:"html_body"`
	Archive         bool     `json:"archive"`
}

const archiveCollection = record.CollectionContacts
