package document

import (
	"fmt"
	"strings"
	"time"

	"broker-crm/internal/features/settings"
	"broker-crm/pkg/pdfdoc"
)

const (
	paragraphWidth  = 90
	disclosureWidth = 120
	letterDate      = "January 2, 2006"
)

var defaultConditions = []string{
	"Satisfactory appraisal supporting the purchase price",
	"Verification of income, assets and employment",
	"Clear title and acceptable homeowners insurance",
	"No material change in credit or financial condition before closing",
}

// row is one label/value line of a letter table. Rows with an empty value
// are skipped.
type row struct {
	label, value string
}

func letterhead(l *pdfdoc.Layout, profile *settings.BrokerageProfile, date time.Time) {
	l.Styled(profile.Name, pdfdoc.HeaderStyle)

	var contact []string
	for _, part := range []string{profile.Address, profile.Phone, profile.Email, profile.Website} {
		if part != "" {
			contact = append(contact, part)
		}
	}
	if len(contact) > 0 {
		l.Styled(strings.Join(contact, " | "), pdfdoc.NoteStyle)
	}
	if profile.NMLSID != "" {
		l.Styled("NMLS #"+profile.NMLSID, pdfdoc.NoteStyle)
	}
	l.Rule()
	l.Line(date.Format(letterDate))
	l.Gap(pdfdoc.SectionGap)
}

func table(l *pdfdoc.Layout, title string, rows []row) {
	var visible []row
	for _, r := range rows {
		if r.value != "" {
			visible = append(visible, r)
		}
	}
	if len(visible) == 0 {
		return
	}

	l.Heading(title, pdfdoc.HeaderStyle, pdfdoc.LineHeight)
	for _, r := range visible {
		l.KeyValue(r.label, r.value)
	}
	l.Gap(pdfdoc.SectionGap)
}

func disclosures(l *pdfdoc.Layout, profile *settings.BrokerageProfile) {
	text := profile.Disclaimer
	if text == "" {
		text = settings.DefaultDisclaimer
	}
	l.Gap(pdfdoc.SectionGap)
	// The rule belongs to the heading; keep both with the first line of text.
	l.EnsureSpace(pdfdoc.RuleGap + pdfdoc.LineHeight + pdfdoc.NoteHeight)
	l.Rule()
	l.Heading("Disclosures", pdfdoc.BoldStyle, pdfdoc.NoteHeight)
	l.Paragraph(text, disclosureWidth, pdfdoc.SmallStyle)
	if profile.NMLSID != "" {
		l.Styled(fmt.Sprintf("%s, NMLS #%s. Equal Housing Opportunity.", profile.Name, profile.NMLSID), pdfdoc.SmallStyle)
	} else {
		l.Styled(profile.Name+". Equal Housing Opportunity.", pdfdoc.SmallStyle)
	}
}

func preApprovalLayout(p *PreApprovalPayload, profile *settings.BrokerageProfile, date time.Time) *pdfdoc.Layout {
	l := pdfdoc.New(pdfdoc.LetterLowWater)
	letterhead(l, profile, date)

	l.Title("Pre-Approval Letter")
	l.Line("Dear " + p.FullName + ",")
	l.Gap(pdfdoc.SectionGap / 2)
	l.Paragraph(fmt.Sprintf(
		"We are pleased to inform you that you have been pre-approved for a %s mortgage loan "+
			"for the purchase of the property below, subject to the conditions listed in this letter.",
		p.LoanType), paragraphWidth, pdfdoc.BodyStyle)
	l.Gap(pdfdoc.SectionGap)

	table(l, "Loan Details", []row{
		{"Borrower", p.FullName},
		{"Co-Borrower", p.CoBorrowerName},
		{"Property Address", p.PropertyAddress},
		{"Loan Type", p.LoanType},
		{"Purchase Price", p.SalesPrice},
		{"Loan Amount", p.LoanAmount},
		{"Down Payment", p.DownPayment},
		{"Interest Rate", p.InterestRate},
		{"Loan Term", p.LoanTerm},
		{"Valid Through", p.ExpirationDate},
	})

	conditions := p.Conditions
	if conditions == nil {
		conditions = defaultConditions
	}
	items := make([]pdfdoc.Item, 0, len(conditions))
	for _, c := range conditions {
		items = append(items, pdfdoc.Item{Text: c})
	}
	l.Section("Conditions", items)

	l.Line("Sincerely,")
	l.Gap(pdfdoc.SectionGap)
	officer := p.LoanOfficer
	if officer == "" {
		officer = profile.Name
	}
	l.Styled(officer, pdfdoc.BoldStyle)
	if p.OfficerNMLSID != "" {
		l.Styled("NMLS #"+p.OfficerNMLSID, pdfdoc.MutedStyle)
	}

	disclosures(l, profile)
	return l
}

func loanEstimateLayout(p *LoanEstimatePayload, profile *settings.BrokerageProfile, date time.Time) *pdfdoc.Layout {
	l := pdfdoc.New(pdfdoc.LetterLowWater)
	letterhead(l, profile, date)

	l.Title("Loan Estimate")
	l.Paragraph("Prepared for "+p.FullName+". This estimate is based on the information provided "+
		"and is not a commitment to lend.", paragraphWidth, pdfdoc.BodyStyle)
	l.Gap(pdfdoc.SectionGap)

	table(l, "Loan Terms", []row{
		{"Applicant", p.FullName},
		{"Co-Applicant", p.CoBorrowerName},
		{"Property", p.PropertyAddress},
		{"Loan Purpose", p.LoanPurpose},
		{"Loan Type", p.LoanType},
		{"Loan Term", p.LoanTerm},
		{"Purchase Price", p.SalesPrice},
		{"Loan Amount", p.LoanAmount},
		{"Interest Rate", p.InterestRate},
		{"Annual Percentage Rate (APR)", p.APR},
		{"Rate Lock Expires", p.RateLockExpires},
	})

	table(l, "Projected Payments", []row{
		{"Principal & Interest", p.PrincipalInterest},
		{"Mortgage Insurance", p.MortgageInsurance},
		{"Estimated Escrow", p.EstimatedEscrow},
		{"Estimated Total Monthly Payment", p.TotalMonthlyPayment},
	})

	table(l, "Closing Cost Details", []row{
		{"Origination Charges", p.OriginationCharges},
		{"Appraisal Fee", p.AppraisalFee},
		{"Credit Report Fee", p.CreditReportFee},
		{"Title Fees", p.TitleFees},
		{"Recording Fees", p.RecordingFees},
		{"Transfer Taxes", p.TransferTaxes},
		{"Prepaid Interest", p.PrepaidInterest},
		{"Homeowner's Insurance", p.HomeownersInsurance},
		{"Property Taxes", p.PropertyTaxes},
		{"Estimated Closing Costs", p.ClosingCosts},
		{"Estimated Cash to Close", p.CashToClose},
	})

	disclosures(l, profile)
	return l
}
