package document

import (
	"fmt"
	"testing"
	"time"

	"broker-crm/pkg/pdfdoc"

	"github.com/stretchr/testify/assert"
)

func texts(l *pdfdoc.Layout) []string {
	var out []string
	for _, p := range l.Pages {
		for _, op := range p.Ops {
			if op.Kind == pdfdoc.OpText {
				out = append(out, op.Text)
			}
		}
	}
	return out
}

func TestPreApprovalLayout(t *testing.T) {
	date := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	t.Run("default conditions and letterhead", func(t *testing.T) {
		l := preApprovalLayout(validPreApproval(), testProfile, date)
		got := texts(l)

		assert.Contains(t, got, "Lone Star Lending")
		assert.Contains(t, got, "April 15, 2026")
		assert.Contains(t, got, "Pre-Approval Letter")
		assert.Contains(t, got, "$360,000")
		assert.Contains(t, got, "Conditions (4)")
		assert.NotContains(t, got, "Co-Borrower")
	})

	t.Run("explicitly empty conditions draw None", func(t *testing.T) {
		p := validPreApproval()
		p.Conditions = []string{}
		got := texts(preApprovalLayout(p, testProfile, date))

		assert.Contains(t, got, "Conditions (0)")
		assert.Contains(t, got, "None")
	})

	t.Run("ops stay above the low-water mark", func(t *testing.T) {
		p := validPreApproval()
		for i := 0; i < 80; i++ {
			p.Conditions = append(p.Conditions, "Provide two most recent bank statements")
		}
		l := preApprovalLayout(p, testProfile, date)
		for _, page := range l.Pages {
			for _, op := range page.Ops {
				assert.GreaterOrEqual(t, op.Y, pdfdoc.LetterLowWater-pdfdoc.LineHeight)
			}
		}
	})
}

func TestLoanEstimateLayout(t *testing.T) {
	l := loanEstimateLayout(validLoanEstimate(), testProfile, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	got := texts(l)

	assert.Contains(t, got, "Loan Estimate")
	assert.Contains(t, got, "Projected Payments")
	assert.Contains(t, got, "Closing Cost Details")
	assert.Contains(t, got, "$99,675.12")
	assert.NotContains(t, got, "Transfer Taxes")
}

func assertNoPageEndsWithHeader(t *testing.T, l *pdfdoc.Layout, msg string) {
	t.Helper()
	for pi, page := range l.Pages {
		var last *pdfdoc.Op
		for i := range page.Ops {
			if page.Ops[i].Kind == pdfdoc.OpText {
				last = &page.Ops[i]
			}
		}
		if last == nil {
			continue
		}
		assert.NotEqual(t, pdfdoc.RoleHeader, last.Role, "%s: page %d ends with header %q", msg, pi+1, last.Text)
	}
}

func TestLetterHeadersKeepTheirFirstLine(t *testing.T) {
	date := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	t.Run("loan estimate with optional rows on and off", func(t *testing.T) {
		optional := []func(p *LoanEstimatePayload){
			func(p *LoanEstimatePayload) { p.CoBorrowerName = "Sam Whitfield" },
			func(p *LoanEstimatePayload) { p.RateLockExpires = "May 15, 2026" },
			func(p *LoanEstimatePayload) { p.TransferTaxes = "$900.00" },
			func(p *LoanEstimatePayload) { p.MortgageInsurance = "" },
			func(p *LoanEstimatePayload) { p.PrepaidInterest = "" },
		}
		for mask := 0; mask < 1<<len(optional); mask++ {
			p := validLoanEstimate()
			for i, set := range optional {
				if mask&(1<<i) != 0 {
					set(p)
				}
			}
			l := loanEstimateLayout(p, testProfile, date)
			assertNoPageEndsWithHeader(t, l, fmt.Sprintf("mask %05b", mask))
		}
	})

	t.Run("pre-approval with growing condition lists", func(t *testing.T) {
		for n := 0; n <= 40; n++ {
			p := validPreApproval()
			p.Conditions = make([]string, n)
			for i := range p.Conditions {
				p.Conditions[i] = fmt.Sprintf("Condition %d", i+1)
			}
			l := preApprovalLayout(p, testProfile, date)
			assertNoPageEndsWithHeader(t, l, fmt.Sprintf("%d conditions", n))
		}
	})

	t.Run("disclosures from every cursor position", func(t *testing.T) {
		for start := pdfdoc.LetterLowWater; start <= pdfdoc.Top(); start++ {
			l := pdfdoc.New(pdfdoc.LetterLowWater)
			l.Line("filler")
			l.CursorY = start

			disclosures(l, testProfile)

			assertNoPageEndsWithHeader(t, l, fmt.Sprintf("start %.0f", start))
			for _, page := range l.Pages {
				for _, op := range page.Ops {
					if op.Kind == pdfdoc.OpText {
						assert.GreaterOrEqual(t, op.Y, pdfdoc.LetterLowWater, "start %.0f op %q", start, op.Text)
					}
				}
			}
		}
	})
}
