// Package agreement contains the types describing a payment agreement
// that staff generate for a delinquent member and send for e-signature.
package agreement

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// StartPolicyFirstPayment is the sentinel value of PlatformStartPolicy meaning
// platform access begins when the first installment is paid. Any other value is
// interpreted as an ISO YYYY-MM-DD calendar date.
const StartPolicyFirstPayment = "Con primer pago"

// Validation errors
var (
	ErrMissingAgreementNumber = errors.New("agreement: agreement number is required")
	ErrMissingDebtorName      = errors.New("agreement: debtor name is required")
	ErrMissingDebtorDocument  = errors.New("agreement: debtor document id is required")
	ErrMissingDebtorEmail     = errors.New("agreement: debtor email is required")
	ErrInvalidTotalAmount     = errors.New("agreement: total amount must be positive")
)

// Installment is a single entry of the payment plan.
type Installment struct {
	Number      int             `json:"number"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"` // YYYY-MM-DD
	PaymentLink string          `json:"payment_link,omitempty"`
}

// Request carries everything needed to generate one agreement document.
// It is constructed per signature request and never persisted as-is.
type Request struct {
	// TemplateSlug selects the HTML template; empty means the configured default.
	TemplateSlug string

	AgreementNumber   string // consecutivo
	ProductName       string // membership/product sold
	DebtorName        string
	DebtorGivenNames  string
	DebtorFamilyNames string
	DebtorDocumentID  string
	DebtorEmail       string
	DebtorPhone       string

	TotalAmount  decimal.Decimal
	Installments []Installment

	// PlatformStartPolicy is either StartPolicyFirstPayment or an ISO date.
	PlatformStartPolicy string
	SalesRepName        string

	FirstPaymentLink        string
	FirstInstallmentAmount  decimal.Decimal
	FirstInstallmentDueDate string
}

// DebtorFullName joins the given and family names, trimmed, with one space.
// Falls back to DebtorName when the split fields are empty.
func (r *Request) DebtorFullName() string {
	full := strings.TrimSpace(strings.TrimSpace(r.DebtorGivenNames) + " " + strings.TrimSpace(r.DebtorFamilyNames))
	if full == "" {
		return strings.TrimSpace(r.DebtorName)
	}
	return full
}

// Validate checks the fields the pipeline and the e-signature vendor require.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.AgreementNumber) == "" {
		return ErrMissingAgreementNumber
	}
	if r.DebtorFullName() == "" {
		return ErrMissingDebtorName
	}
	if strings.TrimSpace(r.DebtorDocumentID) == "" {
		return ErrMissingDebtorDocument
	}
	if strings.TrimSpace(r.DebtorEmail) == "" {
		return ErrMissingDebtorEmail
	}
	if !r.TotalAmount.IsPositive() {
		return ErrInvalidTotalAmount
	}
	return nil
}

// StartsOnFirstPayment reports whether the start policy is the sentinel.
// Comparison ignores case and surrounding whitespace; the dashboard has sent
// both capitalizations over time.
func (r *Request) StartsOnFirstPayment() bool {
	return strings.EqualFold(strings.TrimSpace(r.PlatformStartPolicy), StartPolicyFirstPayment)
}

// SplitISODate splits a YYYY-MM-DD string into its parts without going through
// a time.Time, so the rendered date can never shift a day across timezones.
func SplitISODate(s string) (year, month, day string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
