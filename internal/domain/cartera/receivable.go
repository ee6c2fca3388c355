// Package cartera models the accounts-receivable view staff work from:
// one row per member with an outstanding balance.
package cartera

import "github.com/shopspring/decimal"

// DelinquencyBucket classifies how far behind a member is.
type DelinquencyBucket string

const (
	BucketCurrent  DelinquencyBucket = "AL_DIA"
	BucketEarly    DelinquencyBucket = "MORA_TEMPRANA" // 1-30 days
	BucketLate     DelinquencyBucket = "MORA_TARDIA"   // 31-90 days
	BucketCritical DelinquencyBucket = "MORA_CRITICA"  // >90 days
)

// BucketFor maps days overdue to a delinquency bucket.
func BucketFor(daysOverdue int) DelinquencyBucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return BucketEarly
	case daysOverdue <= 90:
		return BucketLate
	default:
		return BucketCritical
	}
}

// Receivable is one member's outstanding-balance snapshot as reported by the
// membership API.
type Receivable struct {
	MemberID    string          `json:"memberId"`
	MemberName  string          `json:"memberName"`
	DocumentID  string          `json:"documentId"`
	ProductName string          `json:"productName"`
	Balance     decimal.Decimal `json:"balance"`
	DaysOverdue int             `json:"daysOverdue"`
	Blocked     bool            `json:"blocked"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
}

// Bucket returns the delinquency bucket for this receivable.
func (r *Receivable) Bucket() DelinquencyBucket {
	return BucketFor(r.DaysOverdue)
}

// Blockable reports whether staff may block this member: blocked members and
// members already current are not candidates.
func (r *Receivable) Blockable() bool {
	return !r.Blocked && r.DaysOverdue > 0
}
