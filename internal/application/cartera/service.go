// Package cartera implements the staff-facing receivables workflows:
// listing and exporting outstanding balances, blocking and unblocking
// delinquent members, and recording payments with invoice emission.
package cartera

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/futurosresidentes/backoffice/internal/domain/cartera"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/membership"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/whatsapp"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/worldoffice"
)

// Validation errors
var (
	ErrMissingMemberID = errors.New("payment: member id is required")
	ErrInvalidAmount   = errors.New("payment: amount must be positive")
)

// MembershipAPI is the slice of the membership client this service uses.
type MembershipAPI interface {
	ListReceivables(ctx context.Context) ([]cartera.Receivable, error)
	GetMember(ctx context.Context, memberID string) (*membership.Member, error)
	BlockMember(ctx context.Context, memberID string) error
	UnblockMember(ctx context.Context, memberID string) error
	RecordPayment(ctx context.Context, record *membership.PaymentRecord) error
}

// Notifier sends WhatsApp template messages.
type Notifier interface {
	SendTemplateMessage(ctx context.Context, msg *whatsapp.TemplateMessage) error
}

// Invoicer issues accounting invoices.
type Invoicer interface {
	CreateInvoice(ctx context.Context, inv *worldoffice.Invoice) (int, error)
}

// CityResolver resolves city names against the accounting vendor's
// directory.
type CityResolver interface {
	FindByName(ctx context.Context, name string) *worldoffice.City
}

// Row is one receivable enriched with its delinquency bucket.
type Row struct {
	cartera.Receivable
	Bucket cartera.DelinquencyBucket `json:"bucket"`
}

// Payment is one incoming payment to process.
type Payment struct {
	MemberID  string
	Amount    decimal.Decimal
	Method    string
	Reference string
	CityName  string
	Concept   string
}

// PaymentResult reports what happened to one payment.
type PaymentResult struct {
	Recorded  bool `json:"recorded"`
	InvoiceID int  `json:"invoiceId,omitempty"`
	// InvoiceError is set when the payment was recorded but the invoice
	// could not be issued; staff handle those manually.
	InvoiceError string `json:"invoiceError,omitempty"`
}

// Service implements the cartera workflows.
type Service struct {
	members       MembershipAPI
	notifier      Notifier
	invoicer      Invoicer
	cities        CityResolver
	blockTemplate string
	defaultCityID int
	logger        *zap.Logger
}

// NewService wires the cartera workflows. Notifier may be nil; block
// notices are skipped when absent.
func NewService(
	members MembershipAPI,
	notifier Notifier,
	invoicer Invoicer,
	cities CityResolver,
	blockTemplate string,
	defaultCityID int,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		members:       members,
		notifier:      notifier,
		invoicer:      invoicer,
		cities:        cities,
		blockTemplate: blockTemplate,
		defaultCityID: defaultCityID,
		logger:        logger,
	}
}

// List returns every receivable with its delinquency bucket.
func (s *Service) List(ctx context.Context) ([]Row, error) {
	receivables, err := s.members.ListReceivables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing receivables: %w", err)
	}

	rows := make([]Row, len(receivables))
	for i, r := range receivables {
		rows[i] = Row{Receivable: r, Bucket: r.Bucket()}
	}
	return rows, nil
}

// WriteCSV streams the receivables as CSV, one row per member.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.List(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"miembro", "documento", "producto", "saldo", "dias_mora", "clasificacion", "bloqueado",
	}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.MemberName,
			row.DocumentID,
			row.ProductName,
			row.Balance.StringFixed(0),
			strconv.Itoa(row.DaysOverdue),
			string(row.Bucket),
			strconv.FormatBool(row.Blocked),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Block suspends a member's access and sends a best-effort WhatsApp notice.
// The notice never fails the block.
func (s *Service) Block(ctx context.Context, memberID string) error {
	member, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return err
	}

	if err := s.members.BlockMember(ctx, memberID); err != nil {
		return fmt.Errorf("blocking member %s: %w", memberID, err)
	}
	s.logger.Info("member blocked", zap.String("member_id", memberID))

	if s.notifier != nil && member.Phone != "" {
		err := s.notifier.SendTemplateMessage(ctx, &whatsapp.TemplateMessage{
			To:           member.Phone,
			TemplateName: s.blockTemplate,
			BodyParams:   []string{member.Name},
		})
		if err != nil {
			s.logger.Warn("block notice failed",
				zap.String("member_id", memberID),
				zap.Error(err))
		}
	}
	return nil
}

// Unblock restores a member's access.
func (s *Service) Unblock(ctx context.Context, memberID string) error {
	if err := s.members.UnblockMember(ctx, memberID); err != nil {
		return fmt.Errorf("unblocking member %s: %w", memberID, err)
	}
	s.logger.Info("member unblocked", zap.String("member_id", memberID))
	return nil
}

// RecordPayment registers the payment on the member's account and issues an
// invoice. The invoice city resolves through the city cache; a miss falls
// back to the configured default city. Once the payment is recorded, an
// invoice failure is reported on the result instead of rolling anything
// back: the money already moved.
func (s *Service) RecordPayment(ctx context.Context, payment *Payment) (*PaymentResult, error) {
	if payment.MemberID == "" {
		return nil, ErrMissingMemberID
	}
	if !payment.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	member, err := s.members.GetMember(ctx, payment.MemberID)
	if err != nil {
		return nil, err
	}

	err = s.members.RecordPayment(ctx, &membership.PaymentRecord{
		MemberID:  payment.MemberID,
		Amount:    payment.Amount,
		Method:    payment.Method,
		Reference: payment.Reference,
		PaidAt:    time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	result := &PaymentResult{Recorded: true}

	cityID := s.defaultCityID
	if s.cities != nil {
		if city := s.cities.FindByName(ctx, payment.CityName); city != nil {
			cityID = city.ID
		}
	}

	concept := payment.Concept
	if concept == "" {
		concept = "Pago " + payment.Reference
	}

	invoiceID, err := s.invoicer.CreateInvoice(ctx, &worldoffice.Invoice{
		CustomerName:       member.Name,
		CustomerDocumentID: member.DocumentID,
		CityID:             cityID,
		Amount:             payment.Amount,
		Concept:            concept,
	})
	if err != nil {
		s.logger.Warn("invoice emission failed after payment was recorded",
			zap.String("member_id", payment.MemberID),
			zap.String("reference", payment.Reference),
			zap.Error(err))
		result.InvoiceError = err.Error()
		return result, nil
	}

	result.InvoiceID = invoiceID
	return result, nil
}
