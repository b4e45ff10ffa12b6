package reports

import (
	"context"
	"fmt"
	"time"

	"counsellor-console/errors"
	"counsellor-console/models"
	"counsellor-console/utils"
)

// Client is the part of the CRM API that serves reports.
type Client interface {
	PaymentReport(ctx context.Context, f models.PaymentReportFilter) (*models.PaymentReport, error)
	StudentPayments(ctx context.Context, studentID models.ID) (*models.StudentPaymentHistory, error)
	StatusReport(ctx context.Context, f models.StatusReportFilter) (*models.StatusReport, error)
}

type Service struct {
	client Client
	now    func() time.Time
}

func NewService(client Client) *Service {
	return &Service{client: client, now: time.Now}
}

func (s *Service) Payments(ctx context.Context, f models.PaymentReportFilter) (*models.PaymentReport, error) {
	switch f.Status {
	case "", models.PaymentCompleted, models.PaymentPaid, models.PaymentPending, models.PaymentFailed:
	default:
		return nil, errors.E(errors.ValidationFailed, fmt.Sprintf("unknown payment status %q", f.Status))
	}
	return s.client.PaymentReport(ctx, f)
}

func (s *Service) StudentPayments(ctx context.Context, studentID models.ID) (*models.StudentPaymentHistory, error) {
	if studentID == "" {
		return nil, errors.E(errors.ValidationFailed, "student id is required")
	}
	return s.client.StudentPayments(ctx, studentID)
}

// Status fetches the pivot report. An empty range defaults to the start of
// the current month through today.
func (s *Service) Status(ctx context.Context, f models.StatusReportFilter) (*models.StatusReport, error) {
	f = s.withDefaults(f)
	switch f.ReportType {
	case models.ReportColleges, models.ReportL2, models.ReportL3:
	default:
		return nil, errors.E(errors.ValidationFailed, fmt.Sprintf("reportType must be %s, %s or %s",
			models.ReportColleges, models.ReportL2, models.ReportL3))
	}
	return s.client.StatusReport(ctx, f)
}

func (s *Service) withDefaults(f models.StatusReportFilter) models.StatusReportFilter {
	if f.ReportType == "" {
		f.ReportType = models.ReportColleges
	}
	if f.StartDate == "" && f.EndDate == "" {
		now := s.now()
		f.StartDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(utils.DateLayout)
		f.EndDate = now.Format(utils.DateLayout)
	}
	return f
}

// StatusFileName names an exported status report the way the console downloads it.
func (s *Service) StatusFileName(reportType string) string {
	if reportType == "" {
		reportType = models.ReportColleges
	}
	return fmt.Sprintf("status-report-%s-%s.xlsx", reportType, s.now().Format("02-01-2006"))
}

// PaymentsFileName names an exported payment report.
func (s *Service) PaymentsFileName() string {
	return fmt.Sprintf("payment-report-%s.pdf", s.now().Format("02-01-2006"))
}

// Now is the time stamped on exports.
func (s *Service) Now() time.Time {
	return s.now()
}
