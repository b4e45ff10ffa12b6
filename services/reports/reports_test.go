package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"counsellor-console/errors"
	"counsellor-console/models"
)

type fakeClient struct {
	statusFilters []models.StatusReportFilter
}

func (f *fakeClient) PaymentReport(context.Context, models.PaymentReportFilter) (*models.PaymentReport, error) {
	return &models.PaymentReport{}, nil
}

func (f *fakeClient) StudentPayments(context.Context, models.ID) (*models.StudentPaymentHistory, error) {
	return &models.StudentPaymentHistory{}, nil
}

func (f *fakeClient) StatusReport(_ context.Context, filter models.StatusReportFilter) (*models.StatusReport, error) {
	f.statusFilters = append(f.statusFilters, filter)
	return &models.StatusReport{ReportType: filter.ReportType}, nil
}

func newTestService(c Client) *Service {
	s := NewService(c)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC) }
	return s
}

func sampleStatusReport() *models.StatusReport {
	return &models.StatusReport{
		ReportType: models.ReportColleges,
		Statuses:   []string{"Applied", "Enrolled"},
		Rows: []models.StatusReportRow{
			{Name: "Amity", Counts: map[string]int{"Applied": 3, "Enrolled": 1}, Total: 4},
			{Name: "LPU", Counts: map[string]int{"Applied": 0, "Enrolled": 2}, Total: 2},
		},
		Totals: models.StatusReportTotals{
			StatusTotals: map[string]int{"Applied": 3, "Enrolled": 3},
			GrandTotal:   6,
		},
	}
}

func TestStatusDefaults(t *testing.T) {
	c := &fakeClient{}
	s := newTestService(c)

	_, err := s.Status(context.Background(), models.StatusReportFilter{})
	require.NoError(t, err)
	require.Len(t, c.statusFilters, 1)
	assert.Equal(t, models.StatusReportFilter{
		ReportType: models.ReportColleges,
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-14",
	}, c.statusFilters[0])

	_, err = s.Status(context.Background(), models.StatusReportFilter{ReportType: "l4"})
	assert.True(t, errors.IsKind(err, errors.ValidationFailed))
	assert.Len(t, c.statusFilters, 1)

	assert.Equal(t, "status-report-l2-14-03-2026.xlsx", s.StatusFileName("l2"))
}

func TestPaymentsRejectsUnknownStatus(t *testing.T) {
	s := newTestService(&fakeClient{})
	_, err := s.Payments(context.Background(), models.PaymentReportFilter{Status: "REFUNDED"})
	assert.ErrorContains(t, err, "unknown payment status")

	_, err = s.StudentPayments(context.Background(), "")
	assert.ErrorContains(t, err, "student id is required")
}

func TestWriteStatusXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatusXLSX(&buf, sampleStatusReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(statusSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"College", "Applied", "Enrolled", "Total"},
		{"Amity", "3", "1", "4"},
		{"LPU", "0", "2", "2"},
		{"TOTAL", "3", "3", "6"},
	}, rows)
}

func TestWritePaymentPDF(t *testing.T) {
	report := &models.PaymentReport{
		Rows: []models.Payment{{
			ID:          "P1",
			Student:     &models.PaymentStudent{StudentName: "Asha", StudentEmail: "asha@example.com"},
			CollegeName: "Amity University Online With A Very Long Campus Name",
			FinalAmount: 125000,
			Status:      models.PaymentCompleted,
		}},
		Analytics: models.PaymentAnalytics{TotalRecords: 1, Success: 1, TotalRevenue: 125000},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePaymentPDF(&buf, report, models.PaymentReportFilter{}, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "INR 125,000", money(125000))
	assert.Equal(t, "INR 1,234.5", money(1234.5))
}
