package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"counsellor-console/errors"
	"counsellor-console/models"
)

type paymentReportWire struct {
	Data      json.RawMessage          `json:"data"`
	Analytics *models.PaymentAnalytics `json:"analytics"`
}

// PaymentReport fetches payment rows plus the analytics summary.
func (c *Client) PaymentReport(ctx context.Context, f models.PaymentReportFilter) (*models.PaymentReport, error) {
	const op = "payment report"
	q := url.Values{}
	setIf(q, "status", f.Status)
	setIf(q, "from_date", f.FromDate)
	setIf(q, "to_date", f.ToDate)
	setIf(q, "role", f.Role)
	setIf(q, "user_id", f.UserID)

	body, err := c.get(ctx, "/payment/reports", q)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}

	var wire paymentReportWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.E(errors.FetchFailed, op, &DecodeError{Op: op, Err: err})
	}
	if len(bytes.TrimSpace(wire.Data)) == 0 || wire.Analytics == nil {
		return nil, errors.E(errors.FetchFailed, op, &DecodeError{Op: op, Err: fmt.Errorf("data or analytics missing")})
	}
	report := &models.PaymentReport{Analytics: *wire.Analytics, Rows: []models.Payment{}}
	if !bytes.Equal(bytes.TrimSpace(wire.Data), []byte("null")) {
		if err := json.Unmarshal(wire.Data, &report.Rows); err != nil {
			return nil, errors.E(errors.FetchFailed, op, &DecodeError{Op: op, Err: err})
		}
	}
	return report, nil
}

type studentPaymentsWire struct {
	Student  *models.StudentContact `json:"student"`
	Payments []models.Payment       `json:"payments"`
}

// StudentPayments fetches one student's payment history and totals it locally.
func (c *Client) StudentPayments(ctx context.Context, studentID models.ID) (*models.StudentPaymentHistory, error) {
	const op = "student payments"
	body, err := c.get(ctx, "/payment/student-details/"+pathID(studentID), nil)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	var wire studentPaymentsWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.E(errors.FetchFailed, op, &DecodeError{Op: op, Err: err})
	}
	if wire.Student == nil {
		return nil, errors.E(errors.FetchFailed, op, &DecodeError{Op: op, Err: fmt.Errorf("student missing")})
	}

	history := &models.StudentPaymentHistory{Student: *wire.Student, Payments: wire.Payments}
	if history.Payments == nil {
		history.Payments = []models.Payment{}
	}
	for _, p := range history.Payments {
		switch {
		case p.IsPaid():
			history.PaidTotal += p.FinalAmount
		case p.Status == models.PaymentPending:
			history.PendingCount++
		}
	}
	return history, nil
}

type statusReportWire struct {
	Rows     []map[string]json.RawMessage `json:"rows"`
	Statuses []string                     `json:"statuses"`
	Totals   *models.StatusReportTotals   `json:"totals"`
}

// StatusReport fetches the students-per-status pivot. Duplicate statuses are
// dropped and cells missing from a row count as zero.
func (c *Client) StatusReport(ctx context.Context, f models.StatusReportFilter) (*models.StatusReport, error) {
	const op = "status report"
	reportType := f.ReportType
	if reportType == "" {
		reportType = models.ReportColleges
	}
	q := url.Values{"reportType": {reportType}}
	setIf(q, "startDate", f.StartDate)
	setIf(q, "endDate", f.EndDate)

	wire, err := fetchData[statusReportWire](ctx, c, op, "/StudentCourseStatusLogs/reports", q)
	if err != nil {
		return nil, err
	}
	report, err := buildStatusReport(reportType, wire)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, &DecodeError{Op: op, Err: err})
	}
	return report, nil
}

func buildStatusReport(reportType string, wire statusReportWire) (*models.StatusReport, error) {
	labelKey := "counsellor"
	if reportType == models.ReportColleges {
		labelKey = "college"
	}

	seen := make(map[string]bool, len(wire.Statuses))
	statuses := make([]string, 0, len(wire.Statuses))
	for _, s := range wire.Statuses {
		if !seen[s] {
			seen[s] = true
			statuses = append(statuses, s)
		}
	}

	report := &models.StatusReport{
		ReportType: reportType,
		Statuses:   statuses,
		Rows:       make([]models.StatusReportRow, 0, len(wire.Rows)),
	}
	for i, raw := range wire.Rows {
		row := models.StatusReportRow{Counts: make(map[string]int, len(statuses))}
		if v, ok := raw[labelKey]; ok {
			if err := json.Unmarshal(v, &row.Name); err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i, labelKey, err)
			}
		}
		for _, s := range statuses {
			v, ok := raw[s]
			if !ok {
				row.Counts[s] = 0
				continue
			}
			var n int
			if err := json.Unmarshal(v, &n); err != nil {
				return nil, fmt.Errorf("row %d: status %q: %w", i, s, err)
			}
			row.Counts[s] = n
		}
		if v, ok := raw["total"]; ok {
			if err := json.Unmarshal(v, &row.Total); err != nil {
				return nil, fmt.Errorf("row %d: total: %w", i, err)
			}
		} else {
			for _, n := range row.Counts {
				row.Total += n
			}
		}
		report.Rows = append(report.Rows, row)
	}

	if wire.Totals != nil {
		report.Totals = *wire.Totals
	} else {
		report.Totals = models.StatusReportTotals{StatusTotals: map[string]int{}}
		for _, row := range report.Rows {
			for s, n := range row.Counts {
				report.Totals.StatusTotals[s] += n
			}
			report.Totals.GrandTotal += row.Total
		}
	}
	if report.Totals.StatusTotals == nil {
		report.Totals.StatusTotals = map[string]int{}
	}
	for _, s := range statuses {
		if _, ok := report.Totals.StatusTotals[s]; !ok {
			report.Totals.StatusTotals[s] = 0
		}
	}
	return report, nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
