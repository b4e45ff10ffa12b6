package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	"counsellor-console/models"
)

var paymentColumns = []struct {
	title string
	width float64
}{
	{"Student", 45},
	{"Email", 60},
	{"College", 50},
	{"Course", 35},
	{"Amount", 28},
	{"Coupon", 25},
	{"Status", 25},
}

// WritePaymentPDF renders the payment report as a landscape A4 PDF.
func WritePaymentPDF(w io.Writer, report *models.PaymentReport, f models.PaymentReportFilter, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Payment Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Payment Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("Generated %s", generatedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(6)
	pdf.Cell(40, 6, describeFilter(f))
	pdf.Ln(10)

	a := report.Analytics
	pdf.SetFont("Arial", "B", 11)
	summary := []string{
		"Total records: " + humanize.Comma(int64(a.TotalRecords)),
		"Successful: " + humanize.Comma(int64(a.Success)),
		"Pending: " + humanize.Comma(int64(a.Pending)),
		"Failed: " + humanize.Comma(int64(a.Failed)),
		"Revenue: " + money(a.TotalRevenue),
	}
	for _, s := range summary {
		pdf.CellFormat(54, 8, s, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range paymentColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, p := range report.Rows {
		coupon := p.CouponCode
		if coupon == "" {
			coupon = "-"
		}
		cells := []string{
			p.DisplayName(),
			p.DisplayEmail(),
			p.CollegeName,
			p.CourseName,
			money(p.FinalAmount),
			coupon,
			p.Status,
		}
		for i, col := range paymentColumns {
			align := "L"
			if i == 4 {
				align = "R"
			}
			pdf.CellFormat(col.width, 7, truncate(pdf, cells[i], col.width-2), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(report.Rows) == 0 {
		pdf.CellFormat(268, 8, "No payments match the selected filters.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error generating payment report PDF: %w", err)
	}
	return nil
}

func describeFilter(f models.PaymentReportFilter) string {
	status := f.Status
	if status == "" {
		status = "all"
	}
	from, to := f.FromDate, f.ToDate
	if from == "" {
		from = "beginning"
	}
	if to == "" {
		to = "today"
	}
	return fmt.Sprintf("Status: %s   Period: %s to %s", status, from, to)
}

// money formats an INR amount with thousands separators. The core PDF fonts have no rupee glyph.
func money(v float64) string {
	return "INR " + humanize.CommafWithDigits(v, 2)
}

func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
