package models

// Status report grouping.
const (
	ReportColleges = "colleges"
	ReportL2       = "l2"
	ReportL3       = "l3"
)

// StatusReportFilter holds the pivot report query parameters.
type StatusReportFilter struct {
	ReportType string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
}

// StatusReportRow is one pivot row: a label plus a count per status.
type StatusReportRow struct {
	Name   string         `json:"name"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// StatusReportTotals is the footer of the pivot report.
type StatusReportTotals struct {
	StatusTotals map[string]int `json:"statusTotals"`
	GrandTotal   int            `json:"grandTotal"`
}

// StatusReport is the pivot table of students per status.
type StatusReport struct {
	ReportType string             `json:"reportType"`
	Statuses   []string           `json:"statuses"`
	Rows       []StatusReportRow  `json:"rows"`
	Totals     StatusReportTotals `json:"totals"`
}
