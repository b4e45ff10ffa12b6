package leads

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"counsellor-console/models"
)

// Row is a lead read from a spreadsheet together with its 1-based row number.
type Row struct {
	Number int
	Lead   models.Lead
}

// Defaults fill fields a spreadsheet leaves empty.
type Defaults struct {
	Source       string
	CounsellorID models.ID
}

type column int

const (
	colName column = iota
	colEmail
	colPhone
	colSource
	colReference
	colOtherSource
	colDegree
)

var headerAliases = map[string]column{
	"name":             colName,
	"student name":     colName,
	"full name":        colName,
	"email":            colEmail,
	"email id":         colEmail,
	"email address":    colEmail,
	"phone":            colPhone,
	"phone number":     colPhone,
	"mobile":           colPhone,
	"mobile number":    colPhone,
	"contact":          colPhone,
	"source":           colSource,
	"reference":        colReference,
	"reference from":   colReference,
	"reference value":  colReference,
	"other source":     colOtherSource,
	"preferred degree": colDegree,
	"degree":           colDegree,
}

// positional layout used when no header row is found
var defaultLayout = map[column]int{colName: 0, colEmail: 1, colPhone: 2, colSource: 3}

// headerScanRows bounds how far down the header row is looked for.
const headerScanRows = 5

var nonDigits = regexp.MustCompile(`\D`)

// ParseWorkbook reads the first sheet of an xlsx file. The header row is detected
// by name; without one, columns are taken as name, email, phone, source.
func ParseWorkbook(r io.Reader, d Defaults) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	layout, headerIdx := detectHeader(rows)
	var out []Row
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		lead := models.Lead{
			Name:           cell(row, layout, colName),
			Email:          cell(row, layout, colEmail),
			Phone:          normalizePhone(cell(row, layout, colPhone)),
			Source:         cell(row, layout, colSource),
			ReferenceValue: cell(row, layout, colReference),
			OtherSource:    cell(row, layout, colOtherSource),
			CounsellorID:   d.CounsellorID,
		}
		if lead.Source == "" {
			lead.Source = d.Source
		}
		if degrees := cell(row, layout, colDegree); degrees != "" {
			for _, deg := range strings.Split(degrees, ",") {
				if deg = strings.TrimSpace(deg); deg != "" {
					lead.PreferredDegree = append(lead.PreferredDegree, deg)
				}
			}
		}
		out = append(out, Row{Number: i + 1, Lead: lead})
	}
	return out, nil
}

// detectHeader returns the column layout and the index of the header row (-1 when absent).
func detectHeader(rows [][]string) (map[column]int, int) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		layout := make(map[column]int)
		for j, v := range rows[i] {
			key := strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(v, "_", " "))), " ")
			if c, ok := headerAliases[key]; ok {
				if _, dup := layout[c]; !dup {
					layout[c] = j
				}
			}
		}
		_, hasEmail := layout[colEmail]
		_, hasPhone := layout[colPhone]
		if hasEmail && hasPhone {
			return layout, i
		}
	}
	return defaultLayout, -1
}

func cell(row []string, layout map[column]int, c column) string {
	j, ok := layout[c]
	if !ok || j >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[j])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizePhone keeps digits and drops a leading 91 country code from 12-digit numbers.
func normalizePhone(s string) string {
	digits := nonDigits.ReplaceAllString(s, "")
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		return digits[2:]
	}
	return digits
}
