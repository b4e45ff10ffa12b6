package models

// Payment statuses reported by the CRM API.
const (
	PaymentCompleted = "COMPLETED"
	PaymentPaid      = "PAID"
	PaymentPending   = "PENDING"
	PaymentFailed    = "FAILED"
)

// PaymentStudent is the student block embedded in a payment row.
type PaymentStudent struct {
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
	StudentPhone string `json:"student_phone"`
}

// Payment is one row of the payment report or a student's payment history.
type Payment struct {
	ID             ID              `json:"id"`
	Student        *PaymentStudent `json:"student,omitempty"`
	StudentName    string          `json:"student_name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	CollegeName    string          `json:"college_name"`
	CourseName     string          `json:"course_name"`
	BaseAmount     float64         `json:"base_amount"`
	DiscountAmount float64         `json:"discount_amount"`
	FinalAmount    float64         `json:"final_amount"`
	Currency       string          `json:"currency,omitempty"`
	CouponCode     string          `json:"couponCode,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"created_at,omitempty"`
}

// IsPaid reports whether the payment counts towards revenue.
func (p Payment) IsPaid() bool {
	return p.Status == PaymentCompleted || p.Status == PaymentPaid
}

// DisplayName prefers the embedded student block over the flat fields.
func (p Payment) DisplayName() string {
	if p.Student != nil && p.Student.StudentName != "" {
		return p.Student.StudentName
	}
	if p.StudentName != "" {
		return p.StudentName
	}
	return "N/A"
}

// DisplayEmail prefers the embedded student block over the flat fields.
func (p Payment) DisplayEmail() string {
	if p.Student != nil && p.Student.StudentEmail != "" {
		return p.Student.StudentEmail
	}
	if p.Email != "" {
		return p.Email
	}
	return "N/A"
}

// PaymentAnalytics is the summary block of the payment report.
type PaymentAnalytics struct {
	TotalRecords int     `json:"total_records"`
	Success      int     `json:"success"`
	Failed       int     `json:"failed"`
	Pending      int     `json:"pending"`
	TotalRevenue float64 `json:"total_revenue"`
}

// PaymentReport is the decoded /payment/reports response.
type PaymentReport struct {
	Rows      []Payment        `json:"data"`
	Analytics PaymentAnalytics `json:"analytics"`
}

// PaymentReportFilter holds the report query parameters.
type PaymentReportFilter struct {
	Status   string
	FromDate string // YYYY-MM-DD
	ToDate   string // YYYY-MM-DD
	Role     string
	UserID   string
}

// StudentContact is the student block of the payment history response.
type StudentContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// StudentPaymentHistory is the decoded /payment/student-details response plus local totals.
type StudentPaymentHistory struct {
	Student      StudentContact `json:"student"`
	Payments     []Payment      `json:"payments"`
	PaidTotal    float64        `json:"paid_total"`
	PendingCount int            `json:"pending_count"`
}
