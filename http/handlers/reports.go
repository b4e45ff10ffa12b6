package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"counsellor-console/errors"
	"counsellor-console/models"
	"counsellor-console/services/reports"
	"counsellor-console/utils"
)

type ReportHandler struct {
	svc *reports.Service
}

func NewReportHandler(svc *reports.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Payments serves the payment report as JSON, or as a PDF with ?format=pdf.
func (h *ReportHandler) Payments(w http.ResponseWriter, r *http.Request) {
	dr, err := utils.ParseDateRange(r, "from_date", "to_date")
	if err != nil {
		respondErr(w, errors.E(errors.ValidationFailed, err.Error()))
		return
	}
	q := r.URL.Query()
	filter := models.PaymentReportFilter{
		Status:   q.Get("status"),
		FromDate: dr.From,
		ToDate:   dr.To,
		Role:     q.Get("role"),
		UserID:   q.Get("user_id"),
	}
	report, err := h.svc.Payments(r.Context(), filter)
	if err != nil {
		respondErr(w, err)
		return
	}

	switch q.Get("format") {
	case "", "json":
		respondSuccess(w, http.StatusOK, "", report)
	case "pdf":
		var buf bytes.Buffer
		if err := reports.WritePaymentPDF(&buf, report, filter, h.svc.Now()); err != nil {
			respondErr(w, errors.E(errors.Internal, err))
			return
		}
		sendFile(w, "application/pdf", h.svc.PaymentsFileName(), buf.Bytes())
	default:
		respondError(w, "format must be json or pdf", http.StatusBadRequest)
	}
}

func (h *ReportHandler) StudentPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	history, err := h.svc.StudentPayments(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", history)
}

// Status serves the status pivot as JSON, or as a workbook with ?format=xlsx.
func (h *ReportHandler) Status(w http.ResponseWriter, r *http.Request) {
	dr, err := utils.ParseDateRange(r, "startDate", "endDate")
	if err != nil {
		respondErr(w, errors.E(errors.ValidationFailed, err.Error()))
		return
	}
	q := r.URL.Query()
	report, err := h.svc.Status(r.Context(), models.StatusReportFilter{
		ReportType: q.Get("reportType"),
		StartDate:  dr.From,
		EndDate:    dr.To,
	})
	if err != nil {
		respondErr(w, err)
		return
	}

	switch q.Get("format") {
	case "", "json":
		respondSuccess(w, http.StatusOK, "", report)
	case "xlsx":
		var buf bytes.Buffer
		if err := reports.WriteStatusXLSX(&buf, report); err != nil {
			respondErr(w, errors.E(errors.Internal, err))
			return
		}
		sendFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			h.svc.StatusFileName(report.ReportType), buf.Bytes())
	default:
		respondError(w, "format must be json or xlsx", http.StatusBadRequest)
	}
}

func sendFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
