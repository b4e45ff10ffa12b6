package handlers

import (
	"net/http"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
	"counsellor-console/services/leads"
)

// maxUploadBytes caps lead spreadsheets.
const maxUploadBytes = 10 << 20

type LeadHandler struct {
	svc *leads.Service
}

func NewLeadHandler(svc *leads.Service) *LeadHandler {
	return &LeadHandler{svc: svc}
}

// CreateLead adds one lead directly.
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var lead models.Lead
	if !decodeBody(w, r, &lead) {
		return
	}
	id, err := h.svc.Add(r.Context(), lead)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Lead added successfully", map[string]interface{}{"student_id": id})
}

// UploadLeads handles bulk lead upload via Excel file. Form fields source and
// counsellor_id fill in rows that leave them empty.
func (h *LeadHandler) UploadLeads(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("Error getting form file: %v", err)
		respondError(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	logger.Info("Processing file upload: %s", header.Filename)
	rows, err := leads.ParseWorkbook(file, leads.Defaults{
		Source:       r.FormValue("source"),
		CounsellorID: models.ID(r.FormValue("counsellor_id")),
	})
	if err != nil {
		respondErr(w, errors.E(errors.ValidationFailed, "Error parsing Excel: "+err.Error()))
		return
	}
	if len(rows) == 0 {
		respondErr(w, errors.E(errors.ValidationFailed, "the spreadsheet has no lead rows"))
		return
	}

	res := h.svc.Import(r.Context(), rows)
	respondSuccess(w, http.StatusOK, "Lead upload processed", res)
}

// SourceOptions lists the sources offered for "other" leads.
func (h *LeadHandler) SourceOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.SourceOptions(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", opts)
}
