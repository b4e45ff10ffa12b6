package handlers

import (
	"context"
	"net/http"

	"counsellor-console/errors"
	"counsellor-console/models"
	"counsellor-console/services/assign"
)

// CounsellorDirectory lists counsellors of one tier.
type CounsellorDirectory interface {
	ListCounsellors(ctx context.Context, tier models.CounsellorTier) ([]models.Counsellor, error)
}

type CounsellorHandler struct {
	directory CounsellorDirectory
	assigner  *assign.L2Assigner
}

func NewCounsellorHandler(directory CounsellorDirectory, assigner *assign.L2Assigner) *CounsellorHandler {
	return &CounsellorHandler{directory: directory, assigner: assigner}
}

// List returns the directory of ?tier=l2|l3 filtered by ?search= on name or email.
func (h *CounsellorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tierParam := q.Get("tier")
	if tierParam == "" {
		tierParam = "l3"
	}
	tier, err := models.ParseTier(tierParam)
	if err != nil {
		respondErr(w, errors.E(errors.ValidationFailed, err.Error()))
		return
	}
	list, err := h.directory.ListCounsellors(r.Context(), tier)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", models.FilterCounsellors(list, q.Get("search")))
}

type assignRequest struct {
	StudentIDs    []models.ID `json:"student_ids"`
	CounsellorIDs []models.ID `json:"counsellor_ids"`
}

// AssignL2 assigns the selected students to the selected L2 counsellors.
func (h *CounsellorHandler) AssignL2(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.assigner.Assign(r.Context(), req.StudentIDs, req.CounsellorIDs)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, res.Message, res)
}
