package handlers

import (
	"context"
	"net/http"

	"counsellor-console/models"
	"counsellor-console/services/rules"
)

// RuleOptions backs the dropdowns of the rule editors.
type RuleOptions interface {
	UniversityCourseOptions(ctx context.Context) (models.UniversityCourseOptions, error)
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
}

type RuleHandler struct {
	svc     *rules.Service
	options RuleOptions
}

func NewRuleHandler(svc *rules.Service, options RuleOptions) *RuleHandler {
	return &RuleHandler{svc: svc, options: options}
}

func (h *RuleHandler) ListL3(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListL3(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", list)
}

func (h *RuleHandler) CreateL3(w http.ResponseWriter, r *http.Request) {
	var rule models.L3Rule
	if !decodeBody(w, r, &rule) {
		return
	}
	created, err := h.svc.CreateL3(r.Context(), rule)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Rule created successfully", created)
}

func (h *RuleHandler) UpdateL3(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var rule models.L3Rule
	if !decodeBody(w, r, &rule) {
		return
	}
	updated, err := h.svc.UpdateL3(r.Context(), id, rule)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Rule updated successfully", updated)
}

func (h *RuleHandler) DeleteL3(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteL3(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Rule deleted successfully", nil)
}

func (h *RuleHandler) ToggleL3(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.ToggleL3(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Rule status updated", nil)
}

func (h *RuleHandler) ListRecon(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListRecon(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", list)
}

func (h *RuleHandler) CreateRecon(w http.ResponseWriter, r *http.Request) {
	var rule models.ReconRule
	if !decodeBody(w, r, &rule) {
		return
	}
	created, err := h.svc.CreateRecon(r.Context(), rule)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Rule created successfully", created)
}

func (h *RuleHandler) UpdateRecon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var rule models.ReconRule
	if !decodeBody(w, r, &rule) {
		return
	}
	updated, err := h.svc.UpdateRecon(r.Context(), id, rule)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Rule updated successfully", updated)
}

func (h *RuleHandler) DeleteRecon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRecon(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Rule deleted successfully", nil)
}

type reconStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *RuleHandler) SetReconStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req reconStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		respondError(w, "is_active is required", http.StatusBadRequest)
		return
	}
	if err := h.svc.SetReconActive(r.Context(), id, *req.IsActive); err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Rule status updated", nil)
}

// Options returns university/course and lead attribute values for the editors.
func (h *RuleHandler) Options(w http.ResponseWriter, r *http.Request) {
	uc, err := h.options.UniversityCourseOptions(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	lead, err := h.options.FilterOptions(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", map[string]interface{}{
		"university_course": uc,
		"lead":              lead,
	})
}
