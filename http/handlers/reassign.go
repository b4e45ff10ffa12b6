package handlers

import (
	"net/http"

	"counsellor-console/errors"
	resp "counsellor-console/http/response"
	"counsellor-console/models"
	"counsellor-console/services/reassign"
)

// ReassignHandler serves the L3 reassignment sessions.
type ReassignHandler struct {
	registry *reassign.Registry
}

func NewReassignHandler(registry *reassign.Registry) *ReassignHandler {
	return &ReassignHandler{registry: registry}
}

type openSessionRequest struct {
	StudentIDs []models.ID `json:"student_ids"`
}

// Open starts a session for the selected students. A failed fetch still
// creates the session so the console can retry with refresh.
func (h *ReassignHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.registry.Open(r.Context(), req.StudentIDs)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "session opened", s.View())
}

func (h *ReassignHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, "", s.View())
}

type selection struct {
	StudentID      models.ID `json:"student_id"`
	CourseID       models.ID `json:"course_id"`
	ToCounsellorID models.ID `json:"to_counsellor_id"`
}

type selectionsRequest struct {
	Selections []selection `json:"selections"`
}

// SetSelections records per-journey targets. An empty target clears the row.
func (h *ReassignHandler) SetSelections(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectionsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Selections) == 0 {
		respondErr(w, errors.E(errors.ValidationFailed, "selections must not be empty"))
		return
	}
	for _, sel := range req.Selections {
		key := models.JourneyKey{StudentID: sel.StudentID, CourseID: sel.CourseID}
		if err := s.SetReplacement(key, sel.ToCounsellorID); err != nil {
			respondErr(w, err)
			return
		}
	}
	respondSuccess(w, http.StatusOK, "selections updated", s.View())
}

type bulkRequest struct {
	ToCounsellorID models.ID `json:"to_counsellor_id"`
}

// ReplaceBulk moves every single-journey student to one counsellor.
func (h *ReassignHandler) ReplaceBulk(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req bulkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.ReplaceBulk(r.Context(), req.ToCounsellorID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "counsellor replaced", map[string]interface{}{
		"result":  res,
		"session": s.View(),
	})
}

// ReplaceJourneys dispatches the pending per-journey choices.
func (h *ReassignHandler) ReplaceJourneys(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := s.ReplacePerJourney(r.Context())
	data := map[string]interface{}{"result": res, "session": s.View()}
	if err != nil {
		if res != nil {
			resp.Error(w, err, data)
			return
		}
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "journeys replaced", data)
}

func (h *ReassignHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Refresh(r.Context()); err != nil {
		resp.Error(w, err, s.View())
		return
	}
	respondSuccess(w, http.StatusOK, "session refreshed", s.View())
}

func (h *ReassignHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Close(r.PathValue("id")); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReassignHandler) session(w http.ResponseWriter, r *http.Request) (*reassign.Session, bool) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return nil, false
	}
	return s, true
}
