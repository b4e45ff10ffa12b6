package handlers

import (
	"net/http"
	"strings"

	"counsellor-console/errors"
	resp "counsellor-console/http/response"
	"counsellor-console/models"
	"counsellor-console/utils"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	resp.SendJSON(w, status, data)
}

func respondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	resp.SuccessResponse(w, status, message, data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	resp.ErrorResponse(w, status, message)
}

// respondErr picks the status from the error kind.
func respondErr(w http.ResponseWriter, err error) {
	resp.Error(w, err, nil)
}

// decodeBody decodes the JSON body, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := utils.DecodeJSONRequest(r, v); err != nil {
		respondErr(w, errors.E(errors.ValidationFailed, err.Error()))
		return false
	}
	return true
}

// pathID reads a required {name} path segment.
func pathID(w http.ResponseWriter, r *http.Request, name string) (models.ID, bool) {
	id := strings.TrimSpace(r.PathValue(name))
	if id == "" {
		respondError(w, name+" is required", http.StatusBadRequest)
		return "", false
	}
	return models.ID(id), true
}

// splitIDs accepts repeated and comma-separated query values.
func splitIDs(values []string) []models.ID {
	var ids []models.ID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, models.ID(part))
			}
		}
	}
	return ids
}
