package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"counsellor-console/models"
)

func TestSplitIDs(t *testing.T) {
	got := splitIDs([]string{"S1, S2", "", "S3,,"})
	assert.Equal(t, []models.ID{"S1", "S2", "S3"}, got)
	assert.Nil(t, splitIDs(nil))
}

func TestDecodeBodyRejectsEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var v map[string]interface{}
	assert.False(t, decodeBody(w, r, &v))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body is empty")
}

type staticDirectory []models.Counsellor

func (d staticDirectory) ListCounsellors(context.Context, models.CounsellorTier) ([]models.Counsellor, error) {
	return d, nil
}

func TestCounsellorListDefaultsToL3(t *testing.T) {
	h := NewCounsellorHandler(staticDirectory{
		{CounsellorID: "C1", CounsellorName: "Asha", CounsellorEmail: "asha@example.com"},
		{CounsellorID: "C2", CounsellorName: "Ravi", CounsellorEmail: "ravi@example.com"},
	}, nil)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/counsellors?search=asha@", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"counsellor_id":"C1"`)
	assert.NotContains(t, w.Body.String(), "C2")
}
