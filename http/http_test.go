package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"counsellor-console/errors"
	"counsellor-console/http/handlers"
	"counsellor-console/models"
	"counsellor-console/services/assign"
	"counsellor-console/services/crm"
	"counsellor-console/services/leads"
	"counsellor-console/services/reassign"
	"counsellor-console/services/reports"
	"counsellor-console/services/rules"
)

// memCRM is an in-memory CRM covering the calls the router reaches.
type memCRM struct {
	mu          sync.Mutex
	byStudent   map[models.ID]models.StudentJourneys
	l3          []models.Counsellor
	l2          []models.Counsellor
	failJourney map[models.JourneyKey]bool
	assigned    []crm.AssignRequest
	added       []models.DirectStudentRequest
}

func newMemCRM() *memCRM {
	m := &memCRM{
		byStudent:   map[models.ID]models.StudentJourneys{},
		failJourney: map[models.JourneyKey]bool{},
		l3: []models.Counsellor{
			{CounsellorID: "C1", CounsellorName: "Asha", CounsellorEmail: "asha@example.com", Tier: models.TierL3},
			{CounsellorID: "C2", CounsellorName: "Ravi", CounsellorEmail: "ravi@example.com", Tier: models.TierL3},
		},
		l2: []models.Counsellor{
			{CounsellorID: "A1", CounsellorName: "Meera", CounsellorEmail: "meera@example.com", Tier: models.TierL2},
		},
	}
	m.student("S1", "K1", "K2")
	m.student("S2", "K3")
	return m
}

func (m *memCRM) student(id models.ID, courses ...models.ID) {
	sj := models.StudentJourneys{StudentID: id, JourneyCount: len(courses)}
	for _, c := range courses {
		sj.Journeys = append(sj.Journeys, models.Journey{
			StudentID:             id,
			CourseID:              c,
			CurrentCounsellorID:   "C1",
			CurrentCounsellorName: "Asha",
			StudentJourneyCount:   len(courses),
		})
	}
	m.byStudent[id] = sj
}

func (m *memCRM) DistinctL3ByStudents(_ context.Context, ids []models.ID) (*models.JourneyLookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &models.JourneyLookup{JourneysByStudent: map[models.ID]models.StudentJourneys{}}
	for _, id := range ids {
		if sj, ok := m.byStudent[id]; ok {
			sj.Journeys = append([]models.Journey(nil), sj.Journeys...)
			out.JourneysByStudent[id] = sj
		}
	}
	return out, nil
}

func (m *memCRM) ListCounsellors(_ context.Context, tier models.CounsellorTier) ([]models.Counsellor, error) {
	if tier == models.TierL2 {
		return m.l2, nil
	}
	return m.l3, nil
}

func (m *memCRM) ReplaceForStudents(_ context.Context, req crm.ReplaceStudentsRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range req.StudentIDs {
		m.moveLocked(models.JourneyKey{StudentID: id}, req.ToCounsellorID)
	}
	return len(req.StudentIDs), nil
}

func (m *memCRM) ReplaceForJourney(_ context.Context, req crm.ReplaceJourneyRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.JourneyKey{StudentID: req.StudentID, CourseID: req.CourseID}
	if m.failJourney[key] {
		return errors.E(errors.WriteFailed, "journey is locked")
	}
	m.moveLocked(key, req.ToCounsellorID)
	return nil
}

func (m *memCRM) moveLocked(key models.JourneyKey, to models.ID) {
	sj := m.byStudent[key.StudentID]
	for i := range sj.Journeys {
		if key.CourseID == "" || sj.Journeys[i].CourseID == key.CourseID {
			sj.Journeys[i].CurrentCounsellorID = to
		}
	}
	m.byStudent[key.StudentID] = sj
}

func (m *memCRM) AssignCounsellors(_ context.Context, req crm.AssignRequest) (string, error) {
	m.assigned = append(m.assigned, req)
	return "Students assigned successfully", nil
}

func (m *memCRM) AddDirectStudent(_ context.Context, req models.DirectStudentRequest) (models.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, req)
	return models.ID("NEW-" + req.PhoneNumber), nil
}

func (m *memCRM) FilterOptions(context.Context) (models.FilterOptions, error) {
	return models.FilterOptions{Source: []string{"Facebook", "Walk-in"}}, nil
}

func (m *memCRM) PaymentReport(context.Context, models.PaymentReportFilter) (*models.PaymentReport, error) {
	return &models.PaymentReport{}, nil
}

func (m *memCRM) StudentPayments(context.Context, models.ID) (*models.StudentPaymentHistory, error) {
	return &models.StudentPaymentHistory{}, nil
}

func (m *memCRM) StatusReport(_ context.Context, f models.StatusReportFilter) (*models.StatusReport, error) {
	return &models.StatusReport{
		ReportType: f.ReportType,
		Statuses:   []string{"Applied"},
		Rows:       []models.StatusReportRow{{Name: "North Campus", Counts: map[string]int{"Applied": 3}, Total: 3}},
		Totals:     models.StatusReportTotals{StatusTotals: map[string]int{"Applied": 3}, GrandTotal: 3},
	}, nil
}

type testServer struct {
	*httptest.Server
	crm *memCRM
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m := newMemCRM()
	registry := reassign.NewRegistry(
		reassign.NewFetcher(m, m),
		reassign.NewDispatcher(reassign.Deps{Replacer: m}),
		time.Hour,
		reassign.WithIDs(func() string { return "sess-1" }),
	)
	router := NewRouter(Handlers{
		Reassign:    handlers.NewReassignHandler(registry),
		Counsellors: handlers.NewCounsellorHandler(m, assign.NewL2Assigner(m, nil)),
		Rules:       handlers.NewRuleHandler(rules.NewService(nil), nil),
		Reports:     handlers.NewReportHandler(reports.NewService(m)),
		Leads:       handlers.NewLeadHandler(leads.NewService(m, 2)),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, crm: m}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	if res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	}
	return res, env
}

func TestHealthzAndMiddleware(t *testing.T) {
	s := newTestServer(t)
	res, err := http.Get(s.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	req, _ := http.NewRequest(http.MethodOptions, s.URL+"/api/l3/sessions", nil)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestReassignSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.crm.failJourney[models.JourneyKey{StudentID: "S1", CourseID: "K2"}] = true

	res, env := s.do(t, http.MethodPost, "/api/l3/sessions", map[string]interface{}{"student_ids": []string{"S1", "S2"}})
	require.Equal(t, http.StatusCreated, res.StatusCode, env.Error)
	var view reassign.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "sess-1", view.ID)
	assert.Len(t, view.JourneyRows, 2)

	res, env = s.do(t, http.MethodGet, "/api/l3/sessions/sess-1", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, env = s.do(t, http.MethodPut, "/api/l3/sessions/sess-1/selections", map[string]interface{}{
		"selections": []map[string]string{
			{"student_id": "S1", "course_id": "K1", "to_counsellor_id": "C2"},
			{"student_id": "S1", "course_id": "K2", "to_counsellor_id": "C2"},
		},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, env.Error)

	res, env = s.do(t, http.MethodPost, "/api/l3/sessions/sess-1/journeys", nil)
	assert.Equal(t, http.StatusMultiStatus, res.StatusCode)
	assert.Equal(t, "partial", env.Status)
	assert.Equal(t, "partial failure", env.Kind)
	var partial struct {
		Result reassign.PerJourneyResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &partial))
	assert.Equal(t, 2, partial.Result.Attempted)
	assert.Equal(t, 1, partial.Result.Succeeded)

	res, _ = s.do(t, http.MethodDelete, "/api/l3/sessions/sess-1", nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, env = s.do(t, http.MethodGet, "/api/l3/sessions/sess-1", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "error", env.Status)
}

func TestReassignRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	res, _ := s.do(t, http.MethodPost, "/api/l3/sessions", map[string]interface{}{"student_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = s.do(t, http.MethodPost, "/api/l3/sessions", map[string]interface{}{"student_ids": []string{"S2"}})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, env := s.do(t, http.MethodPost, "/api/l3/sessions/sess-1/bulk", map[string]string{"to_counsellor_id": "C1"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "already assigned")
	assert.Contains(t, env.Error, "already assigned")

	res, env = s.do(t, http.MethodPost, "/api/l3/sessions/sess-1/bulk", map[string]string{"to_counsellor_id": "C2"})
	require.Equal(t, http.StatusOK, res.StatusCode, env.Error)
}

func TestCounsellorSearchAndAssign(t *testing.T) {
	s := newTestServer(t)

	res, env := s.do(t, http.MethodGet, "/api/counsellors?search=RAVI", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list []models.Counsellor
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, models.ID("C2"), list[0].CounsellorID)

	res, _ = s.do(t, http.MethodGet, "/api/counsellors?tier=l9", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, env = s.do(t, http.MethodPost, "/api/l2/assignments", map[string]interface{}{
		"student_ids": []string{"S1"}, "counsellor_ids": []string{"C1"},
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, env.Error, "not an L2 counsellor")

	res, env = s.do(t, http.MethodPost, "/api/l2/assignments", map[string]interface{}{
		"student_ids": []string{"S1"}, "counsellor_ids": []string{"A1"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, env.Error)
	require.Len(t, s.crm.assigned, 1)
	assert.Equal(t, "L2", s.crm.assigned[0].AssignmentType)
}

func TestRuleValidationHappensBeforeCRM(t *testing.T) {
	s := newTestServer(t)
	res, env := s.do(t, http.MethodPost, "/api/rules/l3", map[string]interface{}{"custom_rule_name": ""})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid input", env.Kind)
}

func TestStatusReportExport(t *testing.T) {
	s := newTestServer(t)

	res, err := http.Get(s.URL + "/api/reports/status?reportType=colleges&format=xlsx")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "status-report-colleges-")

	f, err := excelize.OpenReader(res.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, "North Campus", rows[1][0])

	res2, err := http.Get(s.URL + "/api/reports/status?startDate=2026-13-01")
	require.NoError(t, err)
	res2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res2.StatusCode)
}

func TestLeadUpload(t *testing.T) {
	s := newTestServer(t)

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range [][]interface{}{
		{"Name", "Email", "Phone"},
		{"Anu", "anu@example.com", "9876543210"},
		{"Bad", "bad@example.com", "12"},
		{"Anu again", "ANU@example.com", "9876543210"},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	var file bytes.Buffer
	require.NoError(t, wb.Write(&file))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "leads.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("source", "counsellor_ref"))
	require.NoError(t, mw.Close())

	res, err := http.Post(s.URL+"/api/leads/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	var result leads.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, s.crm.added, 1)
	assert.Equal(t, "counsellor_ref", s.crm.added[0].Source)
}

func TestLeadUploadWithoutFile(t *testing.T) {
	s := newTestServer(t)
	res, err := http.Post(s.URL+"/api/leads/upload", "text/plain", strings.NewReader("nope"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
