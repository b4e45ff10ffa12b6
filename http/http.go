package http

import (
	"net/http"

	"counsellor-console/http/handlers"
	"counsellor-console/http/middleware"
	resp "counsellor-console/http/response"
)

// Handlers groups everything the router serves. A nil handler leaves its routes out.
type Handlers struct {
	Reassign    *handlers.ReassignHandler
	Counsellors *handlers.CounsellorHandler
	Rules       *handlers.RuleHandler
	Pricing     *handlers.PricingHandler
	Reports     *handlers.ReportHandler
	Leads       *handlers.LeadHandler
	Audit       *handlers.AuditHandler

	// CORSOrigin is sent as Access-Control-Allow-Origin; empty means "*".
	CORSOrigin string
}

// NewRouter configures all HTTP routes and middleware.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		resp.SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// L3 reassignment sessions
	if rh := h.Reassign; rh != nil {
		mux.HandleFunc("POST /api/l3/sessions", rh.Open)
		mux.HandleFunc("GET /api/l3/sessions/{id}", rh.Get)
		mux.HandleFunc("PUT /api/l3/sessions/{id}/selections", rh.SetSelections)
		mux.HandleFunc("POST /api/l3/sessions/{id}/bulk", rh.ReplaceBulk)
		mux.HandleFunc("POST /api/l3/sessions/{id}/journeys", rh.ReplaceJourneys)
		mux.HandleFunc("POST /api/l3/sessions/{id}/refresh", rh.Refresh)
		mux.HandleFunc("DELETE /api/l3/sessions/{id}", rh.Close)
	}

	// Counsellor directory and L2 assignment
	if ch := h.Counsellors; ch != nil {
		mux.HandleFunc("GET /api/counsellors", ch.List)
		mux.HandleFunc("POST /api/l2/assignments", ch.AssignL2)
	}

	// Assignment rules
	if rh := h.Rules; rh != nil {
		mux.HandleFunc("GET /api/rules/options", rh.Options)
		mux.HandleFunc("GET /api/rules/l3", rh.ListL3)
		mux.HandleFunc("POST /api/rules/l3", rh.CreateL3)
		mux.HandleFunc("PUT /api/rules/l3/{id}", rh.UpdateL3)
		mux.HandleFunc("DELETE /api/rules/l3/{id}", rh.DeleteL3)
		mux.HandleFunc("PATCH /api/rules/l3/{id}/toggle", rh.ToggleL3)
		mux.HandleFunc("GET /api/rules/recon", rh.ListRecon)
		mux.HandleFunc("POST /api/rules/recon", rh.CreateRecon)
		mux.HandleFunc("PUT /api/rules/recon/{id}", rh.UpdateRecon)
		mux.HandleFunc("DELETE /api/rules/recon/{id}", rh.DeleteRecon)
		mux.HandleFunc("PATCH /api/rules/recon/{id}/status", rh.SetReconStatus)
	}

	// Pricing rules and coupons
	if ph := h.Pricing; ph != nil {
		mux.HandleFunc("GET /api/pricing-rules", ph.ListRules)
		mux.HandleFunc("POST /api/pricing-rules", ph.CreateRule)
		mux.HandleFunc("GET /api/pricing-rules/{id}", ph.GetRule)
		mux.HandleFunc("PUT /api/pricing-rules/{id}", ph.UpdateRule)
		mux.HandleFunc("DELETE /api/pricing-rules/{id}", ph.DeleteRule)
		mux.HandleFunc("GET /api/coupons", ph.ListCoupons)
		mux.HandleFunc("POST /api/coupons", ph.CreateCoupon)
		mux.HandleFunc("GET /api/coupons/options", ph.CouponOptions)
		mux.HandleFunc("GET /api/coupons/{id}", ph.GetCoupon)
		mux.HandleFunc("PUT /api/coupons/{id}", ph.UpdateCoupon)
		mux.HandleFunc("DELETE /api/coupons/{id}", ph.DeleteCoupon)
	}

	// Reports
	if rp := h.Reports; rp != nil {
		mux.HandleFunc("GET /api/reports/payments", rp.Payments)
		mux.HandleFunc("GET /api/reports/payments/students/{id}", rp.StudentPayments)
		mux.HandleFunc("GET /api/reports/status", rp.Status)
	}

	// Lead Management APIs
	if lh := h.Leads; lh != nil {
		mux.HandleFunc("POST /api/leads", lh.CreateLead)
		mux.HandleFunc("POST /api/leads/upload", lh.UploadLeads)
		mux.HandleFunc("GET /api/leads/sources", lh.SourceOptions)
	}

	if ah := h.Audit; ah != nil {
		mux.HandleFunc("GET /api/audit", ah.Recent)
	}

	return middleware.Chain(mux,
		middleware.Recover,
		middleware.RequestID,
		middleware.AccessLog,
		middleware.EnableCORS(h.CORSOrigin),
	)
}
