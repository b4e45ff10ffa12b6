package handlers

import (
	"net/http"

	"counsellor-console/models"
	"counsellor-console/services/pricing"
)

type PricingHandler struct {
	svc *pricing.Service
}

func NewPricingHandler(svc *pricing.Service) *PricingHandler {
	return &PricingHandler{svc: svc}
}

func (h *PricingHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListRules(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", list)
}

func (h *PricingHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rule, err := h.svc.GetRule(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", rule)
}

func (h *PricingHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule models.PricingRule
	if !decodeBody(w, r, &rule) {
		return
	}
	created, err := h.svc.CreateRule(r.Context(), rule)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Pricing rule created successfully", created)
}

func (h *PricingHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var rule models.PricingRule
	if !decodeBody(w, r, &rule) {
		return
	}
	updated, err := h.svc.UpdateRule(r.Context(), id, rule)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Pricing rule updated successfully", updated)
}

func (h *PricingHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRule(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Pricing rule deleted successfully", nil)
}

func (h *PricingHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListCoupons(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", list)
}

func (h *PricingHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.GetCoupon(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", c)
}

func (h *PricingHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c models.Coupon
	if !decodeBody(w, r, &c) {
		return
	}
	created, err := h.svc.CreateCoupon(r.Context(), c)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Coupon created successfully", created)
}

func (h *PricingHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var c models.Coupon
	if !decodeBody(w, r, &c) {
		return
	}
	updated, err := h.svc.UpdateCoupon(r.Context(), id, c)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Coupon updated successfully", updated)
}

func (h *PricingHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCoupon(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Coupon deleted successfully", nil)
}

// CouponOptions lists the pages and campuses a coupon can target.
func (h *PricingHandler) CouponOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.CouponOptions(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", opts)
}
