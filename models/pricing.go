package models

import "time"

// PricingRule sets the base amount charged on a college page.
type PricingRule struct {
	ID             ID      `json:"id,omitempty"`
	CollegeName    string  `json:"collegeName"`
	PageSlug       string  `json:"pageSlug"`
	PageType       string  `json:"pageType"`
	CampusLocation string  `json:"campusLocation,omitempty"`
	BaseAmount     float64 `json:"baseAmount"`
	Currency       string  `json:"currency"`
	AllowCoupons   bool    `json:"allowCoupons"`
	IsActive       bool    `json:"isActive"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`
}

// Coupon discount types.
const (
	DiscountFlat       = "FLAT"
	DiscountPercentage = "PERCENTAGE"
)

// Coupon is a discount code applicable to pricing pages.
type Coupon struct {
	ID                 ID        `json:"id,omitempty"`
	Code               string    `json:"code"`
	Description        string    `json:"description"`
	DiscountType       string    `json:"discountType"`
	DiscountValue      float64   `json:"discountValue"`
	MaxDiscountAmount  float64   `json:"maxDiscountAmount,omitempty"`
	MinOrderAmount     float64   `json:"minOrderAmount,omitempty"`
	UsageLimitGlobal   int       `json:"usageLimitGlobal"`
	UsageLimitPerUser  int       `json:"usageLimitPerUser"`
	UsedCount          int       `json:"usedCount,omitempty"`
	ValidFrom          time.Time `json:"validFrom"`
	ValidTill          time.Time `json:"validTill"`
	ApplicablePages    []string  `json:"applicablePages"`
	ApplicableCampuses []string  `json:"applicableCampuses"`
	IsActive           bool      `json:"isActive"`
}
