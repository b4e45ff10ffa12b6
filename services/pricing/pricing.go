package pricing

import (
	"context"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"counsellor-console/errors"
	"counsellor-console/models"
)

// DefaultCurrency applies when a pricing rule leaves currency empty.
const DefaultCurrency = "INR"

// Client is the part of the CRM API that stores pricing rules and coupons.
type Client interface {
	ListPricingRules(ctx context.Context) ([]models.PricingRule, error)
	GetPricingRule(ctx context.Context, id models.ID) (models.PricingRule, error)
	CreatePricingRule(ctx context.Context, rule models.PricingRule) (models.PricingRule, error)
	UpdatePricingRule(ctx context.Context, id models.ID, rule models.PricingRule) (models.PricingRule, error)
	DeletePricingRule(ctx context.Context, id models.ID) error

	ListCoupons(ctx context.Context) ([]models.Coupon, error)
	GetCoupon(ctx context.Context, id models.ID) (models.Coupon, error)
	CreateCoupon(ctx context.Context, coupon models.Coupon) (models.Coupon, error)
	UpdateCoupon(ctx context.Context, id models.ID, coupon models.Coupon) (models.Coupon, error)
	DeleteCoupon(ctx context.Context, id models.ID) error
}

type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

// ListRules returns pricing rules whose college name or page slug contains search.
func (s *Service) ListRules(ctx context.Context, search string) ([]models.PricingRule, error) {
	all, err := s.client.ListPricingRules(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return all, nil
	}
	out := make([]models.PricingRule, 0, len(all))
	for _, r := range all {
		if strings.Contains(strings.ToLower(r.CollegeName), term) ||
			strings.Contains(strings.ToLower(r.PageSlug), term) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) GetRule(ctx context.Context, id models.ID) (models.PricingRule, error) {
	return s.client.GetPricingRule(ctx, id)
}

func (s *Service) CreateRule(ctx context.Context, rule models.PricingRule) (models.PricingRule, error) {
	if err := NormalizeRule(&rule); err != nil {
		return models.PricingRule{}, err
	}
	return s.client.CreatePricingRule(ctx, rule)
}

func (s *Service) UpdateRule(ctx context.Context, id models.ID, rule models.PricingRule) (models.PricingRule, error) {
	if err := NormalizeRule(&rule); err != nil {
		return models.PricingRule{}, err
	}
	rule.ID = id
	return s.client.UpdatePricingRule(ctx, id, rule)
}

func (s *Service) DeleteRule(ctx context.Context, id models.ID) error {
	return s.client.DeletePricingRule(ctx, id)
}

// ListCoupons returns coupons whose code, description or campuses contain search.
func (s *Service) ListCoupons(ctx context.Context, search string) ([]models.Coupon, error) {
	all, err := s.client.ListCoupons(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return all, nil
	}
	out := make([]models.Coupon, 0, len(all))
	for _, c := range all {
		if couponMatches(c, term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func couponMatches(c models.Coupon, term string) bool {
	if strings.Contains(strings.ToLower(c.Code), term) ||
		strings.Contains(strings.ToLower(c.Description), term) {
		return true
	}
	for _, campus := range c.ApplicableCampuses {
		if strings.Contains(strings.ToLower(campus), term) {
			return true
		}
	}
	return false
}

func (s *Service) GetCoupon(ctx context.Context, id models.ID) (models.Coupon, error) {
	return s.client.GetCoupon(ctx, id)
}

func (s *Service) CreateCoupon(ctx context.Context, coupon models.Coupon) (models.Coupon, error) {
	if err := NormalizeCoupon(&coupon); err != nil {
		return models.Coupon{}, err
	}
	return s.client.CreateCoupon(ctx, coupon)
}

func (s *Service) UpdateCoupon(ctx context.Context, id models.ID, coupon models.Coupon) (models.Coupon, error) {
	if err := NormalizeCoupon(&coupon); err != nil {
		return models.Coupon{}, err
	}
	coupon.ID = id
	return s.client.UpdateCoupon(ctx, id, coupon)
}

func (s *Service) DeleteCoupon(ctx context.Context, id models.ID) error {
	return s.client.DeleteCoupon(ctx, id)
}

// CouponOptions are the pages and campuses a coupon can be restricted to.
type CouponOptions struct {
	PageSlugs []string `json:"page_slugs"`
	Campuses  []string `json:"campuses"`
}

// CouponOptions derives the option lists from the pricing rules, first occurrence wins.
func (s *Service) CouponOptions(ctx context.Context) (*CouponOptions, error) {
	rules, err := s.client.ListPricingRules(ctx)
	if err != nil {
		return nil, err
	}
	opts := &CouponOptions{PageSlugs: []string{}, Campuses: []string{}}
	slugs := mapset.NewThreadUnsafeSet[string]()
	campuses := mapset.NewThreadUnsafeSet[string]()
	for _, r := range rules {
		if r.PageSlug != "" && slugs.Add(r.PageSlug) {
			opts.PageSlugs = append(opts.PageSlugs, r.PageSlug)
		}
		if r.CampusLocation != "" && campuses.Add(r.CampusLocation) {
			opts.Campuses = append(opts.Campuses, r.CampusLocation)
		}
	}
	return opts, nil
}

// NormalizeRule trims a pricing rule, defaults its currency and validates it.
func NormalizeRule(rule *models.PricingRule) error {
	rule.CollegeName = strings.TrimSpace(rule.CollegeName)
	rule.PageSlug = strings.TrimSpace(rule.PageSlug)
	rule.PageType = strings.TrimSpace(rule.PageType)
	rule.CampusLocation = strings.TrimSpace(rule.CampusLocation)
	rule.Currency = strings.ToUpper(strings.TrimSpace(rule.Currency))
	if rule.Currency == "" {
		rule.Currency = DefaultCurrency
	}
	switch {
	case rule.CollegeName == "":
		return errors.E(errors.ValidationFailed, "university name is required")
	case rule.PageSlug == "":
		return errors.E(errors.ValidationFailed, "page slug is required")
	case rule.BaseAmount <= 0:
		return errors.E(errors.ValidationFailed, "base amount must be greater than zero")
	}
	return nil
}

// NormalizeCoupon upper-cases the code and checks amounts, limits and the validity window.
func NormalizeCoupon(c *models.Coupon) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.DiscountType = strings.ToUpper(strings.TrimSpace(c.DiscountType))
	if c.Code == "" {
		return errors.E(errors.ValidationFailed, "coupon code is required")
	}
	switch c.DiscountType {
	case models.DiscountFlat:
	case models.DiscountPercentage:
		if c.DiscountValue > 100 {
			return errors.E(errors.ValidationFailed, "percentage discount cannot exceed 100")
		}
	default:
		return errors.E(errors.ValidationFailed, fmt.Sprintf("discount type must be %s or %s", models.DiscountFlat, models.DiscountPercentage))
	}
	if c.DiscountValue <= 0 {
		return errors.E(errors.ValidationFailed, "discount value must be greater than zero")
	}
	if c.MaxDiscountAmount < 0 || c.MinOrderAmount < 0 {
		return errors.E(errors.ValidationFailed, "amounts must not be negative")
	}
	if c.UsageLimitGlobal < 1 || c.UsageLimitPerUser < 1 {
		return errors.E(errors.ValidationFailed, "usage limits must be at least 1")
	}
	if c.UsageLimitPerUser > c.UsageLimitGlobal {
		return errors.E(errors.ValidationFailed, "per-user limit cannot exceed the global limit")
	}
	if c.ValidFrom.IsZero() || c.ValidTill.IsZero() {
		return errors.E(errors.ValidationFailed, "validity dates are required")
	}
	if !c.ValidFrom.Before(c.ValidTill) {
		return errors.E(errors.ValidationFailed, "validFrom must be before validTill")
	}
	return nil
}
