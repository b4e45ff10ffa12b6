package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counsellor-console/errors"
	"counsellor-console/models"
)

type fakeClient struct {
	rules   []models.PricingRule
	coupons []models.Coupon
	saved   []models.Coupon
}

func (f *fakeClient) ListPricingRules(context.Context) ([]models.PricingRule, error) {
	return f.rules, nil
}

func (f *fakeClient) GetPricingRule(context.Context, models.ID) (models.PricingRule, error) {
	return models.PricingRule{}, errors.NewNotFoundError("pricing rule not found")
}

func (f *fakeClient) CreatePricingRule(_ context.Context, r models.PricingRule) (models.PricingRule, error) {
	return r, nil
}

func (f *fakeClient) UpdatePricingRule(_ context.Context, _ models.ID, r models.PricingRule) (models.PricingRule, error) {
	return r, nil
}

func (f *fakeClient) DeletePricingRule(context.Context, models.ID) error { return nil }

func (f *fakeClient) ListCoupons(context.Context) ([]models.Coupon, error) { return f.coupons, nil }

func (f *fakeClient) GetCoupon(context.Context, models.ID) (models.Coupon, error) {
	return models.Coupon{}, nil
}

func (f *fakeClient) CreateCoupon(_ context.Context, c models.Coupon) (models.Coupon, error) {
	f.saved = append(f.saved, c)
	return c, nil
}

func (f *fakeClient) UpdateCoupon(_ context.Context, _ models.ID, c models.Coupon) (models.Coupon, error) {
	f.saved = append(f.saved, c)
	return c, nil
}

func (f *fakeClient) DeleteCoupon(context.Context, models.ID) error { return nil }

func validCoupon() models.Coupon {
	return models.Coupon{
		Code:              " spring10 ",
		DiscountType:      "percentage",
		DiscountValue:     10,
		UsageLimitGlobal:  100,
		UsageLimitPerUser: 1,
		ValidFrom:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ValidTill:         time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeCoupon(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *models.Coupon)
		wantErr string
	}{
		{name: "valid", mutate: func(*models.Coupon) {}},
		{name: "missing code", mutate: func(c *models.Coupon) { c.Code = " " }, wantErr: "code is required"},
		{name: "unknown type", mutate: func(c *models.Coupon) { c.DiscountType = "BOGO" }, wantErr: "discount type"},
		{name: "percentage over 100", mutate: func(c *models.Coupon) { c.DiscountValue = 120 }, wantErr: "exceed 100"},
		{name: "flat over 100 is fine", mutate: func(c *models.Coupon) { c.DiscountType = "FLAT"; c.DiscountValue = 500 }},
		{name: "zero value", mutate: func(c *models.Coupon) { c.DiscountValue = 0 }, wantErr: "greater than zero"},
		{name: "per user above global", mutate: func(c *models.Coupon) { c.UsageLimitPerUser = 200 }, wantErr: "per-user limit"},
		{name: "inverted window", mutate: func(c *models.Coupon) { c.ValidTill = c.ValidFrom }, wantErr: "validFrom must be before"},
		{name: "missing dates", mutate: func(c *models.Coupon) { c.ValidFrom = time.Time{} }, wantErr: "validity dates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			tt.mutate(&c)
			err := NormalizeCoupon(&c)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "SPRING10", c.Code)
				return
			}
			assert.True(t, errors.IsKind(err, errors.ValidationFailed))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCreateRuleDefaultsCurrency(t *testing.T) {
	s := NewService(&fakeClient{})

	got, err := s.CreateRule(context.Background(), models.PricingRule{CollegeName: "Amity", PageSlug: "amity-mba", BaseAmount: 999})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, got.Currency)

	_, err = s.CreateRule(context.Background(), models.PricingRule{CollegeName: "Amity", PageSlug: "amity-mba"})
	assert.ErrorContains(t, err, "base amount")

	_, err = s.CreateRule(context.Background(), models.PricingRule{CollegeName: "Amity", BaseAmount: 1})
	assert.ErrorContains(t, err, "page slug")
}

func TestCouponOptionsDedupesInOrder(t *testing.T) {
	s := NewService(&fakeClient{rules: []models.PricingRule{
		{PageSlug: "amity-mba", CampusLocation: "Noida"},
		{PageSlug: "lpu-btech", CampusLocation: ""},
		{PageSlug: "amity-mba", CampusLocation: "Jaipur"},
		{PageSlug: "", CampusLocation: "Noida"},
	}})

	opts, err := s.CouponOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"amity-mba", "lpu-btech"}, opts.PageSlugs)
	assert.Equal(t, []string{"Noida", "Jaipur"}, opts.Campuses)
}

func TestSearch(t *testing.T) {
	s := NewService(&fakeClient{
		rules: []models.PricingRule{{CollegeName: "Amity", PageSlug: "amity-mba"}, {CollegeName: "LPU", PageSlug: "lpu"}},
		coupons: []models.Coupon{
			{Code: "SPRING10"},
			{Code: "X", Description: "Campus special", ApplicableCampuses: []string{"Pune"}},
		},
	})

	rules, err := s.ListRules(context.Background(), "MBA")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Amity", rules[0].CollegeName)

	coupons, err := s.ListCoupons(context.Background(), "pune")
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "X", coupons[0].Code)

	all, err := s.ListCoupons(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
