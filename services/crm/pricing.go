package crm

import (
	"context"
	"net/http"
	"net/url"

	"counsellor-console/errors"
	"counsellor-console/models"
)

// fetchData GETs path and decodes the envelope data into T.
func fetchData[T any](ctx context.Context, c *Client, op, path string, query url.Values) (T, error) {
	var zero T
	body, err := c.get(ctx, path, query)
	if err != nil {
		return zero, errors.E(errors.FetchFailed, op, err)
	}
	out, err := decodeData[T](op, body)
	if err != nil {
		return zero, errors.E(errors.FetchFailed, op, err)
	}
	return out, nil
}

// writeAcked sends payload and requires an explicit success flag. The returned
// value is the server's copy when it sends one back, else payload itself.
func writeAcked[T any](ctx context.Context, c *Client, op, method, path string, payload T) (T, error) {
	var zero T
	body, err := c.send(ctx, method, path, payload)
	if err != nil {
		return zero, errors.E(errors.WriteFailed, op, err)
	}
	if _, err := decodeAck(op, body); err != nil {
		return zero, errors.E(errors.WriteFailed, op, err)
	}
	out := payload
	if err := decodeWrite(op, body, &out); err != nil {
		return zero, errors.E(errors.WriteFailed, op, err)
	}
	return out, nil
}

func (c *Client) deleteAcked(ctx context.Context, op, path string) error {
	body, err := c.send(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return errors.E(errors.WriteFailed, op, err)
	}
	if _, err := decodeAck(op, body); err != nil {
		return errors.E(errors.WriteFailed, op, err)
	}
	return nil
}

func (c *Client) ListPricingRules(ctx context.Context) ([]models.PricingRule, error) {
	return fetchData[[]models.PricingRule](ctx, c, "list pricing rules", "/pricing-rules", nil)
}

func (c *Client) GetPricingRule(ctx context.Context, id models.ID) (models.PricingRule, error) {
	return fetchData[models.PricingRule](ctx, c, "get pricing rule", "/pricing-rules/"+pathID(id), nil)
}

func (c *Client) CreatePricingRule(ctx context.Context, rule models.PricingRule) (models.PricingRule, error) {
	return writeAcked(ctx, c, "create pricing rule", http.MethodPost, "/pricing-rules", rule)
}

func (c *Client) UpdatePricingRule(ctx context.Context, id models.ID, rule models.PricingRule) (models.PricingRule, error) {
	rule.ID = id
	return writeAcked(ctx, c, "update pricing rule", http.MethodPut, "/pricing-rules/"+pathID(id), rule)
}

func (c *Client) DeletePricingRule(ctx context.Context, id models.ID) error {
	return c.deleteAcked(ctx, "delete pricing rule", "/pricing-rules/"+pathID(id))
}

func (c *Client) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return fetchData[[]models.Coupon](ctx, c, "list coupons", "/coupons", nil)
}

func (c *Client) GetCoupon(ctx context.Context, id models.ID) (models.Coupon, error) {
	return fetchData[models.Coupon](ctx, c, "get coupon", "/coupons/"+pathID(id), nil)
}

func (c *Client) CreateCoupon(ctx context.Context, coupon models.Coupon) (models.Coupon, error) {
	return writeAcked(ctx, c, "create coupon", http.MethodPost, "/coupons", coupon)
}

func (c *Client) UpdateCoupon(ctx context.Context, id models.ID, coupon models.Coupon) (models.Coupon, error) {
	coupon.ID = id
	return writeAcked(ctx, c, "update coupon", http.MethodPut, "/coupons/"+pathID(id), coupon)
}

func (c *Client) DeleteCoupon(ctx context.Context, id models.ID) error {
	return c.deleteAcked(ctx, "delete coupon", "/coupons/"+pathID(id))
}
