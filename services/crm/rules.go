package crm

import (
	"context"
	"net/http"

	"counsellor-console/errors"
	"counsellor-console/models"
)

// ListL3Rules returns every L3 lead-assignment ruleset.
func (c *Client) ListL3Rules(ctx context.Context) ([]models.L3Rule, error) {
	const op = "list l3 rules"
	body, err := c.get(ctx, "/leadassignmentl3", nil)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	rules, err := decodeList[models.L3Rule](op, body)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	return rules, nil
}

func (c *Client) CreateL3Rule(ctx context.Context, rule models.L3Rule) (models.L3Rule, error) {
	const op = "create l3 rule"
	created := rule
	body, err := c.send(ctx, http.MethodPost, "/leadassignmentl3", rule)
	if err == nil {
		err = decodeWrite(op, body, &created)
	}
	if err != nil {
		return models.L3Rule{}, errors.E(errors.WriteFailed, op, err)
	}
	return created, nil
}

func (c *Client) UpdateL3Rule(ctx context.Context, id models.ID, rule models.L3Rule) (models.L3Rule, error) {
	const op = "update l3 rule"
	rule.ID = id
	updated := rule
	body, err := c.send(ctx, http.MethodPut, "/leadassignmentl3/"+pathID(id), rule)
	if err == nil {
		err = decodeWrite(op, body, &updated)
	}
	if err != nil {
		return models.L3Rule{}, errors.E(errors.WriteFailed, op, err)
	}
	return updated, nil
}

func (c *Client) DeleteL3Rule(ctx context.Context, id models.ID) error {
	return c.simpleWrite(ctx, "delete l3 rule", http.MethodDelete, "/leadassignmentl3/"+pathID(id), nil)
}

// ToggleL3Rule flips the active flag server-side.
func (c *Client) ToggleL3Rule(ctx context.Context, id models.ID) error {
	return c.simpleWrite(ctx, "toggle l3 rule", http.MethodPatch, "/leadassignmentl3/"+pathID(id)+"/toggle", struct{}{})
}

// ListReconRules returns every university recon rule.
func (c *Client) ListReconRules(ctx context.Context) ([]models.ReconRule, error) {
	const op = "list recon rules"
	body, err := c.get(ctx, "/leadassignmentrecon", nil)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	rules, err := decodeList[models.ReconRule](op, body)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	return rules, nil
}

func (c *Client) CreateReconRule(ctx context.Context, rule models.ReconRule) (models.ReconRule, error) {
	const op = "create recon rule"
	created := rule
	body, err := c.send(ctx, http.MethodPost, "/leadassignmentrecon", rule)
	if err == nil {
		err = decodeWrite(op, body, &created)
	}
	if err != nil {
		return models.ReconRule{}, errors.E(errors.WriteFailed, op, err)
	}
	return created, nil
}

func (c *Client) UpdateReconRule(ctx context.Context, id models.ID, rule models.ReconRule) (models.ReconRule, error) {
	const op = "update recon rule"
	rule.ID = id
	updated := rule
	body, err := c.send(ctx, http.MethodPut, "/leadassignmentrecon/"+pathID(id), rule)
	if err == nil {
		err = decodeWrite(op, body, &updated)
	}
	if err != nil {
		return models.ReconRule{}, errors.E(errors.WriteFailed, op, err)
	}
	return updated, nil
}

func (c *Client) DeleteReconRule(ctx context.Context, id models.ID) error {
	return c.simpleWrite(ctx, "delete recon rule", http.MethodDelete, "/leadassignmentrecon/"+pathID(id), nil)
}

// SetReconRuleActive sets the active flag of a recon rule.
func (c *Client) SetReconRuleActive(ctx context.Context, id models.ID, active bool) error {
	payload := struct {
		IsActive bool `json:"is_active"`
	}{active}
	return c.simpleWrite(ctx, "toggle recon rule", http.MethodPatch, "/leadassignmentrecon/"+pathID(id)+"/toggle-status", payload)
}

func (c *Client) simpleWrite(ctx context.Context, op, method, path string, payload interface{}) error {
	body, err := c.send(ctx, method, path, payload)
	if err == nil {
		err = decodeWrite(op, body, nil)
	}
	if err != nil {
		return errors.E(errors.WriteFailed, op, err)
	}
	return nil
}
