package crm

import (
	"context"
	"net/http"
	"net/url"

	"counsellor-console/errors"
	"counsellor-console/models"
)

// ListCounsellors returns the counsellor directory of one tier.
func (c *Client) ListCounsellors(ctx context.Context, tier models.CounsellorTier) ([]models.Counsellor, error) {
	const op = "list counsellors"
	body, err := c.get(ctx, "/counsellor/getAllCounsellors", url.Values{"role": {tier.Role()}})
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	list, err := decodeData[[]models.Counsellor](op, body)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	for i := range list {
		list[i].Tier = tier
	}
	return list, nil
}

// AgentRef is a selected L2 agent as the assignment endpoint expects it.
type AgentRef struct {
	CounsellorID models.ID `json:"counsellorId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
}

// AssignRequest is the body of PUT /counsellor/assignCounsellors.
type AssignRequest struct {
	AssignmentType   string      `json:"assignmentType"`
	SelectedStudents []models.ID `json:"selectedStudents"`
	SelectedAgents   []AgentRef  `json:"selectedAgents"`
}

// AssignCounsellors assigns students to counsellors and returns the server message.
func (c *Client) AssignCounsellors(ctx context.Context, req AssignRequest) (string, error) {
	const op = "assign counsellors"
	body, err := c.send(ctx, http.MethodPut, "/counsellor/assignCounsellors", req)
	if err != nil {
		return "", errors.E(errors.WriteFailed, op, err)
	}
	msg, err := decodeAck(op, body)
	if err != nil {
		return "", errors.E(errors.WriteFailed, op, err)
	}
	return msg, nil
}
