package crm

import (
	"context"
	"fmt"
	"net/http"

	"counsellor-console/errors"
	"counsellor-console/models"
)

// AddDirectStudent creates a lead directly and returns the new student id.
func (c *Client) AddDirectStudent(ctx context.Context, req models.DirectStudentRequest) (models.ID, error) {
	const op = "add direct student"
	body, err := c.send(ctx, http.MethodPost, "/student/addDirectStudent", req)
	if err != nil {
		return "", errors.E(errors.WriteFailed, op, err)
	}
	if _, err := decodeAck(op, body); err != nil {
		return "", errors.E(errors.WriteFailed, op, err)
	}
	res, err := decodeData[models.DirectStudentResult](op, body)
	if err != nil {
		return "", errors.E(errors.WriteFailed, op, err)
	}
	if res.StudentID == "" {
		return "", errors.E(errors.WriteFailed, op, &DecodeError{Op: op, Err: fmt.Errorf("studentId missing")})
	}
	return res.StudentID, nil
}

// FilterOptions returns the lead attribute values used by source dropdowns.
func (c *Client) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	return fetchData[models.FilterOptions](ctx, c, "filter options", "/student/filterOptions", nil)
}

// UniversityCourseOptions returns the university/course dropdown data.
func (c *Client) UniversityCourseOptions(ctx context.Context) (models.UniversityCourseOptions, error) {
	return fetchData[models.UniversityCourseOptions](ctx, c, "university course options", "/universitycourse/dropdown", nil)
}
