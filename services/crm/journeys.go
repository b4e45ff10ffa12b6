package crm

import (
	"context"
	"fmt"
	"net/http"

	"counsellor-console/errors"
	"counsellor-console/models"
)

type distinctRequest struct {
	StudentIDs []models.ID `json:"studentIds"`
}

// DistinctL3ByStudents looks up the L3 journeys of the given students.
func (c *Client) DistinctL3ByStudents(ctx context.Context, studentIDs []models.ID) (*models.JourneyLookup, error) {
	const op = "distinct l3 by students"
	body, err := c.send(ctx, http.MethodPost, "/StudentCourseStatusLogs/distinct-by-students", distinctRequest{StudentIDs: studentIDs})
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	lookup, err := decodeData[models.JourneyLookup](op, body)
	if err != nil {
		return nil, errors.E(errors.FetchFailed, op, err)
	}
	if err := normalizeLookup(&lookup); err != nil {
		return nil, errors.E(errors.FetchFailed, op, &DecodeError{Op: op, Err: err})
	}
	return &lookup, nil
}

// normalizeLookup fills student ids from the map keys and checks that each
// journey_count agrees with the journeys listed for that student, and that
// hasMultipleJourneys agrees with the counts.
func normalizeLookup(l *models.JourneyLookup) error {
	if l.JourneysByStudent == nil {
		return fmt.Errorf("journeysByStudent missing")
	}
	multiple := false
	for id, sj := range l.JourneysByStudent {
		if sj.StudentID == "" {
			sj.StudentID = id
		} else if sj.StudentID != id {
			return fmt.Errorf("student %s listed under key %s", sj.StudentID, id)
		}
		if sj.JourneyCount != len(sj.Journeys) {
			return fmt.Errorf("student %s: journey_count %d but %d journeys", id, sj.JourneyCount, len(sj.Journeys))
		}
		if sj.JourneyCount > 1 {
			multiple = true
		}
		for i := range sj.Journeys {
			if sj.Journeys[i].StudentID == "" {
				sj.Journeys[i].StudentID = id
			}
			if sj.Journeys[i].CourseID == "" {
				return fmt.Errorf("student %s: journey without course_id", id)
			}
		}
		l.JourneysByStudent[id] = sj
	}
	if multiple != l.HasMultipleJourneys {
		return fmt.Errorf("hasMultipleJourneys is %t but journey counts say %t", l.HasMultipleJourneys, multiple)
	}
	return nil
}

// ReplaceStudentsRequest moves the single-journey students of one counsellor to another.
type ReplaceStudentsRequest struct {
	StudentIDs       []models.ID `json:"studentIds"`
	FromCounsellorID models.ID   `json:"fromCounsellorId"`
	ToCounsellorID   models.ID   `json:"toCounsellorId"`
}

// ReplaceJourneyRequest moves one journey to another counsellor.
type ReplaceJourneyRequest struct {
	StudentID      models.ID `json:"studentId"`
	CourseID       models.ID `json:"courseId"`
	ToCounsellorID models.ID `json:"toCounsellorId"`
}

type replaceResult struct {
	RecordsUpdated int `json:"recordsUpdated"`
}

// ReplaceForStudents issues the bulk replace and returns how many records changed.
func (c *Client) ReplaceForStudents(ctx context.Context, req ReplaceStudentsRequest) (int, error) {
	const op = "replace l3 for students"
	body, err := c.send(ctx, http.MethodPost, "/StudentCourseStatusLogs/replace", req)
	if err != nil {
		return 0, errors.E(errors.WriteFailed, op, err)
	}
	if _, err := decodeAck(op, body); err != nil {
		return 0, errors.E(errors.WriteFailed, op, err)
	}
	res, err := decodeData[replaceResult](op, body)
	if err != nil {
		return 0, errors.E(errors.WriteFailed, op, err)
	}
	return res.RecordsUpdated, nil
}

// ReplaceForJourney issues one per-journey replace.
func (c *Client) ReplaceForJourney(ctx context.Context, req ReplaceJourneyRequest) error {
	const op = "replace l3 for journey"
	body, err := c.send(ctx, http.MethodPost, "/StudentCourseStatusLogs/replace-l3-specific-journey", req)
	if err != nil {
		return errors.E(errors.WriteFailed, op, err)
	}
	if _, err := decodeAck(op, body); err != nil {
		return errors.E(errors.WriteFailed, op, err)
	}
	return nil
}
