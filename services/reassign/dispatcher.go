package reassign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
	"counsellor-console/services/crm"
)

// Replacer issues replacement writes against the CRM.
type Replacer interface {
	ReplaceForStudents(ctx context.Context, req crm.ReplaceStudentsRequest) (int, error)
	ReplaceForJourney(ctx context.Context, req crm.ReplaceJourneyRequest) error
}

// Mode tells which replacement path produced an attempt.
type Mode string

const (
	ModeBulk    Mode = "bulk"
	ModeJourney Mode = "journey"
)

// Attempt is one replacement call and its outcome.
type Attempt struct {
	BatchID        string
	Mode           Mode
	StudentIDs     []models.ID
	CourseID       models.ID
	FromCounsellor models.ID
	ToCounsellor   models.ID
	RecordsUpdated int
	Err            error
	At             time.Time
}

// Recorder observes attempts after they complete. Implementations must not block for long.
type Recorder interface {
	Record(ctx context.Context, a Attempt)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Attempt) {}

// MultiRecorder fans an attempt out to several recorders in order.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, a Attempt) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, a)
		}
	}
}

// Deps are the injectable collaborators of a Dispatcher.
type Deps struct {
	Replacer    Replacer
	Recorder    Recorder
	Concurrency int
	Now         func() time.Time
	NewBatchID  func() string
}

type Dispatcher struct {
	replacer    Replacer
	recorder    Recorder
	concurrency int
	now         func() time.Time
	newBatchID  func() string
}

func NewDispatcher(d Deps) *Dispatcher {
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Concurrency < 1 {
		d.Concurrency = 1
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewBatchID == nil {
		d.NewBatchID = func() string { return uuid.NewString() }
	}
	return &Dispatcher{
		replacer:    d.Replacer,
		recorder:    d.Recorder,
		concurrency: d.Concurrency,
		now:         d.Now,
		newBatchID:  d.NewBatchID,
	}
}

// BulkResult is the outcome of a bulk single-journey replace.
type BulkResult struct {
	BatchID         string                     `json:"batch_id"`
	Request         crm.ReplaceStudentsRequest `json:"request"`
	RecordsUpdated  int                        `json:"records_updated"`
	RefreshRequired bool                       `json:"refresh_required"`
}

// ValidateBulk checks a bulk replace without touching the network.
func ValidateBulk(c Classification, to models.ID) (crm.ReplaceStudentsRequest, error) {
	if to == "" {
		return crm.ReplaceStudentsRequest{}, errors.E(errors.ValidationFailed, "select a new L3 counsellor")
	}
	if len(c.SingleJourneyStudentIDs) == 0 {
		return crm.ReplaceStudentsRequest{}, errors.E(errors.ValidationFailed, "no students with a single journey")
	}
	if c.UniformCurrentCounsellor == nil {
		return crm.ReplaceStudentsRequest{}, errors.E(errors.AmbiguousSource,
			"single-journey students have different current counsellors; replace them per journey")
	}
	if c.UniformCurrentCounsellor.ID == to {
		return crm.ReplaceStudentsRequest{}, errors.E(errors.ValidationFailed,
			fmt.Sprintf("counsellor %s is already assigned", to))
	}
	ids := make([]models.ID, len(c.SingleJourneyStudentIDs))
	copy(ids, c.SingleJourneyStudentIDs)
	return crm.ReplaceStudentsRequest{
		StudentIDs:       ids,
		FromCounsellorID: c.UniformCurrentCounsellor.ID,
		ToCounsellorID:   to,
	}, nil
}

// ReplaceBulk moves every single-journey student from the uniform current counsellor to to.
func (d *Dispatcher) ReplaceBulk(ctx context.Context, c Classification, to models.ID) (*BulkResult, error) {
	req, err := ValidateBulk(c, to)
	if err != nil {
		return nil, err
	}

	batch := d.newBatchID()
	n, err := d.replacer.ReplaceForStudents(ctx, req)
	d.recorder.Record(ctx, Attempt{
		BatchID:        batch,
		Mode:           ModeBulk,
		StudentIDs:     req.StudentIDs,
		FromCounsellor: req.FromCounsellorID,
		ToCounsellor:   req.ToCounsellorID,
		RecordsUpdated: n,
		Err:            err,
		At:             d.now(),
	})
	if err != nil {
		logger.Error("❌ bulk replace %s -> %s failed: %v", req.FromCounsellorID, to, err)
		return nil, err
	}

	logger.Info("✅ bulk replace %s -> %s updated %d records", req.FromCounsellorID, to, n)
	return &BulkResult{BatchID: batch, Request: req, RecordsUpdated: n, RefreshRequired: true}, nil
}

// JourneyOutcome is the result of one per-journey call.
type JourneyOutcome struct {
	Key            models.JourneyKey `json:"key"`
	ToCounsellorID models.ID         `json:"to_counsellor_id"`
	Succeeded      bool              `json:"succeeded"`
	Error          string            `json:"error,omitempty"`
}

// PerJourneyResult aggregates a per-journey batch.
type PerJourneyResult struct {
	BatchID         string           `json:"batch_id"`
	Attempted       int              `json:"attempted"`
	Succeeded       int              `json:"succeeded"`
	Outcomes        []JourneyOutcome `json:"outcomes"`
	RefreshRequired bool             `json:"refresh_required"`
}

// ValidatePerJourney checks every choice against the known journeys before any call.
func ValidatePerJourney(journeys []models.Journey, reps []Replacement) error {
	if len(reps) == 0 {
		return errors.E(errors.ValidationFailed, "select at least one replacement")
	}
	byKey := make(map[models.JourneyKey]models.Journey, len(journeys))
	for _, j := range journeys {
		byKey[j.Key()] = j
	}
	seen := make(map[models.JourneyKey]bool, len(reps))
	for _, r := range reps {
		if r.ToCounsellorID == "" {
			return errors.E(errors.ValidationFailed, fmt.Sprintf("journey %s has no target counsellor", r.Key))
		}
		if seen[r.Key] {
			return errors.E(errors.ValidationFailed, fmt.Sprintf("journey %s selected twice", r.Key))
		}
		seen[r.Key] = true
		j, ok := byKey[r.Key]
		if !ok {
			return errors.E(errors.ValidationFailed, fmt.Sprintf("journey %s is not part of this selection", r.Key))
		}
		if j.CurrentCounsellorID == r.ToCounsellorID {
			return errors.E(errors.ValidationFailed,
				fmt.Sprintf("journey %s is already assigned to %s", r.Key, r.ToCounsellorID))
		}
	}
	return nil
}

// ReplacePerJourney issues one call per choice. Calls are independent: failures are
// collected, and the returned error has kind PartialFailure when some failed.
// The result is returned alongside that error.
func (d *Dispatcher) ReplacePerJourney(ctx context.Context, journeys []models.Journey, reps []Replacement) (*PerJourneyResult, error) {
	if err := ValidatePerJourney(journeys, reps); err != nil {
		return nil, err
	}

	current := make(map[models.JourneyKey]models.ID, len(journeys))
	for _, j := range journeys {
		current[j.Key()] = j.CurrentCounsellorID
	}

	res := &PerJourneyResult{
		BatchID:   d.newBatchID(),
		Attempted: len(reps),
		Outcomes:  make([]JourneyOutcome, len(reps)),
	}

	call := func(ctx context.Context, i int) {
		r := reps[i]
		out := JourneyOutcome{Key: r.Key, ToCounsellorID: r.ToCounsellorID}
		err := ctx.Err()
		if err == nil {
			err = d.replacer.ReplaceForJourney(ctx, crm.ReplaceJourneyRequest{
				StudentID:      r.Key.StudentID,
				CourseID:       r.Key.CourseID,
				ToCounsellorID: r.ToCounsellorID,
			})
		}
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Succeeded = true
		}
		res.Outcomes[i] = out
		d.recorder.Record(ctx, Attempt{
			BatchID:        res.BatchID,
			Mode:           ModeJourney,
			StudentIDs:     []models.ID{r.Key.StudentID},
			CourseID:       r.Key.CourseID,
			FromCounsellor: current[r.Key],
			ToCounsellor:   r.ToCounsellorID,
			Err:            err,
			At:             d.now(),
		})
	}

	if d.concurrency == 1 {
		for i := range reps {
			call(ctx, i)
		}
	} else {
		// Keys are unique after validation, so no two calls touch the same journey.
		var g errgroup.Group
		g.SetLimit(d.concurrency)
		for i := range reps {
			g.Go(func() error {
				call(ctx, i)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, o := range res.Outcomes {
		if o.Succeeded {
			res.Succeeded++
		}
	}
	res.RefreshRequired = res.Succeeded == res.Attempted

	if !res.RefreshRequired {
		logger.Warn("per-journey replace batch %s: %d/%d succeeded", res.BatchID, res.Succeeded, res.Attempted)
		return res, errors.E(errors.PartialFailure,
			fmt.Sprintf("%d of %d replacements succeeded", res.Succeeded, res.Attempted))
	}
	logger.Info("✅ per-journey replace batch %s: %d/%d succeeded", res.BatchID, res.Succeeded, res.Attempted)
	return res, nil
}
