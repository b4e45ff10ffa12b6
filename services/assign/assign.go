package assign

import (
	"context"
	"time"

	"github.com/google/uuid"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
	"counsellor-console/services/crm"
	"counsellor-console/services/kafka"
)

// Client is the part of the CRM API the L2 assigner needs.
type Client interface {
	ListCounsellors(ctx context.Context, tier models.CounsellorTier) ([]models.Counsellor, error)
	AssignCounsellors(ctx context.Context, req crm.AssignRequest) (string, error)
}

// Publisher sends an event. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Result is returned after a successful assignment.
type Result struct {
	Message     string              `json:"message"`
	StudentIDs  []models.ID         `json:"student_ids"`
	Counsellors []models.Counsellor `json:"counsellors"`
}

// L2Assigner assigns students to L2 counsellors in one bulk call.
// Distribution among the selected agents happens server-side.
type L2Assigner struct {
	client    Client
	publisher Publisher
	now       func() time.Time
}

func NewL2Assigner(client Client, publisher Publisher) *L2Assigner {
	return &L2Assigner{client: client, publisher: publisher, now: time.Now}
}

// Assign validates the selection against the L2 directory and submits it.
func (a *L2Assigner) Assign(ctx context.Context, studentIDs, agentIDs []models.ID) (*Result, error) {
	students := dedupe(studentIDs)
	agents := dedupe(agentIDs)
	if len(students) == 0 {
		return nil, errors.E(errors.ValidationFailed, "select at least one student")
	}
	if len(agents) == 0 {
		return nil, errors.E(errors.ValidationFailed, "select at least one counsellor")
	}

	directory, err := a.client.ListCounsellors(ctx, models.TierL2)
	if err != nil {
		return nil, err
	}
	byID := make(map[models.ID]models.Counsellor, len(directory))
	for _, c := range directory {
		byID[c.CounsellorID] = c
	}

	selected := make([]models.Counsellor, 0, len(agents))
	refs := make([]crm.AgentRef, 0, len(agents))
	for _, id := range agents {
		c, ok := byID[id]
		if !ok {
			return nil, errors.E(errors.ValidationFailed, "counsellor "+id.String()+" is not an L2 counsellor")
		}
		selected = append(selected, c)
		refs = append(refs, crm.AgentRef{CounsellorID: c.CounsellorID, Name: c.CounsellorName, Email: c.CounsellorEmail})
	}

	msg, err := a.client.AssignCounsellors(ctx, crm.AssignRequest{
		AssignmentType:   models.TierL2.String(),
		SelectedStudents: students,
		SelectedAgents:   refs,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("✅ Assigned %d students to %d L2 counsellors", len(students), len(selected))

	a.publish(ctx, students, selected)
	return &Result{Message: msg, StudentIDs: students, Counsellors: selected}, nil
}

func (a *L2Assigner) publish(ctx context.Context, students []models.ID, counsellors []models.Counsellor) {
	if a.publisher == nil {
		return
	}
	ev := kafka.AssignmentEvent{
		Event:       kafka.EventL2Assigned,
		EventID:     uuid.NewString(),
		StudentIDs:  students,
		Counsellors: counsellors,
		OccurredAt:  a.now().UTC(),
	}
	if err := a.publisher.Publish(context.WithoutCancel(ctx), ev.Key(), ev); err != nil {
		logger.Warn("Failed to publish %s event: %v", ev.Event, err)
	}
}

func dedupe(ids []models.ID) []models.ID {
	seen := make(map[models.ID]bool, len(ids))
	out := make([]models.ID, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
