package kafka

import (
	"context"
	"time"

	"github.com/google/uuid"

	"counsellor-console/models"
	"counsellor-console/services/reassign"
)

// Event types published on the assignments topic.
const (
	EventL3Replaced = "l3.counsellor.replaced"
	EventL2Assigned = "l2.counsellors.assigned"
)

// AssignmentEvent announces a completed assignment change.
type AssignmentEvent struct {
	Event            string                 `json:"event"`
	EventID          string                 `json:"event_id"`
	BatchID          string                 `json:"batch_id,omitempty"`
	Mode             string                 `json:"mode,omitempty"`
	StudentIDs       []models.ID            `json:"student_ids"`
	CourseID         models.ID              `json:"course_id,omitempty"`
	FromCounsellorID models.ID              `json:"from_counsellor_id,omitempty"`
	ToCounsellorID   models.ID              `json:"to_counsellor_id,omitempty"`
	Counsellors      []models.Counsellor    `json:"counsellors,omitempty"`
	RecordsUpdated   int                    `json:"records_updated,omitempty"`
	OccurredAt       time.Time              `json:"occurred_at"`
	Meta             map[string]interface{} `json:"meta,omitempty"`
}

// Key partitions events by target counsellor so one counsellor's notices stay ordered.
func (e AssignmentEvent) Key() string {
	if e.ToCounsellorID != "" {
		return e.ToCounsellorID.String()
	}
	if len(e.Counsellors) > 0 {
		return e.Counsellors[0].CounsellorID.String()
	}
	return e.EventID
}

// ReplacementRecorder queues an event for every successful replacement attempt.
// Record returns at once; delivery happens on the producer's goroutine.
type ReplacementRecorder struct {
	Producer *Producer
}

func (r ReplacementRecorder) Record(_ context.Context, a reassign.Attempt) {
	if a.Err != nil || r.Producer == nil || !r.Producer.Enabled() {
		return
	}
	ev := AssignmentEvent{
		Event:            EventL3Replaced,
		EventID:          uuid.NewString(),
		BatchID:          a.BatchID,
		Mode:             string(a.Mode),
		StudentIDs:       a.StudentIDs,
		CourseID:         a.CourseID,
		FromCounsellorID: a.FromCounsellor,
		ToCounsellorID:   a.ToCounsellor,
		RecordsUpdated:   a.RecordsUpdated,
		OccurredAt:       a.At,
	}
	// the replacement already happened; a lost event only loses the email
	r.Producer.Enqueue(ev.Key(), ev)
}
