package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counsellor-console/config"
	"counsellor-console/models"
	"counsellor-console/services/kafka"
)

type stubDirectory struct {
	counsellors []models.Counsellor
	err         error
	tiers       []models.CounsellorTier
}

func (d *stubDirectory) ListCounsellors(_ context.Context, tier models.CounsellorTier) ([]models.Counsellor, error) {
	d.tiers = append(d.tiers, tier)
	return d.counsellors, d.err
}

type failingSender struct {
	failFor string
	sent    []string
}

func (s *failingSender) Send(_ context.Context, to, _, _ string) error {
	if to == s.failFor {
		return fmt.Errorf("smtp: 550 mailbox unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

func TestHandleL3ReplacedEmailsTarget(t *testing.T) {
	dir := &stubDirectory{counsellors: []models.Counsellor{
		{CounsellorID: "C1", CounsellorName: "Asha", CounsellorEmail: "asha@example.com"},
		{CounsellorID: "C2", CounsellorName: "Ravi", CounsellorEmail: "ravi@example.com"},
	}}
	sender := &LogSender{}
	n := NewNotifier(sender, dir)

	err := n.HandleL3Replaced(context.Background(), kafka.AssignmentEvent{
		Event:          kafka.EventL3Replaced,
		EventID:        "e1",
		StudentIDs:     []models.ID{"S1", "S2"},
		CourseID:       "K9",
		ToCounsellorID: "C2",
	})
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	mail := sender.Sent[0]
	assert.Equal(t, "ravi@example.com", mail.To)
	assert.Equal(t, "Students reassigned to you (2)", mail.Subject)
	assert.Contains(t, mail.Body, "Ravi")
	assert.Contains(t, mail.Body, "S1, S2")
	assert.Contains(t, mail.Body, "K9")
	assert.Equal(t, []models.CounsellorTier{models.TierL3}, dir.tiers)
}

func TestHandleL3ReplacedUnknownCounsellorIsSkipped(t *testing.T) {
	sender := &LogSender{}
	n := NewNotifier(sender, &stubDirectory{})

	err := n.HandleL3Replaced(context.Background(), kafka.AssignmentEvent{ToCounsellorID: "C404"})
	require.NoError(t, err)
	assert.Empty(t, sender.Sent)
}

func TestHandleL3ReplacedErrors(t *testing.T) {
	n := NewNotifier(&LogSender{}, &stubDirectory{err: fmt.Errorf("crm down")})

	err := n.HandleL3Replaced(context.Background(), kafka.AssignmentEvent{EventID: "e1"})
	assert.ErrorContains(t, err, "no target counsellor")

	err = n.HandleL3Replaced(context.Background(), kafka.AssignmentEvent{ToCounsellorID: "C1"})
	assert.ErrorContains(t, err, "crm down")
}

func TestHandleL2AssignedEmailsEveryCounsellor(t *testing.T) {
	sender := &failingSender{failFor: "b@example.com"}
	n := NewNotifier(sender, &stubDirectory{})

	err := n.HandleL2Assigned(context.Background(), kafka.AssignmentEvent{
		Event:      kafka.EventL2Assigned,
		StudentIDs: []models.ID{"S1"},
		Counsellors: []models.Counsellor{
			{CounsellorID: "A", CounsellorEmail: "a@example.com"},
			{CounsellorID: "B", CounsellorEmail: "b@example.com"},
			{CounsellorID: "N"},
			{CounsellorID: "C", CounsellorEmail: "c@example.com"},
		},
	})
	assert.ErrorContains(t, err, "b@example.com")
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, sender.sent)
}

func TestNewEmailSenderFallsBackToLog(t *testing.T) {
	cfg := config.Defaults()
	_, ok := NewEmailSender(&cfg).(*LogSender)
	assert.True(t, ok)

	cfg.SMTPUser = "ops@example.com"
	cfg.SMTPPass = "secret"
	s, ok := NewEmailSender(&cfg).(*SMTPSender)
	require.True(t, ok)
	assert.Equal(t, "ops@example.com", s.from)
}
