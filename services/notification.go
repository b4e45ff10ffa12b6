package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"counsellor-console/logger"
	"counsellor-console/models"
	"counsellor-console/services/kafka"
)

// CounsellorDirectory lists counsellors of one tier.
type CounsellorDirectory interface {
	ListCounsellors(ctx context.Context, tier models.CounsellorTier) ([]models.Counsellor, error)
}

// Notifier emails counsellors about assignment changes consumed from Kafka.
type Notifier struct {
	sender    EmailSender
	directory CounsellorDirectory
}

func NewNotifier(sender EmailSender, directory CounsellorDirectory) *Notifier {
	return &Notifier{sender: sender, directory: directory}
}

// Register wires the notifier into a consumer.
func (n *Notifier) Register(c *kafka.Consumer) {
	c.Handle(kafka.EventL3Replaced, n.HandleL3Replaced)
	c.Handle(kafka.EventL2Assigned, n.HandleL2Assigned)
}

// HandleL3Replaced tells the new L3 counsellor which students moved to them.
func (n *Notifier) HandleL3Replaced(ctx context.Context, ev kafka.AssignmentEvent) error {
	if ev.ToCounsellorID == "" {
		return fmt.Errorf("event %s has no target counsellor", ev.EventID)
	}
	dir, err := n.directory.ListCounsellors(ctx, models.TierL3)
	if err != nil {
		return fmt.Errorf("look up counsellor %s: %w", ev.ToCounsellorID, err)
	}
	var target *models.Counsellor
	for i := range dir {
		if dir[i].CounsellorID == ev.ToCounsellorID {
			target = &dir[i]
			break
		}
	}
	if target == nil || target.CounsellorEmail == "" {
		logger.Warn("Counsellor %s has no email on file; skipping notification", ev.ToCounsellorID)
		return nil
	}

	body, err := renderAssignment(assignmentMail{
		CounsellorName: target.CounsellorName,
		Tier:           models.TierL3.String(),
		StudentIDs:     joinIDs(ev.StudentIDs),
		CourseID:       ev.CourseID.String(),
		Count:          len(ev.StudentIDs),
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Students reassigned to you (%d)", len(ev.StudentIDs))
	return n.sender.Send(ctx, target.CounsellorEmail, subject, body)
}

// HandleL2Assigned emails every L2 counsellor named in the event.
func (n *Notifier) HandleL2Assigned(ctx context.Context, ev kafka.AssignmentEvent) error {
	var failed []string
	for _, c := range ev.Counsellors {
		if c.CounsellorEmail == "" {
			continue
		}
		body, err := renderAssignment(assignmentMail{
			CounsellorName: c.CounsellorName,
			Tier:           models.TierL2.String(),
			StudentIDs:     joinIDs(ev.StudentIDs),
			Count:          len(ev.StudentIDs),
		})
		if err != nil {
			return err
		}
		subject := fmt.Sprintf("New Lead Assignment - %d students", len(ev.StudentIDs))
		if err := n.sender.Send(ctx, c.CounsellorEmail, subject, body); err != nil {
			logger.Warn("Warning: Failed to send counsellor notification to %s: %v", c.CounsellorEmail, err)
			failed = append(failed, c.CounsellorEmail)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("notification failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

type assignmentMail struct {
	CounsellorName string
	Tier           string
	StudentIDs     string
	CourseID       string
	Count          int
}

var assignmentTmpl = template.Must(template.New("assignment").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
        .header { background-color: #2196F3; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: white; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .student-info { background-color: #e3f2fd; padding: 15px; margin: 15px 0; border-left: 4px solid #2196F3; }
        .label { font-weight: bold; color: #1976D2; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>New {{.Tier}} Assignment</h2>
        </div>
        <div class="content">
            <p>Dear <strong>{{.CounsellorName}}</strong>,</p>
            <p>{{.Count}} student(s) have been assigned to you.</p>
            <div class="student-info">
                <div><span class="label">Student IDs:</span> {{.StudentIDs}}</div>
                {{if .CourseID}}<div><span class="label">Course:</span> {{.CourseID}}</div>{{end}}
            </div>
            <p>Please reach out to them at your earliest convenience.</p>
            <p>Best regards,<br/><strong>Counsellor Console</strong></p>
        </div>
    </div>
</body>
</html>
`))

func renderAssignment(m assignmentMail) (string, error) {
	var buf bytes.Buffer
	if err := assignmentTmpl.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("render assignment email: %w", err)
	}
	return buf.String(), nil
}

func joinIDs(ids []models.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
