package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"counsellor-console/logger"
	"counsellor-console/models"
	"counsellor-console/services/reassign"
)

// AuditEntry is one stored reassignment attempt.
type AuditEntry struct {
	ID               string      `json:"id"`
	BatchID          string      `json:"batch_id"`
	Mode             string      `json:"mode"`
	StudentIDs       []models.ID `json:"student_ids"`
	CourseID         models.ID   `json:"course_id,omitempty"`
	FromCounsellorID models.ID   `json:"from_counsellor_id,omitempty"`
	ToCounsellorID   models.ID   `json:"to_counsellor_id"`
	RecordsUpdated   int         `json:"records_updated"`
	Succeeded        bool        `json:"succeeded"`
	Error            string      `json:"error,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// AuditStore persists reassignment attempts. A nil *sql.DB makes it a no-op.
type AuditStore struct {
	conn   *sql.DB
	driver string
}

func NewAuditStore(conn *sql.DB, driver string) *AuditStore {
	return &AuditStore{conn: conn, driver: driver}
}

func (s *AuditStore) Enabled() bool {
	return s != nil && s.conn != nil
}

// Record stores one attempt. Failures are logged, never returned: auditing
// must not change the outcome of a replacement.
func (s *AuditStore) Record(ctx context.Context, a reassign.Attempt) {
	if !s.Enabled() {
		return
	}
	if err := s.Insert(context.WithoutCancel(ctx), a); err != nil {
		logger.Error("Error storing reassignment attempt (batch %s): %v", a.BatchID, err)
	}
}

func (s *AuditStore) Insert(ctx context.Context, a reassign.Attempt) error {
	ids, err := json.Marshal(a.StudentIDs)
	if err != nil {
		return err
	}
	var errMsg sql.NullString
	if a.Err != nil {
		errMsg = sql.NullString{String: a.Err.Error(), Valid: true}
	}

	query := s.rebind(`
		INSERT INTO reassignment_attempts
			(id, batch_id, mode, student_ids, course_id, from_counsellor_id, to_counsellor_id,
			 records_updated, succeeded, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.conn.ExecContext(ctx, query,
		uuid.NewString(), a.BatchID, string(a.Mode), string(ids),
		a.CourseID.String(), a.FromCounsellor.String(), a.ToCounsellor.String(),
		a.RecordsUpdated, a.Err == nil, errMsg, a.At.UTC())
	return err
}

// Recent returns the latest attempts, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if !s.Enabled() {
		return []AuditEntry{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := s.rebind(`
		SELECT id, batch_id, mode, student_ids, course_id, from_counsellor_id, to_counsellor_id,
		       records_updated, succeeded, error_message, created_at
		FROM reassignment_attempts
		ORDER BY created_at DESC, id
		LIMIT ?
	`)
	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query reassignment attempts: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var (
			e                AuditEntry
			ids              string
			course, from, to sql.NullString
			errMsg           sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.BatchID, &e.Mode, &ids, &course, &from, &to,
			&e.RecordsUpdated, &e.Succeeded, &errMsg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reassignment attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &e.StudentIDs); err != nil {
			return nil, fmt.Errorf("decode student ids of %s: %w", e.ID, err)
		}
		e.CourseID = models.ID(course.String)
		e.FromCounsellorID = models.ID(from.String)
		e.ToCounsellorID = models.ID(to.String)
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// rebind turns ? placeholders into $n for postgres.
func (s *AuditStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
