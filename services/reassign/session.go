package reassign

import (
	"context"
	"fmt"
	"sync"
	"time"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
)

// Session status values.
const (
	StatusReady       = "ready"
	StatusFetchFailed = "fetch_failed"
	StatusClosed      = "closed"
)

// Session is one open reassignment screen: the selected students, their
// classification, and the pending per-journey choices. All state is guarded
// by mu; remote calls run without holding it.
type Session struct {
	ID string

	fetcher    *Fetcher
	dispatcher *Dispatcher
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	studentIDs  []models.ID
	fetched     *FetchResult
	class       Classification
	fetchErr    error
	reps        *ReplacementMap
	dispatching bool
	closed      bool
	lastUsed    time.Time
}

func newSession(id string, studentIDs []models.ID, f *Fetcher, d *Dispatcher, now func() time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:         id,
		fetcher:    f,
		dispatcher: d,
		now:        now,
		ctx:        ctx,
		cancel:     cancel,
		studentIDs: studentIDs,
		reps:       NewReplacementMap(),
		lastUsed:   now(),
	}
}

// bind derives a context that ends when either the caller's ctx or the session ends.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) touch() {
	s.lastUsed = s.now()
}

// idleBefore reports whether the session was last used before cutoff. A
// session with a dispatch in flight is never idle.
func (s *Session) idleBefore(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.dispatching && s.lastUsed.Before(cutoff)
}

// Refresh re-fetches journeys and the directory and reclassifies. Choices for
// journeys that no longer need a decision are dropped.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.E(errors.NotFound, "session closed")
	}
	if s.dispatching {
		s.mu.Unlock()
		return errors.E(errors.Conflict, "a replacement is in progress; refresh when it finishes")
	}
	ids := s.studentIDs
	s.touch()
	s.mu.Unlock()

	ctx, done := s.bind(ctx)
	defer done()
	res, err := s.fetcher.Fetch(ctx, ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.E(errors.NotFound, "session closed")
	}
	if err != nil {
		s.fetchErr = err
		return err
	}
	s.fetchErr = nil
	s.fetched = res
	s.class = Classify(res.Students)
	s.reps.Retain(s.class.MultipleJourneyDetails)
	return nil
}

// SetReplacement records (or with an empty target clears) the choice for one journey.
func (s *Session) SetReplacement(key models.JourneyKey, to models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return err
	}
	s.touch()

	j, ok := s.class.MultipleJourney(key)
	if !ok {
		return errors.E(errors.ValidationFailed, fmt.Sprintf("journey %s is not part of this selection", key))
	}
	if to != "" {
		if to == j.CurrentCounsellorID {
			return errors.E(errors.ValidationFailed, fmt.Sprintf("journey %s is already assigned to %s", key, to))
		}
		if !s.fetched.DirectoryUnavailable && !inDirectory(s.fetched.Directory, to) {
			return errors.E(errors.ValidationFailed, fmt.Sprintf("counsellor %s is not an L3 counsellor", to))
		}
	}
	s.reps.Set(key, to)
	return nil
}

// ReplaceBulk runs the bulk single-journey replace and refreshes on success.
func (s *Session) ReplaceBulk(ctx context.Context, to models.ID) (*BulkResult, error) {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !s.fetched.DirectoryUnavailable && to != "" && !inDirectory(s.fetched.Directory, to) {
		s.mu.Unlock()
		return nil, errors.E(errors.ValidationFailed, fmt.Sprintf("counsellor %s is not an L3 counsellor", to))
	}
	class := s.class
	s.dispatching = true
	s.touch()
	s.mu.Unlock()

	ctx, done := s.bind(ctx)
	defer done()
	res, err := s.dispatcher.ReplaceBulk(ctx, class, to)

	s.mu.Lock()
	s.dispatching = false
	s.touch()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.refreshAfterDispatch(ctx)
	return res, nil
}

// ReplacePerJourney dispatches every pending choice. Succeeded choices leave the
// map so a retry only resubmits the remainder.
func (s *Session) ReplacePerJourney(ctx context.Context) (*PerJourneyResult, error) {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	journeys := s.class.MultipleJourneyDetails
	reps := s.reps.Entries()
	s.dispatching = true
	s.touch()
	s.mu.Unlock()

	ctx, done := s.bind(ctx)
	defer done()
	res, err := s.dispatcher.ReplacePerJourney(ctx, journeys, reps)

	s.mu.Lock()
	s.dispatching = false
	s.touch()
	if res != nil {
		for _, o := range res.Outcomes {
			if o.Succeeded {
				s.reps.Delete(o.Key)
			}
		}
	}
	s.mu.Unlock()

	if res != nil && res.RefreshRequired {
		s.refreshAfterDispatch(ctx)
	}
	return res, err
}

// refreshAfterDispatch reloads after a fully successful write. A failed reload
// leaves the session in fetch_failed for the caller to retry.
func (s *Session) refreshAfterDispatch(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		logger.Warn("session %s: refresh after replace failed: %v", s.ID, err)
	}
}

func (s *Session) usableLocked() error {
	if s.closed {
		return errors.E(errors.NotFound, "session closed")
	}
	if s.dispatching {
		return errors.E(errors.Conflict, "a replacement is already in progress for this session")
	}
	if s.fetched == nil {
		return errors.E(errors.FetchFailed, "journeys not loaded; refresh the session", s.fetchErr)
	}
	return nil
}

// Close cancels in-flight calls; later updates are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// JourneyRow is one row of the multiple-journey tab.
type JourneyRow struct {
	Journey    models.Journey `json:"journey"`
	SelectedTo models.ID      `json:"selected_to,omitempty"`
	TargetIDs  []models.ID    `json:"target_ids"`
}

// SessionView is the JSON snapshot returned to the console.
type SessionView struct {
	ID                   string              `json:"session_id"`
	Status               string              `json:"status"`
	FetchError           string              `json:"fetch_error,omitempty"`
	StudentIDs           []models.ID         `json:"student_ids"`
	Classification       *Classification     `json:"classification,omitempty"`
	Views                []View              `json:"views,omitempty"`
	Directory            []models.Counsellor `json:"directory"`
	DirectoryUnavailable bool                `json:"directory_unavailable"`
	BulkAvailable        bool                `json:"bulk_available"`
	BulkTargets          []models.Counsellor `json:"bulk_targets"`
	JourneyRows          []JourneyRow        `json:"journey_rows"`
	Replacements         []Replacement       `json:"replacements"`
	Dispatching          bool                `json:"dispatching"`
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		ID:           s.ID,
		Status:       StatusReady,
		StudentIDs:   s.studentIDs,
		Directory:    []models.Counsellor{},
		BulkTargets:  []models.Counsellor{},
		JourneyRows:  []JourneyRow{},
		Replacements: s.reps.Entries(),
		Dispatching:  s.dispatching,
	}
	switch {
	case s.closed:
		v.Status = StatusClosed
	case s.fetchErr != nil:
		v.Status = StatusFetchFailed
		v.FetchError = s.fetchErr.Error()
	}
	if s.fetched == nil {
		return v
	}

	class := s.class
	v.Classification = &class
	v.Views = class.Views()
	v.Directory = s.fetched.Directory
	v.DirectoryUnavailable = s.fetched.DirectoryUnavailable
	v.BulkAvailable = class.BulkAvailable()
	if class.UniformCurrentCounsellor != nil {
		v.BulkTargets = TargetOptions(s.fetched.Directory, class.UniformCurrentCounsellor.ID)
	}
	for _, j := range class.MultipleJourneyDetails {
		row := JourneyRow{Journey: j, TargetIDs: []models.ID{}}
		row.SelectedTo, _ = s.reps.Get(j.Key())
		for _, c := range TargetOptions(s.fetched.Directory, j.CurrentCounsellorID) {
			row.TargetIDs = append(row.TargetIDs, c.CounsellorID)
		}
		v.JourneyRows = append(v.JourneyRows, row)
	}
	return v
}

func inDirectory(dir []models.Counsellor, id models.ID) bool {
	for _, c := range dir {
		if c.CounsellorID == id {
			return true
		}
	}
	return false
}
