package reassign

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"counsellor-console/errors"
	"counsellor-console/models"
	"counsellor-console/services/crm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeCRM serves journeys, the directory and replacement writes from memory.
type fakeCRM struct {
	mu sync.Mutex

	byStudent map[models.ID]models.StudentJourneys
	lookupErr error
	directory []models.Counsellor
	dirErr    error

	bulkCalls    []crm.ReplaceStudentsRequest
	bulkUpdated  int
	bulkErr      error
	journeyCalls []crm.ReplaceJourneyRequest
	failJourney  map[models.JourneyKey]error
	// block, when set, makes ReplaceForJourney wait for ctx to end.
	block   bool
	started chan struct{}
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		byStudent:   map[models.ID]models.StudentJourneys{},
		failJourney: map[models.JourneyKey]error{},
		directory: []models.Counsellor{
			{CounsellorID: "C1", CounsellorName: "One", Tier: models.TierL3},
			{CounsellorID: "C2", CounsellorName: "Two", Tier: models.TierL3},
			{CounsellorID: "C3", CounsellorName: "Three", Tier: models.TierL3},
		},
	}
}

func (f *fakeCRM) addStudent(id models.ID, journeys ...models.Journey) {
	for i := range journeys {
		journeys[i].StudentID = id
		journeys[i].StudentJourneyCount = len(journeys)
	}
	if journeys == nil {
		journeys = []models.Journey{}
	}
	f.byStudent[id] = models.StudentJourneys{StudentID: id, JourneyCount: len(journeys), Journeys: journeys}
}

func journey(course, counsellor models.ID) models.Journey {
	return models.Journey{CourseID: course, CurrentCounsellorID: counsellor, CurrentCounsellorName: "name-" + counsellor.String()}
}

func (f *fakeCRM) DistinctL3ByStudents(ctx context.Context, ids []models.ID) (*models.JourneyLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	out := &models.JourneyLookup{JourneysByStudent: map[models.ID]models.StudentJourneys{}}
	for _, id := range ids {
		if sj, ok := f.byStudent[id]; ok {
			out.JourneysByStudent[id] = sj
		}
	}
	return out, nil
}

func (f *fakeCRM) ListCounsellors(ctx context.Context, tier models.CounsellorTier) ([]models.Counsellor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dirErr != nil {
		return nil, f.dirErr
	}
	return append([]models.Counsellor(nil), f.directory...), nil
}

func (f *fakeCRM) ReplaceForStudents(ctx context.Context, req crm.ReplaceStudentsRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, req)
	if f.bulkErr != nil {
		return 0, f.bulkErr
	}
	for _, id := range req.StudentIDs {
		f.moveLocked(id, "", req.ToCounsellorID)
	}
	return f.bulkUpdated, nil
}

func (f *fakeCRM) ReplaceForJourney(ctx context.Context, req crm.ReplaceJourneyRequest) error {
	f.mu.Lock()
	f.journeyCalls = append(f.journeyCalls, req)
	block, started := f.block, f.started
	f.mu.Unlock()

	if block {
		if started != nil {
			close(started)
		}
		<-ctx.Done()
		return errors.E(errors.WriteFailed, "replace l3 for journey", ctx.Err())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := models.JourneyKey{StudentID: req.StudentID, CourseID: req.CourseID}
	if err := f.failJourney[key]; err != nil {
		return err
	}
	f.moveLocked(req.StudentID, req.CourseID, req.ToCounsellorID)
	return nil
}

// moveLocked reassigns one journey, or every journey of the student when course is empty.
func (f *fakeCRM) moveLocked(student, course, to models.ID) {
	sj, ok := f.byStudent[student]
	if !ok {
		return
	}
	for i := range sj.Journeys {
		if course == "" || sj.Journeys[i].CourseID == course {
			sj.Journeys[i].CurrentCounsellorID = to
			sj.Journeys[i].CurrentCounsellorName = "name-" + to.String()
		}
	}
	f.byStudent[student] = sj
}

func (f *fakeCRM) journeyCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.journeyCalls)
}

type recordingRecorder struct {
	mu       sync.Mutex
	attempts []Attempt
}

func (r *recordingRecorder) Record(_ context.Context, a Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func (r *recordingRecorder) all() []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Attempt(nil), r.attempts...)
}
