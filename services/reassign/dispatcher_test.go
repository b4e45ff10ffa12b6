package reassign

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counsellor-console/errors"
	"counsellor-console/models"
	"counsellor-console/services/crm"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestDispatcher(f *fakeCRM, rec Recorder, concurrency int) *Dispatcher {
	n := 0
	return NewDispatcher(Deps{
		Replacer:    f,
		Recorder:    rec,
		Concurrency: concurrency,
		Now:         func() time.Time { return fixedNow },
		NewBatchID: func() string {
			n++
			return fmt.Sprintf("batch-%d", n)
		},
	})
}

func TestReplaceBulk(t *testing.T) {
	t.Run("builds the request from the uniform counsellor", func(t *testing.T) {
		f := newFakeCRM()
		f.bulkUpdated = 2
		f.addStudent("S1", journey("K1", "C1"))
		f.addStudent("S2", journey("K2", "C1"))
		rec := &recordingRecorder{}
		d := newTestDispatcher(f, rec, 1)

		res, err := d.ReplaceBulk(context.Background(), Classify(students(f, "S1", "S2")), "C2")
		require.NoError(t, err)

		want := crm.ReplaceStudentsRequest{
			StudentIDs:       []models.ID{"S1", "S2"},
			FromCounsellorID: "C1",
			ToCounsellorID:   "C2",
		}
		require.Len(t, f.bulkCalls, 1)
		assert.Equal(t, want, f.bulkCalls[0])
		assert.Equal(t, 2, res.RecordsUpdated)
		assert.True(t, res.RefreshRequired)

		attempts := rec.all()
		require.Len(t, attempts, 1)
		assert.Equal(t, ModeBulk, attempts[0].Mode)
		assert.Equal(t, fixedNow, attempts[0].At)
	})

	tests := []struct {
		name     string
		setup    func(f *fakeCRM) []models.ID
		to       models.ID
		wantKind errors.Kind
	}{
		{
			name: "ambiguous source",
			setup: func(f *fakeCRM) []models.ID {
				f.addStudent("S1", journey("K1", "C1"))
				f.addStudent("S2", journey("K1", "C3"))
				return []models.ID{"S1", "S2"}
			},
			to:       "C2",
			wantKind: errors.AmbiguousSource,
		},
		{
			name: "no target",
			setup: func(f *fakeCRM) []models.ID {
				f.addStudent("S1", journey("K1", "C1"))
				return []models.ID{"S1"}
			},
			wantKind: errors.ValidationFailed,
		},
		{
			name: "no single-journey students",
			setup: func(f *fakeCRM) []models.ID {
				f.addStudent("S1", journey("K1", "C1"), journey("K2", "C1"))
				return []models.ID{"S1"}
			},
			to:       "C2",
			wantKind: errors.ValidationFailed,
		},
		{
			name: "target is the current counsellor",
			setup: func(f *fakeCRM) []models.ID {
				f.addStudent("S1", journey("K1", "C1"))
				return []models.ID{"S1"}
			},
			to:       "C1",
			wantKind: errors.ValidationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeCRM()
			ids := tt.setup(f)
			d := newTestDispatcher(f, nil, 1)

			_, err := d.ReplaceBulk(context.Background(), Classify(students(f, ids...)), tt.to)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errors.KindOf(err))
			assert.Empty(t, f.bulkCalls, "no network call on validation failure")
		})
	}

	t.Run("remote failure is returned", func(t *testing.T) {
		f := newFakeCRM()
		f.bulkErr = errors.E(errors.WriteFailed, "replace l3 for students")
		f.addStudent("S1", journey("K1", "C1"))
		d := newTestDispatcher(f, nil, 1)

		_, err := d.ReplaceBulk(context.Background(), Classify(students(f, "S1")), "C2")
		assert.True(t, errors.IsKind(err, errors.WriteFailed))
	})
}

// twoByTwo seeds two students with two journeys each.
func twoByTwo() (*fakeCRM, Classification) {
	f := newFakeCRM()
	f.addStudent("S1", journey("K1", "C1"), journey("K2", "C1"))
	f.addStudent("S2", journey("K1", "C2"), journey("K3", "C3"))
	return f, Classify(students(f, "S1", "S2"))
}

func threeChoices() []Replacement {
	m := NewReplacementMap()
	m.Set(models.JourneyKey{StudentID: "S1", CourseID: "K1"}, "C2")
	m.Set(models.JourneyKey{StudentID: "S1", CourseID: "K2"}, "C3")
	m.Set(models.JourneyKey{StudentID: "S2", CourseID: "K3"}, "C1")
	return m.Entries()
}

func TestReplacePerJourney(t *testing.T) {
	t.Run("one call per chosen journey", func(t *testing.T) {
		f, c := twoByTwo()
		require.Len(t, c.MultipleJourneyDetails, 4)
		d := newTestDispatcher(f, nil, 1)

		res, err := d.ReplacePerJourney(context.Background(), c.MultipleJourneyDetails, threeChoices())
		require.NoError(t, err)
		assert.Len(t, f.journeyCalls, 3)
		assert.Equal(t, 3, res.Attempted)
		assert.Equal(t, 3, res.Succeeded)
		assert.True(t, res.RefreshRequired)
		assert.Equal(t, crm.ReplaceJourneyRequest{StudentID: "S1", CourseID: "K1", ToCounsellorID: "C2"}, f.journeyCalls[0])
	})

	t.Run("partial failure keeps counts and skips refresh", func(t *testing.T) {
		f, c := twoByTwo()
		failing := models.JourneyKey{StudentID: "S1", CourseID: "K2"}
		f.failJourney[failing] = errors.E(errors.WriteFailed, "journey locked")
		rec := &recordingRecorder{}
		d := newTestDispatcher(f, rec, 1)

		res, err := d.ReplacePerJourney(context.Background(), c.MultipleJourneyDetails, threeChoices())
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.PartialFailure))
		require.NotNil(t, res)
		assert.Equal(t, 3, res.Attempted)
		assert.Equal(t, 2, res.Succeeded)
		assert.False(t, res.RefreshRequired)
		assert.False(t, res.Outcomes[1].Succeeded)
		assert.Contains(t, res.Outcomes[1].Error, "journey locked")

		attempts := rec.all()
		require.Len(t, attempts, 3)
		assert.Equal(t, models.ID("C1"), attempts[1].FromCounsellor)
		assert.Error(t, attempts[1].Err)
	})

	t.Run("empty choices are rejected before any call", func(t *testing.T) {
		f, c := twoByTwo()
		d := newTestDispatcher(f, nil, 1)

		_, err := d.ReplacePerJourney(context.Background(), c.MultipleJourneyDetails, nil)
		assert.True(t, errors.IsKind(err, errors.ValidationFailed))
		assert.Empty(t, f.journeyCalls)
	})

	t.Run("no-op target is rejected before any call", func(t *testing.T) {
		f, c := twoByTwo()
		d := newTestDispatcher(f, nil, 1)
		reps := append(threeChoices(), Replacement{Key: models.JourneyKey{StudentID: "S2", CourseID: "K1"}, ToCounsellorID: "C2"})

		_, err := d.ReplacePerJourney(context.Background(), c.MultipleJourneyDetails, reps)
		assert.True(t, errors.IsKind(err, errors.ValidationFailed))
		assert.Empty(t, f.journeyCalls)
	})

	t.Run("unknown journey is rejected", func(t *testing.T) {
		f, c := twoByTwo()
		d := newTestDispatcher(f, nil, 1)
		reps := []Replacement{{Key: models.JourneyKey{StudentID: "S9", CourseID: "K1"}, ToCounsellorID: "C2"}}

		_, err := d.ReplacePerJourney(context.Background(), c.MultipleJourneyDetails, reps)
		assert.True(t, errors.IsKind(err, errors.ValidationFailed))
	})

	t.Run("bounded fan-out keeps aggregation", func(t *testing.T) {
		f, c := twoByTwo()
		f.failJourney[models.JourneyKey{StudentID: "S2", CourseID: "K3"}] = errors.E(errors.WriteFailed, "nope")
		d := newTestDispatcher(f, &recordingRecorder{}, 4)

		res, err := d.ReplacePerJourney(context.Background(), c.MultipleJourneyDetails, threeChoices())
		assert.True(t, errors.IsKind(err, errors.PartialFailure))
		assert.Equal(t, 3, f.journeyCallCount())
		assert.Equal(t, 2, res.Succeeded)
		// outcomes keep the sorted choice order whatever the completion order
		assert.Equal(t, models.JourneyKey{StudentID: "S2", CourseID: "K3"}, res.Outcomes[2].Key)
		assert.False(t, res.Outcomes[2].Succeeded)
	})

	t.Run("cancelled context stops remaining calls", func(t *testing.T) {
		f, c := twoByTwo()
		d := newTestDispatcher(f, nil, 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := d.ReplacePerJourney(ctx, c.MultipleJourneyDetails, threeChoices())
		assert.True(t, errors.IsKind(err, errors.PartialFailure))
		assert.Equal(t, 0, res.Succeeded)
		assert.Empty(t, f.journeyCalls)
	})
}

func TestMultiRecorderFansOut(t *testing.T) {
	a, b := &recordingRecorder{}, &recordingRecorder{}
	m := MultiRecorder{a, nil, b}

	m.Record(context.Background(), Attempt{BatchID: "b1", ToCounsellor: "C2"})

	require.Len(t, a.all(), 1)
	require.Len(t, b.all(), 1)
	assert.Equal(t, "b1", b.all()[0].BatchID)
}
