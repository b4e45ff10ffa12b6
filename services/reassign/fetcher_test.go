package reassign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counsellor-console/errors"
	"counsellor-console/models"
)

func TestFetch(t *testing.T) {
	t.Run("keeps request order and dedupes", func(t *testing.T) {
		f := newFakeCRM()
		f.addStudent("S2", journey("K1", "C1"))
		f.addStudent("S1", journey("K1", "C1"), journey("K2", "C2"))

		res, err := NewFetcher(f, f).Fetch(context.Background(), []models.ID{"S2", "S1", "S2", "S3", ""})
		require.NoError(t, err)

		var got []models.ID
		for _, s := range res.Students {
			got = append(got, s.StudentID)
		}
		assert.Equal(t, []models.ID{"S2", "S1", "S3"}, got)
		assert.Equal(t, 0, res.Students[2].JourneyCount, "unknown student has no journeys")
		assert.Len(t, res.Directory, 3)
		assert.False(t, res.DirectoryUnavailable)
	})

	t.Run("directory failure does not block", func(t *testing.T) {
		f := newFakeCRM()
		f.addStudent("S1", journey("K1", "C1"))
		f.dirErr = errors.E(errors.FetchFailed, "list counsellors")

		res, err := NewFetcher(f, f).Fetch(context.Background(), []models.ID{"S1"})
		require.NoError(t, err)
		assert.True(t, res.DirectoryUnavailable)
		assert.NotEmpty(t, res.DirectoryError)
		assert.NotNil(t, res.Directory)
		assert.Empty(t, res.Directory)
		assert.Len(t, res.Students, 1)
	})

	t.Run("journey failure is FetchFailed", func(t *testing.T) {
		f := newFakeCRM()
		f.lookupErr = context.DeadlineExceeded

		_, err := NewFetcher(f, f).Fetch(context.Background(), []models.ID{"S1"})
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.FetchFailed))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("no students is a validation failure", func(t *testing.T) {
		f := newFakeCRM()
		_, err := NewFetcher(f, f).Fetch(context.Background(), []models.ID{"", ""})
		assert.True(t, errors.IsKind(err, errors.ValidationFailed))
	})
}

func TestOrderStudentsAppendsUnrequestedSorted(t *testing.T) {
	by := map[models.ID]models.StudentJourneys{
		"S1": {StudentID: "S1"},
		"Z9": {StudentID: "Z9"},
		"A0": {StudentID: "A0"},
	}
	out := orderStudents([]models.ID{"S1"}, by)
	require.Len(t, out, 3)
	assert.Equal(t, models.ID("A0"), out[1].StudentID)
	assert.Equal(t, models.ID("Z9"), out[2].StudentID)
}
