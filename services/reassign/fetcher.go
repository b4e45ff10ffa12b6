package reassign

import (
	"context"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
)

// JourneySource looks up the L3 journeys of a set of students.
type JourneySource interface {
	DistinctL3ByStudents(ctx context.Context, studentIDs []models.ID) (*models.JourneyLookup, error)
}

// Directory lists counsellors of one tier.
type Directory interface {
	ListCounsellors(ctx context.Context, tier models.CounsellorTier) ([]models.Counsellor, error)
}

// FetchResult is everything the reassignment screen needs after opening.
type FetchResult struct {
	Students             []models.StudentJourneys
	Directory            []models.Counsellor
	DirectoryUnavailable bool
	DirectoryError       string
}

type Fetcher struct {
	journeys  JourneySource
	directory Directory
}

func NewFetcher(journeys JourneySource, directory Directory) *Fetcher {
	return &Fetcher{journeys: journeys, directory: directory}
}

// Fetch loads the journeys of studentIDs and the L3 directory concurrently.
// A directory failure is reported in the result and never fails the fetch.
func (f *Fetcher) Fetch(ctx context.Context, studentIDs []models.ID) (*FetchResult, error) {
	ids := dedupeIDs(studentIDs)
	if len(ids) == 0 {
		return nil, errors.E(errors.ValidationFailed, "at least one student id is required")
	}

	var (
		mu     sync.Mutex
		lookup *models.JourneyLookup
		result = &FetchResult{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := f.journeys.DistinctL3ByStudents(gctx, ids)
		if err != nil {
			if !errors.IsKind(err, errors.FetchFailed) {
				err = errors.NewFetchFailedError("fetch journeys", err)
			}
			return err
		}
		mu.Lock()
		lookup = l
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		dir, err := f.directory.ListCounsellors(gctx, models.TierL3)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logger.Warn("L3 directory unavailable: %v", err)
			result.DirectoryUnavailable = true
			result.DirectoryError = err.Error()
			result.Directory = []models.Counsellor{}
			return nil
		}
		result.Directory = dir
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Students = orderStudents(ids, lookup.JourneysByStudent)
	return result, nil
}

// orderStudents lists students in request order. Requested students missing from
// the lookup have no journeys; unrequested ones the CRM returned follow, sorted.
func orderStudents(requested []models.ID, byStudent map[models.ID]models.StudentJourneys) []models.StudentJourneys {
	out := make([]models.StudentJourneys, 0, len(requested))
	seen := make(map[models.ID]bool, len(requested))
	for _, id := range requested {
		seen[id] = true
		sj, ok := byStudent[id]
		if !ok {
			sj = models.StudentJourneys{StudentID: id, Journeys: []models.Journey{}}
		}
		out = append(out, sj)
	}

	var extra []models.ID
	for id := range byStudent {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, id := range extra {
		out = append(out, byStudent[id])
	}
	return out
}

func dedupeIDs(ids []models.ID) []models.ID {
	seen := mapset.NewThreadUnsafeSet[models.ID]()
	out := make([]models.ID, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen.Contains(id) {
			continue
		}
		seen.Add(id)
		out = append(out, id)
	}
	return out
}
