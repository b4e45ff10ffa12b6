package reassign

import (
	mapset "github.com/deckarep/golang-set/v2"

	"counsellor-console/models"
)

// View names a tab of the reassignment screen.
type View string

const (
	ViewSingle   View = "single"
	ViewMultiple View = "multiple"
)

// Classification partitions the selected students by how many journeys they have.
// Students with no journey land in Unassigned and in neither partition.
type Classification struct {
	SingleJourneyStudentIDs   []models.ID           `json:"single_journey_student_ids"`
	MultipleJourneyStudentIDs []models.ID           `json:"multiple_journey_student_ids"`
	UnassignedStudentIDs      []models.ID           `json:"unassigned_student_ids"`
	SingleJourneyDetails      []models.Journey      `json:"single_journey_details"`
	MultipleJourneyDetails    []models.Journey      `json:"multiple_journey_details"`
	UniformCurrentCounsellor  *models.CounsellorRef `json:"uniform_current_counsellor"`
	DefaultView               View                  `json:"default_view"`
}

// Classify is pure: the same ordered input always yields the same result.
func Classify(students []models.StudentJourneys) Classification {
	c := Classification{
		SingleJourneyStudentIDs:   []models.ID{},
		MultipleJourneyStudentIDs: []models.ID{},
		UnassignedStudentIDs:      []models.ID{},
		SingleJourneyDetails:      []models.Journey{},
		MultipleJourneyDetails:    []models.Journey{},
	}

	for _, s := range students {
		switch {
		case s.JourneyCount <= 0 || len(s.Journeys) == 0:
			c.UnassignedStudentIDs = append(c.UnassignedStudentIDs, s.StudentID)
		case s.JourneyCount == 1:
			c.SingleJourneyStudentIDs = append(c.SingleJourneyStudentIDs, s.StudentID)
			c.SingleJourneyDetails = append(c.SingleJourneyDetails, s.Journeys[0])
		default:
			c.MultipleJourneyStudentIDs = append(c.MultipleJourneyStudentIDs, s.StudentID)
			c.MultipleJourneyDetails = append(c.MultipleJourneyDetails, s.Journeys...)
		}
	}

	if len(c.SingleJourneyDetails) > 0 {
		current := mapset.NewThreadUnsafeSet[models.ID]()
		for _, j := range c.SingleJourneyDetails {
			current.Add(j.CurrentCounsellorID)
		}
		if current.Cardinality() == 1 {
			ref := c.SingleJourneyDetails[0].CurrentCounsellor()
			c.UniformCurrentCounsellor = &ref
		}
	}

	c.DefaultView = ViewMultiple
	if len(c.SingleJourneyStudentIDs) > 0 {
		c.DefaultView = ViewSingle
	}
	return c
}

// Views lists the tabs worth showing, default first.
func (c Classification) Views() []View {
	var views []View
	if len(c.SingleJourneyStudentIDs) > 0 {
		views = append(views, ViewSingle)
	}
	if len(c.MultipleJourneyStudentIDs) > 0 {
		views = append(views, ViewMultiple)
	}
	return views
}

// BulkAvailable reports whether a bulk replace can be built from this classification.
func (c Classification) BulkAvailable() bool {
	return len(c.SingleJourneyStudentIDs) > 0 && c.UniformCurrentCounsellor != nil
}

// MultipleJourney finds a journey of the multiple partition by key.
func (c Classification) MultipleJourney(key models.JourneyKey) (models.Journey, bool) {
	for _, j := range c.MultipleJourneyDetails {
		if j.Key() == key {
			return j, true
		}
	}
	return models.Journey{}, false
}

// TargetOptions is the directory minus the journey's current counsellor,
// so a no-op replacement cannot be offered.
func TargetOptions(directory []models.Counsellor, current models.ID) []models.Counsellor {
	out := make([]models.Counsellor, 0, len(directory))
	for _, c := range directory {
		if c.CounsellorID != current {
			out = append(out, c)
		}
	}
	return out
}
