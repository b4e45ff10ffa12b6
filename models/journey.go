package models

// Journey is one (student, course) enrollment with its current L3 counsellor.
type Journey struct {
	StudentID             ID     `json:"student_id"`
	CourseID              ID     `json:"course_id"`
	CurrentCounsellorID   ID     `json:"current_counsellor_id"`
	CurrentCounsellorName string `json:"current_counsellor_name"`
	UniversityName        string `json:"university_name"`
	CourseName            string `json:"course_name"`
	StudentJourneyCount   int    `json:"student_journey_count"`
}

// CurrentCounsellor returns the journey's current counsellor as a reference.
func (j Journey) CurrentCounsellor() CounsellorRef {
	return CounsellorRef{ID: j.CurrentCounsellorID, Name: j.CurrentCounsellorName}
}

// StudentJourneys groups the journeys of one student.
type StudentJourneys struct {
	StudentID    ID        `json:"student_id"`
	JourneyCount int       `json:"journey_count"`
	Journeys     []Journey `json:"journeys"`
}

// JourneyLookup is the CRM answer for a set of students. HasMultipleJourneys
// reports whether any student has more than one journey.
type JourneyLookup struct {
	JourneysByStudent   map[ID]StudentJourneys `json:"journeysByStudent"`
	HasMultipleJourneys bool                   `json:"hasMultipleJourneys"`
}

// Key identifies a journey by student and course.
func (j Journey) Key() JourneyKey {
	return JourneyKey{StudentID: j.StudentID, CourseID: j.CourseID}
}

// JourneyKey is the composite (student, course) key of a journey.
type JourneyKey struct {
	StudentID ID `json:"student_id"`
	CourseID  ID `json:"course_id"`
}

func (k JourneyKey) String() string {
	return k.StudentID.String() + "/" + k.CourseID.String()
}

// Less orders keys by student then course.
func (k JourneyKey) Less(o JourneyKey) bool {
	if k.StudentID != o.StudentID {
		return k.StudentID < o.StudentID
	}
	return k.CourseID < o.CourseID
}
