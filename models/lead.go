package models

// Lead represents a student lead submitted from the console
type Lead struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Source          string   `json:"source"`
	ReferenceValue  string   `json:"reference_value,omitempty"`
	OtherSource     string   `json:"other_source,omitempty"`
	CounsellorID    ID       `json:"counsellor_id,omitempty"`
	PreferredDegree []string `json:"preferred_degree,omitempty"`
}

// DirectStudentRequest is the body the CRM API expects when a lead is added directly.
type DirectStudentRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	PhoneNumber     string   `json:"phoneNumber"`
	Source          string   `json:"source"`
	ReferenceFrom   string   `json:"referenceFrom,omitempty"`
	CounsellorID    ID       `json:"counselloridFe,omitempty"`
	PreferredDegree []string `json:"preferred_degree,omitempty"`
}

// DirectStudentResult is returned by the CRM API for a created student.
type DirectStudentResult struct {
	StudentID ID `json:"studentId"`
}

// FilterOptions are the lead attribute values the CRM offers for dropdowns.
type FilterOptions struct {
	Source      []string `json:"source"`
	Mode        []string `json:"mode"`
	UTMCampaign []string `json:"utm_campaign"`
}

// UniversityCourseOptions backs the university/course dropdowns of rule editors.
type UniversityCourseOptions struct {
	Universities    []string `json:"universities"`
	Streams         []string `json:"streams"`
	Degrees         []string `json:"degrees"`
	Specializations []string `json:"specializations"`
	Levels          []string `json:"levels"`
	Courses         []string `json:"courses"`
	Cities          []string `json:"cities"`
	States          []string `json:"states"`
}
