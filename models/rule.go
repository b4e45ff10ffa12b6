package models

// CourseConditions narrows an L3 rule to particular courses.
type CourseConditions struct {
	Stream         []string `json:"stream"`
	Degree         []string `json:"degree"`
	Specialization []string `json:"specialization"`
	Level          []string `json:"level"`
	CourseName     []string `json:"courseName"`
}

// L3Rule routes matching leads to a set of L3 counsellors (round-robin happens server-side).
type L3Rule struct {
	ID                    ID               `json:"l3_assignment_rulesets_id,omitempty"`
	CustomRuleName        string           `json:"custom_rule_name"`
	UniversityName        []string         `json:"university_name"`
	CourseConditions      CourseConditions `json:"course_conditions"`
	Source                []string         `json:"source"`
	AssignedCounsellorIDs []ID             `json:"assigned_counsellor_ids"`
	IsActive              bool             `json:"is_active"`
}

// ReconRule routes matching leads to universities.
type ReconRule struct {
	ID                      ID                     `json:"lead_assignment_rule_recon_id,omitempty"`
	CustomRuleName          string                 `json:"custom_rule_name"`
	Conditions              map[string]interface{} `json:"conditions"`
	AssignedUniversityNames []string               `json:"assigned_university_names"`
	IsActive                bool                   `json:"is_active"`
	Priority                int                    `json:"priority"`
}
