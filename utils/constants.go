package utils

// Lead source types offered by the add-lead form
const (
	SourceStudentRef    = "student_ref"
	SourceCounsellorRef = "counsellor_ref"
	SourceOther         = "other"
)

// ReferenceOther is sent as referenceFrom when the lead came from an "other" source.
const ReferenceOther = "other"

// Date format used by every report filter
const DateLayout = "2006-01-02"
