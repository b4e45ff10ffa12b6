package utils

import (
	"strings"

	"counsellor-console/logger"
	"counsellor-console/models"
)

// NormalizeLead trims whitespace and lower-cases the email.
func NormalizeLead(lead *models.Lead) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))
	lead.Phone = strings.TrimSpace(lead.Phone)
	lead.Source = strings.TrimSpace(lead.Source)
	lead.ReferenceValue = strings.TrimSpace(lead.ReferenceValue)
	lead.OtherSource = strings.TrimSpace(lead.OtherSource)
}

// ValidateLead validates all lead fields and returns the first problem found
func ValidateLead(lead *models.Lead) error {
	if err := ValidateName(lead.Name); err != nil {
		return err
	}
	if err := ValidateEmail(lead.Email); err != nil {
		return err
	}
	if err := ValidatePhone(lead.Phone); err != nil {
		return err
	}
	return ValidateLeadSource(lead.Source, lead.OtherSource)
}

// BuildDirectStudentRequest maps a lead onto the CRM payload.
// student_ref keeps the reference value, other sends the chosen source with
// referenceFrom "other", counsellor_ref is sent as is.
func BuildDirectStudentRequest(lead models.Lead) models.DirectStudentRequest {
	req := models.DirectStudentRequest{
		Name:            lead.Name,
		Email:           lead.Email,
		PhoneNumber:     lead.Phone,
		CounsellorID:    lead.CounsellorID,
		PreferredDegree: lead.PreferredDegree,
	}
	switch lead.Source {
	case SourceStudentRef:
		req.Source = SourceStudentRef
		req.ReferenceFrom = lead.ReferenceValue
	case SourceOther:
		req.Source = lead.OtherSource
		req.ReferenceFrom = ReferenceOther
	default:
		req.Source = lead.Source
	}
	return req
}

// DeduplicateLeads removes duplicate leads within the same list based on email+phone combination
func DeduplicateLeads(leads []models.Lead) []models.Lead {
	seen := make(map[string]bool)
	unique := []models.Lead{}

	for _, lead := range leads {
		key := strings.ToLower(lead.Email) + "|" + lead.Phone
		if !seen[key] {
			seen[key] = true
			unique = append(unique, lead)
		}
	}

	if len(unique) < len(leads) {
		logger.Info("Removed %d duplicate leads from collection", len(leads)-len(unique))
	}

	return unique
}
