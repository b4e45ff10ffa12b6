package rules

import (
	"context"
	"strings"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
)

// Wildcard is the condition value meaning "match anything".
const Wildcard = "Any"

// Client is the part of the CRM API that stores assignment rules.
type Client interface {
	ListL3Rules(ctx context.Context) ([]models.L3Rule, error)
	CreateL3Rule(ctx context.Context, rule models.L3Rule) (models.L3Rule, error)
	UpdateL3Rule(ctx context.Context, id models.ID, rule models.L3Rule) (models.L3Rule, error)
	DeleteL3Rule(ctx context.Context, id models.ID) error
	ToggleL3Rule(ctx context.Context, id models.ID) error

	ListReconRules(ctx context.Context) ([]models.ReconRule, error)
	CreateReconRule(ctx context.Context, rule models.ReconRule) (models.ReconRule, error)
	UpdateReconRule(ctx context.Context, id models.ID, rule models.ReconRule) (models.ReconRule, error)
	DeleteReconRule(ctx context.Context, id models.ID) error
	SetReconRuleActive(ctx context.Context, id models.ID, active bool) error
}

// Service validates rule edits before they reach the CRM. Matching itself runs server-side.
type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

// Summary counts rules by state for the rule list header.
type Summary struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Total    int `json:"total"`
}

// L3RuleList is a list of L3 rules with its summary.
type L3RuleList struct {
	Rules   []models.L3Rule `json:"rules"`
	Summary Summary         `json:"summary"`
}

func (s *Service) ListL3(ctx context.Context) (*L3RuleList, error) {
	list, err := s.client.ListL3Rules(ctx)
	if err != nil {
		return nil, err
	}
	out := &L3RuleList{Rules: list}
	for _, r := range list {
		out.Summary.add(r.IsActive)
	}
	return out, nil
}

func (s *Service) CreateL3(ctx context.Context, rule models.L3Rule) (models.L3Rule, error) {
	if err := NormalizeL3(&rule); err != nil {
		return models.L3Rule{}, err
	}
	created, err := s.client.CreateL3Rule(ctx, rule)
	if err != nil {
		return models.L3Rule{}, err
	}
	logger.Info("Created L3 rule %q", rule.CustomRuleName)
	return created, nil
}

func (s *Service) UpdateL3(ctx context.Context, id models.ID, rule models.L3Rule) (models.L3Rule, error) {
	if id == "" {
		return models.L3Rule{}, errors.E(errors.ValidationFailed, "rule id is required")
	}
	if err := NormalizeL3(&rule); err != nil {
		return models.L3Rule{}, err
	}
	rule.ID = id
	return s.client.UpdateL3Rule(ctx, id, rule)
}

func (s *Service) DeleteL3(ctx context.Context, id models.ID) error {
	if id == "" {
		return errors.E(errors.ValidationFailed, "rule id is required")
	}
	return s.client.DeleteL3Rule(ctx, id)
}

func (s *Service) ToggleL3(ctx context.Context, id models.ID) error {
	if id == "" {
		return errors.E(errors.ValidationFailed, "rule id is required")
	}
	return s.client.ToggleL3Rule(ctx, id)
}

// ReconRuleList is a list of recon rules with its summary.
type ReconRuleList struct {
	Rules   []models.ReconRule `json:"rules"`
	Summary Summary            `json:"summary"`
}

func (s *Service) ListRecon(ctx context.Context) (*ReconRuleList, error) {
	list, err := s.client.ListReconRules(ctx)
	if err != nil {
		return nil, err
	}
	out := &ReconRuleList{Rules: list}
	for _, r := range list {
		out.Summary.add(r.IsActive)
	}
	return out, nil
}

func (s *Service) CreateRecon(ctx context.Context, rule models.ReconRule) (models.ReconRule, error) {
	if err := NormalizeRecon(&rule); err != nil {
		return models.ReconRule{}, err
	}
	created, err := s.client.CreateReconRule(ctx, rule)
	if err != nil {
		return models.ReconRule{}, err
	}
	logger.Info("Created recon rule %q", rule.CustomRuleName)
	return created, nil
}

func (s *Service) UpdateRecon(ctx context.Context, id models.ID, rule models.ReconRule) (models.ReconRule, error) {
	if id == "" {
		return models.ReconRule{}, errors.E(errors.ValidationFailed, "rule id is required")
	}
	if err := NormalizeRecon(&rule); err != nil {
		return models.ReconRule{}, err
	}
	rule.ID = id
	return s.client.UpdateReconRule(ctx, id, rule)
}

func (s *Service) DeleteRecon(ctx context.Context, id models.ID) error {
	if id == "" {
		return errors.E(errors.ValidationFailed, "rule id is required")
	}
	return s.client.DeleteReconRule(ctx, id)
}

func (s *Service) SetReconActive(ctx context.Context, id models.ID, active bool) error {
	if id == "" {
		return errors.E(errors.ValidationFailed, "rule id is required")
	}
	return s.client.SetReconRuleActive(ctx, id, active)
}

func (s *Summary) add(active bool) {
	s.Total++
	if active {
		s.Active++
	} else {
		s.Inactive++
	}
}

// NormalizeL3 trims the rule and checks it can be saved.
func NormalizeL3(rule *models.L3Rule) error {
	rule.CustomRuleName = strings.TrimSpace(rule.CustomRuleName)
	if rule.CustomRuleName == "" {
		return errors.E(errors.ValidationFailed, "rule name is required")
	}
	rule.AssignedCounsellorIDs = compactIDs(rule.AssignedCounsellorIDs)
	if len(rule.AssignedCounsellorIDs) == 0 {
		return errors.E(errors.ValidationFailed, "select at least one counsellor")
	}
	rule.UniversityName = compactStrings(rule.UniversityName)
	rule.Source = compactStrings(rule.Source)
	cc := &rule.CourseConditions
	cc.Stream = compactStrings(cc.Stream)
	cc.Degree = compactStrings(cc.Degree)
	cc.Specialization = compactStrings(cc.Specialization)
	cc.Level = compactStrings(cc.Level)
	cc.CourseName = compactStrings(cc.CourseName)
	return nil
}

// NormalizeRecon trims the rule, cleans its conditions and checks it can be saved.
func NormalizeRecon(rule *models.ReconRule) error {
	rule.CustomRuleName = strings.TrimSpace(rule.CustomRuleName)
	if rule.CustomRuleName == "" {
		return errors.E(errors.ValidationFailed, "rule name is required")
	}
	rule.AssignedUniversityNames = compactStrings(rule.AssignedUniversityNames)
	if len(rule.AssignedUniversityNames) == 0 {
		return errors.E(errors.ValidationFailed, "assign at least one university")
	}
	if rule.Priority < 0 {
		return errors.E(errors.ValidationFailed, "priority must not be negative")
	}
	rule.Conditions = CleanConditions(rule.Conditions)
	return nil
}

// CleanConditions drops empty values and the wildcard. A list holding only
// wildcards disappears; wildcards are removed from mixed lists; strings are trimmed.
func CleanConditions(conditions map[string]interface{}) map[string]interface{} {
	cleaned := make(map[string]interface{}, len(conditions))
	for key, value := range conditions {
		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" && s != Wildcard {
				cleaned[key] = s
			}
		case []string:
			if kept := withoutWildcard(v); len(kept) > 0 {
				cleaned[key] = kept
			}
		case []interface{}:
			kept := make([]interface{}, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && s == Wildcard {
					continue
				}
				kept = append(kept, item)
			}
			if len(kept) > 0 {
				cleaned[key] = kept
			}
		}
	}
	return cleaned
}

func withoutWildcard(values []string) []string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != Wildcard {
			kept = append(kept, v)
		}
	}
	return kept
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func compactIDs(ids []models.ID) []models.ID {
	out := make([]models.ID, 0, len(ids))
	seen := make(map[models.ID]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
