package models

import (
	"fmt"
	"strings"
)

// CounsellorTier tags which support tier a counsellor belongs to.
type CounsellorTier int

const (
	// TierL2 handles general lead contact.
	TierL2 CounsellorTier = iota + 1
	// TierL3 handles course and university specific follow-up.
	TierL3
)

// ParseTier accepts "l2"/"l3" in any case.
func ParseTier(s string) (CounsellorTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2":
		return TierL2, nil
	case "l3":
		return TierL3, nil
	default:
		return 0, fmt.Errorf("unknown counsellor tier %q (want l2 or l3)", s)
	}
}

// Role is the value the CRM API expects in the role query parameter.
func (t CounsellorTier) Role() string {
	switch t {
	case TierL2:
		return "l2"
	case TierL3:
		return "l3"
	default:
		panic(fmt.Sprintf("models: invalid counsellor tier %d", int(t)))
	}
}

func (t CounsellorTier) String() string {
	switch t {
	case TierL2:
		return "L2"
	case TierL3:
		return "L3"
	default:
		return "unknown"
	}
}

func (t CounsellorTier) MarshalText() ([]byte, error) {
	switch t {
	case TierL2, TierL3:
		return []byte(t.Role()), nil
	default:
		return nil, fmt.Errorf("invalid counsellor tier %d", int(t))
	}
}

func (t *CounsellorTier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Counsellor is an entry of the counsellor directory.
type Counsellor struct {
	CounsellorID    ID             `json:"counsellor_id"`
	CounsellorName  string         `json:"counsellor_name"`
	CounsellorEmail string         `json:"counsellor_email"`
	Tier            CounsellorTier `json:"tier,omitempty"`
}

// CounsellorRef names a counsellor without directory details.
type CounsellorRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// MatchesSearch reports whether the name or email contains term, ignoring case.
func (c Counsellor) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.CounsellorName), term) ||
		strings.Contains(strings.ToLower(c.CounsellorEmail), term)
}

// FilterCounsellors keeps the counsellors matching term, preserving order.
func FilterCounsellors(all []Counsellor, term string) []Counsellor {
	out := make([]Counsellor, 0, len(all))
	for _, c := range all {
		if c.MatchesSearch(term) {
			out = append(out, c)
		}
	}
	return out
}
