package reassign

import (
	"sort"

	"counsellor-console/models"
)

// Replacement is one pending per-journey choice.
type Replacement struct {
	Key            models.JourneyKey `json:"key"`
	ToCounsellorID models.ID         `json:"to_counsellor_id"`
}

// ReplacementMap holds the target counsellor chosen for each journey.
// It is not safe for concurrent use; a Session owns it.
type ReplacementMap struct {
	entries map[models.JourneyKey]models.ID
}

func NewReplacementMap() *ReplacementMap {
	return &ReplacementMap{entries: make(map[models.JourneyKey]models.ID)}
}

// Set records a choice. An empty target clears it.
func (m *ReplacementMap) Set(key models.JourneyKey, to models.ID) {
	if to == "" {
		delete(m.entries, key)
		return
	}
	m.entries[key] = to
}

func (m *ReplacementMap) Get(key models.JourneyKey) (models.ID, bool) {
	to, ok := m.entries[key]
	return to, ok
}

func (m *ReplacementMap) Delete(key models.JourneyKey) {
	delete(m.entries, key)
}

func (m *ReplacementMap) Len() int {
	return len(m.entries)
}

// Entries returns the choices ordered by student then course.
func (m *ReplacementMap) Entries() []Replacement {
	out := make([]Replacement, 0, len(m.entries))
	for k, to := range m.entries {
		out = append(out, Replacement{Key: k, ToCounsellorID: to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// Retain drops choices whose journey is not in keep.
func (m *ReplacementMap) Retain(keep []models.Journey) {
	valid := make(map[models.JourneyKey]bool, len(keep))
	for _, j := range keep {
		valid[j.Key()] = true
	}
	for k := range m.entries {
		if !valid[k] {
			delete(m.entries, k)
		}
	}
}
