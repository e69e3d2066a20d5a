package domain

import "time"

type PreferencePolarity string

const (
	PolarityPrefers PreferencePolarity = "prefers"
	PolarityAvoids  PreferencePolarity = "avoids"
)

// Preference (souhait) is a soft, weighted signal from a supervisor
// about a specific session or a time window. It never becomes a hard
// constraint: the engine may violate it at a score cost.
type Preference struct {
	ID           int64              `json:"id"`
	SupervisorID int64              `json:"supervisorID"`
	SessionID    int64              `json:"sessionID"` // 0 when the preference targets a time window instead
	Window       *TimeWindow        `json:"window,omitempty"`
	Polarity     PreferencePolarity `json:"polarity"`
	Weight       float64            `json:"weight"`
	CreatedAt    time.Time          `json:"createdAt"`
	Version      int32              `json:"-"`
}

// AppliesTo reports whether the preference targets the given session,
// either by identifier or by an overlapping time window.
func (p *Preference) AppliesTo(s *Session) bool {
	if p.SessionID != 0 {
		return p.SessionID == s.ID
	}
	if p.Window != nil {
		return p.Window.Overlaps(s.Window())
	}
	return false
}

// SignedWeight is the score contribution of honoring this preference:
// positive for "prefers", negative for "avoids".
func (p *Preference) SignedWeight() float64 {
	if p.Polarity == PolarityAvoids {
		return -p.Weight
	}
	return p.Weight
}
