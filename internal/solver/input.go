package solver

import (
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

// ValidationError reports malformed or inconsistent engine input. It is
// returned before any search starts and is never retried internally.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NormalizedInput is the deterministic view of one optimization problem:
// sessions sorted by start time (ties by ID), supervisors sorted by ID.
// Prior loads are the fairness counters accumulated by previous runs;
// they are explicit input, the engine keeps no state between runs.
type NormalizedInput struct {
	Sessions    []*domain.Session
	Supervisors []*domain.Supervisor
	Preferences []*domain.Preference
	PriorLoads  map[int64]domain.FairnessCounter
}

// NewInput validates already-typed records and produces a NormalizedInput.
func NewInput(
	sessions []*domain.Session,
	supervisors []*domain.Supervisor,
	preferences []*domain.Preference,
	priorLoads map[int64]domain.FairnessCounter,
) (*NormalizedInput, error) {
	sessionIDs := make(map[int64]bool, len(sessions))
	for _, s := range sessions {
		if sessionIDs[s.ID] {
			return nil, validationErrorf("session %d déclarée deux fois", s.ID)
		}
		sessionIDs[s.ID] = true

		if !s.End.After(s.Start) {
			return nil, validationErrorf("session %d: l'heure de fin doit être après l'heure de début", s.ID)
		}
		if len(s.Rooms) == 0 {
			return nil, validationErrorf("session %d: aucune salle déclarée", s.ID)
		}
		seenRooms := make(map[string]bool, len(s.Rooms))
		for _, room := range s.Rooms {
			if room == "" {
				return nil, validationErrorf("session %d: code de salle vide", s.ID)
			}
			if seenRooms[room] {
				return nil, validationErrorf("session %d: salle %s déclarée deux fois", s.ID, room)
			}
			seenRooms[room] = true
		}
		if s.MinSupervisors < 0 {
			return nil, validationErrorf("session %d: minimum de surveillants négatif", s.ID)
		}
	}

	supervisorIDs := make(map[int64]bool, len(supervisors))
	for _, sup := range supervisors {
		if supervisorIDs[sup.ID] {
			return nil, validationErrorf("surveillant %d déclaré deux fois", sup.ID)
		}
		supervisorIDs[sup.ID] = true

		for _, w := range sup.Unavailable {
			if !w.IsValid() {
				return nil, validationErrorf("surveillant %d: fenêtre d'indisponibilité mal formée", sup.ID)
			}
		}
		if sup.MaxSessions < 0 {
			return nil, validationErrorf("surveillant %d: quota négatif", sup.ID)
		}
	}

	for _, p := range preferences {
		if !supervisorIDs[p.SupervisorID] {
			return nil, validationErrorf("souhait %d: surveillant %d inconnu", p.ID, p.SupervisorID)
		}
		if p.SessionID != 0 && !sessionIDs[p.SessionID] {
			return nil, validationErrorf("souhait %d: session %d inconnue", p.ID, p.SessionID)
		}
		if p.SessionID == 0 && p.Window == nil {
			return nil, validationErrorf("souhait %d: ni session ni fenêtre horaire", p.ID)
		}
		if p.Window != nil && !p.Window.IsValid() {
			return nil, validationErrorf("souhait %d: fenêtre horaire mal formée", p.ID)
		}
		if p.Polarity != domain.PolarityPrefers && p.Polarity != domain.PolarityAvoids {
			return nil, validationErrorf("souhait %d: polarité %q invalide", p.ID, p.Polarity)
		}
		if p.Weight < 0 {
			return nil, validationErrorf("souhait %d: poids négatif", p.ID)
		}
	}

	for id := range priorLoads {
		if !supervisorIDs[id] {
			return nil, validationErrorf("compteur d'équité: surveillant %d inconnu", id)
		}
	}

	input := &NormalizedInput{
		Sessions:    make([]*domain.Session, len(sessions)),
		Supervisors: make([]*domain.Supervisor, len(supervisors)),
		Preferences: preferences,
		PriorLoads:  priorLoads,
	}
	if input.PriorLoads == nil {
		input.PriorLoads = make(map[int64]domain.FairnessCounter)
	}
	copy(input.Sessions, sessions)
	copy(input.Supervisors, supervisors)

	sort.SliceStable(input.Sessions, func(i, j int) bool {
		if !input.Sessions[i].Start.Equal(input.Sessions[j].Start) {
			return input.Sessions[i].Start.Before(input.Sessions[j].Start)
		}
		return input.Sessions[i].ID < input.Sessions[j].ID
	})
	sort.SliceStable(input.Supervisors, func(i, j int) bool {
		return input.Supervisors[i].ID < input.Supervisors[j].ID
	})

	return input, nil
}

// Validate decodes loosely-typed input (as handed over by the session
// and roster store collaborator) and normalizes it. Time values are
// RFC 3339 strings.
func Validate(raw map[string]any) (*NormalizedInput, error) {
	var decoded struct {
		Sessions []struct {
			ID             int64
			Name           string
			Start          time.Time
			End            time.Time
			Rooms          []string
			MinSupervisors int `mapstructure:"minSupervisors"`
		}
		Supervisors []struct {
			ID           int64
			FirstName    string `mapstructure:"firstName"`
			LastName     string `mapstructure:"lastName"`
			Email        string
			Grade        string
			Participates bool
			MaxSessions  int `mapstructure:"maxSessions"`
			Unavailable  []struct {
				Start time.Time
				End   time.Time
			}
		}
		Preferences []struct {
			ID           int64
			SupervisorID int64 `mapstructure:"supervisorID"`
			SessionID    int64 `mapstructure:"sessionID"`
			Window       *struct {
				Start time.Time
				End   time.Time
			}
			Polarity string
			Weight   float64
		}
		PriorLoads []struct {
			SupervisorID int64 `mapstructure:"supervisorID"`
			Sessions     int
			Hours        float64
		} `mapstructure:"priorLoads"`
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:     &decoded,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, validationErrorf("entrée illisible: %v", err)
	}

	sessions := make([]*domain.Session, 0, len(decoded.Sessions))
	for _, s := range decoded.Sessions {
		sessions = append(sessions, &domain.Session{
			ID:             s.ID,
			Name:           s.Name,
			Start:          s.Start,
			End:            s.End,
			Rooms:          s.Rooms,
			MinSupervisors: s.MinSupervisors,
		})
	}

	supervisors := make([]*domain.Supervisor, 0, len(decoded.Supervisors))
	for _, sup := range decoded.Supervisors {
		windows := make([]domain.TimeWindow, 0, len(sup.Unavailable))
		for _, w := range sup.Unavailable {
			windows = append(windows, domain.TimeWindow{Start: w.Start, End: w.End})
		}
		supervisors = append(supervisors, &domain.Supervisor{
			ID:           sup.ID,
			FirstName:    sup.FirstName,
			LastName:     sup.LastName,
			Email:        sup.Email,
			Grade:        domain.Grade(sup.Grade),
			Participates: sup.Participates,
			MaxSessions:  sup.MaxSessions,
			Unavailable:  windows,
		})
	}

	preferences := make([]*domain.Preference, 0, len(decoded.Preferences))
	for _, p := range decoded.Preferences {
		pref := &domain.Preference{
			ID:           p.ID,
			SupervisorID: p.SupervisorID,
			SessionID:    p.SessionID,
			Polarity:     domain.PreferencePolarity(p.Polarity),
			Weight:       p.Weight,
		}
		if p.Window != nil {
			pref.Window = &domain.TimeWindow{Start: p.Window.Start, End: p.Window.End}
		}
		preferences = append(preferences, pref)
	}

	priorLoads := make(map[int64]domain.FairnessCounter, len(decoded.PriorLoads))
	for _, c := range decoded.PriorLoads {
		priorLoads[c.SupervisorID] = domain.FairnessCounter{
			SupervisorID: c.SupervisorID,
			Sessions:     c.Sessions,
			Hours:        c.Hours,
		}
	}

	return NewInput(sessions, supervisors, preferences, priorLoads)
}
