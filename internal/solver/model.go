package solver

import (
	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

// slot is one (session, room) pair to staff. Sessions and supervisors
// are addressed by dense indices into the normalized input so that the
// search inner loop never touches maps.
type slot struct {
	session int
	room    string
	need    int
}

type problem struct {
	cfg   Config
	input *NormalizedInput

	sessions []*domain.Session
	sups     []*domain.Supervisor // participating supervisors only, ID order
	slots    []slot

	conflict  [][]bool    // session x session window overlap (reflexive)
	available [][]bool    // supervisor x session
	prefGain  [][]float64 // supervisor x session signed preference sum
	bestGain  []float64   // per session, max prefGain over all supervisors
	quota     []int       // remaining session quota per supervisor, -1 unbounded
	prior     []int       // prior session counters
	priorH    []float64
	hours     []float64 // session durations
	totalNeed int
}

func newProblem(input *NormalizedInput, cfg Config) *problem {
	p := &problem{
		cfg:      cfg,
		input:    input,
		sessions: input.Sessions,
	}

	for _, sup := range input.Supervisors {
		if sup.Participates {
			p.sups = append(p.sups, sup)
		}
	}

	supIdx := make(map[int64]int, len(p.sups))
	for i, sup := range p.sups {
		supIdx[sup.ID] = i
	}
	sessIdx := make(map[int64]int, len(p.sessions))
	for i, s := range p.sessions {
		sessIdx[s.ID] = i
	}

	for si, session := range p.sessions {
		need := session.MinSupervisors
		if need == 0 {
			need = cfg.MinSupervisorsDefault
		}
		for _, room := range session.Rooms {
			p.slots = append(p.slots, slot{session: si, room: room, need: need})
			p.totalNeed += need
		}
	}

	p.conflict = make([][]bool, len(p.sessions))
	p.hours = make([]float64, len(p.sessions))
	for i, a := range p.sessions {
		p.conflict[i] = make([]bool, len(p.sessions))
		p.hours[i] = a.Hours()
		for j, b := range p.sessions {
			p.conflict[i][j] = a.Window().Overlaps(b.Window())
		}
	}

	p.available = make([][]bool, len(p.sups))
	p.prefGain = make([][]float64, len(p.sups))
	p.quota = make([]int, len(p.sups))
	p.prior = make([]int, len(p.sups))
	p.priorH = make([]float64, len(p.sups))
	for i, sup := range p.sups {
		p.available[i] = make([]bool, len(p.sessions))
		p.prefGain[i] = make([]float64, len(p.sessions))
		for j, session := range p.sessions {
			p.available[i][j] = sup.IsAvailable(session.Window())
		}

		counter := input.PriorLoads[sup.ID]
		p.prior[i] = counter.Sessions
		p.priorH[i] = counter.Hours
		if sup.MaxSessions > 0 {
			p.quota[i] = sup.MaxSessions - counter.Sessions
			if p.quota[i] < 0 {
				p.quota[i] = 0
			}
		} else {
			p.quota[i] = -1
		}
	}

	for _, pref := range input.Preferences {
		i, ok := supIdx[pref.SupervisorID]
		if !ok {
			continue // non-participating supervisor, soft input only
		}
		if pref.SessionID != 0 {
			if j, ok := sessIdx[pref.SessionID]; ok {
				p.prefGain[i][j] += pref.SignedWeight()
			}
			continue
		}
		for j, session := range p.sessions {
			if pref.Window.Overlaps(session.Window()) {
				p.prefGain[i][j] += pref.SignedWeight()
			}
		}
	}

	p.bestGain = make([]float64, len(p.sessions))
	for j := range p.sessions {
		best := 0.0
		for i := range p.sups {
			if g := p.prefGain[i][j]; g > best {
				best = g
			}
		}
		p.bestGain[j] = best
	}

	return p
}
