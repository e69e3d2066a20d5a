package solver

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

const skipMove = -1

// searchState is one branch's view of the partial assignment. Workers
// exploring independent subtrees each own an isolated copy.
type searchState struct {
	p *problem

	open      []int   // remaining units per slot
	short     []int   // units abandoned per slot
	assigned  [][]int // per slot, supervisor indices in increasing order
	onSession [][]bool
	load      []int // in-run session count per supervisor
	prefRaw   float64
	shortfall int
}

func newSearchState(p *problem) *searchState {
	st := &searchState{
		p:         p,
		open:      make([]int, len(p.slots)),
		short:     make([]int, len(p.slots)),
		assigned:  make([][]int, len(p.slots)),
		onSession: make([][]bool, len(p.sups)),
		load:      make([]int, len(p.sups)),
	}
	for i, sl := range p.slots {
		st.open[i] = sl.need
	}
	for i := range p.sups {
		st.onSession[i] = make([]bool, len(p.sessions))
	}
	return st
}

func (st *searchState) clone() *searchState {
	dup := &searchState{
		p:         st.p,
		open:      append([]int(nil), st.open...),
		short:     append([]int(nil), st.short...),
		assigned:  make([][]int, len(st.assigned)),
		onSession: make([][]bool, len(st.onSession)),
		load:      append([]int(nil), st.load...),
		prefRaw:   st.prefRaw,
		shortfall: st.shortfall,
	}
	for i := range st.assigned {
		dup.assigned[i] = append([]int(nil), st.assigned[i]...)
	}
	for i := range st.onSession {
		dup.onSession[i] = append([]bool(nil), st.onSession[i]...)
	}
	return dup
}

func (st *searchState) conflicts(sup, session int) bool {
	row := st.p.conflict[session]
	for s, on := range st.onSession[sup] {
		if on && row[s] {
			return true
		}
	}
	return false
}

// eligible lists the supervisors that can still take one unit of the
// slot: available, under quota, and free of overlapping assignments.
// minIdx enforces the increasing-index discipline that keeps the search
// from enumerating the same supervisor set in several orders.
func (st *searchState) eligible(slotIdx, minIdx int) []int {
	sl := st.p.slots[slotIdx]
	var out []int
	for i := minIdx; i < len(st.p.sups); i++ {
		if !st.p.available[i][sl.session] {
			continue
		}
		if q := st.p.quota[i]; q >= 0 && st.load[i] >= q {
			continue
		}
		if st.conflicts(i, sl.session) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (st *searchState) assign(slotIdx, sup int) {
	sl := st.p.slots[slotIdx]
	st.open[slotIdx]--
	st.assigned[slotIdx] = append(st.assigned[slotIdx], sup)
	st.onSession[sup][sl.session] = true
	st.load[sup]++
	st.prefRaw += st.p.prefGain[sup][sl.session]
}

func (st *searchState) unassign(slotIdx, sup int) {
	sl := st.p.slots[slotIdx]
	st.open[slotIdx]++
	st.assigned[slotIdx] = st.assigned[slotIdx][:len(st.assigned[slotIdx])-1]
	st.onSession[sup][sl.session] = false
	st.load[sup]--
	st.prefRaw -= st.p.prefGain[sup][sl.session]
}

func (st *searchState) skip(slotIdx int) int {
	skipped := st.open[slotIdx]
	st.open[slotIdx] = 0
	st.short[slotIdx] += skipped
	st.shortfall += skipped
	return skipped
}

func (st *searchState) unskip(slotIdx, skipped int) {
	st.open[slotIdx] = skipped
	st.short[slotIdx] -= skipped
	st.shortfall -= skipped
}

func (st *searchState) complete() bool {
	for _, open := range st.open {
		if open > 0 {
			return false
		}
	}
	return true
}

// minIdx restores the increasing-index discipline for a partly staffed
// slot: only supervisors after the last assigned one are candidates.
func (st *searchState) minIdx(slotIdx int) int {
	if n := len(st.assigned[slotIdx]); n > 0 {
		return st.assigned[slotIdx][n-1] + 1
	}
	return 0
}

// score is the full soft objective of the current (complete) state. It
// mirrors Evaluate exactly, on the dense model.
func (st *searchState) score() float64 {
	p := st.p

	count := 0
	sum := 0.0
	for i := range p.sups {
		if !p.fairSup(i) {
			continue
		}
		count++
		sum += float64(p.prior[i] + st.load[i])
	}
	variance := 0.0
	if count > 0 {
		mean := sum / float64(count)
		for i := range p.sups {
			if !p.fairSup(i) {
				continue
			}
			variance += math.Pow(float64(p.prior[i]+st.load[i])-mean, 2)
		}
		variance /= float64(count)
	}

	return -p.cfg.fairnessWeight()*variance + p.cfg.preferenceWeight()*st.prefRaw
}

// upperBound is an optimistic completion score: every open unit takes
// the best preference gain any supervisor offers for that session, and
// the fairness penalty is taken as zero. No completion of this branch
// can score higher.
func (st *searchState) upperBound() float64 {
	optimistic := st.prefRaw
	for i, open := range st.open {
		if open > 0 {
			optimistic += float64(open) * st.p.bestGain[st.p.slots[i].session]
		}
	}
	return st.p.cfg.preferenceWeight() * optimistic
}

// fairSup reports whether the supervisor counts toward the fairness
// variance: participating (always true for p.sups) and available for at
// least one session.
func (p *problem) fairSup(i int) bool {
	for _, ok := range p.available[i] {
		if ok {
			return true
		}
	}
	return false
}

// orderCandidates sorts candidates by descending marginal contribution:
// preference gain first, then fairness deficit (lowest total load
// first), ties broken by supervisor index, i.e. identifier.
func (st *searchState) orderCandidates(slotIdx int, cands []int) {
	session := st.p.slots[slotIdx].session
	sort.SliceStable(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		ga, gb := st.p.prefGain[ca][session], st.p.prefGain[cb][session]
		if ga != gb {
			return ga > gb
		}
		la, lb := st.p.prior[ca]+st.load[ca], st.p.prior[cb]+st.load[cb]
		if la != lb {
			return la < lb
		}
		return ca < cb
	})
}

// chooseSlot picks the open slot with the fewest candidates, so the
// search branches on the most constrained decision first and detects
// dead ends early. Returns the slot index and its ordered candidates,
// or -1 when no slot is open.
func (st *searchState) chooseSlot() (int, []int) {
	best := -1
	var bestCands []int
	for i, open := range st.open {
		if open == 0 {
			continue
		}
		cands := st.eligible(i, st.minIdx(i))
		if best == -1 || len(cands) < len(bestCands) {
			best = i
			bestCands = cands
			if len(cands) == 0 {
				break
			}
		}
	}
	if best >= 0 {
		st.orderCandidates(best, bestCands)
	}
	return best, bestCands
}

// propagateRoot runs constraint propagation to a fixpoint before any
// branching: a slot whose eligible set is no larger than its remaining
// need is resolved immediately, and the resulting exclusions cascade.
// Slots that come up short here are structurally infeasible, a distinct
// condition from running out of search time.
func (st *searchState) propagateRoot() []domain.Diagnostic {
	var diags []domain.Diagnostic

	changed := true
	for changed {
		changed = false
		for i := range st.p.slots {
			if st.open[i] == 0 {
				continue
			}
			cands := st.eligible(i, st.minIdx(i))
			if len(cands) > st.open[i] {
				continue
			}
			for _, sup := range cands {
				st.assign(i, sup)
			}
			if st.open[i] > 0 {
				st.skip(i)
				diags = append(diags, domain.Diagnostic{
					SessionID: st.p.sessions[st.p.slots[i].session].ID,
					Room:      st.p.slots[i].room,
					Required:  st.p.slots[i].need,
					Assigned:  len(st.assigned[i]),
					Reason:    domain.ReasonInfeasible,
				})
			}
			changed = true
		}
	}

	return diags
}

// greedy fills the remaining open slots most-constrained-first without
// backtracking, to seed the incumbent before the exhaustive search.
func (st *searchState) greedy() {
	for {
		slotIdx, cands := st.chooseSlot()
		if slotIdx == -1 {
			return
		}
		if len(cands) == 0 {
			st.skip(slotIdx)
			continue
		}
		st.assign(slotIdx, cands[0])
	}
}

// incumbent is the best complete solution found so far, shared between
// search workers. Equal scores resolve by the lexicographically smaller
// assignment signature so the merged result is reproducible regardless
// of worker scheduling.
type incumbent struct {
	mu sync.Mutex

	found     bool
	shortfall int
	score     float64
	sig       []int
	assigned  [][]int
	short     []int
}

func signature(assigned [][]int) []int {
	var sig []int
	for _, sups := range assigned {
		sig = append(sig, sups...)
		sig = append(sig, skipMove)
	}
	return sig
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (inc *incumbent) offer(st *searchState) {
	score := st.score()
	sig := signature(st.assigned)

	inc.mu.Lock()
	defer inc.mu.Unlock()

	better := !inc.found ||
		st.shortfall < inc.shortfall ||
		(st.shortfall == inc.shortfall && score > inc.score) ||
		(st.shortfall == inc.shortfall && score == inc.score && lexLess(sig, inc.sig))
	if !better {
		return
	}

	inc.found = true
	inc.shortfall = st.shortfall
	inc.score = score
	inc.sig = sig
	inc.short = append([]int(nil), st.short...)
	inc.assigned = make([][]int, len(st.assigned))
	for i := range st.assigned {
		inc.assigned[i] = append([]int(nil), st.assigned[i]...)
	}
}

// bounds returns the current (shortfall, score) pair under the lock.
func (inc *incumbent) bounds() (bool, int, float64) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return inc.found, inc.shortfall, inc.score
}

// frame is one decision point of the explicit search stack: a slot and
// the ordered moves still to try. Explicit frames keep cancellation
// checks cheap and the depth independent of the goroutine stack.
type frame struct {
	slot    int
	moves   []int
	next    int
	applied int // index into moves of the applied decision, -1 if none
	skipped int
}

func newFrame(st *searchState) (frame, bool) {
	slotIdx, cands := st.chooseSlot()
	if slotIdx == -1 {
		return frame{}, false
	}
	if len(cands) == 0 {
		// Dead end for the minimum: the only move is to leave the
		// remainder unstaffed and let the incumbent comparison sort it out.
		cands = []int{skipMove}
	}
	return frame{slot: slotIdx, moves: cands, applied: -1}, true
}

// run explores the subtree rooted at the given stack, updating the
// shared incumbent. It returns false when the deadline or context
// cancelled the exploration before it was exhausted.
func (st *searchState) run(ctx context.Context, deadline time.Time, inc *incumbent, stack []frame) bool {
	steps := 0
	for len(stack) > 0 {
		steps++
		if steps%256 == 0 {
			if time.Now().After(deadline) || ctx.Err() != nil {
				st.unwind(stack)
				return false
			}
		}

		f := &stack[len(stack)-1]
		if f.applied >= 0 {
			st.undoMove(f)
		}
		if f.next >= len(f.moves) {
			stack = stack[:len(stack)-1]
			continue
		}

		move := f.moves[f.next]
		f.applied = f.next
		f.next++
		if move == skipMove {
			f.skipped = st.skip(f.slot)
		} else {
			st.assign(f.slot, move)
		}

		if st.pruned(inc) {
			continue
		}
		if st.complete() {
			inc.offer(st)
			continue
		}

		next, ok := newFrame(st)
		if !ok {
			inc.offer(st)
			continue
		}
		stack = append(stack, next)
	}
	return true
}

func (st *searchState) undoMove(f *frame) {
	if f.moves[f.applied] == skipMove {
		st.unskip(f.slot, f.skipped)
	} else {
		st.unassign(f.slot, f.moves[f.applied])
	}
	f.applied = -1
}

// unwind restores the state to its pre-search shape so the caller can
// reuse it after a cancelled run.
func (st *searchState) unwind(stack []frame) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].applied >= 0 {
			st.undoMove(&stack[i])
		}
	}
}

// pruned cuts a branch that provably cannot beat the incumbent: its
// shortfall already exceeds the incumbent's, or, at equal shortfall,
// even the optimistic completion score falls below the incumbent's.
func (st *searchState) pruned(inc *incumbent) bool {
	found, shortfall, score := inc.bounds()
	if !found {
		return false
	}
	if st.shortfall > shortfall {
		return true
	}
	if st.shortfall == shortfall && st.upperBound() < score {
		return true
	}
	return false
}

// search runs the bounded branch-and-bound, optionally fanning the root
// branches out over several workers, each on an isolated copy of the
// partial assignment. It returns true when the space was exhausted
// within the deadline, i.e. the incumbent is proven optimal.
func (p *problem) search(ctx context.Context, base *searchState, deadline time.Time, inc *incumbent) bool {
	root, ok := newFrame(base)
	if !ok {
		inc.offer(base)
		return true
	}

	workers := p.cfg.Parallelism
	if workers > len(root.moves) {
		workers = len(root.moves)
	}
	if workers <= 1 {
		return base.run(ctx, deadline, inc, []frame{root})
	}

	results := make([]bool, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		var moves []int
		for i := w; i < len(root.moves); i += workers {
			moves = append(moves, root.moves[i])
		}
		wg.Add(1)
		go func(w int, moves []int) {
			defer wg.Done()
			st := base.clone()
			results[w] = st.run(ctx, deadline, inc, []frame{{slot: root.slot, moves: moves, applied: -1}})
		}(w, moves)
	}
	wg.Wait()

	for _, exhausted := range results {
		if !exhausted {
			return false
		}
	}
	return true
}
