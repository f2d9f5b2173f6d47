package difficulty

import (
	"fmt"
	"strings"
)

const (
	stateDims = 6
	// timeSinceHorizon normalizes seconds since the last adaptation.
	timeSinceHorizon = 300.0
)

// StateVector is the RL state: difficulty, skill, frustration, engagement,
// recent performance, normalized time since last adaptation.
type StateVector [stateDims]float64

// Key rounds each dimension to two decimals.
func (s StateVector) Key() string {
	parts := make([]string, stateDims)
	for i, v := range s {
		parts[i] = fmt.Sprintf("%.2f", round2(v))
	}
	return strings.Join(parts, ",")
}

// ReinforcementLearningState is one recorded transition.
type ReinforcementLearningState struct {
	State       StateVector `json:"state"`
	Action      Action      `json:"action"`
	Reward      float64     `json:"reward"`
	NextState   StateVector `json:"nextState"`
	Done        bool        `json:"done"`
	TimestampMs int64       `json:"timestampMs"`
}

// rlEngine is a tabular epsilon-greedy Q-learner.
type rlEngine struct {
	alpha   float64
	gamma   float64
	epsilon float64
	rng     Random
	logger  Logger

	table    qStore
	warnSize int
	warned   bool

	history    []ReinforcementLearningState
	historyCap int
}

func newRLEngine(cfg Config) (*rlEngine, error) {
	var table qStore = newMapQStore()
	if cfg.QTableLimit > 0 {
		bounded, err := newLRUQStore(cfg.QTableLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: q-table limit: %v", ErrInvalidConfig, err)
		}
		table = bounded
	}
	return &rlEngine{
		alpha:      cfg.LearningRate,
		gamma:      cfg.DiscountFactor,
		epsilon:    cfg.Epsilon,
		rng:        cfg.Rand,
		logger:     cfg.Logger,
		table:      table,
		warnSize:   cfg.QTableWarnSize,
		historyCap: cfg.Caps.Learning,
	}, nil
}

// values initializes unseen states to zeros.
func (e *rlEngine) values(key string) QValues {
	v, ok := e.table.get(key)
	if !ok {
		e.table.put(key, v)
		e.checkSize()
	}
	return v
}

func (e *rlEngine) checkSize() {
	if e.warned || e.warnSize <= 0 {
		return
	}
	if e.table.size() > e.warnSize {
		e.warned = true
		e.logger.Printf("[Difficulty] q-table exceeded %d states; consider QTableLimit", e.warnSize)
	}
}

// SelectAction explores with probability epsilon, otherwise exploits.
// Exploration takes the top epsilon of the draw, so a source stuck at 0
// always exploits. Greedy ties resolve to maintain.
func (e *rlEngine) SelectAction(s StateVector) Action {
	q := e.values(s.Key())
	if e.epsilon > 0 && e.rng.Float64() >= 1-e.epsilon {
		return actionFromIndex(e.rng.Intn(3))
	}
	return greedy(q)
}

func greedy(q QValues) Action {
	best := ActionMaintain.index()
	for i := range q {
		if q[i] > q[best] {
			best = i
		}
	}
	return actionFromIndex(best)
}

// Update applies Q <- Q + alpha*(r + gamma*max Q(s') - Q).
func (e *rlEngine) Update(t ReinforcementLearningState) {
	key := t.State.Key()
	q := e.values(key)
	target := t.Reward
	if !t.Done {
		next := e.values(t.NextState.Key())
		target += e.gamma * maxQ(next)
	}
	i := t.Action.index()
	q[i] += e.alpha * (target - q[i])
	e.table.put(key, q)
	e.history = pushCapped(e.history, e.historyCap, t)
}

func maxQ(q QValues) float64 {
	m := q[0]
	for _, v := range q[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Q returns the current row for a state without initializing it.
func (e *rlEngine) Q(s StateVector) (QValues, bool) {
	return e.table.get(s.Key())
}

func (e *rlEngine) reset() {
	e.table.clear()
	e.history = nil
	e.warned = false
}

func (e *rlEngine) restore(entries []QEntry) {
	e.table.clear()
	for _, row := range entries {
		e.table.put(row.Key, row.Values)
	}
	e.checkSize()
}
