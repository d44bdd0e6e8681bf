package domain

import (
	"fmt"
	"time"
)

// OrderStatus is a named stage from the seeded status dictionary.
type OrderStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StatusEvent is one append-only history record attaching a status and a
// quantity to an order line. History is never mutated; events are interpreted
// in ascending creation order.
type StatusEvent struct {
	ID          int64     `json:"id"`
	OrderLineID int64     `json:"orderLineId"`
	StatusID    int64     `json:"orderStatusId"`
	StatusName  string    `json:"status"`
	Qty         int       `json:"qty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatusCatalog is the immutable status configuration loaded once at startup:
// the ordered main fulfillment chain, the set of terminal end states, and the
// single delay annotation that holds a line at its current stage.
type StatusCatalog struct {
	chain      []string
	chainIndex map[string]int
	terminal   map[string]struct{}
	delay      string
}

// NewStatusCatalog validates the configuration and builds the lookup
// structure. The chain must have at least two stages and the three groups
// must not overlap.
func NewStatusCatalog(chain []string, terminal []string, delay string) (*StatusCatalog, error) {
	if len(chain) < 2 {
		return nil, fmt.Errorf("status catalog: main chain needs at least 2 stages, got %d", len(chain))
	}
	if delay == "" {
		return nil, fmt.Errorf("status catalog: delay status name is empty")
	}

	c := &StatusCatalog{
		chain:      append([]string(nil), chain...),
		chainIndex: make(map[string]int, len(chain)),
		terminal:   make(map[string]struct{}, len(terminal)),
		delay:      delay,
	}
	for i, name := range chain {
		if name == "" {
			return nil, fmt.Errorf("status catalog: empty chain stage at position %d", i)
		}
		if _, dup := c.chainIndex[name]; dup {
			return nil, fmt.Errorf("status catalog: duplicate chain stage %q", name)
		}
		c.chainIndex[name] = i
	}
	for _, name := range terminal {
		if _, inChain := c.chainIndex[name]; inChain {
			return nil, fmt.Errorf("status catalog: %q is both a chain stage and terminal", name)
		}
		c.terminal[name] = struct{}{}
	}
	if _, inChain := c.chainIndex[delay]; inChain {
		return nil, fmt.Errorf("status catalog: delay status %q is a chain stage", delay)
	}
	if _, isTerminal := c.terminal[delay]; isTerminal {
		return nil, fmt.Errorf("status catalog: delay status %q is terminal", delay)
	}
	if len(c.terminal) == 0 {
		return nil, fmt.Errorf("status catalog: no terminal statuses configured")
	}
	return c, nil
}

// Chain returns a copy of the ordered main-chain stage names.
func (c *StatusCatalog) Chain() []string {
	return append([]string(nil), c.chain...)
}

// First returns the initial chain stage every new order line starts in.
func (c *StatusCatalog) First() string { return c.chain[0] }

// Terminals returns the terminal status names in unspecified order.
func (c *StatusCatalog) Terminals() []string {
	out := make([]string, 0, len(c.terminal))
	for name := range c.terminal {
		out = append(out, name)
	}
	return out
}

// Delay returns the delay annotation name.
func (c *StatusCatalog) Delay() string { return c.delay }

// IsTerminal reports whether name is an irreversible end state.
func (c *StatusCatalog) IsTerminal(name string) bool {
	_, ok := c.terminal[name]
	return ok
}

// IsDelay reports whether name is the delay annotation.
func (c *StatusCatalog) IsDelay(name string) bool { return name == c.delay }

// ChainIndex returns the position of name in the main chain.
func (c *StatusCatalog) ChainIndex(name string) (int, bool) {
	i, ok := c.chainIndex[name]
	return i, ok
}

// CheckTransition validates appending next to a line whose prior event status
// names are given in ascending creation order. A nil result means the event
// may be appended; otherwise a *TransitionError explains the rejection.
//
// Rules: nothing after a terminal status; a terminal status is accepted from
// any non-terminal state; the delay annotation is always accepted and leaves
// the chain position untouched; any other status must be the next main-chain
// stage (no regression, no skipping, and a fresh line must start at the first
// stage).
func (c *StatusCatalog) CheckTransition(history []string, next string) error {
	var last string
	if len(history) > 0 {
		last = history[len(history)-1]
	}

	if last != "" && c.IsTerminal(last) {
		return &TransitionError{From: last, To: next, Reason: "no transitions allowed after a terminal status"}
	}
	if c.IsTerminal(next) {
		return nil
	}
	if c.IsDelay(next) {
		return nil
	}

	newIdx, ok := c.chainIndex[next]
	if !ok {
		return &TransitionError{From: last, To: next, Reason: "status is not part of the fulfillment chain"}
	}

	// The chain position is defined by the last main-chain event, skipping
	// over delay annotations.
	lastIdx := -1
	lastChain := ""
	for i := len(history) - 1; i >= 0; i-- {
		if idx, isChain := c.chainIndex[history[i]]; isChain {
			lastIdx = idx
			lastChain = history[i]
			break
		}
	}

	if lastIdx == -1 {
		if newIdx != 0 {
			return &TransitionError{From: last, To: next, Reason: fmt.Sprintf("first status must be %q", c.chain[0])}
		}
		return nil
	}
	if newIdx <= lastIdx {
		return &TransitionError{From: lastChain, To: next, Reason: "regression forbidden"}
	}
	if newIdx > lastIdx+1 {
		return &TransitionError{From: lastChain, To: next, Reason: "skipping stages forbidden"}
	}
	return nil
}
