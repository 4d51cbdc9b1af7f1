package chain

import (
	"github.com/White-Green/MkMarkov/pkg/markup"
)

type edge struct {
	from, to Token
}

type paramID struct {
	fn, key string
	value   ParamValue
}

type fnKey struct {
	fn, key string
}

// Counter accumulates transition and parameter counts. The caller owns it
// and threads it through the build; counters of disjoint corpus parts are
// combined with Merge.
//
// A Counter is not safe for concurrent use.
type Counter struct {
	transitions map[edge]uint64
	invocations map[string]uint64
	presences   map[paramID]uint64

	// First-seen orders.
	functions []string
	keys      map[string][]string
	values    map[fnKey][]ParamValue
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		transitions: make(map[edge]uint64),
		invocations: make(map[string]uint64),
		presences:   make(map[paramID]uint64),
		keys:        make(map[string][]string),
		values:      make(map[fnKey][]ParamValue),
	}
}

// Transition counts one emission of to in context from.
func (c *Counter) Transition(from, to Token) {
	c.transitions[edge{from, to}]++
}

// Invoke counts one invocation of function name with the given arguments.
func (c *Counter) Invoke(name string, args []markup.Arg) {
	c.addInvocations(name, 1)
	for _, a := range args {
		v := NoValue()
		if a.HasValue {
			v = WithValue(a.Value)
		}
		c.addPresence(name, a.Key, v, 1)
	}
}

func (c *Counter) addInvocations(name string, n uint64) {
	if _, ok := c.invocations[name]; !ok {
		c.functions = append(c.functions, name)
	}
	c.invocations[name] += n
}

func (c *Counter) addPresence(name, key string, v ParamValue, n uint64) {
	fk := fnKey{name, key}
	values, ok := c.values[fk]
	if !ok {
		c.keys[name] = append(c.keys[name], key)
	}
	id := paramID{name, key, v}
	if _, ok := c.presences[id]; !ok {
		c.values[fk] = append(values, v)
	}
	c.presences[id] += n
}

// Merge adds all counts of other into c. Orders of first appearance from
// other are appended after those of c, so merging the counters of
// consecutive corpus chunks left to right matches a sequential build.
func (c *Counter) Merge(other *Counter) {
	for e, n := range other.transitions {
		c.transitions[e] += n
	}
	for _, fn := range other.functions {
		c.addInvocations(fn, other.invocations[fn])
		for _, key := range other.keys[fn] {
			for _, v := range other.values[fnKey{fn, key}] {
				c.addPresence(fn, key, v, other.presences[paramID{fn, key, v}])
			}
		}
	}
}

// Invocations returns how often function name was invoked.
func (c *Counter) Invocations(name string) uint64 {
	return c.invocations[name]
}

// Model finalizes the counts into a Model. For every function and every key
// ever seen with it, the Absent count is the number of invocations minus the
// number of invocations in which the key was present. Absent entries are
// kept even when zero.
func (c *Counter) Model() *Model {
	transitions := make([]Transition, 0, len(c.transitions))
	for e, n := range c.transitions {
		transitions = append(transitions, Transition{From: e.from, To: e.to, Count: n})
	}

	var params []ParamCount
	for _, fn := range c.functions {
		total := c.invocations[fn]
		for _, key := range c.keys[fn] {
			values := c.values[fnKey{fn, key}]
			var present uint64
			for _, v := range values {
				present += c.presences[paramID{fn, key, v}]
			}
			absent := uint64(0)
			if present < total {
				absent = total - present
			}
			params = append(params, ParamCount{Function: fn, Key: key, Value: Absent(), Count: absent})
			for _, v := range values {
				params = append(params, ParamCount{Function: fn, Key: key, Value: v, Count: c.presences[paramID{fn, key, v}]})
			}
		}
	}
	return NewModel(transitions, params)
}
