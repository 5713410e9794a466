package ckanta

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// NationalPrefix marks an owner organization that operates at national level.
// Datasets uploaded for such organizations keep their title unchanged.
const NationalPrefix = "national:"

// State is a national-states entry.
type State struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// NationalStates maps state slugs to states, keeping declaration order.
type NationalStates struct {
	order  []string
	states map[string]State
}

// ParseNationalStates parses the national-states setting. Entries have the
// form CODE:'Name' and are separated by two spaces or newlines:
//
//	AB:'Abia'  AD:'Adamawa'
//	FC:'Federal Capital Territory'
func ParseNationalStates(text string) (*NationalStates, error) {
	ns := &NationalStates{states: make(map[string]State)}

	for _, line := range strings.Split(text, "\n") {
		for _, entry := range strings.Split(line, "  ") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}

			code, name, ok := strings.Cut(entry, ":")
			if !ok || strings.Contains(name, ":") {
				return nil, fmt.Errorf("%w: %q", ErrMalformedStates, entry)
			}

			name = strings.TrimSpace(strings.ReplaceAll(name, "'", ""))
			code = strings.TrimSpace(code)
			if code == "" || name == "" {
				return nil, fmt.Errorf("%w: %q", ErrMalformedStates, entry)
			}

			key := slug.Make(name)
			if _, exists := ns.states[key]; !exists {
				ns.order = append(ns.order, key)
			}
			ns.states[key] = State{Code: code, Name: name}
		}
	}

	return ns, nil
}

// Lookup finds a state by name or slug. A NationalPrefix is ignored.
func (n *NationalStates) Lookup(name string) (State, bool) {
	if n == nil {
		return State{}, false
	}
	s, ok := n.states[slug.Make(strings.TrimPrefix(name, NationalPrefix))]
	return s, ok
}

// States returns all states in declaration order.
func (n *NationalStates) States() []State {
	if n == nil {
		return nil
	}
	out := make([]State, len(n.order))
	for i, key := range n.order {
		out[i] = n.states[key]
	}
	return out
}

// Len returns the number of states.
func (n *NationalStates) Len() int {
	if n == nil {
		return 0
	}
	return len(n.order)
}
