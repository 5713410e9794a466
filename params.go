package ckanta

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseParams parses key=value action parameters given on the command line.
// "true" and "false" become booleans and integers written in canonical form
// become ints, so "007" stays a string. Anything else is kept as a string. A later key overrides an earlier one.
func ParseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}
		params[key] = parseValue(strings.TrimSpace(value))
	}
	return params, nil
}

func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil && strconv.Itoa(n) == s {
		return n
	}
	return s
}
