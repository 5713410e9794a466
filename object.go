package ckanta

import (
	"fmt"
	"strings"
)

// Object is a kind of CKAN record.
type Object string

const (
	Dataset      Object = "dataset"
	Group        Object = "group"
	Organization Object = "organization"
	User         Object = "user"
)

// Objects lists every supported object kind.
var Objects = []Object{Dataset, Group, Organization, User}

// ParseObject parses an object name. "package" is accepted for datasets.
func ParseObject(s string) (Object, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "package" {
		return Dataset, nil
	}
	for _, o := range Objects {
		if string(o) == name {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %q, any of these expected: %s", ErrInvalidObject, s, ObjectNames())
}

// ObjectNames returns the supported object names joined by ", ".
func ObjectNames() string {
	names := make([]string, len(Objects))
	for i, o := range Objects {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

// Prefix returns the CKAN action prefix for the object.
func (o Object) Prefix() string {
	if o == Dataset {
		return "package"
	}
	return string(o)
}

// Action returns the CKAN action name for verb, e.g. package_list.
func (o Object) Action(verb string) string {
	return o.Prefix() + "_" + verb
}

// IsGroupLike reports whether the object is a group or an organization,
// which CKAN implements with the same model.
func (o Object) IsGroupLike() bool {
	return o == Group || o == Organization
}

func (o Object) validate() error {
	for _, known := range Objects {
		if o == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q, any of these expected: %s", ErrInvalidObject, string(o), ObjectNames())
}
