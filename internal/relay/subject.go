package relay

import "strings"

// Subject returns the NATS subject events for target are published on.
// NATS separators, wildcards and whitespace in target become '_'; an empty
// target maps to "_".
func Subject(prefix, target string) string {
	return prefix + "." + subjectToken(target)
}

// AllSubjects returns the wildcard subject matching every target under prefix.
func AllSubjects(prefix string) string {
	return prefix + ".>"
}

func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}
