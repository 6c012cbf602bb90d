// Package course turns loosely-structured student course rows into canonical
// identifiers and tracks which completed courses are still unclaimed during an
// evaluation.
package course

import "strings"

// comboSeparator joins the parts of a combination option ("MATH 221 & MATH 222").
const comboSeparator = "&"

// Canon returns the canonical comparison key for a course or option string:
// 1. Trim leading/trailing whitespace
// 2. Uppercase
// 3. Collapse internal whitespace to single spaces
//
// Every identifier comparison in the planner goes through Canon.
func Canon(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// SplitOption splits a requirement option into its canonical parts.
// A single course yields one part; a combination yields one part per course.
// Empty parts are dropped, so an option with no usable text yields nil.
func SplitOption(option string) []string {
	var parts []string
	for _, raw := range strings.Split(option, comboSeparator) {
		if p := Canon(raw); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
