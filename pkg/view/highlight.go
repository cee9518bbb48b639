package view

import "github.com/aretw0/mathspan/pkg/domain"

// Range is a half-open span of document positions.
type Range struct {
	From int
	To   int
}

// DelimiterRanges returns the ranges of a math node spanning [from, to) that
// hold delimiter characters. A node made of nothing but its two delimiters
// yields a single range covering it.
func DelimiterRanges(kind domain.MathKind, from, to int) []Range {
	n := len(domain.DelimiterFor(kind))
	if to-from <= 2*n {
		return []Range{{From: from, To: to}}
	}
	return []Range{
		{From: from, To: from + n},
		{From: to - n, To: to},
	}
}
