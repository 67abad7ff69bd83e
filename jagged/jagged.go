// Package jagged parses and serializes the bracketed integer-array grammar
// the CLI accepts for -t/--test, -x/--cores_array, and -A/--backoff-array.
//
// Grounded on original_source/src/ccbench.c's parse_jagged_array: that
// parser treats the input as a flat sequence of bracket-delimited rows,
// transparent to one extra level of nesting (so both "[16]" and
// "[[0,1],[2,3]]" parse as 1 and 2 rows respectively without any explicit
// depth tracking). This package keeps that same row-extraction behavior
// and adds the inclusive "a...b" range syntax spec.md's grammar names,
// which the original source's caller never actually exercised.
package jagged

import (
	"fmt"
	"strconv"
	"strings"

	"ccbench/ccerr"
)

// Array is the parsed result: one row per top-level bracket group.
type Array struct {
	Rows [][]int
}

// NumRows reports how many rows were parsed.
func (a Array) NumRows() int { return len(a.Rows) }

// Row returns row i, or nil if out of range.
func (a Array) Row(i int) []int {
	if i < 0 || i >= len(a.Rows) {
		return nil
	}
	return a.Rows[i]
}

// Parse reads the bracketed grammar described in package docs. An empty or
// whitespace-only input, or input with no bracket groups, is a ConfigError.
func Parse(s string) (Array, error) {
	var rows [][]int
	i := 0
	for i < len(s) {
		if s[i] != '[' {
			i++
			continue
		}
		i++ // enter row

		// Find this row's closing ']', matching the original parser's
		// transparency to one level of inner brackets: inner '[' / ']'
		// characters are simply skipped over like any other non-digit.
		j := i
		for j < len(s) && s[j] != ']' {
			j++
		}
		if j >= len(s) {
			return Array{}, fmt.Errorf("jagged: unterminated row starting at byte %d: %w", i, ccerr.ErrConfig)
		}

		items, err := parseItems(s[i:j])
		if err != nil {
			return Array{}, err
		}
		rows = append(rows, items)
		i = j + 1
	}
	if len(rows) == 0 {
		return Array{}, fmt.Errorf("jagged: no bracketed rows found in %q: %w", s, ccerr.ErrConfig)
	}
	return Array{Rows: rows}, nil
}

// parseItems tokenizes the body of one row: comma/space/bracket-separated
// integers and inclusive "a...b" ranges.
func parseItems(body string) ([]int, error) {
	var items []int
	i := 0
	for i < len(body) {
		c := body[i]
		if c == ',' || c == '[' || c == ']' || c == ' ' || c == '\t' {
			i++
			continue
		}
		if c == '-' || (c >= '0' && c <= '9') {
			start := i
			i++
			for i < len(body) && body[i] >= '0' && body[i] <= '9' {
				i++
			}
			first, err := strconv.Atoi(body[start:i])
			if err != nil {
				return nil, fmt.Errorf("jagged: malformed integer %q: %w", body[start:i], ccerr.ErrConfig)
			}
			if i+2 < len(body) && body[i:i+3] == "..." {
				i += 3
				rstart := i
				if i < len(body) && body[i] == '-' {
					i++
				}
				for i < len(body) && body[i] >= '0' && body[i] <= '9' {
					i++
				}
				last, err := strconv.Atoi(body[rstart:i])
				if err != nil {
					return nil, fmt.Errorf("jagged: malformed range end %q: %w", body[rstart:i], ccerr.ErrConfig)
				}
				step := 1
				if last < first {
					step = -1
				}
				for v := first; ; v += step {
					items = append(items, v)
					if v == last {
						break
					}
				}
				continue
			}
			items = append(items, first)
			continue
		}
		return nil, fmt.Errorf("jagged: unexpected character %q in row %q: %w", c, body, ccerr.ErrConfig)
	}
	return items, nil
}

// Serialize renders an Array back into the canonical bracketed form, one
// row per bracket group, matching Parse's expectations: Parse(Serialize(a))
// reproduces the same rows (ranges are expanded, not re-collapsed).
func Serialize(a Array) string {
	var b strings.Builder
	b.WriteByte('[')
	for ri, row := range a.Rows {
		if ri > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for vi, v := range row {
			if vi > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}
