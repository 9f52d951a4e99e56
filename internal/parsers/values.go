// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parsers

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe     = regexp.MustCompile(`^[+\-]?\d+(?:\.\d+)?$`)
	parenErrRe   = regexp.MustCompile(`^([+\-]?\d+(?:\.\d+)?)\((\d+)\)$`)
	rangeSplitRe = regexp.MustCompile(`[–−‒-]`)
)

// parseValue converts a captured numeric span into a value list and an
// optional error margin. Supported forms: a plain decimal ("240"), an
// error in parentheses scaled to the last decimal place ("240.5(3)" is
// 240.5 with error 0.3), an explicit margin ("240±5"), and a range
// ("230–240") which yields a two-element value list on one record.
// Returns ok=false for unparseable spans; the caller drops the record.
func parseValue(raw string) (vals []float64, errMargin float64, ok bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return nil, 0, false
	}

	// Explicit error margin: N±E.
	for _, sep := range []string{"±", "+/-"} {
		if base, errPart, found := strings.Cut(s, sep); found {
			v, ok1 := parseFloat(base)
			e, ok2 := parseFloat(errPart)
			if !ok1 || !ok2 {
				return nil, 0, false
			}
			return []float64{v}, e, true
		}
	}

	// Parenthesized error: N(E), scaled to the base's last decimal place.
	if m := parenErrRe.FindStringSubmatch(s); m != nil {
		v, ok1 := parseFloat(m[1])
		digits, ok2 := parseFloat(m[2])
		if !ok1 || !ok2 {
			return nil, 0, false
		}
		return []float64{v}, digits * math.Pow(10, -float64(decimals(m[1]))), true
	}

	// Range: A–B, both sides parseable.
	if parts := rangeSplitRe.Split(s, -1); len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		lo, ok1 := parseFloat(parts[0])
		hi, ok2 := parseFloat(parts[1])
		if ok1 && ok2 {
			return []float64{lo, hi}, 0, true
		}
	}

	v, vok := parseFloat(s)
	if !vok {
		return nil, 0, false
	}
	return []float64{v}, 0, true
}

func parseFloat(s string) (float64, bool) {
	if !numberRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// decimals counts digits after the decimal point of a numeric literal.
func decimals(s string) int {
	if _, frac, found := strings.Cut(s, "."); found {
		return len(frac)
	}
	return 0
}
