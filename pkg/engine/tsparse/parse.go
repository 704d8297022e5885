package tsparse

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jwedi/logium/pkg/engine/errkind"
)

// Parse extracts a naive timestamp from the front of candidate using
// format. It tries, in order: the whole string, a width-estimated prefix
// window (longest to shortest), a full scan fallback, and — if hasYear —
// the same three steps again with "<year> " prepended to both candidate
// and format's "%Y " prefix.
func Parse(candidate, format string, year int, hasYear bool) (time.Time, error) {
	// Unlike chrono's NaiveDateTime, Go's time.Parse fills an unspecified
	// year with 0 instead of failing. A bare attempt against a
	// year-less format would therefore "succeed" with a useless year,
	// pre-empting the default-year fallback below. Skip straight to the
	// augmented attempt whenever the format has no year field of its own.
	if hasYear && !hasYearSpecifier(format) {
		augmentedInput := fmt.Sprintf("%d %s", year, candidate)
		augmentedFormat := "%Y " + format
		if ts, ok := tryParse(augmentedInput, augmentedFormat); ok {
			return ts, nil
		}
		if ts, ok := parsePrefix(augmentedInput, augmentedFormat); ok {
			return ts, nil
		}
		return time.Time{}, errkind.New(errkind.InvalidTimestampFormat,
			"failed to parse timestamp from %q with format %q", candidate, format)
	}

	if ts, ok := tryParse(candidate, format); ok {
		return ts, nil
	}
	if ts, ok := parsePrefix(candidate, format); ok {
		return ts, nil
	}
	if hasYear {
		augmentedInput := fmt.Sprintf("%d %s", year, candidate)
		augmentedFormat := "%Y " + format
		if ts, ok := tryParse(augmentedInput, augmentedFormat); ok {
			return ts, nil
		}
		if ts, ok := parsePrefix(augmentedInput, augmentedFormat); ok {
			return ts, nil
		}
	}
	return time.Time{}, errkind.New(errkind.InvalidTimestampFormat,
		"failed to parse timestamp from %q with format %q", candidate, format)
}

func tryParse(candidate, format string) (time.Time, bool) {
	layout, err := translateLayout(format)
	if err != nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(layout, candidate)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// parsePrefix implements the width-window-then-full-scan search: try
// prefixes of candidate against the full layout, longest to shortest,
// within an estimated window first, then the shorter lengths down to the
// format string's own length, then the longer lengths down from the whole
// candidate. Prefixes shorter than the format string are not tried.
func parsePrefix(candidate, format string) (time.Time, bool) {
	layout, err := translateLayout(format)
	if err != nil {
		return time.Time{}, false
	}

	minTS, maxTS := EstimateLen(format)

	lo := minTS - 1
	if lo < 1 {
		lo = 1
	}
	if lo > len(candidate) {
		lo = len(candidate)
	}
	hi := maxTS + 1
	if hi > len(candidate) {
		hi = len(candidate)
	}

	for end := hi; end >= lo; end-- {
		if !isCharBoundary(candidate, end) {
			continue
		}
		if ts, err := time.Parse(layout, candidate[:end]); err == nil {
			return ts, true
		}
	}

	minLen := len(format)
	if minLen > len(candidate) {
		minLen = len(candidate)
	}
	for end := lo - 1; end >= minLen; end-- {
		if !isCharBoundary(candidate, end) {
			continue
		}
		if ts, err := time.Parse(layout, candidate[:end]); err == nil {
			return ts, true
		}
	}
	for end := len(candidate); end > hi; end-- {
		if !isCharBoundary(candidate, end) {
			continue
		}
		if ts, err := time.Parse(layout, candidate[:end]); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

func hasYearSpecifier(format string) bool {
	b := []byte(format)
	i := 0
	for i < len(b) {
		if b[i] == '%' && i+1 < len(b) {
			i++
			if b[i] == 'Y' || b[i] == 'y' {
				return true
			}
			i++
			continue
		}
		i++
	}
	return false
}

func isCharBoundary(s string, i int) bool {
	if i == 0 || i == len(s) {
		return true
	}
	if i < 0 || i > len(s) {
		return false
	}
	return utf8.RuneStart(s[i])
}
