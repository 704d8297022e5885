// Package tsparse extracts a naive timestamp from the front of a log line
// given a strftime-style format string. Go has no strftime/strptime in the
// standard library, so the package translates the subset of specifiers the
// engine supports into a Go reference-time layout and parses with
// time.Parse, which — like chrono's NaiveDateTime::parse_from_str — rejects
// unconsumed trailing input. That property is what makes the width-window
// search below correct: a too-long prefix fails the same way a too-short
// one does.
package tsparse

import (
	"github.com/jwedi/logium/pkg/engine/errkind"
)

// EstimateLen sums the minimum and maximum rendered width of each specifier
// in format, used to narrow the prefix-search window before falling back to
// a full scan.
func EstimateLen(format string) (min, max int) {
	b := []byte(format)
	i := 0
	for i < len(b) {
		if b[i] == '%' && i+1 < len(b) {
			i++
			switch {
			case (b[i] == '3' || b[i] == '6' || b[i] == '9') && i+1 < len(b) && b[i+1] == 'f':
				w := int(b[i] - '0')
				min += w
				max += w
				i++
			case b[i] == ':' && i+1 < len(b) && b[i+1] == 'z':
				min += 6
				max += 6
				i++
			case b[i] == 'Y':
				min += 4
				max += 4
			case b[i] == 'C' || b[i] == 'y' || b[i] == 'm' || b[i] == 'd' || b[i] == 'e' ||
				b[i] == 'H' || b[i] == 'I' || b[i] == 'M' || b[i] == 'S':
				min += 2
				max += 2
			case b[i] == 'b' || b[i] == 'h' || b[i] == 'a' || b[i] == 'j':
				min += 3
				max += 3
			case b[i] == 'B' || b[i] == 'A':
				min += 3
				max += 9
			case b[i] == 'p' || b[i] == 'P':
				min += 2
				max += 2
			case b[i] == 'z':
				min += 5
				max += 5
			case b[i] == 'Z':
				min += 3
				max += 5
			case b[i] == 'u' || b[i] == 'w':
				min += 1
				max += 1
			case b[i] == 'f':
				min += 1
				max += 9
			case b[i] == '%':
				min += 1
				max += 1
			default:
				min += 1
				max += 6
			}
		} else {
			min++
			max++
		}
		i++
	}
	return min, max
}

// translateLayout converts a strftime-style format string into a Go
// reference-time layout. Specifiers with no faithful Go equivalent
// (century, day-of-year, ISO weekday number) are rejected rather than
// silently approximated.
func translateLayout(format string) (string, error) {
	b := []byte(format)
	out := make([]byte, 0, len(b)+8)
	i := 0
	for i < len(b) {
		if b[i] != '%' || i+1 >= len(b) {
			out = append(out, b[i])
			i++
			continue
		}
		i++
		switch {
		case (b[i] == '3' || b[i] == '6' || b[i] == '9') && i+1 < len(b) && b[i+1] == 'f':
			w := int(b[i] - '0')
			for n := 0; n < w; n++ {
				out = append(out, '0')
			}
			i++
		case b[i] == ':' && i+1 < len(b) && b[i+1] == 'z':
			out = append(out, []byte("-07:00")...)
			i++
		case b[i] == 'Y':
			out = append(out, []byte("2006")...)
		case b[i] == 'y':
			out = append(out, []byte("06")...)
		case b[i] == 'm':
			out = append(out, []byte("01")...)
		case b[i] == 'd':
			out = append(out, []byte("02")...)
		case b[i] == 'e':
			out = append(out, []byte("_2")...)
		case b[i] == 'H':
			out = append(out, []byte("15")...)
		case b[i] == 'I':
			out = append(out, []byte("03")...)
		case b[i] == 'M':
			out = append(out, []byte("04")...)
		case b[i] == 'S':
			out = append(out, []byte("05")...)
		case b[i] == 'p':
			out = append(out, []byte("PM")...)
		case b[i] == 'P':
			out = append(out, []byte("pm")...)
		case b[i] == 'z':
			out = append(out, []byte("-0700")...)
		case b[i] == 'Z':
			out = append(out, []byte("MST")...)
		case b[i] == 'b' || b[i] == 'h':
			out = append(out, []byte("Jan")...)
		case b[i] == 'B':
			out = append(out, []byte("January")...)
		case b[i] == 'a':
			out = append(out, []byte("Mon")...)
		case b[i] == 'A':
			out = append(out, []byte("Monday")...)
		case b[i] == 'f':
			out = append(out, []byte("999999999")...)
		case b[i] == '%':
			out = append(out, '%')
		default:
			return "", errkind.New(errkind.InvalidTimestampFormat,
				"unsupported format specifier %%%c", b[i])
		}
		i++
	}
	return string(out), nil
}
