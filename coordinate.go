package gerber

import (
	"math"
	"strconv"
	"strings"
)

// CoordinateFormat is the fixed-point format declared once by FS. Once
// set it never changes for the file.
type CoordinateFormat struct {
	OmitTrailing bool // true for FST..., false for FSL...
	XInt, XFrac  int
	YInt, YFrac  int
	set          bool
}

// Set reports whether FS has already been consumed for this file.
func (f *CoordinateFormat) Set() bool { return f != nil && f.set }

// parseFS parses 'FS<mode>A X<int><frac> Y<int><frac>' (mode ∈ {L,T}).
// Any other form (incremental, offset/scale, deprecated variants, or
// arguments absent 'A') fails as UnsupportedFormat.
func parseFS(body string, lines LineRange) (CoordinateFormat, error) {
	if len(body) < 1 {
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "empty FS command")
	}
	omitTrailing := false
	switch body[0] {
	case 'L':
		omitTrailing = false
	case 'T':
		omitTrailing = true
	default:
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: unsupported zero-omission mode %q (only L/T supported)", string(body[0]))
	}
	rest := body[1:]
	if !strings.HasPrefix(rest, "A") {
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: only absolute notation (A) is supported, got %q", rest)
	}
	rest = rest[1:]
	if !strings.HasPrefix(rest, "X") {
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: expected X specifier, got %q", rest)
	}
	rest = rest[1:]
	if len(rest) < 2 || !isDigitByte(rest[0]) || !isDigitByte(rest[1]) {
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: malformed X digit counts in %q", rest)
	}
	xInt := int(rest[0] - '0')
	xFrac := int(rest[1] - '0')
	rest = rest[2:]
	if !strings.HasPrefix(rest, "Y") {
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: expected Y specifier, got %q", rest)
	}
	rest = rest[1:]
	if len(rest) < 2 || !isDigitByte(rest[0]) || !isDigitByte(rest[1]) {
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: malformed Y digit counts in %q", rest)
	}
	yInt := int(rest[0] - '0')
	yFrac := int(rest[1] - '0')
	rest = rest[2:]
	if rest != "" {
		return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: unexpected trailing content %q", rest)
	}
	for _, v := range []int{xInt, xFrac, yInt, yFrac} {
		if v < 0 || v > 6 {
			return CoordinateFormat{}, newFault(KindUnsupportedFormat, lines, "FS: digit counts must be in [0,6]")
		}
	}
	return CoordinateFormat{OmitTrailing: omitTrailing, XInt: xInt, XFrac: xFrac, YInt: yInt, YFrac: yFrac, set: true}, nil
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

// ParseCoordinate parses a single coordinate literal (the remainder after
// its X/Y/I/J letter, e.g. "-1234" from "X-1234"), given the
// integer/fraction digit counts for that axis.
func ParseCoordinate(digits string, intDigits, fracDigits int, omitTrailing bool) (float64, error) {
	if digits == "" {
		return 0, errInvalidCoordinateText("empty coordinate")
	}
	sign := 1.0
	i := 0
	if digits[0] == '+' || digits[0] == '-' {
		if digits[0] == '-' {
			sign = -1
		}
		i = 1
	}
	mantissa := digits[i:]
	for _, c := range mantissa {
		if c < '0' || c > '9' {
			return 0, errInvalidCoordinateText("non-digit character in coordinate " + digits)
		}
	}
	if mantissa == "" {
		return 0, errInvalidCoordinateText("coordinate has no digits: " + digits)
	}

	significance := intDigits + fracDigits

	if !omitTrailing {
		// Leading-zero omission: the remainder is an integer; divide by
		// 10^fracDigits.
		n, err := strconv.ParseFloat(mantissa, 64)
		if err != nil {
			return 0, errInvalidCoordinateText("malformed coordinate digits: " + digits)
		}
		return sign * n / math.Pow(10, float64(fracDigits)), nil
	}

	// Trailing-zero omission: right-pad the digits to the full width
	// (significance) with zeros, then place the decimal point before the
	// last fracDigits digits. Equivalently, value * 10^(significance -
	// len(mantissa)), since mantissa already excludes the sign character.
	n, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return 0, errInvalidCoordinateText("malformed coordinate digits: " + digits)
	}
	exp := float64(significance - len(mantissa))
	value := n * math.Pow(10, exp) / math.Pow(10, float64(fracDigits))
	return sign * value, nil
}

func errInvalidCoordinateText(msg string) error {
	return newFault(KindInvalidCoordinate, LineRange{}, "%s", msg)
}
