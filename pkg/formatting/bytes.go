// Package formatting provides human-readable formatting and parsing utilities
// for byte sizes, confidence percentages, and JSON embedded in model replies.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ByteSize is a byte count written in base-1024 units ("64KB", "1.5 MB").
type ByteSize int64

// Units stop at EB; anything larger overflows int64.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

var bytesPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// ParseBytes parses a size such as "50MB", "2 mb" or "4096". A bare number
// is a byte count. Unit matching is case-insensitive.
func ParseBytes(s string) (ByteSize, error) {
	m := bytesPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	exp := 0
	if unit := strings.ToUpper(m[2]); unit != "" {
		if exp = slices.Index(units, unit); exp < 0 {
			return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
		}
	}

	size := value * math.Pow(1024, float64(exp))
	if size >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size out of range: %q", s)
	}
	return ByteSize(size), nil
}

// Format renders b in the largest unit it reaches, with precision decimals.
func (b ByteSize) Format(precision int) string {
	if b < 1024 && b > -1024 {
		return strconv.FormatInt(int64(b), 10) + " B"
	}

	size, exp := float64(b), 0
	for math.Abs(size) >= 1024 && exp < len(units)-1 {
		size /= 1024
		exp++
	}
	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[exp]
}

// String renders whole units without decimals and anything else to one place.
func (b ByteSize) String() string {
	s := b.Format(1)
	if num, unit, ok := strings.Cut(s, " "); ok {
		return strings.TrimSuffix(num, ".0") + " " + unit
	}
	return s
}
