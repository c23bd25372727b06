package kv

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// comparablePointersEqual checks if two comparable pointers are equal.
func comparablePointersEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// wholeNumber converts the numeric types Sobek exports into a non-negative uint64.
// ok is false when v is not a number at all.
func wholeNumber(v any) (n uint64, ok bool, err error) {
	var signed int64

	switch x := v.(type) {
	case int:
		signed = int64(x)
	case int32:
		signed = int64(x)
	case int64:
		signed = x
	case uint:
		return uint64(x), true, nil
	case uint32:
		return uint64(x), true, nil
	case uint64:
		return x, true, nil
	case float64:
		if math.Trunc(x) != x {
			return 0, true, fmt.Errorf("must be a whole number: %f", x)
		}

		if x < 0 {
			return 0, true, fmt.Errorf("must be non-negative: %f", x)
		}

		if x >= math.MaxUint64 {
			return 0, true, fmt.Errorf("too large: %f", x)
		}

		return uint64(x), true, nil
	default:
		return 0, false, nil
	}

	if signed < 0 {
		return 0, true, fmt.Errorf("must be non-negative: %d", signed)
	}

	return uint64(signed), true, nil
}

// parseSizeValue parses a size value that can be either a number (bytes) or a string like "64mb".
// Caller is responsible for wrapping the error, if it's used in JS code.
func parseSizeValue(v any) (uint64, error) {
	if s, isString := v.(string); isString {
		size, err := humanize.ParseBytes(s)
		if err != nil {
			return 0, fmt.Errorf("invalid size string %q: %w", s, err)
		}

		return size, nil
	}

	size, ok, err := wholeNumber(v)
	switch {
	case !ok:
		return 0, fmt.Errorf("unsupported size type: %T", v)
	case err != nil:
		return 0, fmt.Errorf("size %w", err)
	}

	return size, nil
}

// parseDurationValue parses a duration value that can be
// either a number (milliseconds) or a string like "1s".
// Caller is responsible for wrapping the error, if it's used in JS code.
func parseDurationValue(v any) (time.Duration, error) {
	if s, isString := v.(string); isString {
		duration, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string %q: %w", s, err)
		}

		if duration < 0 {
			return 0, fmt.Errorf("negative duration: %s", s)
		}

		return duration, nil
	}

	ms, ok, err := wholeNumber(v)
	switch {
	case !ok:
		return 0, fmt.Errorf("unsupported duration type: %T", v)
	case err != nil:
		return 0, fmt.Errorf("duration in milliseconds %w", err)
	}

	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, fmt.Errorf("duration too large: %dms", ms)
	}

	return time.Duration(ms) * time.Millisecond, nil
}

// parseCountValue parses an entry count given as a JS number.
func parseCountValue(v any) (int, error) {
	count, ok, err := wholeNumber(v)
	switch {
	case !ok:
		return 0, fmt.Errorf("unsupported count type: %T", v)
	case err != nil:
		return 0, fmt.Errorf("count %w", err)
	case count > math.MaxInt:
		return 0, fmt.Errorf("count too large: %d", count)
	}

	return int(count), nil
}
