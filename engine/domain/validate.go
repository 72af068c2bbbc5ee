package domain

import (
	"strconv"
	"strings"
)

// ParseID validates a catalog identifier supplied by a user (path segment,
// form value, CLI argument) and returns it in canonical form. Identifiers are
// positive integers.
func ParseID(field, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", NewValidationError(field, raw, ErrEmptyID)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", NewValidationError(field, raw, ErrInvalidID)
	}
	return strconv.Itoa(n), nil
}

// ParseIDs validates every identifier, preserving order.
func ParseIDs(field string, raws []string) ([]string, error) {
	out := make([]string, 0, len(raws))
	for _, r := range raws {
		id, err := ParseID(field, r)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
