package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseOptionalBool parses form-style booleans ("on", "1", "true"). Blank yields nil.
func ParseOptionalBool(s string) (*bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	if s == "on" || s == "yes" {
		b := true
		return &b, nil
	}
	if s == "off" || s == "no" {
		b := false
		return &b, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a boolean", s)
	}
	return &b, nil
}
