package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a money cell such as "$1,250.00". Blank cells return nil.
func ParseAmount(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseInt reads an integer cell, tolerating a trailing ".0" from spreadsheets.
func ParseInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ParseDate tries each layout in order and returns the first match in UTC.
func ParseDate(s string, layouts []string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}

// AgentName returns the text after the first colon, or the whole identifier.
func AgentName(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if i := strings.Index(identifier, ":"); i >= 0 {
		return strings.TrimSpace(identifier[i+1:])
	}
	return identifier
}
