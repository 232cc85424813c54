package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical storage form of a sale date.
const DateLayout = "2006-01-02"

// ErrEmptyDate is returned when no date value was supplied.
var ErrEmptyDate = errors.New("date must not be empty")

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2/1/2006",
	"2-1-2006",
	time.RFC3339,
}

// NormalizeDate parses a user or spreadsheet supplied date and returns it in
// DateLayout. Day-first layouts match the D/M/Y form the sales table prints.
func NormalizeDate(value string) (string, error) {
	str := strings.TrimSpace(value)
	if str == "" {
		return "", ErrEmptyDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t.Format(DateLayout), nil
		}
	}

	if len(str) > 10 {
		if t, err := time.Parse(DateLayout, str[:10]); err == nil {
			return t.Format(DateLayout), nil
		}
	}

	return "", fmt.Errorf("unrecognized date %q", str)
}

// FormatDisplayDate renders a normalized date as D/M/YYYY.
func FormatDisplayDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}
