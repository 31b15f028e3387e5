package workbook

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned for a date cell that is neither a serial number nor a recognized date.
var ErrInvalidDate = errors.New("invalid date")

// Epoch is day zero of spreadsheet serial dates.
var Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-Jan-2006",
}

// DayCount returns the number of whole days between Epoch and t.
func DayCount(t time.Time) int {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(day.Sub(Epoch).Hours() / 24)
}

// dayCountCell converts a date cell to its day count. numeric reports whether
// raw holds a stored number (a serial date) rather than text.
func dayCountCell(raw string, numeric bool) (string, error) {
	if raw == "" {
		return "", nil
	}
	if numeric {
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("%q: %w", raw, ErrInvalidDate)
		}
		return strconv.Itoa(int(math.Floor(serial))), nil
	}

	text := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return strconv.Itoa(DayCount(t)), nil
		}
	}
	return "", fmt.Errorf("%q: %w", raw, ErrInvalidDate)
}

// formatNumber renders a stored number in shortest decimal form.
func formatNumber(raw string) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
