// Package teachers fetches the EMIS teacher list and keeps it in a local JSON cache.
package teachers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pacific-emis/emisctl/internal/emisapi"
)

// Teacher holds the fields of a cached teacher record used by emisctl.
type Teacher struct {
	Payroll Text   `json:"tPayroll"`
	Given   string `json:"tGiven"`
	Surname string `json:"tSurname"`
	Sex     string `json:"tSex"`
}

// Valid reports whether payroll, sex, given name and surname are all present.
func (t Teacher) Valid() bool {
	return strings.TrimSpace(string(t.Payroll)) != "" &&
		strings.TrimSpace(t.Sex) != "" &&
		strings.TrimSpace(t.Given) != "" &&
		strings.TrimSpace(t.Surname) != ""
}

// Gender maps the EMIS sex code to the CPD workbook value.
func (t Teacher) Gender() string {
	if t.Sex == "M" {
		return "Male"
	}
	return "Female"
}

// Text decodes a JSON string or number as text. EMIS returns payroll numbers as either.
type Text string

func (s *Text) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Text(str)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("tPayroll: %w", err)
		}
		if i, err := n.Int64(); err == nil {
			*s = Text(strconv.FormatInt(i, 10))
		} else {
			*s = Text(n.String())
		}
	}
	return nil
}

// Fetch collects every page of /api/teachers. The client must be authenticated.
func Fetch(ctx context.Context, client *emisapi.Client, pageSize int) ([]emisapi.Record, error) {
	records, err := client.Teachers(pageSize).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch teachers: %w", err)
	}
	return records, nil
}

// Save writes records verbatim as a JSON array, creating the directory if needed.
func Save(path string, records []emisapi.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if records == nil {
		records = []emisapi.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a cache written by Save.
func Load(path string) ([]Teacher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read teacher cache (run `emisctl teachers fetch` first): %w", err)
	}
	var list []Teacher
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse teacher cache %s: %w", path, err)
	}
	return list, nil
}

// FilterValid returns the teachers with complete identity fields.
func FilterValid(list []Teacher) []Teacher {
	var out []Teacher
	for _, t := range list {
		if t.Valid() {
			out = append(out, t)
		}
	}
	return out
}
