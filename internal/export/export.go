// Package export serializes saved scenarios for download. A JSON export
// imported back reproduces the identical scenario record.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kraftmortgages/calcserv/internal/models"
)

// ScenarioJSON renders a scenario as indented JSON.
func ScenarioJSON(s models.Scenario) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenario: %w", err)
	}
	return data, nil
}

// ScenarioFromJSON parses a previously exported scenario.
func ScenarioFromJSON(data []byte) (models.Scenario, error) {
	var s models.Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Scenario{}, fmt.Errorf("failed to parse scenario export: %w", err)
	}
	return s, nil
}

// ScenarioCSV flattens a scenario's input and result records into a two-row
// CSV (header + values). Input fields are prefixed "input.", result fields
// "result."; columns are sorted for a stable layout.
func ScenarioCSV(s models.Scenario) (string, error) {
	row := map[string]any{
		"id":         s.ID,
		"calculator": s.Calculator,
		"created_at": s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if err := flattenInto(row, "input.", s.Input); err != nil {
		return "", err
	}
	if err := flattenInto(row, "result.", s.Result); err != nil {
		return "", err
	}

	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(c))
	}
	b.WriteByte('\n')
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(fmt.Sprintf("%v", row[c])))
	}
	b.WriteByte('\n')
	return b.String(), nil
}

// flattenInto flattens one level of a JSON object into dot-prefixed columns.
// Nested objects keep descending; arrays are serialized inline.
func flattenInto(row map[string]any, prefix string, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("failed to flatten record: %w", err)
	}
	for k, v := range obj {
		switch val := v.(type) {
		case map[string]any:
			nested, _ := json.Marshal(val)
			if err := flattenInto(row, prefix+k+".", nested); err != nil {
				return err
			}
		case []any:
			inline, _ := json.Marshal(val)
			row[prefix+k] = string(inline)
		default:
			row[prefix+k] = v
		}
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, "\",\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
