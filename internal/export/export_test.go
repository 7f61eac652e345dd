package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraftmortgages/calcserv/internal/models"
)

func sampleScenario() models.Scenario {
	return models.Scenario{
		ID:         42,
		Calculator: "affordability",
		Input:      json.RawMessage(`{"gross_annual_income":85000,"credit_score":720}`),
		Result:     json.RawMessage(`{"qualifies":true,"max_purchase_price":512345.67}`),
		CreatedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestScenarioJSON_RoundTrip(t *testing.T) {
	s := sampleScenario()

	data, err := ScenarioJSON(s)
	require.NoError(t, err)

	back, err := ScenarioFromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Calculator, back.Calculator)
	assert.JSONEq(t, string(s.Input), string(back.Input))
	assert.JSONEq(t, string(s.Result), string(back.Result))
	assert.True(t, s.CreatedAt.Equal(back.CreatedAt))
}

func TestScenarioCSV(t *testing.T) {
	csv, err := ScenarioCSV(sampleScenario())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], ",")
	values := strings.Split(lines[1], ",")
	assert.Equal(t, len(header), len(values))

	assert.Contains(t, lines[0], "input.gross_annual_income")
	assert.Contains(t, lines[0], "result.max_purchase_price")
	assert.Contains(t, lines[1], "512345.67")
	assert.Contains(t, lines[1], "affordability")
}

func TestScenarioCSV_NestedAndEscaped(t *testing.T) {
	s := models.Scenario{
		ID:         1,
		Calculator: `quotes,"everywhere"`,
		Input:      json.RawMessage(`{"accessibility":{"rhf_score":80},"tags":["a","b"]}`),
		CreatedAt:  time.Now().UTC(),
	}
	csv, err := ScenarioCSV(s)
	require.NoError(t, err)

	assert.Contains(t, csv, "input.accessibility.rhf_score")
	assert.Contains(t, csv, `"quotes,""everywhere"""`)
}

func TestScenarioFromJSON_Malformed(t *testing.T) {
	_, err := ScenarioFromJSON([]byte("{not json"))
	assert.Error(t, err)
}
