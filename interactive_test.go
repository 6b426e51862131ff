package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"1000000", 1000000, false},
		{"1m", 1000000, false},
		{"1.5M", 1500000, false},
		{"750k", 750000, false},
		{"1 000 000", 1000000, false},
		{"1 000 000,-", 1000000, false},
		{"  250000  ", 250000, false},
		{"abc", 0, true},
		{"", 0, true},
		{"nan", 0, true},
		{"inf", 0, true},
		{"-Inf", 0, true},
		{"1e30m", 0, true},
		{"9.3e18", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parseMoney(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParsePercent(t *testing.T) {
	got, err := parsePercent("3%")
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	got, err = parsePercent(" 4.5 ")
	require.NoError(t, err)
	assert.Equal(t, 4.5, got)

	_, err = parsePercent("lots")
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateYear(2020, 2010, 2025, "historical_year"))
	assert.Error(t, validateYear(2009, 2010, 2025, "historical_year"))
	assert.Error(t, validateYear(2026, 2010, 2025, "historical_year"))

	assert.NoError(t, validateAmount(100000, 100000, 5000000))
	err := validateAmount(50, 100000, 5000000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100 000")

	assert.NoError(t, validateRate(3, []float64{1, 2, 3}))
	err = validateRate(7, []float64{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, "Rate must be one of 1%, 2%, 3%", err.Error())

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rate", ve.Field)
}

func TestInteractivePrompter_BuildState(t *testing.T) {
	config := mustDefaultConfig(t)

	tests := []struct {
		name     string
		input    string
		expected WidgetState
	}{
		{
			name:     "accept all defaults",
			input:    "\n\n\n\n",
			expected: DefaultWidgetState(config),
		},
		{
			name:  "custom values",
			input: "2m\n2015\n2040\n5%\n",
			expected: DefaultWidgetState(config).
				WithAmount(2000000).WithHistoricalYear(2015).WithFutureYear(2040).WithRate(5),
		},
		{
			name:  "invalid answers are asked again",
			input: "lots\n50\n1.5m\n1999\n2020\n2020\n2045\n9\n1\n",
			expected: DefaultWidgetState(config).
				WithAmount(1500000).WithHistoricalYear(2020).WithFutureYear(2045).WithRate(1),
		},
		{
			name:     "end of input keeps defaults",
			input:    "3m\n",
			expected: DefaultWidgetState(config).WithAmount(3000000),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			state := NewInteractivePrompter(strings.NewReader(tc.input), &out, config).BuildState()
			assert.Equal(t, tc.expected, state)
			assert.Contains(t, out.String(), "Amount [1 000 000]")
		})
	}
}

func TestInteractivePrompter_ShowsValidationErrors(t *testing.T) {
	config := mustDefaultConfig(t)
	var out bytes.Buffer
	NewInteractivePrompter(strings.NewReader("9000000\n\n\n\n\n"), &out, config).BuildState()
	assert.Contains(t, out.String(), "Amount must be between 100 000 and 5 000 000")
}
