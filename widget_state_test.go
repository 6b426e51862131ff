package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefaultConfig(t *testing.T) *Config {
	t.Helper()
	config, err := LoadDefaultConfig()
	require.NoError(t, err, "embedded defaults must parse")
	return config
}

func TestDefaultWidgetState(t *testing.T) {
	state := DefaultWidgetState(mustDefaultConfig(t))

	assert.Equal(t, int64(1000000), state.Amount)
	assert.Equal(t, 2024, state.HistoricalYear)
	assert.Equal(t, 2030, state.FutureYear)
	assert.Equal(t, 3.0, state.RatePercent)
}

func TestWidgetState_Clamping(t *testing.T) {
	state := DefaultWidgetState(mustDefaultConfig(t))

	tests := []struct {
		name  string
		apply func(WidgetState) WidgetState
		check func(t *testing.T, s WidgetState)
	}{
		{"amount below minimum", func(s WidgetState) WidgetState { return s.WithAmount(5) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, int64(100000), s.Amount) }},
		{"amount above maximum", func(s WidgetState) WidgetState { return s.WithAmount(9000000) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, int64(5000000), s.Amount) }},
		{"amount in range", func(s WidgetState) WidgetState { return s.WithAmount(1234567) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, int64(1234567), s.Amount) }},
		{"historical year before table", func(s WidgetState) WidgetState { return s.WithHistoricalYear(1990) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, 2010, s.HistoricalYear) }},
		{"historical year after reference", func(s WidgetState) WidgetState { return s.WithHistoricalYear(2030) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, 2025, s.HistoricalYear) }},
		{"future year before reference", func(s WidgetState) WidgetState { return s.WithFutureYear(2000) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, 2025, s.FutureYear) }},
		{"future year past maximum", func(s WidgetState) WidgetState { return s.WithFutureYear(2100) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, 2050, s.FutureYear) }},
		{"rate choice", func(s WidgetState) WidgetState { return s.WithRate(5) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, 5.0, s.RatePercent) }},
		{"rate not offered keeps selection", func(s WidgetState) WidgetState { return s.WithRate(7) },
			func(t *testing.T, s WidgetState) { assert.Equal(t, 3.0, s.RatePercent) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, tc.apply(state))
		})
	}
}

func TestWidgetState_TransitionsDoNotMutate(t *testing.T) {
	state := DefaultWidgetState(mustDefaultConfig(t))
	_ = state.WithAmount(2000000).WithHistoricalYear(2015).WithFutureYear(2040).WithRate(1)

	assert.Equal(t, int64(1000000), state.Amount)
	assert.Equal(t, 2024, state.HistoricalYear)
	assert.Equal(t, 2030, state.FutureYear)
	assert.Equal(t, 3.0, state.RatePercent)
}

func TestWidgetState_StepAmount(t *testing.T) {
	state := DefaultWidgetState(mustDefaultConfig(t))

	assert.Equal(t, int64(1100000), state.StepAmount(StepUp).Amount)
	assert.Equal(t, int64(900000), state.StepAmount(StepDown).Amount)

	low := state.WithAmount(100000).StepAmount(StepDown)
	assert.Equal(t, int64(100000), low.Amount, "arrow down stops at the minimum")

	high := state.WithAmount(5000000).StepAmount(StepUp)
	assert.Equal(t, int64(5000000), high.Amount, "arrow up stops at the maximum")

	// Off-step amounts move by a full step and then clamp
	odd := state.WithAmount(4950000).StepAmount(StepUp)
	assert.Equal(t, int64(5000000), odd.Amount)
}

func TestWidgetState_Requests(t *testing.T) {
	state := DefaultWidgetState(mustDefaultConfig(t))

	assert.Equal(t, ConversionRequest{Amount: 1000000, TargetYear: 2024}, state.HistoricalRequest())
	assert.Equal(t, ConversionRequest{Amount: 1000000, TargetYear: 2030, AssumedRate: 3}, state.FutureRequest())
}

func TestWidgetState_Illustrate(t *testing.T) {
	config := mustDefaultConfig(t)
	converter, err := NewConverterFromConfig(config)
	require.NoError(t, err)

	ill, err := DefaultWidgetState(config).Illustrate(converter)
	require.NoError(t, err)

	assert.Equal(t, 2025, ill.ReferenceYear)
	assert.Equal(t, int64(1000000), ill.Present)
	assert.Equal(t, int64(969932), ill.Historical)
	assert.Equal(t, int64(1159274), ill.Future)
	assert.Equal(t, "1 000 000,-", ill.PresentText)
	assert.Equal(t, "969 932,-", ill.HistoricalText)
	assert.Equal(t, "1 159 274,-", ill.FutureText)
	assert.Equal(t, "1.031000", ill.HistoricalFactor)
	assert.InDelta(t, 1.159274, ill.FutureFactor, 1e-6)
}

func TestWidgetState_IllustrateAtReferenceYear(t *testing.T) {
	config := mustDefaultConfig(t)
	converter, err := NewConverterFromConfig(config)
	require.NoError(t, err)

	state := DefaultWidgetState(config).
		WithAmount(2300000).
		WithHistoricalYear(2025).
		WithFutureYear(2025)
	for _, rate := range config.Widget.RateChoices {
		ill, err := state.WithRate(rate).Illustrate(converter)
		require.NoError(t, err)
		assert.Equal(t, int64(2300000), ill.Historical)
		assert.Equal(t, int64(2300000), ill.Future, "rate %v%%", rate)
	}
}
