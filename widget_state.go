package main

import "slices"

// WidgetState is the widget's current selection. Values are immutable: every
// transition returns a new state clamped to the configured slider bounds.
type WidgetState struct {
	Amount         int64   `json:"amount"`
	HistoricalYear int     `json:"historical_year"`
	FutureYear     int     `json:"future_year"`
	RatePercent    float64 `json:"rate"`

	bounds stateBounds
}

type stateBounds struct {
	amountMin, amountMax, amountStep int64
	historicalMin, reference         int
	futureMax                        int
	rateChoices                      []float64
}

// Illustration is what the widget renders for a state
type Illustration struct {
	State            WidgetState `json:"state"`
	ReferenceYear    int         `json:"reference_year"`
	Present          int64       `json:"present"`
	Historical       int64       `json:"historical"`
	Future           int64       `json:"future"`
	HistoricalFactor string      `json:"historical_factor"`
	FutureFactor     float64     `json:"future_factor"`
	PresentText      string      `json:"present_text"`
	HistoricalText   string      `json:"historical_text"`
	FutureText       string      `json:"future_text"`
}

// Direction of an arrow-key amount step
type Direction int

const (
	StepDown Direction = -1
	StepUp   Direction = 1
)

// DefaultWidgetState returns the initial state described by the widget config
func DefaultWidgetState(config *Config) WidgetState {
	w := config.Widget
	state := WidgetState{
		bounds: stateBounds{
			amountMin:     w.AmountMin,
			amountMax:     w.AmountMax,
			amountStep:    w.AmountStep,
			historicalMin: w.HistoricalYearMin,
			reference:     config.ReferenceYear,
			futureMax:     w.FutureYearMax,
			rateChoices:   w.RateChoices,
		},
	}
	return state.
		WithAmount(w.DefaultAmount).
		WithHistoricalYear(w.DefaultHistoricalYear).
		WithFutureYear(w.DefaultFutureYear).
		WithRate(w.DefaultRate)
}

// WithAmount returns a copy with the amount clamped to the slider range
func (s WidgetState) WithAmount(amount int64) WidgetState {
	s.Amount = clampInt64(amount, s.bounds.amountMin, s.bounds.amountMax)
	return s
}

// WithHistoricalYear returns a copy with the historical year clamped to
// [historical minimum, reference year]
func (s WidgetState) WithHistoricalYear(year int) WidgetState {
	s.HistoricalYear = clampInt(year, s.bounds.historicalMin, s.bounds.reference)
	return s
}

// WithFutureYear returns a copy with the future year clamped to
// [reference year, future maximum]
func (s WidgetState) WithFutureYear(year int) WidgetState {
	s.FutureYear = clampInt(year, s.bounds.reference, s.bounds.futureMax)
	return s
}

// WithRate returns a copy with the selected rate. Rates outside the configured
// choices keep the current selection.
func (s WidgetState) WithRate(rate float64) WidgetState {
	if len(s.bounds.rateChoices) > 0 && !slices.Contains(s.bounds.rateChoices, rate) {
		return s
	}
	s.RatePercent = rate
	return s
}

// StepAmount moves the amount one slider step (arrow keys)
func (s WidgetState) StepAmount(dir Direction) WidgetState {
	return s.WithAmount(s.Amount + int64(dir)*s.bounds.amountStep)
}

// HistoricalRequest builds the request for the backward conversion
func (s WidgetState) HistoricalRequest() ConversionRequest {
	return ConversionRequest{Amount: float64(s.Amount), TargetYear: s.HistoricalYear}
}

// FutureRequest builds the request for the forward conversion
func (s WidgetState) FutureRequest() ConversionRequest {
	return ConversionRequest{Amount: float64(s.Amount), TargetYear: s.FutureYear, AssumedRate: s.RatePercent}
}

// Illustrate runs both conversions for the state
func (s WidgetState) Illustrate(c *Converter) (Illustration, error) {
	historical, err := c.ToHistoricalYear(s.HistoricalRequest())
	if err != nil {
		return Illustration{}, err
	}
	future, err := c.ToFutureYear(s.FutureRequest())
	if err != nil {
		return Illustration{}, err
	}

	return Illustration{
		State:            s,
		ReferenceYear:    c.ReferenceYear(),
		Present:          s.Amount,
		Historical:       historical,
		Future:           future,
		HistoricalFactor: c.HistoricalFactor(s.HistoricalYear).StringFixed(6),
		FutureFactor:     c.FutureFactor(s.FutureYear, s.RatePercent),
		PresentText:      FormatAmount(s.Amount),
		HistoricalText:   FormatAmount(historical),
		FutureText:       FormatAmount(future),
	}, nil
}

func clampInt64(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
