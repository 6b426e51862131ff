package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ValidationError describes a rejected input or config field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// validateYear checks a year is inside [min, max]
func validateYear(year, min, max int, fieldName string) error {
	if year < min || year > max {
		return ValidationError{Field: fieldName, Message: fmt.Sprintf("Year must be between %d and %d (got %d)", min, max, year)}
	}
	return nil
}

// validateAmount checks an amount is inside the slider range
func validateAmount(amount, min, max int64) error {
	if amount < min || amount > max {
		return ValidationError{Field: "amount", Message: fmt.Sprintf("Amount must be between %s and %s", GroupThousands(min), GroupThousands(max))}
	}
	return nil
}

// validateRate checks a rate is one of the offered choices
func validateRate(rate float64, choices []float64) error {
	for _, c := range choices {
		if c == rate {
			return nil
		}
	}
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = FormatRate(c)
	}
	return ValidationError{Field: "rate", Message: fmt.Sprintf("Rate must be one of %s", strings.Join(labels, ", "))}
}

// parseMoney parses amounts like "1m", "750k", "1 000 000" or "1000000,-"
func parseMoney(input string) (int64, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	input = strings.TrimSuffix(input, ",-")
	input = strings.ReplaceAll(input, " ", "")
	multiplier := 1.0
	if strings.HasSuffix(input, "k") {
		multiplier = 1000
		input = strings.TrimSuffix(input, "k")
	} else if strings.HasSuffix(input, "m") {
		multiplier = 1000000
		input = strings.TrimSuffix(input, "m")
	}
	val, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, ValidationError{Field: "amount", Message: "Invalid amount. Use e.g. 1000000, 750k or 1.5m"}
	}
	val *= multiplier
	if math.IsNaN(val) || math.IsInf(val, 0) || math.Abs(val) >= math.MaxInt64 {
		return 0, ValidationError{Field: "amount", Message: "Invalid amount. Use e.g. 1000000, 750k or 1.5m"}
	}
	return int64(val), nil
}

// parsePercent converts "3%" or "3" to 3
func parsePercent(input string) (float64, error) {
	input = strings.TrimSuffix(strings.TrimSpace(input), "%")
	rate, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, ValidationError{Field: "rate", Message: "Invalid rate. Use e.g. 3 or 3%"}
	}
	return rate, nil
}

// InteractivePrompter asks for widget values on a terminal
type InteractivePrompter struct {
	reader *bufio.Reader
	out    io.Writer
	config *Config
}

// NewInteractivePrompter creates a prompter reading from in and writing prompts to out
func NewInteractivePrompter(in io.Reader, out io.Writer, config *Config) *InteractivePrompter {
	return &InteractivePrompter{
		reader: bufio.NewReader(in),
		out:    out,
		config: config,
	}
}

// readLine returns the trimmed input, or "" at end of input
func (p *InteractivePrompter) readLine() (string, bool) {
	input, err := p.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if err != nil && input == "" {
		return "", false
	}
	return input, true
}

// prompt repeats a question until parse accepts the answer. An empty answer keeps
// defaultVal, and so does running out of input.
func prompt[T any](p *InteractivePrompter, question, defaultLabel string, defaultVal T, parse func(string) (T, error)) T {
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", question, defaultLabel)
		input, ok := p.readLine()
		if !ok {
			fmt.Fprintln(p.out)
			return defaultVal
		}
		if input == "" {
			return defaultVal
		}
		val, err := parse(input)
		if err != nil {
			fmt.Fprintf(p.out, "  ✗ %s\n", err.Error())
			continue
		}
		return val
	}
}

// BuildState prompts for amount, years and rate, starting from the configured defaults
func (p *InteractivePrompter) BuildState() WidgetState {
	w := p.config.Widget
	ref := p.config.ReferenceYear
	state := DefaultWidgetState(p.config)

	fmt.Fprintln(p.out, "Enter values (press Enter to accept the default)")
	fmt.Fprintln(p.out)

	amount := prompt(p, "Amount", GroupThousands(state.Amount), state.Amount, func(s string) (int64, error) {
		v, err := parseMoney(s)
		if err != nil {
			return 0, err
		}
		return v, validateAmount(v, w.AmountMin, w.AmountMax)
	})

	historical := prompt(p, "Historical year", strconv.Itoa(state.HistoricalYear), state.HistoricalYear, func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, ValidationError{Field: "historical_year", Message: "Invalid year"}
		}
		return v, validateYear(v, w.HistoricalYearMin, ref, "historical_year")
	})

	future := prompt(p, "Future year", strconv.Itoa(state.FutureYear), state.FutureYear, func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, ValidationError{Field: "future_year", Message: "Invalid year"}
		}
		return v, validateYear(v, ref, w.FutureYearMax, "future_year")
	})

	rate := prompt(p, "Assumed annual rate", FormatRate(state.RatePercent), state.RatePercent, func(s string) (float64, error) {
		v, err := parsePercent(s)
		if err != nil {
			return 0, err
		}
		return v, validateRate(v, w.RateChoices)
	})

	fmt.Fprintln(p.out)
	return state.
		WithAmount(amount).
		WithHistoricalYear(historical).
		WithFutureYear(future).
		WithRate(rate)
}
