package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Conversion errors
var (
	ErrInvalidAmount      = errors.New("amount must be a finite, non-negative number")
	ErrNonPositiveFactor  = errors.New("cumulative factor is not positive")
	ErrYearAfterReference = errors.New("historical year is after the reference year")
	ErrNonFiniteResult    = errors.New("conversion result is not representable")
)

// ConversionRequest is one user interaction: an amount, the year to convert it to,
// and for forward conversion the assumed annual rate in percent.
// Amounts, years and rates are checked by the conversion functions.
type ConversionRequest struct {
	Amount      float64 `json:"amount"`
	TargetYear  int     `json:"target_year"`
	AssumedRate float64 `json:"assumed_rate"`
}

// ConvertToHistoricalYear expresses a reference-year amount in the money of an earlier year,
// dividing by the compounded yearly rates between the two.
func ConvertToHistoricalYear(amount float64, historicalYear, referenceYear int, table RateTable) (int64, error) {
	if err := checkAmount(amount); err != nil {
		return 0, err
	}
	if historicalYear == referenceYear {
		return roundToInt64(amount)
	}
	if historicalYear > referenceYear {
		return 0, fmt.Errorf("%w: %d > %d", ErrYearAfterReference, historicalYear, referenceYear)
	}

	factor := table.CumulativeFactor(historicalYear, referenceYear)
	if factor.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s for %d-%d", ErrNonPositiveFactor, factor.String(), historicalYear, referenceYear)
	}

	result := decimal.NewFromFloat(amount).Div(factor).Round(0)
	return toInt64(result)
}

// ConvertToFutureYear compounds an amount at a fixed annual rate from the reference year
// to futureYear. A future year before the reference year discounts the amount.
func ConvertToFutureYear(amount float64, futureYear, referenceYear int, assumedRatePercent float64) (int64, error) {
	if err := checkAmount(amount); err != nil {
		return 0, err
	}
	if futureYear == referenceYear {
		return roundToInt64(amount)
	}

	base := 1 + assumedRatePercent/100
	if base <= 0 || math.IsNaN(base) {
		return 0, fmt.Errorf("%w: rate %.2f%%", ErrNonPositiveFactor, assumedRatePercent)
	}

	yearsDiff := futureYear - referenceYear
	factor := math.Pow(base, float64(yearsDiff))
	value, err := roundToInt64(amount * factor)
	if err != nil {
		return 0, fmt.Errorf("%w: %d years at %.2f%%", ErrNonFiniteResult, yearsDiff, assumedRatePercent)
	}
	return value, nil
}

func checkAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w (got %v)", ErrInvalidAmount, amount)
	}
	return nil
}

// roundToInt64 rounds half away from zero and rejects values outside the int64 range
func roundToInt64(v float64) (int64, error) {
	v = math.Round(v)
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v", ErrNonFiniteResult, v)
	}
	return int64(v), nil
}

var maxInt64Decimal = decimal.NewFromInt(math.MaxInt64)

func toInt64(d decimal.Decimal) (int64, error) {
	if d.GreaterThan(maxInt64Decimal) {
		return 0, fmt.Errorf("%w: %s", ErrNonFiniteResult, d.String())
	}
	return d.IntPart(), nil
}

// Converter binds a rate table and reference year so callers only pass the request
type Converter struct {
	rates         RateTable
	referenceYear int
}

// NewConverter creates a converter anchored at referenceYear
func NewConverter(rates RateTable, referenceYear int) *Converter {
	return &Converter{
		rates:         rates,
		referenceYear: referenceYear,
	}
}

// ReferenceYear returns the year treated as "now"
func (c *Converter) ReferenceYear() int {
	return c.referenceYear
}

// Rates returns the historical rate table
func (c *Converter) Rates() RateTable {
	return c.rates
}

// ToHistoricalYear converts req.Amount back to req.TargetYear using the rate table
func (c *Converter) ToHistoricalYear(req ConversionRequest) (int64, error) {
	return ConvertToHistoricalYear(req.Amount, req.TargetYear, c.referenceYear, c.rates)
}

// ToFutureYear converts req.Amount forward to req.TargetYear at req.AssumedRate
func (c *Converter) ToFutureYear(req ConversionRequest) (int64, error) {
	return ConvertToFutureYear(req.Amount, req.TargetYear, c.referenceYear, req.AssumedRate)
}

// HistoricalFactor returns the cumulative factor between year and the reference year
func (c *Converter) HistoricalFactor(year int) decimal.Decimal {
	return c.rates.CumulativeFactor(year, c.referenceYear)
}

// FutureFactor returns (1 + rate/100)^(year - reference)
func (c *Converter) FutureFactor(year int, ratePercent float64) float64 {
	return math.Pow(1+ratePercent/100, float64(year-c.referenceYear))
}
