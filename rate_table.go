package main

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultReferenceYear is the year all conversions are anchored to
const DefaultReferenceYear = 2025

// RateEntry is a single year of the rate table
type RateEntry struct {
	Year int             `json:"year"`
	Rate decimal.Decimal `json:"rate"` // Percent, e.g. 3.1 = 3.1%
}

// RateTable is an immutable year -> percentage mapping.
// Years missing from the table are treated as 0% by the converter.
type RateTable struct {
	rates map[int]decimal.Decimal
}

// defaultKPIRates holds yearly consumer price index changes (percent).
// Source: Statistics Norway (SSB), annual average KPI change.
var defaultKPIRates = map[int]string{
	2010: "2.4",
	2011: "1.3",
	2012: "0.8",
	2013: "2.1",
	2014: "2.1",
	2015: "2.2",
	2016: "3.6",
	2017: "1.8",
	2018: "2.7",
	2019: "2.2",
	2020: "1.3",
	2021: "3.5",
	2022: "5.8",
	2023: "5.5",
	2024: "3.1",
}

// ErrEmptyRateTable is returned when a table is built without entries
var ErrEmptyRateTable = errors.New("rate table has no entries")

// DefaultRateTable returns the built-in KPI table
func DefaultRateTable() RateTable {
	rates := make(map[int]decimal.Decimal, len(defaultKPIRates))
	for year, rate := range defaultKPIRates {
		rates[year] = decimal.RequireFromString(rate)
	}
	return RateTable{rates: rates}
}

// NewRateTable builds a table from percentages keyed by year
func NewRateTable(rates map[int]float64) (RateTable, error) {
	if len(rates) == 0 {
		return RateTable{}, ErrEmptyRateTable
	}
	table := make(map[int]decimal.Decimal, len(rates))
	for year, rate := range rates {
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			return RateTable{}, fmt.Errorf("rate for %d is not a finite number", year)
		}
		table[year] = decimal.NewFromFloat(rate)
	}
	return RateTable{rates: table}, nil
}

// Rate returns the percentage for a year and whether the year is in the table
func (t RateTable) Rate(year int) (decimal.Decimal, bool) {
	rate, ok := t.rates[year]
	return rate, ok
}

// Len returns the number of years in the table
func (t RateTable) Len() int {
	return len(t.rates)
}

// Entries returns all entries sorted by year
func (t RateTable) Entries() []RateEntry {
	entries := make([]RateEntry, 0, len(t.rates))
	for year, rate := range t.rates {
		entries = append(entries, RateEntry{Year: year, Rate: rate})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Year < entries[j].Year
	})
	return entries
}

// FirstYear returns the earliest year in the table, or 0 if empty
func (t RateTable) FirstYear() int {
	entries := t.Entries()
	if len(entries) == 0 {
		return 0
	}
	return entries[0].Year
}

// LastYear returns the latest year in the table, or 0 if empty
func (t RateTable) LastYear() int {
	entries := t.Entries()
	if len(entries) == 0 {
		return 0
	}
	return entries[len(entries)-1].Year
}

// CumulativeFactor multiplies (1 + rate/100) for every table year in [from, to).
// Years absent from the table contribute nothing. An empty range yields 1.
// The work is bounded by the table size, not by the width of the range.
func (t RateTable) CumulativeFactor(from, to int) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	factor := decimal.NewFromInt(1)
	for year, rate := range t.rates {
		if year < from || year >= to {
			continue
		}
		factor = factor.Mul(decimal.NewFromInt(1).Add(rate.Div(hundred)))
	}
	return factor
}

// Percentages returns the table as plain float percentages, for YAML round trips
func (t RateTable) Percentages() map[int]float64 {
	result := make(map[int]float64, len(t.rates))
	for year, rate := range t.rates {
		result[year] = rate.InexactFloat64()
	}
	return result
}
