package main

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRateTable(t *testing.T) {
	table := DefaultRateTable()

	assert.Equal(t, 15, table.Len())
	assert.Equal(t, 2010, table.FirstYear())
	assert.Equal(t, 2024, table.LastYear())

	rate, ok := table.Rate(2022)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("5.8")), "2022 rate = %s", rate)

	_, ok = table.Rate(2025)
	assert.False(t, ok, "reference year has no rate")
}

func TestRateTable_EntriesSortedAndUnique(t *testing.T) {
	entries := DefaultRateTable().Entries()
	require.Len(t, entries, 15)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Year, entries[i].Year)
	}
	assert.Equal(t, 2010, entries[0].Year)
	assert.Equal(t, "2.4", entries[0].Rate.String())
	assert.Equal(t, "3.1", entries[14].Rate.String())
}

func TestNewRateTable(t *testing.T) {
	table, err := NewRateTable(map[int]float64{2001: 1.5, 2000: 2})
	require.NoError(t, err)
	assert.Equal(t, 2000, table.FirstYear())
	assert.Equal(t, 2001, table.LastYear())
	assert.Equal(t, map[int]float64{2000: 2, 2001: 1.5}, table.Percentages())

	_, err = NewRateTable(nil)
	assert.ErrorIs(t, err, ErrEmptyRateTable)

	_, err = NewRateTable(map[int]float64{2020: math.NaN()})
	assert.Error(t, err)

	_, err = NewRateTable(map[int]float64{2020: math.Inf(-1)})
	assert.Error(t, err)
}

func TestRateTable_EmptyBounds(t *testing.T) {
	var table RateTable
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.FirstYear())
	assert.Equal(t, 0, table.LastYear())
	assert.Equal(t, "1", table.CumulativeFactor(2000, 2025).String())
}

func TestRateTable_CumulativeFactor(t *testing.T) {
	table := DefaultRateTable()

	tests := []struct {
		name     string
		from, to int
		expected string
	}{
		{"empty range", 2025, 2025, "1"},
		{"reversed range", 2025, 2020, "1"},
		{"single year", 2024, 2025, "1.031"},
		{"two years", 2023, 2025, "1.087705"},
		{"excludes upper bound", 2022, 2024, "1.11619"},
		{"before table", 2000, 2010, "1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := table.CumulativeFactor(tc.from, tc.to)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)), "got %s, want %s", got, tc.expected)
		})
	}
}

func TestRateTable_CumulativeFactorWideRange(t *testing.T) {
	table := DefaultRateTable()

	done := make(chan decimal.Decimal, 1)
	go func() { done <- table.CumulativeFactor(-1<<40, DefaultReferenceYear) }()

	select {
	case got := <-done:
		want := table.CumulativeFactor(table.FirstYear(), DefaultReferenceYear)
		assert.True(t, got.Equal(want), "got %s, want %s", got, want)
	case <-time.After(2 * time.Second):
		t.Fatal("CumulativeFactor did not return for a range far wider than the table")
	}

	assert.Equal(t, "1", table.CumulativeFactor(math.MinInt, 2000).String())
	assert.Equal(t, "1", table.CumulativeFactor(2030, math.MaxInt).String())
}

func TestRateTable_PercentagesCopy(t *testing.T) {
	table := DefaultRateTable()
	pct := table.Percentages()
	pct[2024] = 99

	rate, _ := table.Rate(2024)
	assert.Equal(t, "3.1", rate.String(), "mutating Percentages must not change the table")
}
