package main

import "fmt"

// PointKind tells which conversion produced a timeline value
type PointKind string

const (
	PointHistorical PointKind = "historical"
	PointReference  PointKind = "reference"
	PointFuture     PointKind = "future"
)

// TimelinePoint is the value of the reference amount expressed in one year
type TimelinePoint struct {
	Year  int       `json:"year"`
	Value int64     `json:"value"`
	Kind  PointKind `json:"kind"`
}

// RateGrid holds future values for several rates across several years.
// Values[i][j] is the amount at Rates[i] in Years[j].
type RateGrid struct {
	Amount int64     `json:"amount"`
	Rates  []float64 `json:"rates"`
	Years  []int     `json:"years"`
	Values [][]int64 `json:"values"`
}

// MaxTimelineYears caps how many years one timeline may span
const MaxTimelineYears = 300

// Timeline converts amount into every year of [fromYear, toYear]. Years before the
// reference year use the rate table, later years compound at ratePercent.
func Timeline(c *Converter, amount int64, ratePercent float64, fromYear, toYear int) ([]TimelinePoint, error) {
	if fromYear > toYear {
		return nil, fmt.Errorf("timeline range %d-%d is empty", fromYear, toYear)
	}
	// fromYear <= toYear, so a negative span means the subtraction overflowed
	if span := toYear - fromYear; span < 0 || span > MaxTimelineYears {
		return nil, fmt.Errorf("timeline range %d-%d exceeds %d years", fromYear, toYear, MaxTimelineYears)
	}

	points := make([]TimelinePoint, 0, toYear-fromYear+1)
	for year := fromYear; year <= toYear; year++ {
		req := ConversionRequest{Amount: float64(amount), TargetYear: year, AssumedRate: ratePercent}

		var (
			value int64
			kind  PointKind
			err   error
		)
		switch {
		case year < c.ReferenceYear():
			kind = PointHistorical
			value, err = c.ToHistoricalYear(req)
		case year == c.ReferenceYear():
			kind = PointReference
			value = amount
		default:
			kind = PointFuture
			value, err = c.ToFutureYear(req)
		}
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		points = append(points, TimelinePoint{Year: year, Value: value, Kind: kind})
	}
	return points, nil
}

// BuildRateGrid computes future values of amount for each rate and year
func BuildRateGrid(c *Converter, amount int64, rates []float64, years []int) (RateGrid, error) {
	grid := RateGrid{
		Amount: amount,
		Rates:  rates,
		Years:  years,
		Values: make([][]int64, len(rates)),
	}
	for i, rate := range rates {
		grid.Values[i] = make([]int64, len(years))
		for j, year := range years {
			value, err := c.ToFutureYear(ConversionRequest{Amount: float64(amount), TargetYear: year, AssumedRate: rate})
			if err != nil {
				return RateGrid{}, fmt.Errorf("rate %s, year %d: %w", FormatRate(rate), year, err)
			}
			grid.Values[i][j] = value
		}
	}
	return grid, nil
}

// gridYears picks evenly spaced years from the reference year to maxYear, always
// including maxYear. step <= 0 defaults to 5 years.
func gridYears(referenceYear, maxYear, step int) []int {
	if step <= 0 {
		step = 5
	}
	var years []int
	for year := referenceYear + step; year < maxYear; year += step {
		years = append(years, year)
	}
	if maxYear > referenceYear {
		years = append(years, maxYear)
	}
	return years
}
