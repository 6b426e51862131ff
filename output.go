package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// FormatAmount groups thousands with spaces and appends ",-" (e.g. "1 000 000,-")
func FormatAmount(amount int64) string {
	return GroupThousands(amount) + ",-"
}

// GroupThousands formats an integer with a space every three digits
func GroupThousands(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// FormatRate formats a percentage for display ("3%", "3.5%")
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgHiBlack)
	valueColor   = color.New(color.FgWhite, color.Bold)
	pastColor    = color.New(color.FgYellow)
	futureColor  = color.New(color.FgGreen)
	warningColor = color.New(color.FgRed)
)

// PrintIllustration prints the three values of an illustration
func PrintIllustration(w io.Writer, ill Illustration) {
	headerColor.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	headerColor.Fprintln(w, "║                VALUE OVER TIME                       ║")
	headerColor.Fprintln(w, "╚══════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	labelColor.Fprintf(w, "  %-28s", fmt.Sprintf("Value in %d:", ill.State.HistoricalYear))
	pastColor.Fprintf(w, "%18s\n", ill.HistoricalText)
	labelColor.Fprintf(w, "  %-28s", fmt.Sprintf("Amount in %d:", ill.ReferenceYear))
	valueColor.Fprintf(w, "%18s\n", ill.PresentText)
	labelColor.Fprintf(w, "  %-28s", fmt.Sprintf("Value in %d at %s:", ill.State.FutureYear, FormatRate(ill.State.RatePercent)))
	futureColor.Fprintf(w, "%18s\n", ill.FutureText)
	fmt.Fprintln(w)
	labelColor.Fprintf(w, "  Historical factor %s, future factor %.6f\n", ill.HistoricalFactor, ill.FutureFactor)
}

// PrintRateTable prints the historical rate table sorted by year
func PrintRateTable(w io.Writer, table RateTable) {
	headerColor.Fprintln(w, "Historical KPI")
	headerColor.Fprintln(w, "──────────────")
	for _, e := range table.Entries() {
		fmt.Fprintf(w, "  %d  %6s%%\n", e.Year, e.Rate.StringFixed(1))
	}
}

// PrintTimeline prints one line per year of a timeline
func PrintTimeline(w io.Writer, points []TimelinePoint) {
	headerColor.Fprintln(w, "Year-by-year")
	headerColor.Fprintln(w, "────────────")
	for _, p := range points {
		c := valueColor
		switch p.Kind {
		case PointHistorical:
			c = pastColor
		case PointFuture:
			c = futureColor
		}
		fmt.Fprintf(w, "  %d  ", p.Year)
		c.Fprintf(w, "%18s\n", FormatAmount(p.Value))
	}
}

// PrintRateGrid prints future values as a rate (rows) by year (columns) table
func PrintRateGrid(w io.Writer, grid RateGrid) {
	headerColor.Fprintf(w, "Future value of %s\n", FormatAmount(grid.Amount))
	fmt.Fprintf(w, "  %6s", "")
	for _, year := range grid.Years {
		fmt.Fprintf(w, " %14d", year)
	}
	fmt.Fprintln(w)
	for i, rate := range grid.Rates {
		labelColor.Fprintf(w, "  %6s", FormatRate(rate))
		for j := range grid.Years {
			fmt.Fprintf(w, " %14s", GroupThousands(grid.Values[i][j]))
		}
		fmt.Fprintln(w)
	}
}

// PrintError prints a conversion error in the console front end
func PrintError(w io.Writer, err error) {
	warningColor.Fprintf(w, "  ✗ %v\n", err)
}
