package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Value Converter

Shows what an amount in %[2]d money was worth in an earlier year (adjusted with the
historical consumer price index) and what it grows to in a future year at an assumed
annual rate.

Usage:
  %[1]s [options]

Options:
`, os.Args[0], DefaultReferenceYear)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %[1]s                                  Desktop window (embedded browser)
  %[1]s -web                             Web server, opens the system browser
  %[1]s -web -addr :8080                 Web server on a fixed port
  %[1]s -console                         Print the default illustration
  %[1]s -console -amount 2m -historical-year 2015 -future-year 2040 -rate 4
  %[1]s -console -timeline -grid         Add year-by-year values and a rate grid
  %[1]s -interactive                     Prompt for the values
  %[1]s -console -pdf out.pdf            Write a PDF illustration
  %[1]s -rates                           Print the historical KPI table
  %[1]s -init-config                     Write config.yaml with the current settings

Configuration:
  config.yaml overrides the embedded defaults (reference year, KPI table, slider bounds).
  config.env and VALUECONV_* environment variables override server and log settings.
`, os.Args[0])
	}

	configFile := flag.String("config", "config.yaml", "Path to YAML configuration file")
	envFile := flag.String("env", "config.env", "Optional env file with VALUECONV_* overrides")
	webMode := flag.Bool("web", false, "Start web server mode (opens external browser)")
	uiMode := flag.Bool("ui", false, "Start embedded browser mode (webview window, the default)")
	consoleMode := flag.Bool("console", false, "Print to the console instead of opening a window")
	interactive := flag.Bool("interactive", false, "Prompt for the values in the console")
	webAddr := flag.String("addr", "", "Web server address (overrides config, use :0 for auto port)")
	amount := flag.String("amount", "", "Amount in reference-year money (e.g. 1000000, 750k, 1.5m)")
	historicalYear := flag.Int("historical-year", 0, "Year to express the amount in, using historical KPI")
	futureYear := flag.Int("future-year", 0, "Year to compound the amount to")
	rate := flag.Float64("rate", 0, "Assumed annual rate in percent for the future value")
	showTimeline := flag.Bool("timeline", false, "Print the value for every year")
	showGrid := flag.Bool("grid", false, "Print future values for every rate choice")
	pdfFile := flag.String("pdf", "", "Write a PDF illustration to this file")
	showRates := flag.Bool("rates", false, "Print the historical KPI table")
	initConfig := flag.Bool("init-config", false, "Write the effective configuration to the -config path and exit")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	config, err := loadConfiguration(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *webAddr != "" {
		config.Server.Addr = *webAddr
	}
	setupLogger(config.Log, os.Stderr)

	if *initConfig {
		if err := SaveConfig(config, *configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved to %s\n", *configFile)
		return
	}

	converter, err := NewConverterFromConfig(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building rate table: %v\n", err)
		os.Exit(1)
	}

	useConsole := *consoleMode || *interactive || *showTimeline || *showGrid || *pdfFile != "" || *showRates ||
		explicit["amount"] || explicit["historical-year"] || explicit["future-year"] || explicit["rate"]

	if useConsole && !*uiMode && !*webMode {
		opts := consoleOptions{
			interactive:    *interactive,
			amount:         *amount,
			historicalYear: *historicalYear,
			futureYear:     *futureYear,
			rate:           *rate,
			timeline:       *showTimeline,
			grid:           *showGrid,
			pdfFile:        *pdfFile,
			rates:          *showRates,
			explicit:       explicit,
		}
		if err := runConsoleMode(config, converter, opts, os.Stdin, os.Stdout); err != nil {
			PrintError(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	prefs, err := NewPreferenceStore(config.Server.DBPath)
	if err != nil {
		slog.Warn("preference store unavailable, theme will not persist", "error", err)
		prefs = NewMemoryPreferenceStore()
	}
	defer prefs.Close()

	ws := NewWebServer(config, converter, prefs, config.Server.Addr)

	if *webMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := ws.Start(ctx); err != nil {
			slog.Error("web server error", "error", err)
			os.Exit(1)
		}
		return
	}

	// Default: desktop window
	if err := runEmbeddedUI(ws); err != nil {
		fmt.Fprintf(os.Stderr, "GUI error: %v\n", err)
		fmt.Println("Falling back to console mode...")
		if err := runConsoleMode(config, converter, consoleOptions{}, os.Stdin, os.Stdout); err != nil {
			PrintError(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// loadConfiguration reads the YAML file (falling back to embedded defaults when it
// does not exist), applies environment overrides and validates the result.
func loadConfiguration(configFile, envFile string) (*Config, error) {
	config, err := LoadConfig(configFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if config, err = LoadDefaultConfig(); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnvironment(config, envFile); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return config, nil
}

type consoleOptions struct {
	interactive    bool
	amount         string
	historicalYear int
	futureYear     int
	rate           float64
	timeline       bool
	grid           bool
	pdfFile        string
	rates          bool
	// names of the flags given on the command line
	explicit map[string]bool
}

// runConsoleMode prints the illustration for the flag (or prompted) values
func runConsoleMode(config *Config, converter *Converter, opts consoleOptions, in io.Reader, out io.Writer) error {
	state := DefaultWidgetState(config)

	if opts.interactive {
		state = NewInteractivePrompter(in, out, config).BuildState()
	} else {
		var err error
		if state, err = applyFlagValues(state, config, opts); err != nil {
			return err
		}
	}

	ill, err := state.Illustrate(converter)
	if err != nil {
		return err
	}
	PrintIllustration(out, ill)
	fmt.Fprintln(out)

	if opts.timeline {
		points, err := Timeline(converter, state.Amount, state.RatePercent, config.Widget.HistoricalYearMin, config.Widget.FutureYearMax)
		if err != nil {
			return err
		}
		PrintTimeline(out, points)
		fmt.Fprintln(out)
	}

	if opts.rates {
		PrintRateTable(out, converter.Rates())
		fmt.Fprintln(out)
	}

	var grid RateGrid
	if opts.grid || opts.pdfFile != "" {
		years := gridYears(converter.ReferenceYear(), config.Widget.FutureYearMax, 5)
		if grid, err = BuildRateGrid(converter, state.Amount, config.Widget.RateChoices, years); err != nil {
			return err
		}
	}
	if opts.grid {
		PrintRateGrid(out, grid)
		fmt.Fprintln(out)
	}

	if opts.pdfFile != "" {
		data, err := GenerateIllustrationPDF(ill, converter.Rates(), grid)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(opts.pdfFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(opts.pdfFile, data, 0644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintf(out, "PDF written to %s (%s)\n", opts.pdfFile, time.Now().Format(time.DateTime))
	}
	return nil
}

// applyFlagValues validates explicit flag values and applies them to state.
// Unlike the sliders, flags outside the allowed range are an error, not clamped.
func applyFlagValues(state WidgetState, config *Config, opts consoleOptions) (WidgetState, error) {
	w := config.Widget
	if opts.explicit["amount"] {
		amount, err := parseMoney(opts.amount)
		if err != nil {
			return state, err
		}
		if err := validateAmount(amount, w.AmountMin, w.AmountMax); err != nil {
			return state, err
		}
		state = state.WithAmount(amount)
	}
	if opts.explicit["historical-year"] {
		if err := validateYear(opts.historicalYear, w.HistoricalYearMin, config.ReferenceYear, "historical_year"); err != nil {
			return state, err
		}
		state = state.WithHistoricalYear(opts.historicalYear)
	}
	if opts.explicit["future-year"] {
		if err := validateYear(opts.futureYear, config.ReferenceYear, w.FutureYearMax, "future_year"); err != nil {
			return state, err
		}
		state = state.WithFutureYear(opts.futureYear)
	}
	if opts.explicit["rate"] {
		if err := validateRate(opts.rate, w.RateChoices); err != nil {
			return state, err
		}
		state = state.WithRate(opts.rate)
	}
	return state, nil
}
