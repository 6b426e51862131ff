package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	config := mustDefaultConfig(t)

	assert.Equal(t, 2025, config.ReferenceYear)
	assert.Len(t, config.Rates, 15)
	assert.Equal(t, 3.1, config.Rates[2024])
	assert.Equal(t, 0.8, config.Rates[2012])

	w := config.Widget
	assert.Equal(t, int64(100000), w.AmountMin)
	assert.Equal(t, int64(5000000), w.AmountMax)
	assert.Equal(t, int64(100000), w.AmountStep)
	assert.Equal(t, int64(1000000), w.DefaultAmount)
	assert.Equal(t, 2010, w.HistoricalYearMin)
	assert.Equal(t, 2050, w.FutureYearMax)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, w.RateChoices)
	assert.Equal(t, 3.0, w.DefaultRate)

	assert.Equal(t, "localhost:0", config.Server.Addr)
	assert.Equal(t, "info", config.Log.Level)

	require.NoError(t, config.Validate())
}

func TestDefaultConfigMatchesBuiltInTable(t *testing.T) {
	config := mustDefaultConfig(t)
	table, err := config.RateTable()
	require.NoError(t, err)

	for _, e := range DefaultRateTable().Entries() {
		rate, ok := table.Rate(e.Year)
		require.True(t, ok, "year %d missing from default-config.yaml", e.Year)
		assert.True(t, rate.Equal(e.Rate), "year %d: config %s, built-in %s", e.Year, rate, e.Rate)
	}
}

func TestPreprocessPercentages(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"rate: 3.1%", "rate: 3.1"},
		{"default_rate: 3%", "default_rate: 3"},
		{"rate_choices: [1%, 2.5%, 5%]", "rate_choices: [1, 2.5, 5]"},
		{"  2022: -1.5%", "  2022: -1.5"},
		{"rate: 3.1", "rate: 3.1"},
		{"# 100% sure", "# 100% sure"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, preprocessPercentages(tc.in), "input %q", tc.in)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
reference_year: 2026
rates:
  2024: 3.1%
  2025: 2%
widget:
  default_future_year: 2035
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2026, config.ReferenceYear)
	assert.Equal(t, map[int]float64{2024: 3.1, 2025: 2}, config.Rates, "file rates replace the default table")
	assert.Equal(t, 2035, config.Widget.DefaultFutureYear)
	assert.Equal(t, int64(5000000), config.Widget.AmountMax, "unset fields keep defaults")

	converter, err := NewConverterFromConfig(config)
	require.NoError(t, err)
	got, err := converter.ToHistoricalYear(ConversionRequest{Amount: 1000000, TargetYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, int64(980392), got) // 1 000 000 / 1.02
}

func TestLoadConfig_KeepsDefaultRatesWhenOmitted(t *testing.T) {
	path := writeConfigFile(t, "widget:\n  default_amount: 2000000\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, config.Rates, 15)
	assert.Equal(t, int64(2000000), config.Widget.DefaultAmount)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeConfigFile(t, "reference_year: [not, a, year]\n")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	config := mustDefaultConfig(t)
	config.Widget.DefaultAmount = 2500000

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.ReferenceYear, loaded.ReferenceYear)
	assert.Equal(t, config.Rates, loaded.Rates)
	assert.Equal(t, config.Widget, loaded.Widget)
}

func TestApplyEnvironment(t *testing.T) {
	config := mustDefaultConfig(t)

	t.Setenv("VALUECONV_ADDR", "127.0.0.1:9090")
	t.Setenv("VALUECONV_LOG_LEVEL", "debug")

	envFile := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALUECONV_EXPORT_DIR=/tmp/valueconv-exports\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("VALUECONV_EXPORT_DIR") })

	require.NoError(t, ApplyEnvironment(config, envFile))

	assert.Equal(t, "127.0.0.1:9090", config.Server.Addr)
	assert.Equal(t, "/tmp/valueconv-exports", config.Server.ExportDir)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format, "unset variables keep file values")
}

func TestApplyEnvironment_MissingEnvFile(t *testing.T) {
	config := mustDefaultConfig(t)
	require.NoError(t, ApplyEnvironment(config, filepath.Join(t.TempDir(), "none.env")))
	assert.Equal(t, "localhost:0", config.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"empty rate table", func(c *Config) { c.Rates = nil }, "Config.Rates"},
		{"max below min", func(c *Config) { c.Widget.AmountMax = 50000 }, "Config.Widget.AmountMax"},
		{"zero step", func(c *Config) { c.Widget.AmountStep = 0 }, "Config.Widget.AmountStep"},
		{"default amount out of range", func(c *Config) { c.Widget.DefaultAmount = 99 }, "default amount 99"},
		{"historical default after reference", func(c *Config) { c.Widget.DefaultHistoricalYear = 2026 }, "default historical year 2026"},
		{"future max before reference", func(c *Config) { c.Widget.FutureYearMax = 2020 }, "future year maximum 2020"},
		{"default rate not offered", func(c *Config) { c.Widget.DefaultRate = 7 }, "default rate 7"},
		{"no rate choices", func(c *Config) { c.Widget.RateChoices = nil }, "Config.Widget.RateChoices"},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, "Config.Log.Level"},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "Config.Server.Addr"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := mustDefaultConfig(t)
			tc.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
