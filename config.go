package main

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// envPrefix is the prefix for environment overrides (VALUECONV_ADDR etc.)
const envPrefix = "VALUECONV"

// WidgetConfig holds slider bounds and the initial widget state
type WidgetConfig struct {
	AmountMin             int64     `yaml:"amount_min" json:"amount_min" validate:"gte=0"`
	AmountMax             int64     `yaml:"amount_max" json:"amount_max" validate:"gtfield=AmountMin"`
	AmountStep            int64     `yaml:"amount_step" json:"amount_step" validate:"gt=0"`
	DefaultAmount         int64     `yaml:"default_amount" json:"default_amount" validate:"gte=0"`
	HistoricalYearMin     int       `yaml:"historical_year_min" json:"historical_year_min" validate:"gte=1800"`
	DefaultHistoricalYear int       `yaml:"default_historical_year" json:"default_historical_year"`
	FutureYearMax         int       `yaml:"future_year_max" json:"future_year_max" validate:"lte=2300"`
	DefaultFutureYear     int       `yaml:"default_future_year" json:"default_future_year"`
	RateChoices           []float64 `yaml:"rate_choices" json:"rate_choices" validate:"min=1,dive,gt=-100,lte=100"`
	DefaultRate           float64   `yaml:"default_rate" json:"default_rate" validate:"gt=-100,lte=100"`
}

// ServerConfig holds web server and storage locations
type ServerConfig struct {
	Addr      string `yaml:"addr" json:"-" envconfig:"ADDR" validate:"required"`
	DBPath    string `yaml:"db_path" json:"-" envconfig:"DB_PATH"` // Empty keeps preferences in memory
	ExportDir string `yaml:"export_dir" json:"-" envconfig:"EXPORT_DIR" validate:"required"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `yaml:"level" json:"-" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"-" envconfig:"LOG_FORMAT" validate:"oneof=text json"`
}

// Config is the full application configuration
type Config struct {
	ReferenceYear int             `yaml:"reference_year" json:"reference_year" validate:"gte=1800,lte=2300"`
	Rates         map[int]float64 `yaml:"rates" json:"rates" validate:"required,min=1"`
	Widget        WidgetConfig    `yaml:"widget" json:"widget"`
	Server        ServerConfig    `yaml:"server" json:"-"`
	Log           LogConfig       `yaml:"log" json:"-"`
}

// LoadDefaultConfig loads the embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(preprocessPercentages(defaultConfigYAML)), &config); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return &config, nil
}

// LoadConfig loads configuration from a YAML file on top of the embedded defaults.
// A rates section in the file replaces the default table rather than merging with it.
func LoadConfig(filename string) (*Config, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	defaultRates := config.Rates
	config.Rates = nil
	if err := yaml.Unmarshal([]byte(preprocessPercentages(string(data))), config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if len(config.Rates) == 0 {
		config.Rates = defaultRates
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Value Converter Configuration
# Generated by the application - feel free to edit manually
#
#   reference_year: the year treated as "now"
#   rates:          yearly index change in percent (3.1 = 3.1%)
#   widget:         slider bounds and initial values
#
# See default-config.yaml for all available options.

`)
	return os.WriteFile(filename, append(header, data...), 0644)
}

// ApplyEnvironment loads envFile (if present) and overlays VALUECONV_* variables
// onto the server and log sections.
func ApplyEnvironment(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not load env file, using process environment only", "file", envFile, "error", err)
		}
	}
	if err := envconfig.Process(envPrefix, &config.Server); err != nil {
		return fmt.Errorf("server environment: %w", err)
	}
	if err := envconfig.Process(envPrefix, &config.Log); err != nil {
		return fmt.Errorf("log environment: %w", err)
	}
	return nil
}

// preprocessPercentages strips the % sign from values like "rate: 3.1%" or "[1%, 2%]".
// Rates are kept in percent, so 3.1% becomes 3.1.
var percentPattern = regexp.MustCompile(`([:\[,]\s*)(-?\d+\.?\d*)%`)

func preprocessPercentages(content string) string {
	return percentPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := percentPattern.FindStringSubmatch(match)
		if len(parts) < 3 {
			return match
		}
		num, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return match
		}
		return parts[1] + strconv.FormatFloat(num, 'f', -1, 64)
	})
}

var configValidator = validator.New()

// Validate checks field constraints and the relationships between slider bounds
func (c *Config) Validate() error {
	var errs []error

	if err := configValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()),
			})
		}
	}

	w := c.Widget
	if w.DefaultAmount < w.AmountMin || w.DefaultAmount > w.AmountMax {
		errs = append(errs, ValidationError{Field: "widget.default_amount",
			Message: fmt.Sprintf("default amount %d outside [%d, %d]", w.DefaultAmount, w.AmountMin, w.AmountMax)})
	}
	if w.HistoricalYearMin > c.ReferenceYear {
		errs = append(errs, ValidationError{Field: "widget.historical_year_min",
			Message: fmt.Sprintf("historical year minimum %d is after reference year %d", w.HistoricalYearMin, c.ReferenceYear)})
	}
	if w.DefaultHistoricalYear < w.HistoricalYearMin || w.DefaultHistoricalYear > c.ReferenceYear {
		errs = append(errs, ValidationError{Field: "widget.default_historical_year",
			Message: fmt.Sprintf("default historical year %d outside [%d, %d]", w.DefaultHistoricalYear, w.HistoricalYearMin, c.ReferenceYear)})
	}
	if w.FutureYearMax < c.ReferenceYear {
		errs = append(errs, ValidationError{Field: "widget.future_year_max",
			Message: fmt.Sprintf("future year maximum %d is before reference year %d", w.FutureYearMax, c.ReferenceYear)})
	}
	if w.DefaultFutureYear < c.ReferenceYear || w.DefaultFutureYear > w.FutureYearMax {
		errs = append(errs, ValidationError{Field: "widget.default_future_year",
			Message: fmt.Sprintf("default future year %d outside [%d, %d]", w.DefaultFutureYear, c.ReferenceYear, w.FutureYearMax)})
	}
	if len(w.RateChoices) > 0 && !slices.Contains(w.RateChoices, w.DefaultRate) {
		errs = append(errs, ValidationError{Field: "widget.default_rate",
			Message: fmt.Sprintf("default rate %g is not one of %v", w.DefaultRate, w.RateChoices)})
	}

	return errors.Join(errs...)
}

// RateTable builds the immutable rate table from the configured percentages
func (c *Config) RateTable() (RateTable, error) {
	return NewRateTable(c.Rates)
}

// NewConverterFromConfig builds the converter used by every front end
func NewConverterFromConfig(c *Config) (*Converter, error) {
	table, err := c.RateTable()
	if err != nil {
		return nil, err
	}
	return NewConverter(table, c.ReferenceYear), nil
}
