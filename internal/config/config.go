package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"edupulse/internal/errors"
	"edupulse/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	District DistrictConfig `yaml:"district" envconfig:"DISTRICT"`
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Quality  QualityConfig  `yaml:"quality" envconfig:"QUALITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// DistrictConfig fixes the organizational scope of a run
type DistrictConfig struct {
	// ID is string-typed because portal identifiers carry leading zeros.
	ID    string   `yaml:"id" envconfig:"ID"`
	Years []string `yaml:"years" envconfig:"YEARS"`
}

// SourcesConfig maps each category's year labels to spreadsheet paths.
// Exact filenames vary by year and are resolved here, never inferred.
type SourcesConfig struct {
	Enrollment  map[string]string `yaml:"enrollment" envconfig:"ENROLLMENT"`
	Growth      map[string]string `yaml:"growth" envconfig:"GROWTH"`
	Achievement map[string]string `yaml:"achievement" envconfig:"ACHIEVEMENT"`
}

// OutputConfig contains output artifact locations
type OutputConfig struct {
	Dir         string `yaml:"dir" envconfig:"DIR"`
	DatasetCSV  string `yaml:"dataset_csv" envconfig:"DATASET_CSV"`
	DatasetXLSX string `yaml:"dataset_xlsx" envconfig:"DATASET_XLSX"`
	ReportFile  string `yaml:"report_file" envconfig:"REPORT_FILE"`
}

// QualityConfig contains validator thresholds
type QualityConfig struct {
	// CompletenessWarnPercent flags a field as a warning when its non-null
	// share falls below this percentage. Warnings never halt export.
	CompletenessWarnPercent float64 `yaml:"completeness_warn_percent" envconfig:"COMPLETENESS_WARN_PERCENT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load loads configuration from the YAML file (if present) layered under
// environment variables. Environment values win. All paths are resolved to
// absolute before any stage runs.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, errors.NewConfigError("failed to load config from file", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile unmarshals YAML over the current values
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the path to the config file
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use env vars only
}

// YearLabels returns the configured school years as domain labels.
func (c *Config) YearLabels() []domain.YearLabel {
	years := make([]domain.YearLabel, 0, len(c.District.Years))
	for _, y := range c.District.Years {
		years = append(years, domain.YearLabel(y))
	}
	return years
}

// SourcePaths returns the configured year-to-path map for one category.
func (c *Config) SourcePaths(category domain.Category) map[string]string {
	switch category {
	case domain.CategoryEnrollment:
		return c.Sources.Enrollment
	case domain.CategoryGrowth:
		return c.Sources.Growth
	case domain.CategoryAchievement:
		return c.Sources.Achievement
	}
	return nil
}

// DatasetCSVPath returns the resolved delimited-text output path.
func (c *Config) DatasetCSVPath() string {
	return filepath.Join(c.Output.Dir, c.Output.DatasetCSV)
}

// DatasetXLSXPath returns the resolved spreadsheet output path.
func (c *Config) DatasetXLSXPath() string {
	return filepath.Join(c.Output.Dir, c.Output.DatasetXLSX)
}

// ReportPath returns the resolved quality report path.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ReportFile)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.District.ID == "" {
		return errors.NewConfigError("district id must not be empty", nil)
	}
	if len(c.District.Years) != ExpectedYearCount {
		return errors.NewConfigError(fmt.Sprintf(
			"expected exactly %d year labels, got %d", ExpectedYearCount, len(c.District.Years)), nil)
	}
	seen := make(map[string]bool, len(c.District.Years))
	for _, y := range c.District.Years {
		if y == "" {
			return errors.NewConfigError("year labels must not be empty", nil)
		}
		if seen[y] {
			return errors.NewConfigError(fmt.Sprintf("duplicate year label: %s", y), nil)
		}
		seen[y] = true
	}
	if c.Quality.CompletenessWarnPercent < 0 || c.Quality.CompletenessWarnPercent > 100 {
		return errors.NewConfigError(fmt.Sprintf(
			"completeness warn percent must be within [0,100], got %g", c.Quality.CompletenessWarnPercent), nil)
	}
	for _, category := range domain.Categories {
		for year := range c.SourcePaths(category) {
			if !seen[year] {
				return errors.NewConfigError(fmt.Sprintf(
					"%s source configured for unknown year %q", category, year), nil)
			}
		}
	}
	if c.Output.Dir == "" {
		return errors.NewConfigError("output dir must not be empty", nil)
	}
	return nil
}

// resolvePaths makes every configured path absolute so stages never depend on
// the working directory.
func (c *Config) resolvePaths() error {
	abs := func(p string) (string, error) {
		if filepath.IsAbs(p) {
			return p, nil
		}
		return filepath.Abs(p)
	}

	dir, err := abs(c.Output.Dir)
	if err != nil {
		return errors.NewConfigError("failed to resolve output dir", err)
	}
	c.Output.Dir = dir

	for _, paths := range []map[string]string{c.Sources.Enrollment, c.Sources.Growth, c.Sources.Achievement} {
		for year, p := range paths {
			resolved, err := abs(p)
			if err != nil {
				return errors.NewConfigError(fmt.Sprintf("failed to resolve source path for %s", year), err)
			}
			paths[year] = resolved
		}
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		District: DistrictConfig{
			ID:    DefaultDistrictID,
			Years: append([]string(nil), DefaultYears...),
		},
		Sources: SourcesConfig{
			Enrollment:  map[string]string{},
			Growth:      map[string]string{},
			Achievement: map[string]string{},
		},
		Output: OutputConfig{
			Dir:         "output",
			DatasetCSV:  "district_dataset.csv",
			DatasetXLSX: "district_dataset.xlsx",
			ReportFile:  "quality_report.txt",
		},
		Quality: QualityConfig{
			CompletenessWarnPercent: DefaultCompletenessWarnPercent,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/edupulse.log",
		},
	}
}
