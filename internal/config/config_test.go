package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edupulse/internal/errors"
	"edupulse/pkg/contracts/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultDistrictID, cfg.District.ID)
	assert.Equal(t, DefaultYears, cfg.District.Years)
	assert.Equal(t, float64(DefaultCompletenessWarnPercent), cfg.Quality.CompletenessWarnPercent)
	assert.Equal(t, "district_dataset.csv", cfg.Output.DatasetCSV)
	assert.Equal(t, "district_dataset.xlsx", cfg.Output.DatasetXLSX)
	assert.Equal(t, "quality_report.txt", cfg.Output.ReportFile)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfigFile(t, `
district:
  id: "012345"
  years:
    - "2019-2020"
    - "2020-2021"
    - "2021-2022"
sources:
  enrollment:
    "2019-2020": data/enr_1920.xlsx
output:
  dir: out
quality:
  completeness_warn_percent: 75
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "012345", cfg.District.ID)
	assert.Equal(t, []string{"2019-2020", "2020-2021", "2021-2022"}, cfg.District.Years)
	assert.Equal(t, 75.0, cfg.Quality.CompletenessWarnPercent)

	// Paths come back absolute regardless of how they were configured.
	assert.True(t, filepath.IsAbs(cfg.Output.Dir))
	assert.True(t, filepath.IsAbs(cfg.Sources.Enrollment["2019-2020"]))

	// Unset values keep their defaults.
	assert.Equal(t, "district_dataset.csv", cfg.Output.DatasetCSV)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
district:
  id: "012345"
`)

	t.Setenv("EDUPULSE_DISTRICT_ID", "099999")
	t.Setenv("EDUPULSE_QUALITY_COMPLETENESS_WARN_PERCENT", "42.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "099999", cfg.District.ID)
	assert.Equal(t, 42.5, cfg.Quality.CompletenessWarnPercent)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDistrictID, cfg.District.ID)
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "empty district id",
			mutate:  func(c *Config) { c.District.ID = "" },
			wantErr: "district id",
		},
		{
			name:    "wrong year count",
			mutate:  func(c *Config) { c.District.Years = []string{"2015-2016"} },
			wantErr: "year labels",
		},
		{
			name: "duplicate year",
			mutate: func(c *Config) {
				c.District.Years = []string{"2015-2016", "2015-2016", "2017-2018"}
			},
			wantErr: "duplicate year",
		},
		{
			name:    "threshold above range",
			mutate:  func(c *Config) { c.Quality.CompletenessWarnPercent = 150 },
			wantErr: "completeness warn percent",
		},
		{
			name: "source for unknown year",
			mutate: func(c *Config) {
				c.Sources.Growth = map[string]string{"1999-2000": "va.xlsx"}
			},
			wantErr: "unknown year",
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.Output.Dir = "" },
			wantErr: "output dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestYearLabels(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []domain.YearLabel{
		"2015-2016", "2016-2017", "2017-2018",
	}, cfg.YearLabels())
}

func TestSourcePaths(t *testing.T) {
	cfg := Default()
	cfg.Sources.Achievement = map[string]string{"2015-2016": "pi.xlsx"}

	assert.Equal(t, cfg.Sources.Achievement, cfg.SourcePaths(domain.CategoryAchievement))
	assert.Empty(t, cfg.SourcePaths(domain.CategoryEnrollment))
	assert.Nil(t, cfg.SourcePaths(domain.Category("unknown")))
}

func TestOutputPaths(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "/data/out"

	assert.Equal(t, "/data/out/district_dataset.csv", cfg.DatasetCSVPath())
	assert.Equal(t, "/data/out/district_dataset.xlsx", cfg.DatasetXLSXPath())
	assert.Equal(t, "/data/out/quality_report.txt", cfg.ReportPath())
}
