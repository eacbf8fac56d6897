package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
logging:
  level: debug
  format: console
output:
  format: csv
solver:
  method: newton
loan:
  principal: 500000
  annualRate: 10.5
  tenureMonths: 36
  frequency: quarterly
  variant: lease
  residualPercent: 10
  gstPercent: 18
  upfrontFeePercent: 1
  moratoriumPeriods: 1
  advanceRentals: 2
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Sample config file",
			configPath: writeConfig(t, sampleConfig),
			wantError:  false,
		},
		{
			name:       "Unknown solver method",
			configPath: writeConfig(t, "solver:\n  method: secant\nloan:\n  principal: 1000\n"),
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", conf.Logging.Level)
	assert.Equal(t, "console", conf.Logging.Format)
	assert.Equal(t, constants.OutputFormatCSV, conf.Output.Format)

	assert.Equal(t, constants.SolverMethodNewton, conf.Solver.Method)
	require.NotNil(t, conf.Solver.Guess)
	assert.Equal(t, constants.NewtonGuess, *conf.Solver.Guess)
	assert.Equal(t, constants.NewtonMaxIterations, conf.Solver.MaxIterations)

	assert.Equal(t, 500000.0, conf.Loan.Principal)
	assert.Equal(t, 10.5, conf.Loan.AnnualRate)
	assert.Equal(t, 36, conf.Loan.TenureMonths)
	assert.Equal(t, "quarterly", conf.Loan.Frequency)
	assert.Equal(t, "lease", conf.Loan.Variant)
	assert.Equal(t, 10.0, conf.Loan.ResidualPercent)
	assert.Equal(t, 18.0, conf.Loan.GSTPercent)
	assert.Equal(t, 1.0, conf.Loan.UpfrontFeePercent)
	assert.Equal(t, 1, conf.Loan.MoratoriumPeriods)
	assert.Equal(t, 2, conf.Loan.AdvanceRentals)
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 500000.0, conf.Loan.Principal)

	_, err = LoadConfigurationFromReader(strings.NewReader("loan: [unterminated"))
	assert.Error(t, err)
}

func TestLoadConfigurationDefaultsSolver(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("loan:\n  principal: 1000\n"))
	require.NoError(t, err)

	assert.Equal(t, constants.SolverMethodBrent, conf.Solver.Method)
	assert.Equal(t, constants.IRRLowerBound, conf.Solver.LowerBound)
	assert.Equal(t, constants.IRRUpperBound, conf.Solver.UpperBound)
}

func TestLoadConfigurationKeepsZeroGuess(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("solver:\n  method: newton\n  guess: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, conf.Solver.Guess)
	assert.Equal(t, 0.0, *conf.Solver.Guess)
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("EMI_LOAN_PRINCIPAL", "250000")

	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 250000.0, conf.Loan.Principal)
}

func TestLoggingConfiguration(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(`
logging:
  level: warn
  format: json
  outputFile: /tmp/emi-calculator.log
loan:
  principal: 1000
`))
	require.NoError(t, err)

	assert.Equal(t, "warn", conf.Logging.Level)
	assert.Equal(t, "json", conf.Logging.Format)
	assert.Equal(t, "/tmp/emi-calculator.log", conf.Logging.OutputFile)
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name            string
		loan            Loan
		expectWarnCount int
	}{
		{
			name: "Clean monthly loan",
			loan: Loan{
				Principal:    100000,
				AnnualRate:   12,
				TenureMonths: 12,
			},
			expectWarnCount: 0,
		},
		{
			name: "Quarterly tenure with leftover months",
			loan: Loan{
				Principal:    100000,
				AnnualRate:   12,
				TenureMonths: 14,
				Frequency:    "quarterly",
			},
			expectWarnCount: 1,
		},
		{
			name: "Invalid parameters produce no warnings",
			loan: Loan{
				Principal:    -1,
				AnnualRate:   12,
				TenureMonths: 14,
				Frequency:    "quarterly",
			},
			expectWarnCount: 0,
		},
		{
			name: "Unknown variant produces no warnings",
			loan: Loan{
				Principal:    1000,
				TenureMonths: 12,
				Variant:      "balloon",
			},
			expectWarnCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Configuration{Loan: tt.loan}
			warnings := conf.ValidateConfiguration()
			if len(warnings) != tt.expectWarnCount {
				t.Errorf("ValidateConfiguration() returned %d warnings, expected %d: %v",
					len(warnings), tt.expectWarnCount, warnings)
			}
		})
	}
}

func TestExampleConfigurationProcessing(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	params, err := conf.ToParameters()
	require.NoError(t, err)

	schedule, err := amortization.NewBuilder(nil).Build(params)
	require.NoError(t, err)

	assert.Equal(t, 12, schedule.Periods)
	assert.Equal(t, amortization.VariantLease, schedule.Variant)
	assert.Len(t, schedule.Cashflows, len(schedule.Rows)+1)
}
