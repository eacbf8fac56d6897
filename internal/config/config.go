// Package config defines the data structures related to configuration and
// includes functions for loading and parsing a calculation request.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/emi-calculator/pkg/irr"
	"github.com/iwvelando/emi-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for one emi-calculator run.
type Configuration struct {
	Loan    Loan          `yaml:"loan" mapstructure:"loan"`
	Solver  irr.Solver    `yaml:"solver,omitempty" mapstructure:"solver"`
	Logging LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv
}

// Loan is the loan or lease to schedule. Frequency and Variant are kept as
// free text here and normalized by ToParameters.
type Loan struct {
	Principal               float64 `json:"principal" yaml:"principal" mapstructure:"principal"`
	AnnualRate              float64 `json:"annualRate" yaml:"annualRate" mapstructure:"annualRate"`
	TenureMonths            int     `json:"tenureMonths" yaml:"tenureMonths" mapstructure:"tenureMonths"`
	Frequency               string  `json:"frequency,omitempty" yaml:"frequency,omitempty" mapstructure:"frequency"`
	Variant                 string  `json:"variant,omitempty" yaml:"variant,omitempty" mapstructure:"variant"`
	ResidualValue           float64 `json:"residualValue,omitempty" yaml:"residualValue,omitempty" mapstructure:"residualValue"`
	ResidualPercent         float64 `json:"residualPercent,omitempty" yaml:"residualPercent,omitempty" mapstructure:"residualPercent"`
	GSTPercent              float64 `json:"gstPercent,omitempty" yaml:"gstPercent,omitempty" mapstructure:"gstPercent"`
	UpfrontFeePercent       float64 `json:"upfrontFeePercent,omitempty" yaml:"upfrontFeePercent,omitempty" mapstructure:"upfrontFeePercent"`
	SupplierDiscountPercent float64 `json:"supplierDiscountPercent,omitempty" yaml:"supplierDiscountPercent,omitempty" mapstructure:"supplierDiscountPercent"`
	SecurityDepositPercent  float64 `json:"securityDepositPercent,omitempty" yaml:"securityDepositPercent,omitempty" mapstructure:"securityDepositPercent"`
	MoratoriumPeriods       int     `json:"moratoriumPeriods,omitempty" yaml:"moratoriumPeriods,omitempty" mapstructure:"moratoriumPeriods"`
	AdvanceRentals          int     `json:"advanceRentals,omitempty" yaml:"advanceRentals,omitempty" mapstructure:"advanceRentals"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix("EMI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory source such as an HTTP request body.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Solver.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid solver configuration: %w", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Parameters that fail validation produce no warnings; the
// error is reported when the schedule is built.
func (c *Configuration) ValidateConfiguration() []string {
	params, err := c.ToParameters()
	if err != nil {
		return nil
	}
	if err := params.Validate(); err != nil {
		return nil
	}

	validator := validation.ScheduleValidator{Parameters: params}
	return validator.ValidateAll()
}
