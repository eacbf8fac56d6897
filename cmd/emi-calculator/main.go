package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/internal/config"
	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/output"
	"github.com/iwvelando/emi-calculator/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to calculation request file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := conf.Logging.NewLogger(*logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	outputFormat, err = validation.ParseOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if err := run(logger, conf, outputFormat); err != nil {
		var validationErr *amortization.ValidationError
		if errors.As(err, &validationErr) {
			logger.Fatal("invalid loan parameters",
				zap.String("op", "main"),
				zap.String("field", validationErr.Field),
				zap.String("reason", validationErr.Reason),
			)
		}
		logger.Fatal("failed to compute schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// run computes the schedule described by conf and prints it to stdout in
// the given format.
func run(logger *zap.Logger, conf *config.Configuration, outputFormat string) error {
	params, err := conf.ToParameters()
	if err != nil {
		return err
	}

	calc, err := calculator.New(logger, conf.Solver, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize calculator: %w", err)
	}

	result, err := calc.Calculate(params)
	if err != nil {
		return err
	}

	switch outputFormat {
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	default:
		output.PrettyFormat(result)
	}
	return nil
}
