package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/dcf-valuation/internal/config"
	"github.com/iwvelando/dcf-valuation/internal/financials"
	"github.com/iwvelando/dcf-valuation/internal/valuation"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/output"
	"github.com/iwvelando/dcf-valuation/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	symbol := flag.String("symbol", "", "ticker symbol used to fill cash flow, shares, cash and debt")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	var provider financials.Provider
	if *symbol != "" {
		if !conf.Provider.Enabled() {
			logger.Fatal("a provider API key is required to look up a symbol",
				zap.String("op", "main"),
				zap.String("env", constants.APIKeyEnv),
			)
		}
		cached, err := financials.Open(logger, financials.ClientConfig{
			APIKey:  conf.Provider.APIKey,
			BaseURL: conf.Provider.BaseURL,
			Timeout: conf.Provider.Timeout,
		}, conf.Provider.CacheTTL, conf.Provider.CachePath)
		if err != nil {
			logger.Fatal("failed to initialize financials provider",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer func() {
			_ = cached.Close()
		}()
		provider = cached
	}

	service := valuation.NewService(logger, conf.Bounds, provider)

	assumptions := conf.Assumptions
	if *symbol != "" {
		assumptions, err = service.Prefill(context.Background(), *symbol, assumptions)
		if err != nil {
			logger.Fatal("failed to look up financials",
				zap.String("op", "main"),
				zap.String("symbol", *symbol),
				zap.Error(err),
			)
		}
	}

	report, err := service.Value(assumptions)
	if err != nil {
		for _, fieldErr := range dcf.FieldErrors(err) {
			logger.Error("invalid assumption",
				zap.String("op", "main"),
				zap.String("field", fieldErr.Field),
				zap.Error(fieldErr),
			)
		}
		logger.Fatal("failed to compute valuation",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, report.Assumptions, report.Result); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
