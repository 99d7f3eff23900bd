package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/iwvelando/loan-planner/internal/cache"
	"github.com/iwvelando/loan-planner/internal/config"
	"github.com/iwvelando/loan-planner/internal/server"
	"github.com/iwvelando/loan-planner/pkg/budget"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/output"
	"github.com/iwvelando/loan-planner/pkg/schedule"
	"github.com/iwvelando/loan-planner/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of computing configured loans")
	addr := flag.String("addr", "", "HTTP listen address override")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *serve {
		runServer(logger, conf, *addr)
		return
	}

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

	runCalculations(logger, conf, outputFormat)
}

func runCalculations(logger *zap.Logger, conf *config.Configuration, outputFormat string) {
	engine := schedule.NewEngine(logger)
	for i := range conf.Loans {
		loan := &conf.Loans[i]
		request, err := loan.ToLoanRequest()
		if err != nil {
			logger.Fatal("failed to convert loan configuration",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		result, err := engine.Compute(request)
		if err != nil {
			logger.Fatal("failed to compute schedule",
				zap.String("op", "main"),
				zap.String("loan", loan.Name),
				zap.Error(err),
			)
		}

		switch outputFormat {
		case constants.OutputFormatPretty:
			output.PrettyFormat(loan.Name, result)
		case constants.OutputFormatCSV:
			output.CsvFormat(loan.Name, result)
		}
	}

	optimizer := budget.NewOptimizer(logger)
	for i := range conf.Budgets {
		budgetConfig := &conf.Budgets[i]
		request, err := budgetConfig.ToOptimizationRequest()
		if err != nil {
			logger.Fatal("failed to convert budget configuration",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		output.PrettyOptimization(budgetConfig.Name, optimizer.Optimize(request))
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration, addrOverride string) {
	address := conf.Server.Address
	if addrOverride != "" {
		address = addrOverride
	}
	if address == "" {
		address = constants.DefaultServerAddress
	}

	var store cache.Store
	if conf.Server.CacheAddr != "" {
		store = cache.NewRedis(conf.Server.CacheAddr)
		logger.Info("using Redis result cache",
			zap.String("op", "main"),
			zap.String("addr", conf.Server.CacheAddr),
		)
	} else {
		store = cache.NewMemory()
	}

	handler := server.NewHandler(logger, conf.Server.MaxUploadBytes, version, store)
	logger.Info("starting HTTP API",
		zap.String("op", "main"),
		zap.String("addr", address),
	)
	if err := http.ListenAndServe(address, handler); err != nil {
		logger.Fatal("HTTP server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
