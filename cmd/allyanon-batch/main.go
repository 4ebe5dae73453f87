package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/analyzer"
	"github.com/srepho/allyanonimiser-go/internal/batch"
	"github.com/srepho/allyanonimiser-go/internal/config"
	"github.com/srepho/allyanonimiser-go/internal/logger"
	"github.com/srepho/allyanonimiser-go/internal/ner"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Input dataset file (CSV, Parquet, or JSONL)")
		outputFile = flag.String("output", "", "Output Parquet file")
		batchSize  = flag.Int("batch-size", 1000, "Batch size for processing")
		workers    = flag.Int("workers", 4, "Number of worker goroutines")
		operators  = flag.String("operators", "", "Per-type operators, e.g. PERSON=replace,EMAIL_ADDRESS=mask")
	)
	flag.Parse()

	if *inputFile == "" || *outputFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s --input dataset.csv --output anonymized.parquet [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input claims.csv --output claims.parquet --batch-size 500\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input notes.jsonl --output notes.parquet --workers 8\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input emails.parquet --output emails.parquet --operators EMAIL_ADDRESS=mask,PERSON=replace\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting batch anonymization",
		zap.String("input", *inputFile),
		zap.String("output", *outputFile))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	if _, err := os.Stat(*inputFile); os.IsNotExist(err) {
		log.Fatal("Input file does not exist", zap.String("file", *inputFile))
	}

	batchConfig := batch.DefaultConfig()
	batchConfig.BatchSize = *batchSize
	batchConfig.WorkerCount = *workers
	batchConfig.Operators = cfg.Anonymizer.Operators
	if *operators != "" {
		parsed, err := parseOperators(*operators)
		if err != nil {
			log.Fatal("Invalid operators flag", zap.Error(err))
		}
		batchConfig.Operators = parsed
	}

	engineOpts := analyzer.Options{
		MinScoreThreshold: cfg.Engine.MinScoreThreshold,
		EnableCaching:     cfg.Engine.EnableCaching,
		MaxCacheSize:      cfg.Engine.MaxCacheSize,
		Logger:            log,
	}
	if cfg.Engine.NER.Enabled {
		engineOpts.Backend = ner.NewBackend(log.WithComponent("ner").Logger, cfg.Engine.NER.ModelDir, cfg.Engine.NER.MaxLength)
	}

	pipeline := batch.NewPipeline(batchConfig, engineOpts, log.Logger)

	result, err := pipeline.ProcessFile(ctx, *inputFile, *outputFile)
	if err != nil {
		log.Fatal("Batch processing failed", zap.Error(err))
	}

	log.Info("Dataset processing completed",
		zap.String("input", *inputFile),
		zap.String("output", *outputFile),
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("total_entities", result.TotalEntities),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("analysis_time", result.AnalysisTime),
		zap.Duration("write_time", result.WriteTime),
		zap.Float64("records_per_second", float64(result.TotalRecords)/result.Duration.Seconds()))

	if len(result.Errors) > 0 {
		log.Warn("Processing completed with errors", zap.Strings("errors", result.Errors))
	}
}

// parseOperators parses TYPE=operator pairs separated by commas
func parseOperators(s string) (map[string]string, error) {
	operators := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid operator pair: %q", pair)
		}
		operators[parts[0]] = parts[1]
	}
	return operators, nil
}
