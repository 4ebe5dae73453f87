// Package batch anonymizes datasets offline: CSV, JSONL, or Parquet in,
// Parquet out, one output row per input record.
package batch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/analyzer"
	"github.com/srepho/allyanonimiser-go/internal/anonymizer"
)

// Pipeline processes dataset files through the anonymizer
type Pipeline struct {
	config     *Config
	engineOpts analyzer.Options
	logger     *zap.Logger
}

// NewPipeline creates a batch pipeline. Each worker builds its own engine
// from engineOpts: engines are single-goroutine.
func NewPipeline(config *Config, engineOpts analyzer.Options, logger *zap.Logger) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 1000
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	return &Pipeline{
		config:     config,
		engineOpts: engineOpts,
		logger:     logger,
	}
}

// ProcessFile anonymizes every record in inputPath and writes the results to
// outputPath as Parquet.
func (p *Pipeline) ProcessFile(ctx context.Context, inputPath, outputPath string) (*ProcessingResult, error) {
	p.logger.Info("Starting batch pipeline",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.WorkerCount))

	start := time.Now()
	result := &ProcessingResult{}

	format := DetectFileFormat(inputPath)
	p.logger.Info("Detected file format", zap.String("format", string(format)))

	outFile, err := os.Create(outputPath)
	if err != nil {
		return result, fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	writer := parquet.NewWriter(outFile, parquet.SchemaOf(new(OutputRecord)))
	defer writer.Close()

	var processErr error
	switch format {
	case FormatCSV:
		processErr = p.processCSV(ctx, inputPath, writer, result)
	case FormatParquet:
		processErr = p.processParquet(ctx, inputPath, writer, result)
	case FormatJSON:
		processErr = p.processJSON(ctx, inputPath, writer, result)
	default:
		return result, fmt.Errorf("unsupported file format: %s", format)
	}
	if processErr != nil {
		return result, fmt.Errorf("%s processing failed: %w", format, processErr)
	}

	if err := writer.Close(); err != nil {
		return result, fmt.Errorf("failed to finalize output file: %w", err)
	}

	result.Duration = time.Since(start)

	p.logger.Info("Batch pipeline completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("total_entities", result.TotalEntities),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("analysis_time", result.AnalysisTime),
		zap.Duration("write_time", result.WriteTime))

	return result, nil
}

// processCSV reads records from a CSV file with id and text columns
func (p *Pipeline) processCSV(ctx context.Context, inputPath string, writer *parquet.Writer, result *ProcessingResult) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	p.logger.Info("CSV header detected", zap.Strings("columns", header))

	idCol, textCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id":
			idCol = i
		case "text":
			textCol = i
		}
	}
	if textCol == -1 {
		return fmt.Errorf("CSV file has no text column")
	}

	rowNum := int64(0)
	return p.processBatches(ctx, func() ([]InputRecord, error) {
		var batch []InputRecord
		for len(batch) < p.config.BatchSize {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read CSV record", zap.Error(err))
				continue
			}
			rowNum++
			if textCol >= len(record) {
				p.logger.Warn("Invalid CSV record length", zap.Int("length", len(record)))
				continue
			}

			in := InputRecord{Text: record[textCol]}
			if idCol != -1 && idCol < len(record) {
				in.ID = record[idCol]
			} else {
				in.ID = strconv.FormatInt(rowNum, 10)
			}

			if p.validateRecord(&in) {
				batch = append(batch, in)
			}
		}
		return batch, nil
	}, writer, result)
}

// processParquet reads records from a Parquet file
func (p *Pipeline) processParquet(ctx context.Context, inputPath string, writer *parquet.Writer, result *ProcessingResult) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	return p.processBatches(ctx, func() ([]InputRecord, error) {
		var batch []InputRecord
		for len(batch) < p.config.BatchSize {
			var record InputRecord
			err := reader.Read(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read Parquet record", zap.Error(err))
				continue
			}
			if p.validateRecord(&record) {
				batch = append(batch, record)
			}
		}
		return batch, nil
	}, writer, result)
}

// processJSON reads records from a file with one JSON object per line
func (p *Pipeline) processJSON(ctx context.Context, inputPath string, writer *parquet.Writer, result *ProcessingResult) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	return p.processBatches(ctx, func() ([]InputRecord, error) {
		var batch []InputRecord
		for len(batch) < p.config.BatchSize {
			var record InputRecord
			err := decoder.Decode(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read JSON record", zap.Error(err))
				continue
			}
			if p.validateRecord(&record) {
				batch = append(batch, record)
			}
		}
		return batch, nil
	}, writer, result)
}

// processBatches reads batches with readBatch, anonymizes them with the
// worker pool, and appends the output rows in input order.
func (p *Pipeline) processBatches(ctx context.Context, readBatch func() ([]InputRecord, error), writer *parquet.Writer, result *ProcessingResult) error {
	workers, err := p.startWorkers()
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := readBatch()
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		analysisStart := time.Now()
		outputs := workers.process(batch)
		result.AnalysisTime += time.Since(analysisStart)

		writeStart := time.Now()
		for i := range outputs {
			if outputs[i] == nil {
				result.ProcessedFailed++
				continue
			}
			if err := writer.Write(outputs[i]); err != nil {
				return fmt.Errorf("failed to write output record: %w", err)
			}
			result.ProcessedOK++
			result.TotalEntities += int64(outputs[i].EntityCount)
		}
		result.WriteTime += time.Since(writeStart)
		result.TotalRecords += int64(len(batch))

		if p.config.ProgressReport > 0 && result.TotalRecords%int64(p.config.ProgressReport) == 0 {
			p.reportProgress(result)
		}
	}

	return nil
}

// workerPool holds one engine and anonymizer per worker
type workerPool struct {
	anons []*anonymizer.Anonymizer
	opts  anonymizer.Options
	count int
}

func (p *Pipeline) startWorkers() (*workerPool, error) {
	pool := &workerPool{count: p.config.WorkerCount}

	pool.opts = anonymizer.DefaultOptions()
	if len(p.config.Operators) > 0 {
		pool.opts.Operators = p.config.Operators
	}

	for i := 0; i < pool.count; i++ {
		engine, err := analyzer.NewWithBuiltins(p.engineOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create worker engine: %w", err)
		}
		pool.anons = append(pool.anons, anonymizer.New(engine))
	}
	return pool, nil
}

// process anonymizes a batch across the pool. Output order matches input
// order; failed records are nil.
func (w *workerPool) process(batch []InputRecord) []*OutputRecord {
	outputs := make([]*OutputRecord, len(batch))

	var wg sync.WaitGroup
	jobs := make(chan int)

	for i := 0; i < w.count; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			anon := w.anons[worker]
			for idx := range jobs {
				start := time.Now()
				res := anon.Anonymize(batch[idx].Text, w.opts)

				typeCounts := make(map[string]int, len(res.Items))
				for _, item := range res.Items {
					typeCounts[item.EntityType]++
				}
				typesJSON, _ := json.Marshal(typeCounts)

				outputs[idx] = &OutputRecord{
					ID:             batch[idx].ID,
					AnonymizedText: res.Text,
					TextLength:     int32(len(batch[idx].Text)),
					EntityCount:    int32(len(res.Items)),
					EntityTypes:    string(typesJSON),
					ProcessingMS:   float64(time.Since(start).Nanoseconds()) / 1e6,
				}
			}
		}(i)
	}

	for idx := range batch {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return outputs
}

// validateRecord validates an input record
func (p *Pipeline) validateRecord(record *InputRecord) bool {
	if !p.config.ValidateData {
		return true
	}

	if strings.TrimSpace(record.Text) == "" {
		p.logger.Debug("Invalid record: empty text", zap.String("id", record.ID))
		return false
	}

	if p.config.MaxTextLength > 0 && len(record.Text) > p.config.MaxTextLength {
		p.logger.Debug("Invalid record: text too long",
			zap.String("id", record.ID),
			zap.Int("length", len(record.Text)))
		return false
	}

	return true
}

// reportProgress reports current processing progress
func (p *Pipeline) reportProgress(result *ProcessingResult) {
	p.logger.Info("Processing progress",
		zap.Int64("records_processed", result.TotalRecords),
		zap.Int64("records_ok", result.ProcessedOK),
		zap.Int64("records_failed", result.ProcessedFailed),
		zap.Int64("entities_found", result.TotalEntities))
}
