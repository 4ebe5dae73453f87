package batch

import (
	"strings"
	"time"
)

// InputRecord is a single record from the input dataset
type InputRecord struct {
	ID   string `csv:"id" parquet:"id" json:"id"`
	Text string `csv:"text" parquet:"text" json:"text"`
}

// OutputRecord is one anonymized record written to the output file
type OutputRecord struct {
	ID             string  `parquet:"id" json:"id"`
	AnonymizedText string  `parquet:"anonymized_text" json:"anonymized_text"`
	TextLength     int32   `parquet:"text_length" json:"text_length"`
	EntityCount    int32   `parquet:"entity_count" json:"entity_count"`
	EntityTypes    string  `parquet:"entity_types" json:"entity_types"`
	ProcessingMS   float64 `parquet:"processing_ms" json:"processing_ms"`
}

// ProcessingResult represents the result of processing a dataset
type ProcessingResult struct {
	TotalRecords    int64         `json:"total_records"`
	ProcessedOK     int64         `json:"processed_ok"`
	ProcessedFailed int64         `json:"processed_failed"`
	TotalEntities   int64         `json:"total_entities"`
	Duration        time.Duration `json:"duration"`
	AnalysisTime    time.Duration `json:"analysis_time"`
	WriteTime       time.Duration `json:"write_time"`
	Errors          []string      `json:"errors,omitempty"`
}

// Config contains batch pipeline configuration
type Config struct {
	BatchSize      int               `yaml:"batch_size" mapstructure:"batch_size"`           // 1000
	WorkerCount    int               `yaml:"worker_count" mapstructure:"worker_count"`       // 4
	ValidateData   bool              `yaml:"validate_data" mapstructure:"validate_data"`     // true
	MaxTextLength  int               `yaml:"max_text_length" mapstructure:"max_text_length"` // 100000
	ProgressReport int               `yaml:"progress_report" mapstructure:"progress_report"` // 1000
	Operators      map[string]string `yaml:"operators" mapstructure:"operators"`
}

// DefaultConfig returns the standard batch settings
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      1000,
		WorkerCount:    4,
		ValidateData:   true,
		MaxTextLength:  100000,
		ProgressReport: 1000,
	}
}

// FileFormat represents supported input file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch {
	case strings.HasSuffix(filename, ".csv"):
		return FormatCSV
	case strings.HasSuffix(filename, ".parquet"):
		return FormatParquet
	case strings.HasSuffix(filename, ".json"), strings.HasSuffix(filename, ".jsonl"):
		return FormatJSON
	default:
		return FormatCSV
	}
}
