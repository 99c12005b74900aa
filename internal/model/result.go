package model

import "time"

// ProcessingResult is the outcome of one pipeline stage. One result is
// appended to the job per operation executed, in configuration order.
type ProcessingResult struct {
	Operation        string                 `json:"operation"`
	RecordsProcessed int                    `json:"records_processed"`
	ExecutionTimeMs  int64                  `json:"execution_time_ms"`
	MemoryUsedBytes  int                    `json:"memory_used_bytes"`
	Errors           []ProcessingError      `json:"errors"`
	Metadata         map[string]interface{} `json:"metadata"`
}

// ProcessingError is a per-record issue recorded on a stage result.
// It never aborts the job by itself.
type ProcessingError struct {
	ErrorType string                 `json:"error_type"`
	Message   string                 `json:"message"`
	RecordID  string                 `json:"record_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// NewProcessingError builds a timestamped error for the given record.
func NewProcessingError(errorType, message, recordID string) ProcessingError {
	return ProcessingError{
		ErrorType: errorType,
		Message:   message,
		RecordID:  recordID,
		Timestamp: time.Now().UTC(),
	}
}

// SystemMetrics is the periodically refreshed service-wide snapshot.
type SystemMetrics struct {
	CPUUsage                float64 `json:"cpu_usage"`
	MemoryUsage             float64 `json:"memory_usage"`
	DiskUsage               float64 `json:"disk_usage"`
	ActiveJobs              int     `json:"active_jobs"`
	TotalRecordsProcessed   uint64  `json:"total_records_processed"`
	AverageProcessingTimeMs float64 `json:"average_processing_time_ms"`
	ErrorRate               float64 `json:"error_rate"`
	UptimeSeconds           uint64  `json:"uptime_seconds"`
}
