package model

// Operation type tags. Closed set; the pipeline dispatches on these.
const (
	OpTransform   = "transform"
	OpFilter      = "filter"
	OpAggregate   = "aggregate"
	OpJoin        = "join"
	OpSort        = "sort"
	OpDeduplicate = "deduplicate"
	OpValidate    = "validate"
)

// Operation describes one pipeline step. It is a tagged variant: Type
// selects the handler and the remaining fields carry that variant's
// parameters. Operations are pure descriptions, never executable objects.
type Operation struct {
	Type string `json:"type"`

	// transform
	Field      string `json:"field,omitempty"`
	Expression string `json:"expression,omitempty"`

	// filter
	Condition string `json:"condition,omitempty"`

	// aggregate
	GroupBy   []string            `json:"group_by,omitempty"`
	Functions []AggregateFunction `json:"functions,omitempty"`

	// join
	Source string `json:"source,omitempty"`
	On     string `json:"on,omitempty"`

	// sort, deduplicate
	Fields    []string `json:"fields,omitempty"`
	Ascending bool     `json:"ascending,omitempty"`

	// validate
	Rules []ValidationRule `json:"rules,omitempty"`
}

// Aggregate function type tags.
const (
	AggCount   = "count"
	AggSum     = "sum"
	AggAverage = "average"
	AggMin     = "min"
	AggMax     = "max"
	AggCustom  = "custom"
)

// AggregateFunction requests one computed field per group. Field names the
// numeric input field for sum/average/min/max; Name and Expression are used
// by custom functions.
type AggregateFunction struct {
	Type       string `json:"type"`
	Field      string `json:"field,omitempty"`
	Name       string `json:"name,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// Validation rule type tags.
const (
	RuleRequired = "required"
	RuleDataType = "data_type"
	RuleRange    = "range"
	RuleLength   = "length"
	RulePattern  = "pattern"
	RuleCustom   = "custom"
)

// ValidationRule is one field-level check evaluated by the validation
// engine. Parameters carries the rule-type specific settings, e.g.
// expected_type, min/max, min_length/max_length, regex, expression.
type ValidationRule struct {
	Field      string                 `json:"field"`
	RuleType   string                 `json:"rule_type"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Output format type tags.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatParquet  = "parquet"
	FormatDatabase = "database"
	FormatAPI      = "api"
)

// OutputFormat names the destination for a job's final record set.
type OutputFormat struct {
	Type             string            `json:"type"`
	Path             string            `json:"path,omitempty"`
	ConnectionString string            `json:"connection_string,omitempty"`
	Table            string            `json:"table,omitempty"`
	Endpoint         string            `json:"endpoint,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
}

// ProcessingConfig is the pipeline definition carried by a job. The tuning
// knobs (batch size, workers, timeout, retries) are stored as declared even
// when a given stage does not consume all of them.
type ProcessingConfig struct {
	InputSource     string       `json:"input_source,omitempty"`
	Operations      []Operation  `json:"operations"`
	BatchSize       int          `json:"batch_size"`
	ParallelWorkers int          `json:"parallel_workers"`
	TimeoutSeconds  int          `json:"timeout_seconds"`
	RetryAttempts   int          `json:"retry_attempts"`
	OutputFormat    OutputFormat `json:"output_format"`
}
