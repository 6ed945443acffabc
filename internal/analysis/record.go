package analysis

// FailureRecord normalizes one failed pipeline run's step, error, and logs.
// It is externally supplied and immutable for the duration of one analysis.
type FailureRecord struct {
	Repository     string
	Branch         string
	FailingStep    string
	ErrorMessage   string
	LogText        string
	PipelineConfig string
}
