package pipeline

// Pipeline stages, used as error prefixes and metric labels.
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageLoad    = "load"
)

// StageError ties a failure to the pipeline stage (and sink, for loads) that
// produced it.
type StageError struct {
	Stage string
	Sink  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Sink != "" {
		return e.Stage + " " + e.Sink + ": " + e.Err.Error()
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
