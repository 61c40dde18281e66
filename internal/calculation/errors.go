package calculation

import "errors"

// ErrNonFiniteUtility is returned when the terminal utility is NaN or infinite at a
// representative wealth value.
var ErrNonFiniteUtility = errors.New("terminal utility is not finite")

// Pipeline stages reported in SolveError.
const (
	StageValidate = "validate"
	StageExtend   = "extend"
	StageUtility  = "utility"
	StageBuild    = "build"
	StageSolve    = "solve"
)

// SolveError reports which pipeline stage refused a problem.
type SolveError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *SolveError) Error() string {
	if e.Cause != nil {
		return e.Stage + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Stage + ": " + e.Message
}

func (e *SolveError) Unwrap() error {
	return e.Cause
}
