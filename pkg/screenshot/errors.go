package screenshot

import (
	"errors"
	"fmt"
)

// Error kinds for the capture pipeline. Every failure is fatal to the single
// directive that triggered it; nothing is retried here.
var (
	// ErrConfig marks a bad or unknown option value, or an unregistered
	// context or app name.
	ErrConfig = errors.New("invalid screenshot configuration")

	// ErrNavigation marks an unreachable target (DNS, timeout, HTTP failure).
	ErrNavigation = errors.New("navigation failed")

	// ErrScript marks a failed interaction script.
	ErrScript = errors.New("interaction script failed")

	// ErrCapture marks a rendering-engine failure during screenshot or PDF
	// export.
	ErrCapture = errors.New("capture failed")
)

// PipelineError wraps a pipeline failure with the target it occurred at so a
// document author can find the offending directive.
type PipelineError struct {
	Kind   error // one of ErrConfig, ErrNavigation, ErrScript, ErrCapture
	Target string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s at %s: %v", e.Kind, e.Target, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Is reports kind membership, so errors.Is(err, screenshot.ErrNavigation)
// works on wrapped errors.
func (e *PipelineError) Is(target error) bool { return target == e.Kind }

func configErrf(format string, args ...any) error {
	return &PipelineError{Kind: ErrConfig, Err: fmt.Errorf(format, args...)}
}

func navErr(target string, err error) error {
	return &PipelineError{Kind: ErrNavigation, Target: target, Err: err}
}

func scriptErr(target string, err error) error {
	return &PipelineError{Kind: ErrScript, Target: target, Err: err}
}

func captureErr(target string, err error) error {
	return &PipelineError{Kind: ErrCapture, Target: target, Err: err}
}
