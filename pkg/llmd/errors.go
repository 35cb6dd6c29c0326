package llmd

import "fmt"

// Step names the pipeline stage at which a parse or write failed.
type Step string

const (
	StepIO         Step = "io"
	StepHeader     Step = "header"
	StepMetadata   Step = "metadata"
	StepStructured Step = "structured"
	StepValidate   Step = "validate"
)

// ErrChecksumMismatch is returned when checksum verification is
// requested and a section's advisory CRC32 does not match its bytes.
var ErrChecksumMismatch = &ChecksumError{"section checksum mismatch"}

// ChecksumError represents an advisory checksum failure
type ChecksumError struct {
	Message string
}

func (e *ChecksumError) Error() string {
	return e.Message
}

// StepError wraps a component failure with the pipeline step at which it
// occurred. The underlying component error stays reachable via errors.Is
// and errors.As.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}
