package cli

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/storage"
)

// ExitFailed is the exit code of a failing verdict and of every reported
// error, load failures included.
const ExitFailed = 1

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: ExitFailed,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var loadErr *corpus.LoadError
	if errors.As(err, &loadErr) {
		hint := "Check that the file is valid JSON with a top-level \"games\" object"
		if errors.Is(err, corpus.ErrCorpusNotFound) {
			hint = "Pass a corpus path or set 'corpus' in .cardqa/config.yaml"
		}
		return NewCLIError("cannot load corpus", hint, err)
	}

	var emptyErr *aggregate.EmptyInputError
	if errors.As(err, &emptyErr) && emptyErr.Family != "" {
		return NewCLIError(
			fmt.Sprintf("no reports for family %s", emptyErr.Family),
			fmt.Sprintf("Run 'cardqa sweep --family %s' first", emptyErr.Family),
			err,
		)
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		return NewCLIError("invalid settings", "Fix the field named above in .cardqa/config.yaml or the matching flag", err)
	}

	switch {
	case errors.Is(err, aggregate.ErrEmptyInput):
		return NewCLIError("no quality reports found", "Run 'cardqa sweep' first", err)
	case errors.Is(err, storage.ErrMalformedReport):
		return NewCLIError("cannot read quality reports", "Fix or delete the report named above, then run calibrate again", err)
	case errors.Is(err, storage.ErrProfileLocked):
		return NewCLIError("quality profiles are locked", "Another calibration is running; retry when it finishes", err)
	}

	return err
}
