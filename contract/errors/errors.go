package errors

import "fmt"

// Error codes for the mediator contracts. Keep stable; used across packages and in logs.
const (
	ErrCodeHandlerExists       = "mediator.handler_exists"
	ErrCodeHandlerNotFound     = "mediator.handler_not_found"
	ErrCodeHandlerTypeMismatch = "mediator.handler_type_mismatch"
	ErrCodeHandlerPanicked     = "mediator.handler_panicked"
	ErrCodeInvalidArgument     = "mediator.invalid_argument"
	ErrCodePublishFailed       = "mediator.publish_failed"
	ErrCodeValidationFailed    = "mediator.validation_failed"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrHandlerExists       = Code(ErrCodeHandlerExists)
	ErrHandlerNotFound     = Code(ErrCodeHandlerNotFound)
	ErrHandlerTypeMismatch = Code(ErrCodeHandlerTypeMismatch)
	ErrHandlerPanicked     = Code(ErrCodeHandlerPanicked)
	ErrInvalidArgument     = Code(ErrCodeInvalidArgument)
	ErrPublishFailed       = Code(ErrCodePublishFailed)
	ErrValidationFailed    = Code(ErrCodeValidationFailed)
)

// ConfigurationError reports a wiring defect, such as a request type with no bound handler.
// The mediator panics with a *ConfigurationError rather than returning it: the condition is
// a programming error and must never reach a user as a recoverable failure.
type ConfigurationError struct {
	RequestType string
	Err         error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mediator configuration: %s: %v", e.RequestType, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
